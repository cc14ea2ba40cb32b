package allocation

import (
	"iter"
)

// freeRuns yields the start and length of every run of adjacent free blocks,
// in ascending order.
func (b *Bitmap) freeRuns() iter.Seq2[uint64, uint64] {
	return func(yield func(uint64, uint64) bool) {
		var start, length uint64

		for blk := ReservedBlock + 1; blk < b.totalBlocks; blk++ {
			if !b.used[blk] {
				if length == 0 {
					start = blk
				}
				length++

				continue
			}

			if length > 0 {
				if !yield(start, length) {
					return
				}
				length = 0
			}
		}

		if length > 0 {
			yield(start, length)
		}
	}
}

// blockRange returns the n blocks starting at start.
func blockRange(start uint64, n uint64) []uint64 {
	blocks := make([]uint64, 0, n)
	for blk := start; blk < start+n; blk++ {
		blocks = append(blocks, blk)
	}

	return blocks
}

// findFirstFree provides the selection logic for [PolicyFirstFree].
func (b *Bitmap) findFirstFree(n uint64) []uint64 {
	blocks := make([]uint64, 0, n)

	for blk := ReservedBlock + 1; blk < b.totalBlocks; blk++ {
		if b.used[blk] {
			continue
		}

		blocks = append(blocks, blk)
		if uint64(len(blocks)) == n {
			return blocks
		}
	}

	return nil
}

// findContiguous provides the selection logic for [PolicyContiguous].
func (b *Bitmap) findContiguous(n uint64) []uint64 {
	for start, length := range b.freeRuns() {
		if length >= n {
			return blockRange(start, n)
		}
	}

	return nil
}

// findBestFit provides the selection logic for [PolicyBestFit].
func (b *Bitmap) findBestFit(n uint64) []uint64 {
	var bestStart, bestLength uint64

	for start, length := range b.freeRuns() {
		if length < n {
			continue
		}

		if bestLength == 0 || length < bestLength {
			bestStart, bestLength = start, length
		}

		if length == n {
			break
		}
	}

	if bestLength == 0 {
		return nil
	}

	return blockRange(bestStart, n)
}
