// Package allocation implements the volume control block: a bitmap of used
// and free blocks together with the free block count, and the policies used
// to select blocks for new files.
package allocation

import (
	"fmt"
	"slices"
)

const (
	// ReservedBlock is the block holding the volume control block itself, it
	// is never free.
	ReservedBlock uint64 = 0

	// PolicyFirstFree selects the first free blocks in ascending order,
	// regardless of whether they are adjacent.
	PolicyFirstFree = "firstfree"

	// PolicyContiguous selects the first run of adjacent free blocks that is
	// long enough (first fit).
	PolicyContiguous = "contiguous"

	// PolicyBestFit selects the shortest run of adjacent free blocks that is
	// long enough, preferring lower block numbers on ties.
	PolicyBestFit = "bestfit"
)

// Bitmap is the volume control block. It tracks the used/free state of every
// block and keeps the free block count in step with it.
//
// A [Bitmap] is not thread-safe, it is meant to be guarded by the lock of
// whoever owns the volume.
type Bitmap struct {
	totalBlocks uint64
	blockSize   uint64
	freeBlocks  uint64
	policy      string
	used        []bool
}

// ValidatePolicy returns [ErrNoAllocationPolicy] for unknown policy names.
func ValidatePolicy(policy string) error {
	switch policy {
	case PolicyFirstFree, PolicyContiguous, PolicyBestFit:
		return nil
	default:
		return fmt.Errorf("(alloc) %w: %q", ErrNoAllocationPolicy, policy)
	}
}

// NewBitmap returns a pointer to a new, zeroed [Bitmap] with the
// [ReservedBlock] marked as used.
func NewBitmap(totalBlocks uint64, blockSize uint64, policy string) (*Bitmap, error) {
	if totalBlocks < 2 || blockSize == 0 { //nolint:mnd
		return nil, fmt.Errorf("(alloc) %w: %d blocks of %d bytes", ErrInvalidGeometry, totalBlocks, blockSize)
	}

	if err := ValidatePolicy(policy); err != nil {
		return nil, err
	}

	b := &Bitmap{
		totalBlocks: totalBlocks,
		blockSize:   blockSize,
		freeBlocks:  totalBlocks - 1,
		policy:      policy,
		used:        make([]bool, totalBlocks),
	}
	b.used[ReservedBlock] = true

	return b, nil
}

// TotalBlocks returns the number of blocks of the volume.
func (b *Bitmap) TotalBlocks() uint64 {
	return b.totalBlocks
}

// BlockSize returns the size of a single block in bytes.
func (b *Bitmap) BlockSize() uint64 {
	return b.blockSize
}

// FreeBlocks returns the number of free blocks.
func (b *Bitmap) FreeBlocks() uint64 {
	return b.freeBlocks
}

// Policy returns the name of the allocation policy in use.
func (b *Bitmap) Policy() string {
	return b.policy
}

// BlocksNeeded returns the number of blocks a file of size bytes occupies.
// Empty files occupy no blocks.
func (b *Bitmap) BlocksNeeded(size uint64) uint64 {
	return size/b.blockSize + min(size%b.blockSize, 1)
}

// IsUsed returns whether a block is in use, blocks outside the volume are
// reported as not in use.
func (b *Bitmap) IsUsed(blk uint64) bool {
	if blk >= b.totalBlocks {
		return false
	}

	return b.used[blk]
}

// Snapshot returns a copy of the used/free state of all blocks.
func (b *Bitmap) Snapshot() []bool {
	return slices.Clone(b.used)
}

// Allocate marks n free blocks as used and returns them in ascending order.
// The blocks are chosen according to the policy of the [Bitmap]. Nothing is
// changed if the request cannot be satisfied, in which case an error wrapping
// [ErrAllocationFailed] is returned.
func (b *Bitmap) Allocate(n uint64) ([]uint64, error) {
	if n == 0 {
		return []uint64{}, nil
	}

	if n > b.freeBlocks {
		return nil, fmt.Errorf("(alloc) %w: %d needed, %d free", ErrAllocationFailed, n, b.freeBlocks)
	}

	var blocks []uint64

	switch b.policy {
	case PolicyFirstFree:
		blocks = b.findFirstFree(n)

	case PolicyContiguous:
		blocks = b.findContiguous(n)

	case PolicyBestFit:
		blocks = b.findBestFit(n)

	default:
		return nil, fmt.Errorf("(alloc) %w: %q", ErrNoAllocationPolicy, b.policy)
	}

	if blocks == nil {
		return nil, fmt.Errorf("(alloc) %w: no run of %d free blocks (%s)", ErrAllocationFailed, n, b.policy)
	}

	for _, blk := range blocks {
		b.used[blk] = true
	}
	b.freeBlocks -= n

	return blocks, nil
}

// Free releases the given blocks. All blocks are checked before any of them
// is released, so on error the [Bitmap] is left unchanged.
func (b *Bitmap) Free(blocks []uint64) error {
	seen := make(map[uint64]struct{}, len(blocks))

	for _, blk := range blocks {
		if blk == ReservedBlock {
			return fmt.Errorf("(alloc-free) %w: %d", ErrReservedBlock, blk)
		}

		if blk >= b.totalBlocks {
			return fmt.Errorf("(alloc-free) %w: %d >= %d", ErrInvalidBlock, blk, b.totalBlocks)
		}

		if _, dup := seen[blk]; dup || !b.used[blk] {
			return fmt.Errorf("(alloc-free) %w: %d", ErrDoubleFree, blk)
		}
		seen[blk] = struct{}{}
	}

	for _, blk := range blocks {
		b.used[blk] = false
	}
	b.freeBlocks += uint64(len(blocks))

	return nil
}
