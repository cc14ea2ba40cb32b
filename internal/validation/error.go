package validation

import "errors"

var (
	// ErrReservedBlockFree occurs when the reserved block 0 is marked free.
	ErrReservedBlockFree = errors.New("reserved block is marked free")

	// ErrFreeCountMismatch occurs when the free block count disagrees with the
	// number of free blocks in the bitmap.
	ErrFreeCountMismatch = errors.New("free block count mismatches bitmap")

	// ErrAccountingMismatch occurs when free, owned and reserved blocks do not
	// add up to the total number of blocks.
	ErrAccountingMismatch = errors.New("block accounting does not add up")

	// ErrBlockCountMismatch occurs when an entry owns a different number of
	// blocks than its size requires.
	ErrBlockCountMismatch = errors.New("entry block count mismatches its size")

	// ErrStartBlockMismatch occurs when an entry's start block is not its
	// first owned block.
	ErrStartBlockMismatch = errors.New("entry start block mismatches its blocks")

	// ErrBlockNotMarked occurs when an entry owns a block that is marked free
	// or lies outside of the volume.
	ErrBlockNotMarked = errors.New("entry block is not marked used")

	// ErrBlockOverlap occurs when a block is owned by more than one entry.
	ErrBlockOverlap = errors.New("block is owned by more than one entry")

	// ErrLeakedBlock occurs when a block is marked used but owned by no entry.
	ErrLeakedBlock = errors.New("block is used but owned by no entry")

	// ErrDuplicateName occurs when more than one live entry has the same name.
	ErrDuplicateName = errors.New("name is used by more than one entry")

	// ErrSlotMismatch occurs when more than one live entry claims the same
	// directory slot.
	ErrSlotMismatch = errors.New("slot is claimed by more than one entry")
)
