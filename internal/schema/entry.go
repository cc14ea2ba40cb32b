package schema

import (
	"fmt"
	"slices"
	"time"
)

// Entry is a live directory entry, binding a name to a block allocation. An
// [Entry] handed out by any package is a copy and can be kept by the caller.
type Entry struct {
	// Name is the unique name of the file.
	Name string

	// ID is the [FileID] of the file.
	ID FileID

	// StartBlock is the first allocated block, or 0 for files owning no
	// blocks (block 0 is reserved and never owned by a file).
	StartBlock uint64

	// Size is the size of the file in bytes.
	Size uint64

	// Blocks holds all allocated blocks in ascending order. Under
	// non-contiguous allocation these can have gaps, so StartBlock plus the
	// block count is not necessarily the extent of the file.
	Blocks []uint64

	// CreatedAt is the time the file was created at.
	CreatedAt time.Time
}

// BlockCount returns the number of blocks owned by the [Entry].
func (e Entry) BlockCount() uint64 {
	return uint64(len(e.Blocks))
}

// IsContiguous returns whether the [Entry] blocks form one consecutive run.
func (e Entry) IsContiguous() bool {
	for i := 1; i < len(e.Blocks); i++ {
		if e.Blocks[i] != e.Blocks[i-1]+1 {
			return false
		}
	}

	return true
}

// Clone returns a deep copy of the [Entry].
func (e Entry) Clone() Entry {
	e.Blocks = slices.Clone(e.Blocks)

	return e
}

func (e Entry) String() string {
	return fmt.Sprintf("%s (FID: %s, Start Block: %d, Size: %d)", e.Name, e.ID, e.StartBlock, e.Size)
}

// WriteAck is the acknowledgement of a write to an open file. Content bytes
// are not stored, so the acknowledgement only records what was handed in.
type WriteAck struct {
	// ID is the [FileID] that was written to.
	ID FileID

	// Bytes is the length of the written payload.
	Bytes uint64

	// Digest is the hex-encoded BLAKE3 digest of the written payload.
	Digest string
}
