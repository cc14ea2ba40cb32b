package schema

import (
	"fmt"
)

// FileID is the caller-visible identifier of a file. It combines the
// directory slot holding the file with the generation the file was created
// at, so a handle to a deleted file is never mistaken for a newer file that
// has since taken over the same slot. It is meant to be passed by value.
type FileID struct {
	// Slot is the directory slot index of the file.
	Slot uint32

	// Gen is the creation generation of the file, zero only for [NoFile].
	Gen uint32
}

// NoFile is the zero [FileID], it never identifies a live file.
var NoFile = FileID{} //nolint:gochecknoglobals

// IsZero returns whether the [FileID] is [NoFile].
func (id FileID) IsZero() bool {
	return id.Gen == 0
}

// Pack returns the [FileID] as a single integer (generation in the upper,
// slot in the lower 32 bits).
func (id FileID) Pack() uint64 {
	return uint64(id.Gen)<<32 | uint64(id.Slot) //nolint:mnd
}

// UnpackFileID is the inverse of [FileID.Pack].
func UnpackFileID(v uint64) FileID {
	return FileID{
		Slot: uint32(v),       //nolint:gosec
		Gen:  uint32(v >> 32), //nolint:gosec,mnd
	}
}

// String formats the [FileID] as "slot.gen".
func (id FileID) String() string {
	return fmt.Sprintf("%d.%d", id.Slot, id.Gen)
}
