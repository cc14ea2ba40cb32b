package directory

import "errors"

var (
	// ErrInvalidName is returned for empty names and names exceeding the
	// configured maximum length.
	ErrInvalidName = errors.New("invalid file name")

	// ErrAlreadyExists is returned when a name already denotes a live entry.
	ErrAlreadyExists = errors.New("file already exists")

	// ErrDirectoryFull is returned when no empty slot is left.
	ErrDirectoryFull = errors.New("directory is full")

	// ErrInsufficientSpace is returned when the blocks needed for a file
	// cannot be allocated, it wraps the allocator's own error.
	ErrInsufficientSpace = errors.New("not enough free blocks")

	// ErrNotFound is returned when no live entry matches a name or slot.
	ErrNotFound = errors.New("file not found")

	// ErrStaleHandle is returned when a [schema.FileID] refers to a file that
	// has been deleted, even if its slot has been reused since.
	ErrStaleHandle = errors.New("stale file handle")

	// ErrInvalidCapacity is returned when a [Table] is requested without
	// slots or without a usable name length.
	ErrInvalidCapacity = errors.New("invalid directory capacity")
)
