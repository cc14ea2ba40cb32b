package filesystem

import (
	"errors"

	"github.com/Mkayuni/Simple-File-System/internal/allocation"
	"github.com/Mkayuni/Simple-File-System/internal/directory"
	"github.com/Mkayuni/Simple-File-System/internal/openfile"
)

var (
	// ErrInvalidName is returned for empty or overlong file names.
	ErrInvalidName = directory.ErrInvalidName

	// ErrAlreadyExists is returned when a name already denotes a live file.
	ErrAlreadyExists = directory.ErrAlreadyExists

	// ErrDirectoryFull is returned when the directory has no empty slot left.
	ErrDirectoryFull = directory.ErrDirectoryFull

	// ErrInsufficientSpace is returned when the volume cannot hold a file of
	// the requested size. It is always accompanied by [ErrAllocationFailed].
	ErrInsufficientSpace = directory.ErrInsufficientSpace

	// ErrAllocationFailed is the allocator cause of [ErrInsufficientSpace].
	ErrAllocationFailed = allocation.ErrAllocationFailed

	// ErrNotFound is returned when a name does not denote a live file.
	ErrNotFound = directory.ErrNotFound

	// ErrNotOpen is returned when a [schema.FileID] is not open in the
	// calling [Process], including on a second close.
	ErrNotOpen = openfile.ErrNotOpen

	// ErrStaleHandle is returned when an open [schema.FileID] refers to a
	// file that was deleted since it was opened.
	ErrStaleHandle = directory.ErrStaleHandle

	// ErrFileOpen is returned when a file with open handles is attempted to
	// be deleted on a volume configured to refuse that.
	ErrFileOpen = errors.New("file has open handles")
)
