package openfile

import "errors"

var (
	// ErrNotOpen is returned when a [schema.FileID] has no open record in a
	// table, e.g. on a double close.
	ErrNotOpen = errors.New("file is not open")

	// ErrInvalidSlot is returned when a record is requested for a slot outside
	// of the table, which should not be possible with entries handed out by
	// the directory the table was sized for.
	ErrInvalidSlot = errors.New("slot out of range")
)
