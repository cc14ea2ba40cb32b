package workload

import "errors"

var (
	// ErrUnknownOp is returned for a [Step] with an unsupported [Op].
	ErrUnknownOp = errors.New("unknown operation")

	// ErrNotOpened is returned for a [Step] that uses a file its [Script]
	// has not created or opened.
	ErrNotOpened = errors.New("file not opened by script")
)
