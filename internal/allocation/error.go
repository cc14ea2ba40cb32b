package allocation

import (
	"errors"
)

var (
	// ErrAllocationFailed is returned when the [Bitmap] cannot satisfy an
	// allocation request with the configured policy. It is the internal cause
	// of any insufficient space condition reported further up.
	ErrAllocationFailed = errors.New("not enough free blocks for allocation")

	// ErrNoAllocationPolicy is returned for misconfigurations and non
	// supported allocation policies.
	ErrNoAllocationPolicy = errors.New("no supported allocation policy given")

	// ErrInvalidGeometry is returned when a [Bitmap] is requested with fewer
	// than two blocks (one is always reserved) or a block size of zero.
	ErrInvalidGeometry = errors.New("invalid volume geometry")

	// ErrReservedBlock is returned when the reserved block 0 is attempted to
	// be released.
	ErrReservedBlock = errors.New("block is reserved")

	// ErrInvalidBlock is returned for block numbers outside of the volume.
	ErrInvalidBlock = errors.New("block out of range")

	// ErrDoubleFree is returned when a block is released that is not in use,
	// it should not be possible under normal circumstances.
	ErrDoubleFree = errors.New("block is already free")
)
