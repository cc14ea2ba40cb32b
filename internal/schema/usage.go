package schema

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Usage holds volume usage information. It is meant to be passed by value.
type Usage struct {
	TotalBlocks    uint64
	FreeBlocks     uint64
	ReservedBlocks uint64
	BlockSize      uint64
	Files          int
	Slots          int
}

// UsedBlocks returns the number of blocks owned by files.
func (u Usage) UsedBlocks() uint64 {
	return u.TotalBlocks - u.FreeBlocks - u.ReservedBlocks
}

// FreeBytes returns the free capacity in bytes.
func (u Usage) FreeBytes() uint64 {
	return u.FreeBlocks * u.BlockSize
}

// TotalBytes returns the total capacity in bytes, including reserved blocks.
func (u Usage) TotalBytes() uint64 {
	return u.TotalBlocks * u.BlockSize
}

func (u Usage) String() string {
	return fmt.Sprintf("%d/%d blocks free (%s of %s), %d/%d slots used",
		u.FreeBlocks, u.TotalBlocks,
		humanize.IBytes(u.FreeBytes()), humanize.IBytes(u.TotalBytes()),
		u.Files, u.Slots,
	)
}
