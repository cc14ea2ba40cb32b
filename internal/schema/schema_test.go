package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFileID_Pack tests packing identifiers into a single integer.
func TestFileID_Pack(t *testing.T) {
	t.Parallel()

	id := FileID{Slot: 7, Gen: 3}

	assert.Equal(t, uint64(3)<<32|7, id.Pack())
	assert.Equal(t, id, UnpackFileID(id.Pack()))
	assert.Equal(t, "7.3", id.String())
	assert.False(t, id.IsZero())
	assert.True(t, NoFile.IsZero())
}

// TestEntry_Blocks tests the block helpers of an [Entry].
func TestEntry_Blocks(t *testing.T) {
	t.Parallel()

	e := Entry{Name: "file1", ID: FileID{Slot: 0, Gen: 1}, StartBlock: 1, Size: 5000, Blocks: []uint64{1, 2, 4}}

	assert.Equal(t, uint64(3), e.BlockCount())
	assert.False(t, e.IsContiguous())
	assert.True(t, Entry{Blocks: []uint64{4, 5, 6}}.IsContiguous())
	assert.True(t, Entry{}.IsContiguous())
	assert.Equal(t, "file1 (FID: 0.1, Start Block: 1, Size: 5000)", e.String())

	clone := e.Clone()
	clone.Blocks[0] = 99
	assert.Equal(t, uint64(1), e.Blocks[0])
}

// TestUsage_Success tests the derived values of a [Usage].
func TestUsage_Success(t *testing.T) {
	t.Parallel()

	u := Usage{
		TotalBlocks:    512,
		FreeBlocks:     509,
		ReservedBlocks: 1,
		BlockSize:      2048,
		Files:          2,
		Slots:          512,
	}

	assert.Equal(t, uint64(2), u.UsedBlocks())
	assert.Equal(t, uint64(509*2048), u.FreeBytes())
	assert.Equal(t, uint64(1<<20), u.TotalBytes())
	assert.Equal(t, "509/512 blocks free (1018 KiB of 1.0 MiB), 2/512 slots used", u.String())
}
