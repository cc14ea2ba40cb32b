package openfile

import (
	"sync"
	"testing"

	"github.com/Mkayuni/Simple-File-System/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(slot uint32, gen uint32) schema.Entry {
	return schema.Entry{
		Name:       "file",
		ID:         schema.FileID{Slot: slot, Gen: gen},
		StartBlock: uint64(slot) + 1,
		Size:       17,
		Blocks:     []uint64{uint64(slot) + 1},
	}
}

// TestSystemTable_RetainRelease tests open counting of the system table.
func TestSystemTable_RetainRelease(t *testing.T) {
	t.Parallel()

	st := NewSystemTable(4)
	e := entry(1, 7)

	rec, err := st.Retain(e)
	require.NoError(t, err)
	assert.Equal(t, e.ID, rec.ID)
	assert.Equal(t, uint64(17), rec.FileSize)
	assert.Equal(t, uint64(2), rec.FirstBlock)
	assert.Equal(t, 1, rec.OpenCount)

	rec, err = st.Retain(e)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.OpenCount)
	assert.Equal(t, 2, st.OpenCount(e.ID))
	assert.Equal(t, 1, st.Len())

	assert.True(t, st.Release(e.ID))
	assert.Equal(t, 1, st.OpenCount(e.ID))

	assert.True(t, st.Release(e.ID))
	assert.Equal(t, 0, st.OpenCount(e.ID))
	assert.Equal(t, 0, st.Len())

	assert.False(t, st.Release(e.ID), "releasing a closed file should be a no-op")
}

// TestSystemTable_Generations tests that records of older generations are
// replaced and their releases ignored.
func TestSystemTable_Generations(t *testing.T) {
	t.Parallel()

	st := NewSystemTable(4)
	oldE := entry(2, 1)
	newE := entry(2, 5)

	_, err := st.Retain(oldE)
	require.NoError(t, err)

	assert.Equal(t, 1, st.Invalidate(2))
	assert.Equal(t, 0, st.Invalidate(2))

	_, err = st.Retain(newE)
	require.NoError(t, err)

	assert.False(t, st.Release(oldE.ID))
	assert.Equal(t, 1, st.OpenCount(newE.ID))

	_, ok := st.Get(oldE.ID)
	assert.False(t, ok)

	_, err = st.Retain(entry(9, 1))
	require.ErrorIs(t, err, ErrInvalidSlot)
	assert.False(t, st.Release(schema.FileID{Slot: 9, Gen: 1}))
}

// TestSystemTable_Concurrent tests the system table under concurrent opens
// and closes.
func TestSystemTable_Concurrent(t *testing.T) {
	t.Parallel()

	st := NewSystemTable(8)
	e := entry(3, 1)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.Retain(e)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, st.OpenCount(e.ID))

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, st.Release(e.ID))
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, st.Len())
}

// TestProcessTable_AddRemove tests the per-process table.
func TestProcessTable_AddRemove(t *testing.T) {
	t.Parallel()

	pt := NewProcessTable(4)
	e := entry(0, 3)

	_, err := pt.Add(e)
	require.NoError(t, err)
	_, err = pt.Add(e)
	require.NoError(t, err)

	assert.Equal(t, []schema.FileID{e.ID}, pt.IDs())
	assert.Equal(t, 1, pt.Len())

	left, err := pt.Remove(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, left)

	left, err = pt.Remove(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, left)

	_, err = pt.Remove(e.ID)
	require.ErrorIs(t, err, ErrNotOpen, "double close should fail")

	_, err = pt.Get(e.ID)
	require.ErrorIs(t, err, ErrNotOpen)

	_, err = pt.Get(schema.FileID{Slot: 77, Gen: 1})
	require.ErrorIs(t, err, ErrNotOpen)

	_, err = pt.Add(entry(4, 1))
	require.ErrorIs(t, err, ErrInvalidSlot)
}

// TestProcessTable_RecordWrite tests write bookkeeping on a record.
func TestProcessTable_RecordWrite(t *testing.T) {
	t.Parallel()

	pt := NewProcessTable(4)
	e := entry(1, 1)

	_, err := pt.RecordWrite(e.ID, "abc")
	require.ErrorIs(t, err, ErrNotOpen)

	_, err = pt.Add(e)
	require.NoError(t, err)

	rec, err := pt.RecordWrite(e.ID, "abc")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Writes)
	assert.Equal(t, "abc", rec.LastDigest)

	rec, err = pt.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "abc", rec.LastDigest)

	_, err = pt.Get(schema.FileID{Slot: 1, Gen: 2})
	require.ErrorIs(t, err, ErrNotOpen, "another generation in the same slot is not open")
}

// TestProcessTable_SlotReuse tests that records of different generations in
// the same slot are kept apart.
func TestProcessTable_SlotReuse(t *testing.T) {
	t.Parallel()

	pt := NewProcessTable(4)
	stale, fresh := entry(0, 1), entry(0, 2)

	_, err := pt.Add(stale)
	require.NoError(t, err)
	_, err = pt.Add(fresh)
	require.NoError(t, err)

	assert.Equal(t, []schema.FileID{stale.ID, fresh.ID}, pt.IDs())
	assert.Equal(t, 2, pt.Len())

	rec, err := pt.Get(stale.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.OpenCount)

	left, err := pt.Remove(stale.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, left)

	_, err = pt.Get(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, []schema.FileID{fresh.ID}, pt.IDs())
}
