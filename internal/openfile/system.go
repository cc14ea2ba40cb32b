package openfile

import (
	"fmt"
	"sync"

	"github.com/Mkayuni/Simple-File-System/internal/schema"
)

// SystemTable is the volume-wide open-file table.
type SystemTable struct {
	sync.Mutex
	records []*Record
}

// NewSystemTable returns a pointer to a new [SystemTable] for the given
// number of directory slots.
func NewSystemTable(slots int) *SystemTable {
	return &SystemTable{
		records: make([]*Record, slots),
	}
}

// Retain records an open of the given entry. An existing record of the same
// file is refreshed and its open count incremented, a record left behind by
// an older generation in the same slot is replaced.
func (t *SystemTable) Retain(e schema.Entry) (Record, error) {
	t.Lock()
	defer t.Unlock()

	if int(e.ID.Slot) >= len(t.records) {
		return Record{}, fmt.Errorf("(openfile-retain) %w: %s", ErrInvalidSlot, e.ID)
	}

	rec := t.records[e.ID.Slot]
	if rec != nil && rec.ID == e.ID {
		rec.refresh(e)
		rec.OpenCount++

		return *rec, nil
	}

	rec = newRecord(e)
	t.records[e.ID.Slot] = rec

	return *rec, nil
}

// Release records a close of the given file, removing its record once no
// opens are outstanding. It returns whether a record was found, releases of
// invalidated or replaced records are ignored.
func (t *SystemTable) Release(id schema.FileID) bool {
	t.Lock()
	defer t.Unlock()

	if int(id.Slot) >= len(t.records) {
		return false
	}

	rec := t.records[id.Slot]
	if rec == nil || rec.ID != id {
		return false
	}

	rec.OpenCount--
	if rec.OpenCount <= 0 {
		t.records[id.Slot] = nil
	}

	return true
}

// Invalidate drops the record of a slot regardless of outstanding opens and
// returns the number of opens that were outstanding.
func (t *SystemTable) Invalidate(slot uint32) int {
	t.Lock()
	defer t.Unlock()

	if int(slot) >= len(t.records) || t.records[slot] == nil {
		return 0
	}

	count := t.records[slot].OpenCount
	t.records[slot] = nil

	return count
}

// OpenCount returns the number of outstanding opens of the given file.
func (t *SystemTable) OpenCount(id schema.FileID) int {
	rec, ok := t.Get(id)
	if !ok {
		return 0
	}

	return rec.OpenCount
}

// Get returns a copy of the record of the given file.
func (t *SystemTable) Get(id schema.FileID) (Record, bool) {
	t.Lock()
	defer t.Unlock()

	if int(id.Slot) >= len(t.records) {
		return Record{}, false
	}

	rec := t.records[id.Slot]
	if rec == nil || rec.ID != id {
		return Record{}, false
	}

	return *rec, true
}

// Len returns the number of files with a record.
func (t *SystemTable) Len() int {
	t.Lock()
	defer t.Unlock()

	n := 0
	for _, rec := range t.records {
		if rec != nil {
			n++
		}
	}

	return n
}
