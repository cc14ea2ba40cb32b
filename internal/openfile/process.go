package openfile

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/Mkayuni/Simple-File-System/internal/schema"
)

// ProcessTable is the open-file table of a single client. Records are kept
// per [schema.FileID], so a handle whose file was deleted keeps its record
// until closed, even once another file took over the same directory slot.
type ProcessTable struct {
	sync.Mutex
	slots   int
	records map[schema.FileID]*Record
}

// NewProcessTable returns a pointer to a new [ProcessTable] for the given
// number of directory slots.
func NewProcessTable(slots int) *ProcessTable {
	return &ProcessTable{
		slots:   slots,
		records: make(map[schema.FileID]*Record),
	}
}

// Add records an open of the given entry. An existing record of the same
// file is refreshed and its open count incremented.
func (t *ProcessTable) Add(e schema.Entry) (Record, error) {
	t.Lock()
	defer t.Unlock()

	if int(e.ID.Slot) >= t.slots {
		return Record{}, fmt.Errorf("(openfile-add) %w: %s", ErrInvalidSlot, e.ID)
	}

	if rec, ok := t.records[e.ID]; ok {
		rec.refresh(e)
		rec.OpenCount++

		return *rec, nil
	}

	rec := newRecord(e)
	t.records[e.ID] = rec

	return *rec, nil
}

// lookup returns the record of the given file, the lock must be held.
func (t *ProcessTable) lookup(id schema.FileID) (*Record, error) {
	rec, ok := t.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotOpen, id)
	}

	return rec, nil
}

// Remove records a close of the given file and returns the number of opens
// still outstanding. An error wrapping [ErrNotOpen] is returned if the file
// has no record.
func (t *ProcessTable) Remove(id schema.FileID) (int, error) {
	t.Lock()
	defer t.Unlock()

	rec, err := t.lookup(id)
	if err != nil {
		return 0, fmt.Errorf("(openfile-remove) %w", err)
	}

	rec.OpenCount--
	if rec.OpenCount <= 0 {
		delete(t.records, id)

		return 0, nil
	}

	return rec.OpenCount, nil
}

// Get returns a copy of the record of the given file.
func (t *ProcessTable) Get(id schema.FileID) (Record, error) {
	t.Lock()
	defer t.Unlock()

	rec, err := t.lookup(id)
	if err != nil {
		return Record{}, fmt.Errorf("(openfile-get) %w", err)
	}

	return *rec, nil
}

// RecordWrite notes an acknowledged write with the given digest on the
// record of the given file.
func (t *ProcessTable) RecordWrite(id schema.FileID, digest string) (Record, error) {
	t.Lock()
	defer t.Unlock()

	rec, err := t.lookup(id)
	if err != nil {
		return Record{}, fmt.Errorf("(openfile-write) %w", err)
	}

	rec.Writes++
	rec.LastDigest = digest

	return *rec, nil
}

// IDs returns the identifiers of all files with a record, ordered by slot
// and then by generation.
func (t *ProcessTable) IDs() []schema.FileID {
	t.Lock()
	defer t.Unlock()

	return slices.SortedFunc(maps.Keys(t.records), func(a, b schema.FileID) int {
		return cmp.Or(cmp.Compare(a.Slot, b.Slot), cmp.Compare(a.Gen, b.Gen))
	})
}

// Len returns the number of files with a record.
func (t *ProcessTable) Len() int {
	t.Lock()
	defer t.Unlock()

	return len(t.records)
}
