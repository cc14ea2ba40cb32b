// Package directory implements the flat, fixed-capacity directory of a
// volume. Every slot either is empty or holds one live file, mapping its
// name to the blocks allocated for it.
package directory

import (
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/Mkayuni/Simple-File-System/internal/schema"
)

// blockAllocator defines the methods needed from the volume's block allocator.
type blockAllocator interface {
	BlocksNeeded(size uint64) uint64
	Allocate(n uint64) ([]uint64, error)
	Free(blocks []uint64) error
}

type slot struct {
	live  bool
	entry schema.Entry
}

// Table is the directory of a volume. A [Table] is not thread-safe, the
// check-then-act sequences of [Table.Create] and [Table.Delete] are meant to
// run under one lock together with the allocator they mutate.
type Table struct {
	alloc      blockAllocator
	slots      []slot
	maxNameLen int
	files      int
	lastGen    uint32
	now        func() time.Time
}

// New returns a pointer to a new, empty [Table] with the given number of
// slots, releasing and allocating blocks through alloc.
func New(slots int, maxNameLen int, alloc blockAllocator) (*Table, error) {
	if slots <= 0 || maxNameLen <= 0 {
		return nil, fmt.Errorf("(dir) %w: %d slots, name length %d", ErrInvalidCapacity, slots, maxNameLen)
	}

	return &Table{
		alloc:      alloc,
		slots:      make([]slot, slots),
		maxNameLen: maxNameLen,
		now:        time.Now,
	}, nil
}

// Slots returns the capacity of the [Table].
func (d *Table) Slots() int {
	return len(d.slots)
}

// Len returns the number of live entries.
func (d *Table) Len() int {
	return d.files
}

func (d *Table) validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}

	if len(name) > d.maxNameLen {
		return fmt.Errorf("%w: %q exceeds %d bytes", ErrInvalidName, name, d.maxNameLen)
	}

	return nil
}

// find returns the slot index of the live entry with the given name.
func (d *Table) find(name string) (int, bool) {
	for i := range d.slots {
		if d.slots[i].live && d.slots[i].entry.Name == name {
			return i, true
		}
	}

	return -1, false
}

// nextGen issues the next creation generation, skipping zero on wraparound.
func (d *Table) nextGen() uint32 {
	d.lastGen++
	if d.lastGen == 0 {
		d.lastGen++
	}

	return d.lastGen
}

// Create adds a new entry of size bytes under name to the lowest empty slot,
// allocating the blocks it needs. Nothing is changed if an error is returned.
func (d *Table) Create(name string, size uint64) (schema.Entry, error) {
	if err := d.validateName(name); err != nil {
		return schema.Entry{}, fmt.Errorf("(dir-create) %w", err)
	}

	if _, exists := d.find(name); exists {
		return schema.Entry{}, fmt.Errorf("(dir-create) %w: %s", ErrAlreadyExists, name)
	}

	empty := -1
	for i := range d.slots {
		if !d.slots[i].live {
			empty = i

			break
		}
	}

	if empty < 0 {
		return schema.Entry{}, fmt.Errorf("(dir-create) %w: %d slots in use", ErrDirectoryFull, len(d.slots))
	}

	blocks, err := d.alloc.Allocate(d.alloc.BlocksNeeded(size))
	if err != nil {
		return schema.Entry{}, fmt.Errorf("(dir-create) %w: %s: %w", ErrInsufficientSpace, name, err)
	}

	var startBlock uint64
	if len(blocks) > 0 {
		startBlock = blocks[0]
	}

	entry := schema.Entry{
		Name:       name,
		ID:         schema.FileID{Slot: uint32(empty), Gen: d.nextGen()}, //nolint:gosec
		StartBlock: startBlock,
		Size:       size,
		Blocks:     blocks,
		CreatedAt:  d.now(),
	}

	d.slots[empty] = slot{live: true, entry: entry}
	d.files++

	slog.Debug("Directory entry created",
		"file", name,
		"fid", entry.ID,
		"startBlock", entry.StartBlock,
		"blocks", len(blocks),
	)

	return entry.Clone(), nil
}

// Lookup returns the live entry with the given name.
func (d *Table) Lookup(name string) (schema.Entry, error) {
	i, exists := d.find(name)
	if !exists {
		return schema.Entry{}, fmt.Errorf("(dir-lookup) %w: %s", ErrNotFound, name)
	}

	return d.slots[i].entry.Clone(), nil
}

// Get returns the live entry a [schema.FileID] refers to. An error wrapping
// [ErrStaleHandle] is returned if the slot is in use by another generation.
func (d *Table) Get(id schema.FileID) (schema.Entry, error) {
	if int(id.Slot) >= len(d.slots) || !d.slots[id.Slot].live {
		return schema.Entry{}, fmt.Errorf("(dir-get) %w: %s", ErrNotFound, id)
	}

	entry := d.slots[id.Slot].entry
	if entry.ID != id {
		return schema.Entry{}, fmt.Errorf("(dir-get) %w: %s (slot now holds %s)", ErrStaleHandle, id, entry.ID)
	}

	return entry.Clone(), nil
}

// Delete removes the live entry with the given name, returning its blocks to
// the allocator. The removed entry is returned.
func (d *Table) Delete(name string) (schema.Entry, error) {
	i, exists := d.find(name)
	if !exists {
		return schema.Entry{}, fmt.Errorf("(dir-delete) %w: %s", ErrNotFound, name)
	}

	entry := d.slots[i].entry

	if err := d.alloc.Free(entry.Blocks); err != nil {
		return schema.Entry{}, fmt.Errorf("(dir-delete) %s: %w", name, err)
	}

	d.slots[i] = slot{}
	d.files--

	slog.Debug("Directory entry deleted",
		"file", name,
		"fid", entry.ID,
		"blocks", len(entry.Blocks),
	)

	return entry, nil
}

// All lazily yields all live entries in slot order. The [Table] must not be
// changed while the sequence is being ranged over.
func (d *Table) All() iter.Seq[schema.Entry] {
	return func(yield func(schema.Entry) bool) {
		for i := range d.slots {
			if !d.slots[i].live {
				continue
			}

			if !yield(d.slots[i].entry.Clone()) {
				return
			}
		}
	}
}

// Entries returns copies of all live entries in slot order.
func (d *Table) Entries() []schema.Entry {
	entries := make([]schema.Entry, 0, d.files)
	for e := range d.All() {
		entries = append(entries, e)
	}

	return entries
}
