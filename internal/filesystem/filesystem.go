// Package filesystem implements the operation surface of a volume. A
// [Handler] sequences the block allocator, the directory and the open-file
// tables under a readers-writer lock, while every client gets a [Process]
// holding its own open-file table.
package filesystem

import (
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Mkayuni/Simple-File-System/internal/allocation"
	"github.com/Mkayuni/Simple-File-System/internal/configuration"
	"github.com/Mkayuni/Simple-File-System/internal/directory"
	"github.com/Mkayuni/Simple-File-System/internal/openfile"
	"github.com/Mkayuni/Simple-File-System/internal/schema"
	"github.com/Mkayuni/Simple-File-System/internal/validation"
)

// DefaultProcessName is the name of the [Process] the [Handler] delegates
// its per-process operations to.
const DefaultProcessName = "default"

// Handler is the principal implementation of a volume.
//
// The embedded lock guards the bitmap and the directory. It is held for
// writing across the entire check-then-act sequence of create and delete,
// and for reading by all other operations. The open-file tables have their
// own locks, which are taken after the volume lock and never nested into
// each other.
type Handler struct {
	sync.RWMutex
	cfg         configuration.VolumeConfig
	bitmap      *allocation.Bitmap
	dir         *directory.Table
	system      *openfile.SystemTable
	lastPID     atomic.Uint32
	defaultProc *Process
}

// NewHandler returns a pointer to a new, empty volume [Handler] with the
// geometry and policies of the given [configuration.VolumeConfig].
func NewHandler(cfg configuration.VolumeConfig) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("(fs-init) %w", err)
	}

	bitmap, err := allocation.NewBitmap(cfg.TotalBlocks, cfg.BlockSize, cfg.AllocPolicy)
	if err != nil {
		return nil, fmt.Errorf("(fs-init) %w", err)
	}

	dir, err := directory.New(cfg.Slots, cfg.MaxNameLength, bitmap)
	if err != nil {
		return nil, fmt.Errorf("(fs-init) %w", err)
	}

	h := &Handler{
		cfg:    cfg,
		bitmap: bitmap,
		dir:    dir,
		system: openfile.NewSystemTable(cfg.Slots),
	}
	h.defaultProc = h.NewProcess(DefaultProcessName)

	slog.Debug("Volume initialized",
		"blocks", cfg.TotalBlocks,
		"blockSize", cfg.BlockSize,
		"slots", cfg.Slots,
		"policy", cfg.AllocPolicy,
	)

	return h, nil
}

// Config returns the [configuration.VolumeConfig] the volume was built with.
func (h *Handler) Config() configuration.VolumeConfig {
	return h.cfg
}

// NewProcess returns a pointer to a new [Process] with an empty open-file
// table, identified by the given name and a volume-unique process number.
func (h *Handler) NewProcess(name string) *Process {
	return &Process{
		h:     h,
		name:  name,
		pid:   h.lastPID.Add(1),
		table: openfile.NewProcessTable(h.cfg.Slots),
	}
}

// DefaultProcess returns the [Process] per-process operations of the
// [Handler] are delegated to.
func (h *Handler) DefaultProcess() *Process {
	return h.defaultProc
}

// Create creates a file in the default [Process], see [Process.Create].
func (h *Handler) Create(name string, size uint64) (schema.FileID, error) {
	return h.defaultProc.Create(name, size)
}

// Open opens a file in the default [Process], see [Process.Open].
func (h *Handler) Open(name string) (schema.FileID, error) {
	return h.defaultProc.Open(name)
}

// Close closes a file in the default [Process], see [Process.Close].
func (h *Handler) Close(id schema.FileID) error {
	return h.defaultProc.Close(id)
}

// Read reads a file in the default [Process], see [Process.Read].
func (h *Handler) Read(id schema.FileID) (schema.Entry, error) {
	return h.defaultProc.Read(id)
}

// Write writes a file in the default [Process], see [Process.Write].
func (h *Handler) Write(id schema.FileID, data []byte) (schema.WriteAck, error) {
	return h.defaultProc.Write(id, data)
}

// Delete removes the file with the given name and releases its blocks.
// Handles still open on the file turn stale, unless the volume is configured
// to refuse deleting open files, in which case an error wrapping
// [ErrFileOpen] is returned. Nothing is changed if an error is returned.
func (h *Handler) Delete(name string) error {
	h.Lock()
	defer h.Unlock()

	entry, err := h.dir.Lookup(name)
	if err != nil {
		return fmt.Errorf("(fs-delete) %w", err)
	}

	if open := h.system.OpenCount(entry.ID); open > 0 && h.cfg.DenyDeleteOpen {
		return fmt.Errorf("(fs-delete) %w: %s (%d open)", ErrFileOpen, name, open)
	}

	if _, err := h.dir.Delete(name); err != nil {
		return fmt.Errorf("(fs-delete) %w", err)
	}

	if stale := h.system.Invalidate(entry.ID.Slot); stale > 0 {
		slog.Debug("Deleted file had open handles",
			"file", name,
			"fid", entry.ID,
			"handles", stale,
		)
	}

	slog.Debug("File deleted",
		"file", name,
		"fid", entry.ID,
		"freeBlocks", h.bitmap.FreeBlocks(),
	)

	return nil
}

// List returns a restartable sequence of all live files in slot order. Each
// iteration ranges over a copy of the directory taken under the read lock,
// so the volume may change while the sequence is consumed.
func (h *Handler) List() iter.Seq[schema.Entry] {
	return func(yield func(schema.Entry) bool) {
		h.RLock()
		entries := h.dir.Entries()
		h.RUnlock()

		for _, e := range entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Lookup returns the live file with the given name.
func (h *Handler) Lookup(name string) (schema.Entry, error) {
	h.RLock()
	defer h.RUnlock()

	entry, err := h.dir.Lookup(name)
	if err != nil {
		return schema.Entry{}, fmt.Errorf("(fs-lookup) %w", err)
	}

	return entry, nil
}

// Stat returns the live file the given [schema.FileID] refers to, regardless
// of whether it is open.
func (h *Handler) Stat(id schema.FileID) (schema.Entry, error) {
	h.RLock()
	defer h.RUnlock()

	entry, err := h.dir.Get(id)
	if err != nil {
		return schema.Entry{}, fmt.Errorf("(fs-stat) %w", err)
	}

	return entry, nil
}

// OpenCount returns the number of opens outstanding on the given file,
// summed over all processes.
func (h *Handler) OpenCount(id schema.FileID) int {
	return h.system.OpenCount(id)
}

// Usage returns the current [schema.Usage] of the volume.
func (h *Handler) Usage() schema.Usage {
	h.RLock()
	defer h.RUnlock()

	return schema.Usage{
		TotalBlocks:    h.bitmap.TotalBlocks(),
		FreeBlocks:     h.bitmap.FreeBlocks(),
		ReservedBlocks: 1,
		BlockSize:      h.bitmap.BlockSize(),
		Files:          h.dir.Len(),
		Slots:          h.dir.Slots(),
	}
}

// Snapshot returns a consistent copy of the volume state.
func (h *Handler) Snapshot() validation.Snapshot {
	h.RLock()
	defer h.RUnlock()

	return validation.Snapshot{
		TotalBlocks: h.bitmap.TotalBlocks(),
		BlockSize:   h.bitmap.BlockSize(),
		FreeBlocks:  h.bitmap.FreeBlocks(),
		Used:        h.bitmap.Snapshot(),
		Entries:     h.dir.Entries(),
	}
}

// Check verifies the consistency of the volume, see
// [validation.ValidateVolume].
func (h *Handler) Check() error {
	if err := validation.ValidateVolume(h.Snapshot()); err != nil {
		return fmt.Errorf("(fs-check) %w", err)
	}

	return nil
}
