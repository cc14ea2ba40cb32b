package filesystem

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Mkayuni/Simple-File-System/internal/openfile"
	"github.com/Mkayuni/Simple-File-System/internal/schema"
	"github.com/zeebo/blake3"
)

// Process is a client of a volume, holding its own open-file table. A
// [Process] is safe for concurrent use, but is meant to be used by one
// client.
type Process struct {
	h     *Handler
	name  string
	pid   uint32
	table *openfile.ProcessTable
}

// Name returns the name of the [Process].
func (p *Process) Name() string {
	return p.name
}

// PID returns the volume-unique process number of the [Process].
func (p *Process) PID() uint32 {
	return p.pid
}

// Create creates a file of size bytes under name and opens it in the
// [Process]. Nothing is changed if an error is returned.
func (p *Process) Create(name string, size uint64) (schema.FileID, error) {
	p.h.Lock()
	defer p.h.Unlock()

	entry, err := p.h.dir.Create(name, size)
	if err != nil {
		return schema.NoFile, fmt.Errorf("(fs-create) %w", err)
	}

	if err := p.retain(entry); err != nil {
		if _, derr := p.h.dir.Delete(name); derr != nil {
			return schema.NoFile, fmt.Errorf("(fs-create) %w: %w", err, derr)
		}

		return schema.NoFile, fmt.Errorf("(fs-create) %w", err)
	}

	slog.Debug("File created",
		"file", name,
		"fid", entry.ID,
		"startBlock", entry.StartBlock,
		"size", size,
		"process", p.name,
	)

	return entry.ID, nil
}

// Open opens the live file with the given name in the [Process]. Opening a
// file more than once returns the same [schema.FileID] and needs as many
// closes.
func (p *Process) Open(name string) (schema.FileID, error) {
	p.h.RLock()
	defer p.h.RUnlock()

	entry, err := p.h.dir.Lookup(name)
	if err != nil {
		return schema.NoFile, fmt.Errorf("(fs-open) %w", err)
	}

	if err := p.retain(entry); err != nil {
		return schema.NoFile, fmt.Errorf("(fs-open) %w", err)
	}

	slog.Debug("File opened",
		"file", name,
		"fid", entry.ID,
		"startBlock", entry.StartBlock,
		"process", p.name,
	)

	return entry.ID, nil
}

// retain records an open of the entry in the system table, then in the
// process table. The volume lock must be held.
func (p *Process) retain(entry schema.Entry) error {
	if _, err := p.h.system.Retain(entry); err != nil {
		return err
	}

	if _, err := p.table.Add(entry); err != nil {
		p.h.system.Release(entry.ID)

		return err
	}

	return nil
}

// Close closes one open of the given file. An error wrapping [ErrNotOpen] is
// returned if the file is not open in the [Process]. Closing a stale handle
// succeeds and drops it.
func (p *Process) Close(id schema.FileID) error {
	p.h.RLock()
	defer p.h.RUnlock()

	remaining, err := p.table.Remove(id)
	if err != nil {
		return fmt.Errorf("(fs-close) %w", err)
	}

	p.h.system.Release(id)

	slog.Debug("File closed",
		"fid", id,
		"remaining", remaining,
		"process", p.name,
	)

	return nil
}

// resolve returns the live entry of a file open in the [Process]. The volume
// lock must be held.
func (p *Process) resolve(id schema.FileID) (schema.Entry, error) {
	if _, err := p.table.Get(id); err != nil {
		return schema.Entry{}, err
	}

	entry, err := p.h.dir.Get(id)
	if errors.Is(err, ErrNotFound) {
		return schema.Entry{}, fmt.Errorf("%w: %s", ErrStaleHandle, id)
	} else if err != nil {
		return schema.Entry{}, err
	}

	return entry, nil
}

// Read returns the metadata of a file open in the [Process]. An error
// wrapping [ErrNotOpen] or [ErrStaleHandle] is returned for handles that are
// not open or whose file was deleted.
func (p *Process) Read(id schema.FileID) (schema.Entry, error) {
	p.h.RLock()
	defer p.h.RUnlock()

	entry, err := p.resolve(id)
	if err != nil {
		return schema.Entry{}, fmt.Errorf("(fs-read) %w", err)
	}

	slog.Debug("File read",
		"file", entry.Name,
		"fid", id,
		"size", entry.Size,
		"process", p.name,
	)

	return entry, nil
}

// Write acknowledges a write of data to a file open in the [Process]. The
// content is not stored, the acknowledgement carries the length and the
// BLAKE3 digest of data. Errors are as with [Process.Read].
func (p *Process) Write(id schema.FileID, data []byte) (schema.WriteAck, error) {
	p.h.RLock()
	defer p.h.RUnlock()

	entry, err := p.resolve(id)
	if err != nil {
		return schema.WriteAck{}, fmt.Errorf("(fs-write) %w", err)
	}

	sum := blake3.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	if _, err := p.table.RecordWrite(id, digest); err != nil {
		return schema.WriteAck{}, fmt.Errorf("(fs-write) %w", err)
	}

	slog.Debug("File written",
		"file", entry.Name,
		"fid", id,
		"bytes", len(data),
		"process", p.name,
	)

	return schema.WriteAck{
		ID:     id,
		Bytes:  uint64(len(data)),
		Digest: digest,
	}, nil
}

// Record returns the open-file record of a file open in the [Process].
func (p *Process) Record(id schema.FileID) (openfile.Record, error) {
	rec, err := p.table.Get(id)
	if err != nil {
		return openfile.Record{}, fmt.Errorf("(fs-record) %w", err)
	}

	return rec, nil
}

// OpenFiles returns the identifiers of all files open in the [Process].
func (p *Process) OpenFiles() []schema.FileID {
	return p.table.IDs()
}

// CloseAll closes every open of every file open in the [Process] and
// returns the number of closes done.
func (p *Process) CloseAll() int {
	n := 0
	for _, id := range p.OpenFiles() {
		for p.Close(id) == nil {
			n++
		}
	}

	return n
}
