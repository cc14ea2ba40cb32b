// Package openfile implements the open-file tables of a volume. The
// [SystemTable] holds one record per open file for the entire volume, a
// [ProcessTable] holds the records of a single client. Both are indexed by
// the directory slot of the file and are safe for concurrent use.
package openfile

import (
	"time"

	"github.com/Mkayuni/Simple-File-System/internal/schema"
)

// Record is the open-file record of a file, holding a snapshot of its
// directory entry at the time of opening. It is meant to be passed by value.
type Record struct {
	// ID is the [schema.FileID] that was opened.
	ID schema.FileID

	// FileSize is the size of the file when it was opened.
	FileSize uint64

	// FirstBlock is the first block of the file when it was opened.
	FirstBlock uint64

	// OpenCount is the number of outstanding opens of the file in the table.
	OpenCount int

	// OpenedAt is the time the record was first opened.
	OpenedAt time.Time

	// Writes is the number of writes acknowledged through the record.
	Writes int

	// LastDigest is the digest of the last write through the record.
	LastDigest string
}

func newRecord(e schema.Entry) *Record {
	return &Record{
		ID:         e.ID,
		FileSize:   e.Size,
		FirstBlock: e.StartBlock,
		OpenCount:  1,
		OpenedAt:   time.Now(),
	}
}

// refresh updates the snapshot of the record from the given entry.
func (r *Record) refresh(e schema.Entry) {
	r.FileSize = e.Size
	r.FirstBlock = e.StartBlock
}
