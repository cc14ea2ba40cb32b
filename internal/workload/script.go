// Package workload drives a volume with scripted, concurrently running
// clients. Each [Script] is run as its own process of the volume, the scripts
// of a [Phase] run concurrently and the phases run one after the other.
package workload

import (
	"fmt"
)

// Op is an operation a [Step] performs.
type Op string

const (
	// OpCreate creates and opens a file of the given size.
	OpCreate Op = "create"

	// OpOpen opens an existing file.
	OpOpen Op = "open"

	// OpRead reads a file opened by the script.
	OpRead Op = "read"

	// OpWrite writes the data to a file opened by the script.
	OpWrite Op = "write"

	// OpClose closes a file opened by the script.
	OpClose Op = "close"

	// OpDelete deletes a file.
	OpDelete Op = "delete"

	// OpList lists all files of the volume.
	OpList Op = "list"
)

// Step is a single operation of a [Script].
type Step struct {
	Op   Op
	Name string
	Size uint64
	Data []byte
}

func (s Step) String() string {
	if s.Op == OpList {
		return string(s.Op)
	}

	return fmt.Sprintf("%s(%s)", s.Op, s.Name)
}

// Script is a named sequence of steps run by one client. A failing step
// stops the script, the remaining steps are not run.
type Script struct {
	Name  string
	Steps []Step
}

// Phase is a named set of scripts running concurrently.
type Phase struct {
	Name    string
	Scripts []*Script
}

// DefaultPhases returns the demonstration workload: one client writes two
// files, two clients read one file each at the same time, then the files are
// listed, deleted and listed again.
func DefaultPhases() []Phase {
	return []Phase{
		{
			Name: "write",
			Scripts: []*Script{
				{
					Name: "p1",
					Steps: []Step{
						{Op: OpCreate, Name: "file1", Size: 17}, //nolint:mnd
						{Op: OpWrite, Name: "file1", Data: []byte("Hello from file1!")},
						{Op: OpClose, Name: "file1"},
						{Op: OpCreate, Name: "file2", Size: 17}, //nolint:mnd
						{Op: OpWrite, Name: "file2", Data: []byte("Hello from file2!")},
						{Op: OpClose, Name: "file2"},
					},
				},
			},
		},
		{
			Name: "read",
			Scripts: []*Script{
				{
					Name: "p2",
					Steps: []Step{
						{Op: OpOpen, Name: "file1"},
						{Op: OpRead, Name: "file1"},
						{Op: OpClose, Name: "file1"},
					},
				},
				{
					Name: "p3",
					Steps: []Step{
						{Op: OpOpen, Name: "file2"},
						{Op: OpRead, Name: "file2"},
						{Op: OpClose, Name: "file2"},
					},
				},
			},
		},
		{
			Name: "cleanup",
			Scripts: []*Script{
				{
					Name: "main",
					Steps: []Step{
						{Op: OpList},
						{Op: OpDelete, Name: "file1"},
						{Op: OpDelete, Name: "file2"},
						{Op: OpList},
					},
				},
			},
		},
	}
}
