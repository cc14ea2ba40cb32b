package validation

import (
	"errors"
	"fmt"

	"github.com/Mkayuni/Simple-File-System/internal/schema"
)

// validateEntries checks every entry on its own and against all others. It
// returns the owning entry name of every block found.
func validateEntries(s Snapshot) (map[uint64]string, error) {
	var errs []error

	owners := make(map[uint64]string)
	names := make(map[string]struct{}, len(s.Entries))
	slots := make(map[uint32]string, len(s.Entries))

	for _, e := range s.Entries {
		if _, dup := names[e.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateName, e.Name))
		}
		names[e.Name] = struct{}{}

		if other, dup := slots[e.ID.Slot]; dup {
			errs = append(errs, fmt.Errorf("%w: %d (%s, %s)", ErrSlotMismatch, e.ID.Slot, other, e.Name))
		}
		slots[e.ID.Slot] = e.Name

		if err := validateEntry(s, e); err != nil {
			errs = append(errs, err)
		}

		for _, blk := range e.Blocks {
			if other, dup := owners[blk]; dup {
				errs = append(errs, fmt.Errorf("%w: %d (%s, %s)", ErrBlockOverlap, blk, other, e.Name))

				continue
			}
			owners[blk] = e.Name
		}
	}

	return owners, errors.Join(errs...)
}

func validateEntry(s Snapshot, e schema.Entry) error {
	var errs []error

	if s.BlockSize > 0 {
		needed := (e.Size + s.BlockSize - 1) / s.BlockSize

		if e.BlockCount() != needed {
			errs = append(errs, fmt.Errorf("%w: %s owns %d, needs %d", ErrBlockCountMismatch, e.Name, e.BlockCount(), needed))
		}
	}

	switch {
	case len(e.Blocks) == 0 && e.StartBlock != 0:
		errs = append(errs, fmt.Errorf("%w: %s starts at %d without blocks", ErrStartBlockMismatch, e.Name, e.StartBlock))
	case len(e.Blocks) > 0 && e.StartBlock != e.Blocks[0]:
		errs = append(errs, fmt.Errorf("%w: %s starts at %d, first block %d", ErrStartBlockMismatch, e.Name, e.StartBlock, e.Blocks[0]))
	}

	for _, blk := range e.Blocks {
		if blk >= uint64(len(s.Used)) || !s.Used[blk] {
			errs = append(errs, fmt.Errorf("%w: %s owns %d", ErrBlockNotMarked, e.Name, blk))
		}
	}

	return errors.Join(errs...)
}
