// Package validation checks a volume for consistency. It verifies the block
// accounting of the volume control block against the directory, in the
// manner of an offline filesystem check.
package validation

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Mkayuni/Simple-File-System/internal/allocation"
	"github.com/Mkayuni/Simple-File-System/internal/schema"
)

// Snapshot is a consistent copy of the state of a volume.
type Snapshot struct {
	TotalBlocks uint64
	BlockSize   uint64
	FreeBlocks  uint64
	Used        []bool
	Entries     []schema.Entry
}

// ValidateVolume returns an error joining every invariant violation found in
// the [Snapshot], or nil for a consistent volume.
func ValidateVolume(s Snapshot) error {
	var errs []error

	if err := validateBitmap(s); err != nil {
		errs = append(errs, err)
	}

	owners, err := validateEntries(s)
	if err != nil {
		errs = append(errs, err)
	}

	if err := validateOwnership(s, owners); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		slog.Warn("Volume failed consistency check",
			"violations", len(errs),
			"err", err,
		)

		return fmt.Errorf("(validation) %w", err)
	}

	return nil
}

func validateBitmap(s Snapshot) error {
	if uint64(len(s.Used)) != s.TotalBlocks || len(s.Used) == 0 {
		return fmt.Errorf("%w: bitmap holds %d of %d blocks", ErrFreeCountMismatch, len(s.Used), s.TotalBlocks)
	}

	var errs []error

	if !s.Used[allocation.ReservedBlock] {
		errs = append(errs, ErrReservedBlockFree)
	}

	var free uint64
	for _, used := range s.Used {
		if !used {
			free++
		}
	}

	if free != s.FreeBlocks {
		errs = append(errs, fmt.Errorf("%w: %d counted, %d recorded", ErrFreeCountMismatch, free, s.FreeBlocks))
	}

	return errors.Join(errs...)
}

// validateOwnership checks that every used block but the reserved one is
// owned, and that the accounting adds up.
func validateOwnership(s Snapshot, owners map[uint64]string) error {
	if uint64(len(s.Used)) != s.TotalBlocks || len(s.Used) == 0 {
		return nil
	}

	var errs []error

	for blk := allocation.ReservedBlock + 1; blk < s.TotalBlocks; blk++ {
		if _, owned := owners[blk]; s.Used[blk] && !owned {
			errs = append(errs, fmt.Errorf("%w: %d", ErrLeakedBlock, blk))
		}
	}

	if s.FreeBlocks+uint64(len(owners))+1 != s.TotalBlocks {
		errs = append(errs, fmt.Errorf("%w: %d free + %d owned + 1 reserved != %d total",
			ErrAccountingMismatch, s.FreeBlocks, len(owners), s.TotalBlocks))
	}

	return errors.Join(errs...)
}
