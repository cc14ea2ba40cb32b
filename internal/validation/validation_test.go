package validation

import (
	"testing"

	"github.com/Mkayuni/Simple-File-System/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeValid returns a consistent [Snapshot] of an 8-block volume holding two
// files.
func makeValid() Snapshot {
	return Snapshot{
		TotalBlocks: 8,
		BlockSize:   2048,
		FreeBlocks:  4,
		Used:        []bool{true, true, true, false, true, false, false, false},
		Entries: []schema.Entry{
			{Name: "a", ID: schema.FileID{Slot: 0, Gen: 1}, StartBlock: 1, Size: 4096, Blocks: []uint64{1, 2}},
			{Name: "b", ID: schema.FileID{Slot: 1, Gen: 2}, StartBlock: 4, Size: 17, Blocks: []uint64{4}},
			{Name: "empty", ID: schema.FileID{Slot: 2, Gen: 3}},
		},
	}
}

// TestValidateVolume tests the consistency check against single corruptions.
func TestValidateVolume(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		modify   func(s *Snapshot)
		expected []error
	}{
		{
			name:   "Success_Valid",
			modify: func(s *Snapshot) {},
		},
		{
			name: "Fail_ReservedFree",
			modify: func(s *Snapshot) {
				s.Used[0] = false
				s.FreeBlocks++
			},
			expected: []error{ErrReservedBlockFree, ErrAccountingMismatch},
		},
		{
			name: "Fail_FreeCount",
			modify: func(s *Snapshot) {
				s.FreeBlocks = 5
			},
			expected: []error{ErrFreeCountMismatch, ErrAccountingMismatch},
		},
		{
			name: "Fail_Leak",
			modify: func(s *Snapshot) {
				s.Used[7] = true
				s.FreeBlocks--
			},
			expected: []error{ErrLeakedBlock, ErrAccountingMismatch},
		},
		{
			name: "Fail_Overlap",
			modify: func(s *Snapshot) {
				s.Entries[1].Blocks = []uint64{2}
				s.Entries[1].StartBlock = 2
				s.Used[4] = false
				s.FreeBlocks++
			},
			expected: []error{ErrBlockOverlap},
		},
		{
			name: "Fail_NotMarked",
			modify: func(s *Snapshot) {
				s.Used[4] = false
				s.FreeBlocks++
			},
			expected: []error{ErrBlockNotMarked, ErrAccountingMismatch},
		},
		{
			name: "Fail_BlockCount",
			modify: func(s *Snapshot) {
				s.Entries[1].Size = 4097
			},
			expected: []error{ErrBlockCountMismatch},
		},
		{
			name: "Fail_StartBlock",
			modify: func(s *Snapshot) {
				s.Entries[0].StartBlock = 2
				s.Entries[2].StartBlock = 6
			},
			expected: []error{ErrStartBlockMismatch},
		},
		{
			name: "Fail_DuplicateName",
			modify: func(s *Snapshot) {
				s.Entries[2].Name = "a"
			},
			expected: []error{ErrDuplicateName},
		},
		{
			name: "Fail_DuplicateSlot",
			modify: func(s *Snapshot) {
				s.Entries[2].ID.Slot = 0
			},
			expected: []error{ErrSlotMismatch},
		},
		{
			name: "Fail_ShortBitmap",
			modify: func(s *Snapshot) {
				s.Used = s.Used[:4]
			},
			expected: []error{ErrFreeCountMismatch, ErrBlockNotMarked},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := makeValid()
			tt.modify(&s)

			err := ValidateVolume(s)
			if len(tt.expected) == 0 {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			for _, expected := range tt.expected {
				assert.ErrorIs(t, err, expected)
			}
		})
	}
}
