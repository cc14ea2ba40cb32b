package configuration

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Mkayuni/Simple-File-System/internal/allocation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockConfigProvider is a [genericConfigProvider] driven by [mock.Mock].
type mockConfigProvider struct {
	mock.Mock
}

func (m *mockConfigProvider) Read(filenames ...string) (map[string]string, error) {
	args := m.Called(filenames)

	envMap, _ := args.Get(0).(map[string]string)

	return envMap, args.Error(1)
}

// TestLoad_Defaults tests that a missing file results in the defaults.
func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	provider := &mockConfigProvider{}
	provider.On("Read", []string{"/nonexistent/sfs.env"}).Return(nil, fs.ErrNotExist)

	cfg, err := NewHandler(provider).Load("/nonexistent/sfs.env")
	require.NoError(t, err)

	assert.Equal(t, DefaultVolumeConfig(), cfg.Volume)
	assert.Equal(t, uint64(512), cfg.Volume.TotalBlocks)
	assert.Equal(t, uint64(2048), cfg.Volume.BlockSize)
	assert.Equal(t, 512, cfg.Volume.Slots)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Positive(t, cfg.Workers)

	provider.AssertExpectations(t)
}

// TestLoad_Success tests that all settings are applied.
func TestLoad_Success(t *testing.T) {
	t.Parallel()

	envMap := map[string]string{
		SettingTotalBlocks:    "1024",
		SettingBlockSize:      "4096",
		SettingMaxNameLength:  "20",
		SettingAllocPolicy:    allocation.PolicyBestFit,
		SettingDenyDeleteOpen: "yes",
		SettingWorkers:        "3",
		SettingLogLevel:       "debug",
	}

	provider := &mockConfigProvider{}
	provider.On("Read", []string{"sfs.env"}).Return(envMap, nil)

	cfg, err := NewHandler(provider).Load("sfs.env")
	require.NoError(t, err)

	assert.Equal(t, VolumeConfig{
		TotalBlocks:    1024,
		BlockSize:      4096,
		Slots:          1024,
		MaxNameLength:  20,
		AllocPolicy:    allocation.PolicyBestFit,
		DenyDeleteOpen: true,
	}, cfg.Volume)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)

	provider.AssertExpectations(t)
}

// TestLoad_Fail tests that invalid settings and unreadable files are errors.
func TestLoad_Fail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		envMap map[string]string
	}{
		{"Fail_Blocks", map[string]string{SettingTotalBlocks: "many"}},
		{"Fail_OneBlock", map[string]string{SettingTotalBlocks: "1"}},
		{"Fail_BlockSize", map[string]string{SettingBlockSize: "0"}},
		{"Fail_Slots", map[string]string{SettingDirectorySlots: "-4"}},
		{"Fail_Policy", map[string]string{SettingAllocPolicy: "roundrobin"}},
		{"Fail_Deny", map[string]string{SettingDenyDeleteOpen: "maybe"}},
		{"Fail_Workers", map[string]string{SettingWorkers: "0"}},
		{"Fail_LogLevel", map[string]string{SettingLogLevel: "loud"}},
	}

	for _, tt := range tests {
		provider := &mockConfigProvider{}
		provider.On("Read", []string{"sfs.env"}).Return(tt.envMap, nil)

		_, err := NewHandler(provider).Load("sfs.env")
		require.ErrorIs(t, err, ErrInvalidSetting, tt.name)
	}

	broken := errors.New("permission denied")
	provider := &mockConfigProvider{}
	provider.On("Read", []string{"sfs.env"}).Return(nil, broken)

	_, err := NewHandler(provider).Load("sfs.env")
	require.ErrorIs(t, err, broken)
}

// TestMapKeyTo tests the typed map accessors.
func TestMapKeyTo(t *testing.T) {
	t.Parallel()

	c := NewHandler(nil)
	envMap := map[string]string{
		"int":  " 42 ",
		"neg":  "-3",
		"bad":  "x",
		"bool": "off",
		"true": "TRUE",
	}

	assert.Equal(t, "42", c.MapKeyToString(envMap, "int"))
	assert.Empty(t, c.MapKeyToString(envMap, "missing"))
	assert.Equal(t, 42, c.MapKeyToInt(envMap, "int"))
	assert.Equal(t, -1, c.MapKeyToInt(envMap, "bad"))
	assert.Equal(t, uint64(42), c.MapKeyToUInt64(envMap, "int"))
	assert.Equal(t, uint64(0), c.MapKeyToUInt64(envMap, "neg"))

	v, ok := c.MapKeyToBool(envMap, "bool")
	assert.True(t, ok)
	assert.False(t, v)

	v, ok = c.MapKeyToBool(envMap, "true")
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = c.MapKeyToBool(envMap, "bad")
	assert.False(t, ok)
}

// TestGodotenvProvider tests reading an actual env file.
func TestGodotenvProvider(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sfs.env")
	content := "# volume\nSFS_TOTAL_BLOCKS=64\nSFS_ALLOC_POLICY=firstfree\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewHandler(&GodotenvProvider{}).Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(64), cfg.Volume.TotalBlocks)
	assert.Equal(t, 64, cfg.Volume.Slots)
	assert.Equal(t, allocation.PolicyFirstFree, cfg.Volume.AllocPolicy)

	_, err = (&GodotenvProvider{}).Read(filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}
