package configuration

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"runtime"

	"github.com/Mkayuni/Simple-File-System/internal/allocation"
)

const (
	// DefaultTotalBlocks is the default number of blocks of a volume.
	DefaultTotalBlocks = 512

	// DefaultBlockSize is the default size of a block in bytes.
	DefaultBlockSize = 2048

	// DefaultMaxNameLength is the default maximum length of a file name.
	DefaultMaxNameLength = 49

	// DefaultAllocPolicy is the default block allocation policy.
	DefaultAllocPolicy = allocation.PolicyContiguous

	// SettingTotalBlocks is the configuration key for the number of blocks.
	SettingTotalBlocks = "SFS_TOTAL_BLOCKS"

	// SettingBlockSize is the configuration key for the block size in bytes.
	SettingBlockSize = "SFS_BLOCK_SIZE"

	// SettingDirectorySlots is the configuration key for the directory
	// capacity, it defaults to the number of blocks.
	SettingDirectorySlots = "SFS_DIRECTORY_SLOTS"

	// SettingMaxNameLength is the configuration key for the maximum length of
	// a file name in bytes.
	SettingMaxNameLength = "SFS_MAX_NAME_LENGTH"

	// SettingAllocPolicy is the configuration key for the allocation policy.
	SettingAllocPolicy = "SFS_ALLOC_POLICY"

	// SettingDenyDeleteOpen is the configuration key for refusing to delete
	// files with open handles.
	SettingDenyDeleteOpen = "SFS_DENY_DELETE_OPEN"

	// SettingWorkers is the configuration key for the number of concurrently
	// running clients.
	SettingWorkers = "SFS_WORKERS"

	// SettingLogLevel is the configuration key for the log level.
	SettingLogLevel = "SFS_LOG_LEVEL"
)

// VolumeConfig holds the geometry and policies of a volume.
type VolumeConfig struct {
	TotalBlocks    uint64
	BlockSize      uint64
	Slots          int
	MaxNameLength  int
	AllocPolicy    string
	DenyDeleteOpen bool
}

// AppConfiguration is the principal structure holding the application
// configuration.
type AppConfiguration struct {
	Volume   VolumeConfig
	Workers  int
	LogLevel slog.Level
}

// DefaultVolumeConfig returns the default [VolumeConfig].
func DefaultVolumeConfig() VolumeConfig {
	return VolumeConfig{
		TotalBlocks:   DefaultTotalBlocks,
		BlockSize:     DefaultBlockSize,
		Slots:         DefaultTotalBlocks,
		MaxNameLength: DefaultMaxNameLength,
		AllocPolicy:   DefaultAllocPolicy,
	}
}

// NewAppConfiguration returns a pointer to a new [AppConfiguration] holding
// the defaults.
func NewAppConfiguration() *AppConfiguration {
	return &AppConfiguration{
		Volume:   DefaultVolumeConfig(),
		Workers:  runtime.NumCPU(),
		LogLevel: slog.LevelInfo,
	}
}

// Validate checks the [VolumeConfig] for values a volume cannot be built with.
func (v VolumeConfig) Validate() error {
	if v.TotalBlocks < 2 { //nolint:mnd
		return fmt.Errorf("(config) %w: %s=%d, at least 2 needed", ErrInvalidSetting, SettingTotalBlocks, v.TotalBlocks)
	}

	if v.BlockSize == 0 {
		return fmt.Errorf("(config) %w: %s=0", ErrInvalidSetting, SettingBlockSize)
	}

	if v.Slots <= 0 {
		return fmt.Errorf("(config) %w: %s=%d", ErrInvalidSetting, SettingDirectorySlots, v.Slots)
	}

	if v.MaxNameLength <= 0 {
		return fmt.Errorf("(config) %w: %s=%d", ErrInvalidSetting, SettingMaxNameLength, v.MaxNameLength)
	}

	if err := allocation.ValidatePolicy(v.AllocPolicy); err != nil {
		return fmt.Errorf("(config) %w: %w", ErrInvalidSetting, err)
	}

	return nil
}

// Load reads the given configuration files into a new [AppConfiguration].
// Settings not present keep their defaults and missing files are treated as
// empty, while unreadable files and invalid values are returned as errors.
func (c *Handler) Load(filenames ...string) (*AppConfiguration, error) {
	cfg := NewAppConfiguration()

	envMap, err := c.ReadGeneric(filenames...)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("(config-load) %w", err)
		}

		slog.Info("No configuration file found, using defaults.",
			"files", filenames,
		)
		envMap = map[string]string{}
	}

	if err := c.applyVolume(envMap, &cfg.Volume); err != nil {
		return nil, fmt.Errorf("(config-load) %w", err)
	}

	if c.MapKeyToString(envMap, SettingWorkers) != "" {
		workers := c.MapKeyToInt(envMap, SettingWorkers)
		if workers <= 0 {
			return nil, fmt.Errorf("(config-load) %w: %s", ErrInvalidSetting, SettingWorkers)
		}
		cfg.Workers = workers
	}

	if level := c.MapKeyToString(envMap, SettingLogLevel); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("(config-load) %w: %s: %w", ErrInvalidSetting, SettingLogLevel, err)
		}
	}

	if err := cfg.Volume.Validate(); err != nil {
		return nil, fmt.Errorf("(config-load) %w", err)
	}

	return cfg, nil
}

func (c *Handler) applyVolume(envMap map[string]string, v *VolumeConfig) error {
	slotsGiven := false

	for _, key := range []string{SettingTotalBlocks, SettingBlockSize} {
		if c.MapKeyToString(envMap, key) == "" {
			continue
		}

		value := c.MapKeyToUInt64(envMap, key)
		if value == 0 {
			return fmt.Errorf("%w: %s", ErrInvalidSetting, key)
		}

		switch key {
		case SettingTotalBlocks:
			v.TotalBlocks = value
		case SettingBlockSize:
			v.BlockSize = value
		}
	}

	for _, key := range []string{SettingDirectorySlots, SettingMaxNameLength} {
		if c.MapKeyToString(envMap, key) == "" {
			continue
		}

		value := c.MapKeyToInt(envMap, key)
		if value <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidSetting, key)
		}

		switch key {
		case SettingDirectorySlots:
			v.Slots = value
			slotsGiven = true
		case SettingMaxNameLength:
			v.MaxNameLength = value
		}
	}

	if !slotsGiven {
		v.Slots = int(v.TotalBlocks) //nolint:gosec
	}

	if policy := c.MapKeyToString(envMap, SettingAllocPolicy); policy != "" {
		v.AllocPolicy = policy
	}

	if c.MapKeyToString(envMap, SettingDenyDeleteOpen) != "" {
		deny, ok := c.MapKeyToBool(envMap, SettingDenyDeleteOpen)
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidSetting, SettingDenyDeleteOpen)
		}
		v.DenyDeleteOpen = deny
	}

	return nil
}
