package configuration

import "errors"

var (
	// ErrInvalidSetting is returned when a configured value cannot be parsed
	// or is outside of its allowed range.
	ErrInvalidSetting = errors.New("invalid configuration setting")
)
