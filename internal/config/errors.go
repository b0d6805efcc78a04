package config

import "errors"

var (
	// ErrUnknownSetting indicates a Set path that names no setting.
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrInvalidValue indicates a value of the wrong type for a setting.
	ErrInvalidValue = errors.New("invalid setting value")
)
