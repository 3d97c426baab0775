package config

import (
	"errors"
)

// Error kinds returned by Load and Validate.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
	ErrConfigFile    = errors.New("config file unreadable")
)
