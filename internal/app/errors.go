package service

import "errors"

// Error kinds returned by Service operations.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrStopped       = errors.New("service stopped")
	ErrUnknownPlayer = errors.New("unknown player")
	ErrPlayerExists  = errors.New("player already exists")
	ErrPersist       = errors.New("persist ratings failed")
)
