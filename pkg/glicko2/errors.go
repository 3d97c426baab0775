package glicko2

import (
	"errors"
	"fmt"
)

// Sentinel kinds for rating errors. These allow errors.Is/As from callers.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidConfig   = errors.New("invalid calculator config")
	ErrNoConvergence   = errors.New("volatility solver did not converge")
	ErrNonFinite       = errors.New("non-finite value in rating computation")
)

// Argument errors refine ErrInvalidArgument.
var (
	ErrSelfPairing    = fmt.Errorf("%w: competitor paired with itself", ErrInvalidArgument)
	ErrNotParticipant = fmt.Errorf("%w: competitor did not participate", ErrInvalidArgument)
)
