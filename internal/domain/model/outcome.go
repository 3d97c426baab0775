// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidOutcome marks an outcome that cannot be recorded.
var ErrInvalidOutcome = errors.New("invalid outcome")

// Outcome represents one game result submitted by clients.
// Fields mirror the POST /results body.
type Outcome struct {
	ResultID   string    // unique id for idempotency
	WinnerID   uuid.UUID // first slot; either side for a draw
	LoserID    uuid.UUID
	Draw       bool
	ReceivedAt time.Time
}

// Validate checks the fields that do not need the roster.
func (o Outcome) Validate() error {
	switch {
	case o.ResultID == "":
		return fmt.Errorf("%w: result_id is required", ErrInvalidOutcome)
	case o.WinnerID == uuid.Nil || o.LoserID == uuid.Nil:
		return fmt.Errorf("%w: both player ids are required", ErrInvalidOutcome)
	}
	return nil
}

// Kind is "draw" or "win", matching the metric labels.
func (o Outcome) Kind() string {
	if o.Draw {
		return "draw"
	}
	return "win"
}

// Registration describes a new player. Zero ratings take the system
// defaults and a nil ID is generated.
type Registration struct {
	ID         uuid.UUID
	Rating     float64
	Deviation  float64
	Volatility float64
}
