// Package types contains the JSON shapes returned by the API.
package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/glicko/pkg/glicko2"
)

// Player is a competitor's current rating as served to clients.
type Player struct {
	ID          uuid.UUID `json:"id"`
	Rating      float64   `json:"rating"`
	Deviation   float64   `json:"deviation"`
	Volatility  float64   `json:"volatility"`
	ResultCount int       `json:"result_count"`
	Tracked     bool      `json:"tracked"`
	Pending     int       `json:"pending_results"`
}

// NewPlayer builds a Player from a rating snapshot.
func NewPlayer(s glicko2.Snapshot, tracked bool, pending int) Player {
	return Player{
		ID:          s.ID,
		Rating:      s.Rating,
		Deviation:   s.Deviation,
		Volatility:  s.Volatility,
		ResultCount: s.ResultCount,
		Tracked:     tracked,
		Pending:     pending,
	}
}

// PeriodSummary describes one closed rating period.
type PeriodSummary struct {
	Period     int       `json:"period"`
	Active     int       `json:"active"`
	Idle       int       `json:"idle"`
	Results    int       `json:"results"`
	Persisted  int       `json:"persisted"`
	DurationMs float64   `json:"duration_ms"`
	ClosedAt   time.Time `json:"closed_at"`
}
