// Package repository persists rating state between periods.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/okian/glicko/pkg/glicko2"
)

// Store provides read/write access to persisted ratings.
type Store interface {
	// Get returns the stored snapshot for id, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (glicko2.Snapshot, error)

	// List returns every stored snapshot in unspecified order.
	List(ctx context.Context) ([]glicko2.Snapshot, error)

	// PutAll writes snapshots in one transaction: all of them or none.
	PutAll(ctx context.Context, snaps []glicko2.Snapshot) error

	// Count returns the number of stored players.
	Count(ctx context.Context) (int, error)

	Close() error
}
