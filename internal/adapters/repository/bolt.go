package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"
	"github.com/okian/glicko/pkg/glicko2"
	"github.com/pkg/errors"
)

// BoltStore keeps one JSON snapshot per player id in a single bucket.
type BoltStore struct {
	db          *bolt.DB
	bucket      []byte
	openTimeout time.Duration
}

// OpenBoltStore opens (or creates) the database file at path.
func OpenBoltStore(path string, opts ...Option) (*BoltStore, error) {
	s := &BoltStore{
		bucket:      []byte(defaultBucket),
		openTimeout: defaultOpenTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: s.openTimeout})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return errors.Wrap(err, "unable to create bucket")
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func (s *BoltStore) Get(ctx context.Context, id uuid.UUID) (glicko2.Snapshot, error) {
	var snap glicko2.Snapshot
	if err := ctx.Err(); err != nil {
		return snap, err
	}
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get(id[:])
		if raw == nil {
			return ErrNotFound
		}
		return errors.Wrap(json.Unmarshal(raw, &snap), "unable to unmarshal rating")
	})
	return snap, s.translate(err)
}

func (s *BoltStore) List(ctx context.Context) ([]glicko2.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]glicko2.Snapshot, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return errors.Wrap(tx.Bucket(s.bucket).ForEach(func(_, v []byte) error {
			var snap glicko2.Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return errors.Wrap(err, "unable to unmarshal rating")
			}
			out = append(out, snap)
			return nil
		}), "unable to list ratings")
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return out, nil
}

func (s *BoltStore) PutAll(ctx context.Context, snaps []glicko2.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, snap := range snaps {
			data, err := json.Marshal(snap)
			if err != nil {
				return errors.Wrap(err, "unable to marshal rating into json")
			}
			if err := b.Put(snap.ID[:], data); err != nil {
				return errors.Wrapf(err, "unable to put %s", snap.ID)
			}
		}
		return nil
	})
	return s.translate(err)
}

func (s *BoltStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return n, s.translate(err)
}

func (s *BoltStore) Close() error {
	return errors.Wrap(s.db.Close(), "unable to close database")
}

func (s *BoltStore) translate(err error) error {
	if errors.Cause(err) == bolt.ErrDatabaseNotOpen {
		return ErrClosed
	}
	return err
}
