package repository

import "time"

const (
	defaultBucket      = "ratings"
	defaultOpenTimeout = time.Second
)

// Option applies a configuration option to the BoltStore.
type Option func(*BoltStore)

// WithBucket sets the bucket ratings are kept in.
func WithBucket(name string) Option {
	return func(s *BoltStore) {
		if name != "" {
			s.bucket = []byte(name)
		}
	}
}

// WithOpenTimeout bounds how long Open waits for the file lock.
func WithOpenTimeout(timeout time.Duration) Option {
	return func(s *BoltStore) {
		if timeout > 0 {
			s.openTimeout = timeout
		}
	}
}
