// Package store defines the persistent key/value capability the cache sits on.
//
// A Store is a flat string-keyed byte store that can enumerate its keys. It
// does not expire anything by itself; expiry lives in the cache's envelope.
//
// Implementations MUST be byte-for-byte transparent: Get returns exactly the
// bytes previously passed to Set. The keyspace "<namespace>:" is owned by the
// cache bound to that namespace. Foreign writes under it may be treated as
// corruption and deleted, and are subject to prefix deletes and sweeps.
package store

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("store: closed")

// Store is the minimal capability the cache needs. Implementations must be
// safe for concurrent use.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, overwriting unconditionally.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys lists the currently stored keys starting with prefix ("" = all).
	// Order is unspecified. Callers tolerate keys that vanish before they
	// are read.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
