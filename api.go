package nscache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/nscache/codec"
	"github.com/unkn0wn-root/nscache/keyhash"
	"github.com/unkn0wn-root/nscache/store"
)

// NoExpiration stores an immortal entry. Any ttl <= 0 has the same effect.
const NoExpiration time.Duration = 0

// Loader fetches a value from the authoritative source on a cache miss.
type Loader[V any] func(ctx context.Context) (V, error)

// Cache is a namespaced key/value cache with per-entry optional expiry and
// bulk invalidation by logical-key prefix. V is the caller's payload type.
type Cache[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// Get returns ok=false when the key is absent, expired or corrupt.
	// Expired and corrupt entries are deleted as a side effect. A live entry
	// whose data does not decode into V is kept and reported as a decode fault.
	Get(ctx context.Context, key string) (v V, ok bool, err error)

	// Save sweeps expired entries across the namespace, then stores data under
	// key, overwriting any previous entry. A nil data is a no-op and leaves an
	// existing entry untouched. ttl <= 0 stores an immortal entry.
	Save(ctx context.Context, key string, data V, ttl time.Duration) error

	// Remove deletes the entry for key; no-op if absent.
	Remove(ctx context.Context, key string) error

	// RemoveAll deletes every entry whose logical key shares prefixKey's
	// prefix (the part before the first '/'). "" clears the namespace.
	RemoveAll(ctx context.Context, prefixKey string) error

	// Sweep deletes every expired or corrupt entry in the namespace.
	Sweep(ctx context.Context) (removed int, err error)

	// Fetch returns the cached value or, on a miss or fault, calls load and
	// caches its result. Concurrent fetches of a key share one load.
	Fetch(ctx context.Context, key string, ttl time.Duration, load Loader[V]) (V, error)
}

// Options tune the cache. Only Store is required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Store store.Store

	Namespace string       // fixed namespace marker; "" => "cache". Must not contain ':'
	Codec     codec.Codec  // nil => codec.JSON{} (browser-compatible wire format)
	Hash      keyhash.Func // nil => keyhash.XXHash
	Logger    Logger       // nil => NopLogger
	Hooks     Hooks        // nil => NopHooks
	Now       func() time.Time
	Disabled  bool // default false (enabled)
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
