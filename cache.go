package nscache

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/nscache/codec"
	"github.com/unkn0wn-root/nscache/internal/keys"
	"github.com/unkn0wn-root/nscache/internal/wire"
	"github.com/unkn0wn-root/nscache/keyhash"
	"github.com/unkn0wn-root/nscache/store"
)

type cache[V any] struct {
	store store.Store
	codec codec.Codec
	keys  keys.Scheme
	log   Logger
	hooks Hooks
	now   func() time.Time

	enabled bool

	// serializes every operation on the namespace, sweep included
	mu sync.Mutex

	flight singleflight.Group
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("nscache: store is required")
	}
	ns := coalesce(opts.Namespace, defaultNamespace)
	if strings.Contains(ns, ":") {
		return nil, fmt.Errorf("nscache: namespace %q must not contain ':'", ns)
	}

	c := &cache[V]{
		store:   opts.Store,
		enabled: !opts.Disabled,
	}

	c.codec = coalesce[codec.Codec](opts.Codec, codec.JSON{})
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})

	hash := opts.Hash
	if hash == nil {
		hash = keyhash.XXHash
	}
	c.keys = keys.Scheme{Namespace: ns, Hash: hash}

	c.now = opts.Now
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Close(ctx context.Context) error {
	return c.store.Close(ctx)
}

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if !c.enabled {
		return zero, false, nil
	}
	k := c.keys.Storage(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok, err := c.store.Get(ctx, k)
	if err != nil {
		return zero, false, c.fault("get", k, err)
	}
	if !ok {
		c.hooks.Lookup(false)
		return zero, false, nil
	}
	h, err := wire.DecodeHeader(c.codec, raw)
	if err != nil {
		c.hooks.CorruptEntry(k)
		c.discard(ctx, k, "corrupt")
		c.hooks.Lookup(false)
		return zero, false, nil
	}
	if wire.Expired(h.TTL, c.now()) {
		c.hooks.ExpiredOnRead(k)
		c.discard(ctx, k, "expired")
		c.hooks.Lookup(false)
		return zero, false, nil
	}
	// a live entry written with another payload type is left in place
	e, err := wire.DecodeEntry[V](c.codec, raw)
	if err != nil {
		return zero, false, c.fault("decode", k, err)
	}
	c.hooks.Lookup(true)
	return e.Data, true, nil
}

func (c *cache[V]) Save(ctx context.Context, key string, data V, ttl time.Duration) error {
	if !c.enabled {
		return nil
	}
	k := c.keys.Storage(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.sweep(ctx); err != nil {
		return err
	}
	if isNil(data) {
		c.log.Debug("Save skipped (nil data)", Fields{"key": key})
		return nil
	}
	raw, err := wire.EncodeEntry(c.codec, data, wire.Deadline(c.now(), ttl))
	if err != nil {
		return c.fault("encode", k, err)
	}
	if err := c.store.Set(ctx, k, raw); err != nil {
		return c.fault("set", k, err)
	}
	return nil
}

func (c *cache[V]) Remove(ctx context.Context, key string) error {
	if !c.enabled {
		return nil
	}
	k := c.keys.Storage(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Remove(ctx, k); err != nil {
		return c.fault("remove", k, err)
	}
	return nil
}

func (c *cache[V]) RemoveAll(ctx context.Context, prefixKey string) error {
	if !c.enabled {
		return nil
	}
	prefix := c.keys.Bulk(prefixKey)

	c.mu.Lock()
	defer c.mu.Unlock()

	ks, err := c.store.Keys(ctx, prefix)
	if err != nil {
		return c.fault("keys", prefix, err)
	}
	removed := 0
	for _, k := range ks {
		if err := c.store.Remove(ctx, k); err != nil {
			c.hooks.PrefixRemoved(prefix, removed)
			return c.fault("remove", k, err)
		}
		removed++
	}
	c.hooks.PrefixRemoved(prefix, removed)
	c.log.Debug("removed entries by prefix", Fields{"prefix": prefix, "removed": removed})
	return nil
}

func (c *cache[V]) Sweep(ctx context.Context) (int, error) {
	if !c.enabled {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweep(ctx)
}

// sweep visits every key in the namespace, whatever its payload type, and
// deletes expired and undecodable entries. Caller holds c.mu.
func (c *cache[V]) sweep(ctx context.Context) (int, error) {
	root := c.keys.Root()
	ks, err := c.store.Keys(ctx, root)
	if err != nil {
		return 0, c.fault("keys", root, err)
	}

	now := c.now()
	removed := 0
	for _, k := range ks {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		raw, ok, err := c.store.Get(ctx, k)
		if err != nil {
			return removed, c.fault("get", k, err)
		}
		if !ok {
			continue // vanished since Keys
		}
		h, err := wire.DecodeHeader(c.codec, raw)
		switch {
		case err != nil:
			c.hooks.CorruptEntry(k)
		case wire.Expired(h.TTL, now):
		default:
			continue
		}
		if err := c.store.Remove(ctx, k); err != nil {
			return removed, c.fault("remove", k, err)
		}
		removed++
	}

	c.hooks.Swept(c.keys.Namespace, len(ks), removed)
	if removed > 0 {
		c.log.Debug("sweep removed stale entries", Fields{"ns": c.keys.Namespace, "scanned": len(ks), "removed": removed})
	}
	return removed, nil
}

func (c *cache[V]) Fetch(ctx context.Context, key string, ttl time.Duration, load Loader[V]) (V, error) {
	v, ok, err := c.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache fault, loading from source", Fields{"key": key, "err": err})
	} else if ok {
		return v, nil
	}

	res, err, _ := c.flight.Do(c.keys.Storage(key), func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Save(ctx, key, v, ttl); err != nil {
			// the loaded value is still good; only caching it failed
			c.log.Warn("Fetch could not cache loaded value", Fields{"key": key, "err": err})
		}
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	v, _ = res.(V)
	return v, nil
}

// discard is the best-effort delete used when a read finds a dead entry. The
// read itself still reports a miss.
func (c *cache[V]) discard(ctx context.Context, storageKey, reason string) {
	if err := c.store.Remove(ctx, storageKey); err != nil {
		c.hooks.StoreFault("remove", storageKey, err)
		c.log.Warn("could not delete dead entry", Fields{"key": storageKey, "reason": reason, "err": err})
	}
}

func (c *cache[V]) fault(op, storageKey string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	c.hooks.StoreFault(op, storageKey, err)
	c.log.Error("store fault", Fields{"op": op, "key": storageKey, "err": err})
	return &FaultError{Op: op, Key: storageKey, Err: err}
}

// isNil reports whether v holds no value: an untyped nil, or a nil pointer,
// map, slice, interface, channel or func.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}
