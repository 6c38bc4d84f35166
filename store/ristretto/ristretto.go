package ristretto

import (
	"context"
	"errors"
	"strings"
	"sync"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/nscache/store"
)

// Store keeps values in ristretto and maintains a side index of live keys,
// because ristretto hashes keys and cannot enumerate them. The index is
// trimmed from ristretto's evict/reject callbacks.
//
// Ristretto may refuse writes under pressure (admission policy, full set
// buffer). A refused Set is not an error: the entry simply is not cached.
type Store struct {
	c *rc.Cache

	mu    sync.Mutex
	index map[string]struct{}
}

var _ store.Store = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64 // cost is the encoded entry size in bytes
	BufferItems int64
	Metrics     bool
}

type item struct {
	key   string
	value []byte
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	s := &Store{index: make(map[string]struct{})}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
		OnEvict:     s.drop,
		OnReject:    s.drop,
	})
	if err != nil {
		return nil, err
	}
	s.c = c
	return s, nil
}

func (s *Store) drop(it *rc.Item) {
	v, ok := it.Value.(item)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.index, v.key)
	s.mu.Unlock()
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	it, ok := v.(item)
	if !ok || it.key != key {
		// self-heal: unexpected shape or hash conflict
		s.c.Del(key)
		return nil, false, nil
	}
	return append([]byte(nil), it.value...), true, nil
}

// Set waits for ristretto's buffers to drain so a following Get observes the
// write.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	v := item{key: key, value: append([]byte(nil), value...)}
	s.mu.Lock()
	s.index[key] = struct{}{}
	s.mu.Unlock()
	if !s.c.Set(key, v, int64(len(key)+len(value))) {
		// dropped before admission; keep an index entry only if an older
		// value is still resident
		if _, ok := s.c.Get(key); !ok {
			s.mu.Lock()
			delete(s.index, key)
			s.mu.Unlock()
		}
		return nil
	}
	s.c.Wait()
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.c.Del(key)
	s.c.Wait()
	s.mu.Lock()
	delete(s.index, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.index))
	for k := range s.index {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *Store) Close(_ context.Context) error {
	s.c.Wait()
	s.c.Close()
	return nil
}

// Metrics exposes ristretto's counters (nil unless Config.Metrics is set).
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }
