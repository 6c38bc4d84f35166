package bigcache

import (
	"context"
	"errors"
	"strings"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/nscache/store"
)

// entries are immortal at this layer; the cache tracks expiry itself.
const defaultLifeWindow = 10 * 365 * 24 * time.Hour

type Store struct {
	c *bc.BigCache
}

var _ store.Store = (*Store)(nil)

type Config struct {
	LifeWindow         time.Duration // 0 => effectively forever
	CleanWindow        time.Duration
	Shards             int
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Store, error) {
	life := cfg.LifeWindow
	if life <= 0 {
		life = defaultLifeWindow
	}
	conf := bc.DefaultConfig(life)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := s.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	return s.c.Set(key, value)
}

func (s *Store) Remove(_ context.Context, key string) error {
	err := s.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	return err
}

// Keys walks every shard through bigcache's iterator.
func (s *Store) Keys(_ context.Context, prefix string) ([]string, error) {
	var out []string
	it := s.c.Iterator()
	for it.SetNext() {
		e, err := it.Value()
		if err != nil {
			// entry was overwritten or evicted mid-iteration
			if errors.Is(err, bc.ErrInvalidIteratorState) || errors.Is(err, bc.ErrCannotRetrieveEntry) {
				continue
			}
			return nil, err
		}
		if k := e.Key(); strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *Store) Close(_ context.Context) error {
	return s.c.Close()
}
