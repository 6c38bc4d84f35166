package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/nscache/store"
)

var ErrNilClient = errors.New("redis store: nil client")

const defaultScanCount = 256

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
	scanCount   int64
}

var _ store.Store = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool  // set true only if this store exclusively owns the client
	ScanCount   int64 // SCAN COUNT hint; 0 => 256
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	count := cfg.ScanCount
	if count <= 0 {
		count = defaultScanCount
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient, scanCount: count}, nil
}

func (s *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set writes without a server-side TTL; expiry is tracked in the entry itself
// so the sweep and lazy reads stay the only deletion paths.
func (s *Redis) Set(ctx context.Context, key string, value []byte) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *Redis) Remove(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// Keys walks the keyspace with SCAN. On a cluster client every master is
// scanned.
func (s *Redis) Keys(ctx context.Context, prefix string) ([]string, error) {
	match := escapeGlob(prefix) + "*"

	if cc, ok := s.rdb.(*goredis.ClusterClient); ok {
		var (
			mu  sync.Mutex
			out []string
		)
		err := cc.ForEachMaster(ctx, func(ctx context.Context, node *goredis.Client) error {
			ks, err := scan(ctx, node, match, s.scanCount)
			if err != nil {
				return err
			}
			mu.Lock()
			out = append(out, ks...)
			mu.Unlock()
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("redis scan %q: %w", prefix, err)
		}
		return out, nil
	}

	out, err := scan(ctx, s.rdb, match, s.scanCount)
	if err != nil {
		return nil, fmt.Errorf("redis scan %q: %w", prefix, err)
	}
	return out, nil
}

func scan(ctx context.Context, c goredis.Cmdable, match string, count int64) ([]string, error) {
	var out []string
	it := c.Scan(ctx, 0, match, count).Iterator()
	for it.Next(ctx) {
		out = append(out, it.Val())
	}
	return out, it.Err()
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Redis) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

// escapeGlob quotes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	if !strings.ContainsAny(s, `*?[]\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
