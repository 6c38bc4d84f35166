// Package storetest holds the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/nscache/store"
)

// Options relaxes checks for backends with weaker guarantees.
type Options struct {
	// Settle is called after writes for stores that apply them asynchronously.
	Settle func()
}

// Run exercises s against the Store contract. newStore must return an empty
// store; Run closes it.
func Run(t *testing.T, newStore func(t *testing.T) store.Store, opts Options) {
	t.Helper()
	settle := opts.Settle
	if settle == nil {
		settle = func() {}
	}

	t.Run("GetMiss", func(t *testing.T) {
		s := open(t, newStore)
		v, ok, err := s.Get(context.Background(), "cache:none:1")
		require.NoError(t, err)
		require.False(t, ok)
		require.Nil(t, v)
	})

	t.Run("SetGetOverwrite", func(t *testing.T) {
		ctx := context.Background()
		s := open(t, newStore)

		require.NoError(t, s.Set(ctx, "cache:items:1", []byte(`{"data":1,"ttl":null}`)))
		settle()
		v, ok, err := s.Get(ctx, "cache:items:1")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, `{"data":1,"ttl":null}`, string(v))

		require.NoError(t, s.Set(ctx, "cache:items:1", []byte(`{"data":2,"ttl":null}`)))
		settle()
		v, ok, err = s.Get(ctx, "cache:items:1")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, `{"data":2,"ttl":null}`, string(v))

		keys, err := s.Keys(ctx, "cache:")
		require.NoError(t, err)
		require.Equal(t, []string{"cache:items:1"}, keys)
	})

	t.Run("RemoveIsIdempotent", func(t *testing.T) {
		ctx := context.Background()
		s := open(t, newStore)

		require.NoError(t, s.Set(ctx, "cache:items:1", []byte("x")))
		settle()
		require.NoError(t, s.Remove(ctx, "cache:items:1"))
		require.NoError(t, s.Remove(ctx, "cache:items:1"))
		require.NoError(t, s.Remove(ctx, "cache:never:set"))
		settle()

		_, ok, err := s.Get(ctx, "cache:items:1")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("KeysByPrefix", func(t *testing.T) {
		ctx := context.Background()
		s := open(t, newStore)

		for _, k := range []string{
			"cache:items:1",
			"cache:items:2",
			"cache:itemsets:3",
			"cache:users:9",
			"other:items:1",
			"cache*:glob:1",
		} {
			require.NoError(t, s.Set(ctx, k, []byte(k)))
		}
		settle()

		require.Equal(t, []string{"cache:items:1", "cache:items:2"}, keys(t, s, "cache:items:"))
		require.Equal(t, []string{"cache:items:1", "cache:items:2", "cache:itemsets:3", "cache:users:9"}, keys(t, s, "cache:"))
		require.Equal(t, []string{"cache*:glob:1"}, keys(t, s, "cache*:"))
		require.Len(t, keys(t, s, ""), 6)
		require.Empty(t, keys(t, s, "nothing:"))
	})

	t.Run("BinarySafe", func(t *testing.T) {
		ctx := context.Background()
		s := open(t, newStore)

		raw := []byte{0, 1, 2, 0xff, 0xfe, '\n', 0}
		require.NoError(t, s.Set(ctx, "cache:bin:1", raw))
		settle()
		v, ok, err := s.Get(ctx, "cache:bin:1")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, raw, v)
	})
}

func open(t *testing.T, newStore func(t *testing.T) store.Store) store.Store {
	t.Helper()
	s := newStore(t)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func keys(t *testing.T, s store.Store, prefix string) []string {
	t.Helper()
	ks, err := s.Keys(context.Background(), prefix)
	require.NoError(t, err)
	sort.Strings(ks)
	return ks
}
