package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/nscache/store"
	"github.com/unkn0wn-root/nscache/store/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store { return New() }, storetest.Options{})
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()

	in := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'z'

	v, _, _ := s.Get(ctx, "k")
	require.Equal(t, "abc", string(v))
	v[1] = 'z'

	again, _, _ := s.Get(ctx, "k")
	require.Equal(t, "abc", string(again))
}

func TestClosedStoreFails(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))

	_, _, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, store.ErrClosed)
	require.ErrorIs(t, s.Set(ctx, "k", nil), store.ErrClosed)
	require.ErrorIs(t, s.Remove(ctx, "k"), store.ErrClosed)
	_, err = s.Keys(ctx, "")
	require.ErrorIs(t, err, store.ErrClosed)
}
