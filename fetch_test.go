package nscache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/unkn0wn-root/nscache/store/memory"
)

func TestFetchLoadsOnceThenServesFromCache(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	cc := newTestCache[item](t, memory.New(), clk, nil)

	var calls atomic.Int32
	load := func(context.Context) (item, error) {
		calls.Add(1)
		return item{ID: 5, Hero: "Axe", Price: 300}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := cc.Fetch(ctx, "items/5", time.Minute, load)
		if err != nil || v.Hero != "Axe" {
			t.Fatalf("Fetch: v=%+v err=%v", v, err)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("loader called %d times, want 1", n)
	}

	clk.Advance(time.Minute)
	if _, err := cc.Fetch(ctx, "items/5", time.Minute, load); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("expired entry should reload, calls=%d", n)
	}
}

func TestFetchFallsBackOnFault(t *testing.T) {
	ctx := context.Background()
	fs := &faultyStore{Store: memory.New(), failGet: true, failSet: true}
	cc := newTestCache[string](t, fs, newFakeClock(), nil)

	v, err := cc.Fetch(ctx, "items/1", 0, func(context.Context) (string, error) { return "live", nil })
	if err != nil || v != "live" {
		t.Fatalf("Fetch should serve the loaded value despite faults: v=%q err=%v", v, err)
	}
}

func TestFetchPropagatesLoaderError(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	cc := newTestCache[string](t, st, newFakeClock(), nil)

	errUpstream := errors.New("upstream 503")
	_, err := cc.Fetch(ctx, "items/1", 0, func(context.Context) (string, error) { return "", errUpstream })
	if !errors.Is(err, errUpstream) {
		t.Fatalf("Fetch err = %v", err)
	}
	if n := len(storedKeys(t, st)); n != 0 {
		t.Fatalf("failed load must not be cached, got %d entries", n)
	}
}

func TestFetchNilResultIsNotCached(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	cc := newTestCache[*item](t, st, newFakeClock(), nil)

	v, err := cc.Fetch(ctx, "items/404", 0, func(context.Context) (*item, error) { return nil, nil })
	if err != nil || v != nil {
		t.Fatalf("Fetch: v=%v err=%v", v, err)
	}
	if n := len(storedKeys(t, st)); n != 0 {
		t.Fatalf("nil result must not be cached, got %d entries", n)
	}
}

func TestFetchDeduplicatesConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache[string](t, memory.New(), newFakeClock(), nil)

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	const n = 10
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
	)
	started.Add(n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			v, err := cc.Fetch(ctx, "items/hot", 0, load)
			if err != nil || v != "shared" {
				t.Errorf("Fetch: v=%q err=%v", v, err)
			}
		}()
	}
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	// late arrivals may miss the in-flight call but then hit the cache
	if c := calls.Load(); c < 1 || c > 2 {
		t.Fatalf("loader calls = %d", c)
	}
}

func TestFetchOnDisabledCacheAlwaysLoads(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache[int](t, memory.New(), newFakeClock(), func(o *Options[int]) { o.Disabled = true })

	var calls atomic.Int32
	load := func(context.Context) (int, error) { return int(calls.Add(1)), nil }
	for i := 0; i < 3; i++ {
		if _, err := cc.Fetch(ctx, "n/1", 0, load); err != nil {
			t.Fatalf("Fetch: %v", err)
		}
	}
	if calls.Load() != 3 {
		t.Fatalf("disabled cache should load every time, calls=%d", calls.Load())
	}
}
