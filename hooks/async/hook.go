// Package asynchook moves hook delivery off the cache's hot path.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{SweepEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	c, _ := nscache.New[Listing](nscache.Options[Listing]{
//	    Store: st,
//	    Hooks: hooks,
//	})
//
// Events are dropped when the queue is full.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/nscache"
)

type Hooks struct {
	inner   nscache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closed  atomic.Bool
	dropped atomic.Uint64
}

var _ nscache.Hooks = (*Hooks)(nil)

func New(inner nscache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events raised after
// Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.closed.Store(true)
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	if h.closed.Load() {
		h.dropped.Add(1)
		return
	}
	defer func() {
		// lost a race with Close
		if recover() != nil {
			h.dropped.Add(1)
		}
	}()
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) Lookup(hit bool)        { h.try(func() { h.inner.Lookup(hit) }) }
func (h *Hooks) ExpiredOnRead(k string) { h.try(func() { h.inner.ExpiredOnRead(k) }) }
func (h *Hooks) CorruptEntry(k string)  { h.try(func() { h.inner.CorruptEntry(k) }) }
func (h *Hooks) PrefixRemoved(p string, n int) {
	h.try(func() { h.inner.PrefixRemoved(p, n) })
}
func (h *Hooks) Swept(ns string, scanned, removed int) {
	h.try(func() { h.inner.Swept(ns, scanned, removed) })
}
func (h *Hooks) StoreFault(op, k string, err error) {
	h.try(func() { h.inner.StoreFault(op, k, err) })
}
