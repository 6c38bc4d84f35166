package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/nscache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	ExpiredEvery uint64
	SweepEvery   uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	expiredCtr atomic.Uint64
	sweepCtr   atomic.Uint64
}

var _ nscache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

// Lookup is too hot to log.
func (h *Hooks) Lookup(bool) {}

func (h *Hooks) ExpiredOnRead(storageKey string) {
	if h.l == nil || !sample(h.opts.ExpiredEvery, &h.expiredCtr) {
		return
	}
	h.l.Debug("nscache.expired_on_read",
		"key", h.redact(storageKey))
}

func (h *Hooks) CorruptEntry(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("nscache.corrupt_entry",
		"key", h.redact(storageKey))
}

func (h *Hooks) Swept(ns string, scanned, removed int) {
	if h.l == nil || !sample(h.opts.SweepEvery, &h.sweepCtr) {
		return
	}
	h.l.Debug("nscache.swept",
		"ns", ns,
		"scanned", scanned,
		"removed", removed)
}

func (h *Hooks) PrefixRemoved(prefix string, removed int) {
	if h.l == nil {
		return
	}
	h.l.Info("nscache.prefix_removed",
		"prefix", prefix,
		"removed", removed)
}

func (h *Hooks) StoreFault(op, storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("nscache.store_fault",
		"op", op,
		"key", h.redact(storageKey),
		"err", err)
}
