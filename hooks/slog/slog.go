// Package sloghook logs miss events with sampling and key redaction.
package sloghook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/docache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	CacheMissEvery uint64
	DataMissEvery  uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	cacheMissCtr atomic.Uint64
	dataMissCtr  atomic.Uint64
}

var (
	_ docache.MissFunc = (*Hooks)(nil).CacheMiss
	_ docache.MissFunc = (*Hooks)(nil).DataMiss
)

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

func (h *Hooks) CacheMiss(ctx context.Context, entity, key string) error {
	if h.l == nil || !sample(h.opts.CacheMissEvery, &h.cacheMissCtr) {
		return nil
	}
	h.l.DebugContext(ctx, "docache.cache_miss",
		"entity", entity,
		"key", h.redact(key))
	return nil
}

func (h *Hooks) DataMiss(ctx context.Context, entity, key string) error {
	if h.l == nil || !sample(h.opts.DataMissEvery, &h.dataMissCtr) {
		return nil
	}
	h.l.InfoContext(ctx, "docache.data_miss",
		"entity", entity,
		"key", h.redact(key))
	return nil
}
