package sloghook

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSamplingAndRedaction(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := New(l, Options{CacheMissEvery: 2})

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_ = h.CacheMiss(ctx, "Entry", "id1")
	}
	_ = h.DataMiss(ctx, "Entry", "secret-slug")

	out := buf.String()
	if n := strings.Count(out, "docache.cache_miss"); n != 2 {
		t.Fatalf("expected 2 sampled cache misses, got %d:\n%s", n, out)
	}
	if strings.Contains(out, "secret-slug") {
		t.Fatalf("key not redacted:\n%s", out)
	}
	if !strings.Contains(out, "docache.data_miss") {
		t.Fatalf("data miss not logged:\n%s", out)
	}
}

func TestCustomRedactAndNilLogger(t *testing.T) {
	var buf bytes.Buffer
	h := New(slog.New(slog.NewTextHandler(&buf, nil)), Options{Redact: func(k string) string { return "k=" + k }})
	_ = h.DataMiss(context.Background(), "Entry", "id2")
	if !strings.Contains(buf.String(), "key=k=id2") {
		t.Fatalf("custom redactor not used: %s", buf.String())
	}

	if err := New(nil, Options{}).CacheMiss(context.Background(), "Entry", "x"); err != nil {
		t.Fatalf("nil logger must be a no-op: %v", err)
	}
}
