package zap

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/docache"
)

func TestZapFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	l.Debug("cache fill", docache.Fields{"entity": "Entry", "missed": 2})
	l.Warn("miss observer failed", docache.Fields{"err": errors.New("boom")})

	if logs.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", logs.Len())
	}
	first := logs.All()[0]
	if first.LoggerName != "docache" || first.Message != "cache fill" {
		t.Fatalf("unexpected entry %+v", first)
	}
	ctx := first.ContextMap()
	if ctx["entity"] != "Entry" || ctx["missed"] != int64(2) {
		t.Fatalf("unexpected fields %v", ctx)
	}
	if logs.All()[1].ContextMap()["err"] != "boom" {
		t.Fatalf("error field not rendered: %v", logs.All()[1].ContextMap())
	}
}
