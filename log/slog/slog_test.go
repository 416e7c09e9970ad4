package slog

import (
	"bytes"
	stdslog "log/slog"
	"strings"
	"testing"

	"github.com/unkn0wn-root/docache"
)

func TestSlogSortedAttrsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	h := stdslog.NewTextHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelInfo})
	l := Logger{L: stdslog.New(h)}

	l.Debug("dropped", docache.Fields{"a": 1})
	l.Info("cache set", docache.Fields{"writes": 2, "entity": "Entry"})

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("debug should be filtered: %s", out)
	}
	if !strings.Contains(out, "msg=\"cache set\" entity=Entry writes=2") {
		t.Fatalf("unexpected output: %s", out)
	}
}
