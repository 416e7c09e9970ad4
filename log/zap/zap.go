// Package zap adapts a *zap.Logger to docache.Logger.
package zap

import (
	"sort"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/docache"
)

type Logger struct{ L *zap.Logger }

var _ docache.Logger = Logger{}

// New names the logger "docache" so engine output is easy to filter.
func New(l *zap.Logger) Logger { return Logger{L: l.Named("docache")} }

func (z Logger) Debug(msg string, f docache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z Logger) Info(msg string, f docache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z Logger) Warn(msg string, f docache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z Logger) Error(msg string, f docache.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f docache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
