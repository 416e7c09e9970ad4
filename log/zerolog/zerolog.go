// Package zerolog adapts a zerolog.Logger to docache.Logger.
package zerolog

import (
	"github.com/rs/zerolog"

	"github.com/unkn0wn-root/docache"
)

type Logger struct{ L zerolog.Logger }

var _ docache.Logger = Logger{}

func (z Logger) Debug(msg string, f docache.Fields) { z.emit(z.L.Debug(), msg, f) }
func (z Logger) Info(msg string, f docache.Fields)  { z.emit(z.L.Info(), msg, f) }
func (z Logger) Warn(msg string, f docache.Fields)  { z.emit(z.L.Warn(), msg, f) }
func (z Logger) Error(msg string, f docache.Fields) { z.emit(z.L.Error(), msg, f) }

func (z Logger) emit(e *zerolog.Event, msg string, f docache.Fields) {
	if e == nil {
		return // level disabled
	}
	for k, v := range f {
		if err, ok := v.(error); ok {
			e = e.AnErr(k, err)
			continue
		}
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}
