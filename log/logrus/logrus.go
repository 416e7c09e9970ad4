// Package logrus adapts a logrus entry to docache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/docache"
)

type Logger struct{ E *logrus.Entry }

var _ docache.Logger = Logger{}

func New(l *logrus.Logger) Logger {
	return Logger{E: logrus.NewEntry(l).WithField("component", "docache")}
}

func (l Logger) Debug(msg string, f docache.Fields) { l.E.WithFields(logrus.Fields(f)).Debug(msg) }
func (l Logger) Info(msg string, f docache.Fields)  { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f docache.Fields)  { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f docache.Fields) { l.E.WithFields(logrus.Fields(f)).Error(msg) }
