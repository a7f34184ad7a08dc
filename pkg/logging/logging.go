// Package logging defines the structured logger contract used across the
// library. Arguments are alternating key/value pairs:
//
//	logger.Warn("prefill entry ignored", "key", "nickname")
//
// The library defaults to Nop; hosts plug in NewLogrus or their own adapter.
package logging

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Logger is the minimal structured logging surface the builder and loaders
// write to.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Nop discards every message.
type Nop struct{}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}

// OrNop returns logger, or Nop when logger is nil.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return Nop{}
	}
	return logger
}

// Logrus adapts a logrus entry to Logger.
type Logrus struct {
	entry *logrus.Entry
}

// NewLogrus wraps the given logger. A nil logger uses logrus.StandardLogger.
func NewLogrus(logger *logrus.Logger) *Logrus {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Logrus{entry: logrus.NewEntry(logger)}
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logrus) With(args ...any) *Logrus {
	return &Logrus{entry: l.entry.WithFields(fields(args))}
}

func (l *Logrus) Debug(msg string, args ...any) {
	l.entry.WithFields(fields(args)).Debug(msg)
}

func (l *Logrus) Info(msg string, args ...any) {
	l.entry.WithFields(fields(args)).Info(msg)
}

func (l *Logrus) Warn(msg string, args ...any) {
	l.entry.WithFields(fields(args)).Warn(msg)
}

func (l *Logrus) Error(msg string, args ...any) {
	l.entry.WithFields(fields(args)).Error(msg)
}

func fields(args []any) logrus.Fields {
	if len(args) == 0 {
		return nil
	}
	out := make(logrus.Fields, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprint(args[i])
		if i+1 >= len(args) {
			out["!BADKEY"] = args[i]
			break
		}
		out[key] = args[i+1]
	}
	return out
}

var (
	_ Logger = Nop{}
	_ Logger = (*Logrus)(nil)
)
