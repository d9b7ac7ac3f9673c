package logx

import (
	"time"

	"github.com/rs/zerolog"
)

// ZerologAdapter adapts a zerolog.Logger to the logx.Logger interface.
// Used for human-readable console output in local runs.
type ZerologAdapter struct {
	l zerolog.Logger
}

// NewZerologAdapter returns a Logger backed by the provided zerolog.Logger.
func NewZerologAdapter(l zerolog.Logger) Logger {
	return &ZerologAdapter{l: l}
}

// Debug logs a debug-level message.
func (z *ZerologAdapter) Debug(msg string, fields ...Field) { withFields(z.l.Debug(), fields).Msg(msg) }

// Info logs an info-level message.
func (z *ZerologAdapter) Info(msg string, fields ...Field) { withFields(z.l.Info(), fields).Msg(msg) }

// Warn logs a warning-level message.
func (z *ZerologAdapter) Warn(msg string, fields ...Field) { withFields(z.l.Warn(), fields).Msg(msg) }

// Error logs an error-level message.
func (z *ZerologAdapter) Error(msg string, fields ...Field) { withFields(z.l.Error(), fields).Msg(msg) }

// With returns a child logger carrying the given fields.
func (z *ZerologAdapter) With(fields ...Field) Logger {
	ctx := z.l.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &ZerologAdapter{l: ctx.Logger()}
}

// Sync is a no-op for zerolog writers.
func (z *ZerologAdapter) Sync() error { return nil }

func withFields(e *zerolog.Event, fields []Field) *zerolog.Event {
	// disabled level returns a nil event
	if e == nil {
		return e
	}
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			e = e.Str(f.Key, v)
		case int:
			e = e.Int(f.Key, v)
		case int64:
			e = e.Int64(f.Key, v)
		case float64:
			e = e.Float64(f.Key, v)
		case bool:
			e = e.Bool(f.Key, v)
		case time.Time:
			e = e.Time(f.Key, v)
		case time.Duration:
			e = e.Dur(f.Key, v)
		default:
			e = e.Interface(f.Key, v)
		}
	}
	return e
}

// ParseZerologLevel maps a textual level to zerolog, defaulting to info.
func ParseZerologLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
