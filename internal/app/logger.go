package app

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"service-dispatch/internal/config"
	"service-dispatch/internal/logx"
)

// NewLogger builds the process logger: slog JSON by default, zerolog console for local runs.
func NewLogger(cfg *config.Config) logx.Logger {
	return newLogger(os.Stdout, cfg.Log)
}

func newLogger(w io.Writer, c config.Log) logx.Logger {
	if strings.EqualFold(c.Format, "console") {
		zl := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
			Level(logx.ParseZerologLevel(c.Level)).
			With().Timestamp().Logger()
		return logx.NewZerologAdapter(zl)
	}
	base := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: logx.ParseSlogLevel(c.Level),
	}))
	return logx.NewSlogAdapter(base)
}
