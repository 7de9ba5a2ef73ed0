// Package logging builds the process-wide structured logger. Grounded
// on src/logger.go: zerolog, JSON by default, a pretty console writer
// for local dev, one "service" field stamped on every line.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Format string

const (
	FormatJSON   Format = "json"
	FormatPretty Format = "pretty"
)

type Config struct {
	Level   string
	Format  Format
	Service string
}

// New builds a logger per Config. Unknown levels fall back to info so
// a typo in LOG_LEVEL degrades gracefully instead of going silent.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer = os.Stdout
	if cfg.Format == FormatPretty {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).With().
		Timestamp().
		Str("service", cfg.Service).
		Logger()
}

// WithComponent returns a child logger tagging every entry with the
// owning component name (outbox, notify, messaging, delivery, gateway,
// api) per the propagation policy in §7.
func WithComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}
