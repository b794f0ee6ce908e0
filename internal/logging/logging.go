// Package logging builds the zerolog logger used by the countries command
// and bridges stencil's capitan signals into it.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/stencil"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string

	// Format is the output format: json or console.
	// Default: json
	Format string

	// Output is the writer for log output.
	// Default: os.Stderr
	Output io.Writer
}

// New returns a logger for cfg.
func New(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	output := cfg.Output
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// parseLevel converts a string level to zerolog.Level.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Observe logs stencil's mapping signals at debug level, and rejected fields
// at warn level, until the returned function is called.
func Observe(log zerolog.Logger) (stop func()) {
	listeners := []*capitan.Listener{
		capitan.Hook(stencil.SignalMapComplete, func(_ context.Context, e *capitan.Event) {
			ev := log.Debug()
			if typeName, ok := stencil.KeyTypeName.From(e); ok {
				ev = ev.Str("type", typeName)
			}
			if mode, ok := stencil.KeyMode.From(e); ok {
				ev = ev.Str("mode", mode)
			}
			if items, ok := stencil.KeyItems.From(e); ok {
				ev = ev.Int("items", items)
			}
			if d, ok := stencil.KeyDuration.From(e); ok {
				ev = ev.Dur("took", d)
			}
			if err, ok := stencil.KeyError.From(e); ok && err != nil {
				ev = ev.Err(err)
			}
			ev.Msg("mapped")
		}),
		capitan.Hook(stencil.SignalFieldRejected, func(_ context.Context, e *capitan.Event) {
			ev := log.Warn()
			if typeName, ok := stencil.KeyTypeName.From(e); ok {
				ev = ev.Str("type", typeName)
			}
			if field, ok := stencil.KeyField.From(e); ok {
				ev = ev.Str("field", field)
			}
			if ref, ok := stencil.KeyValidator.From(e); ok {
				ev = ev.Str("validator", ref)
			}
			ev.Msg("field rejected")
		}),
	}

	return func() {
		for _, l := range listeners {
			l.Close()
		}
	}
}
