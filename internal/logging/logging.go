package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Init builds and returns the root logger. Console format writes
// human-readable lines to stderr; anything else emits JSON, which keeps
// machine-readable diagnostics separate from the plain-text output streams.
func Init(level string, format string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var w = os.Stderr
	ctx := zerolog.New(w).Level(ParseLevel(level)).With().Timestamp()
	if strings.ToLower(format) == "console" {
		cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		ctx = zerolog.New(cw).Level(ParseLevel(level)).With().Timestamp()
	}
	return ctx.Logger()
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to a
// zerolog level. Unknown strings default to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
