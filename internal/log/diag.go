// Package log provides structured event logging.
// This file configures the zerolog diagnostic logger.
package log

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Diag is the process-wide diagnostic logger. Backend-call failures are
// logged here at the call site; they are never surfaced as crashes.
var Diag = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

// SetupDiag points Diag at .nexus/nexus.log inside dir and applies the
// configured level. Falls back to stderr if the file cannot be opened.
// When quiet is true (TUI running), stderr output is suppressed entirely so
// log lines do not tear the alternate screen.
func SetupDiag(dir, level string, quiet bool) {
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}

	nexusDir := filepath.Join(dir, ".nexus")
	if err := os.MkdirAll(nexusDir, 0755); err == nil {
		f, err := os.OpenFile(filepath.Join(nexusDir, "nexus.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			out = f
		} else if quiet {
			out = io.Discard
		}
	} else if quiet {
		out = io.Discard
	}

	Diag = zerolog.New(out).With().Timestamp().Logger().Level(parseLevel(level))
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
