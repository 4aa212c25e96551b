// Package logging centralizes slog setup for the engine and the CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text logger at the given level. Log lines go to stderr so
// stdout stays free for run reports, JSON and Mermaid output. The "error"
// attribute is shortened to "err" to keep lines uniform with the scheduler's
// own logging.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a logger that discards everything. It is the default for
// library-embedded pipelines.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
