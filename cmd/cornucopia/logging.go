package main

import (
	"log/slog"
	"os"
)

// newLogger builds the process-wide structured logger: JSON when
// --json is set (for machine consumption in CI), human-readable text
// otherwise — the same dual-mode split atlas's CLI applies via
// --format, but backed by the standard library's slog since neither
// the teacher nor the rest of the pack pulls in a third-party logger.
func newLogger(jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if jsonOutput {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
