// Package ctxlog wires structured logging via zerolog, replacing the
// teacher's bare log.Println/log.Printf call sites with leveled,
// field-carrying logs while keeping the same terse, step-by-step
// message wording (see cmd/shapematch).
package ctxlog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the base logger. Verbose enables debug-level output;
// otherwise info and above.
func New(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return NewTo(os.Stderr, level)
}

// NewTo builds a logger writing to w at the given level, used by tests
// that want to capture output.
func NewTo(w io.Writer, level zerolog.Level) zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

// Stage returns a child logger tagged with the current pipeline stage
// (A/B/C/D, matching spec.md's component names).
func Stage(l zerolog.Logger, stage string) zerolog.Logger {
	return l.With().Str("stage", stage).Logger()
}

// Trip returns a child logger tagged with a trip id, used throughout
// pkg/shapebuild's per-trip loop.
func Trip(l zerolog.Logger, mot int, tripID string) zerolog.Logger {
	return l.With().Int("mot", mot).Str("trip_id", tripID).Logger()
}
