// Package cli implements the canonic command-line interface.
//
// This package provides commands for refining partitions, canonicalizing
// graphs, comparing them for isomorphism, and managing the result cache and
// the class catalog. The CLI is built using cobra and logs via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - refine: Coarsest equitable refinement of a partition
//   - canon: Canonical labeling, automorphism generators and orbits
//   - iso: Isomorphism test with a witness mapping
//   - trace: Refinement generations, optionally in an interactive viewer
//   - render: DOT, SVG, PNG or PDF drawing coloured by partition
//   - catalog: Browse recorded isomorphism classes
//   - serve: HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports search statistics per tree level.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level, with timestamps
// formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Canonicalized 10 vertices (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
