package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/canonic/pkg/pipeline"
	"github.com/matzehuels/canonic/pkg/search"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	if logger == nil {
		t.Fatal("newLogger() returned nil")
	}

	logger.Info("equitable partition", "cells", 3)

	if buf.Len() == 0 {
		t.Error("logger should have written output")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	prog := newProgress(logger)
	if prog == nil {
		t.Fatal("newProgress() returned nil")
	}

	// Small delay to ensure measurable duration
	time.Sleep(10 * time.Millisecond)

	prog.done("Canonicalized 10 vertices")

	if !bytes.Contains(buf.Bytes(), []byte("Canonicalized 10 vertices (")) {
		t.Errorf("progress.done() output = %q", buf.String())
	}
}

func TestSearchProgressThrottles(t *testing.T) {
	var buf bytes.Buffer
	p := newSearchProgress(newLogger(&buf, log.InfoLevel))

	p.onProgress(search.Stats{Nodes: 1000})
	if buf.Len() != 0 {
		t.Errorf("progress logged before the interval elapsed: %q", buf.String())
	}

	p.interval = 0
	p.onProgress(search.Stats{Nodes: 2000, Leaves: 3})
	if !strings.Contains(buf.String(), "Searching...") || !strings.Contains(buf.String(), "nodes=2000") {
		t.Errorf("progress line = %q", buf.String())
	}
}

func TestSearchProgressDebug(t *testing.T) {
	info := search.DebugInfo{
		Stats:  search.Stats{Nodes: 7},
		Levels: []search.LevelInfo{{Depth: 0, Visits: 1, TargetSize: 4}, {Depth: 1, Visits: 6, TargetSize: 2}},
	}

	var buf bytes.Buffer
	newSearchProgress(newLogger(&buf, log.InfoLevel)).onDebug(info)
	if buf.Len() != 0 {
		t.Error("debug summary logged at info level")
	}

	newSearchProgress(newLogger(&buf, log.DebugLevel)).onDebug(info)
	if got := strings.Count(buf.String(), "level"); got < 2 {
		t.Errorf("want one line per level, got:\n%s", buf.String())
	}
}

func TestSearchProgressAttach(t *testing.T) {
	var opts pipeline.Options
	newSearchProgress(log.Default()).attach(&opts)
	if opts.Progress == nil || opts.Debug == nil {
		t.Error("attach should install both callbacks")
	}
}

func TestWithLogger(t *testing.T) {
	ctx := context.Background()
	logger := log.Default()

	ctxWithLogger := withLogger(ctx, logger)

	// Should be able to retrieve the logger
	retrieved := loggerFromContext(ctxWithLogger)
	if retrieved != logger {
		t.Error("loggerFromContext should return the same logger")
	}
}

func TestLoggerFromContextDefault(t *testing.T) {
	ctx := context.Background()

	// Without logger in context, should return default
	logger := loggerFromContext(ctx)
	if logger == nil {
		t.Error("loggerFromContext should return default logger when none set")
	}
}

func TestLoggerFromContextWithValue(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	customLogger := newLogger(&buf, log.InfoLevel)

	ctx = withLogger(ctx, customLogger)
	retrieved := loggerFromContext(ctx)

	if retrieved != customLogger {
		t.Error("loggerFromContext should return the custom logger")
	}

	// Verify it works by logging
	retrieved.Info("test")
	if buf.Len() == 0 {
		t.Error("custom logger should write to buffer")
	}
}
