// Package logging provides leveled logging and analysis tracing for boolnet.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A TraceLogger for structured JSONL analysis traces (~/.boolnet/analyses.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// TraceFile is the name of the analysis trace inside the trace directory.
const TraceFile = "analyses.jsonl"

// LevelTrace is a custom slog level below Debug. At this level full result
// payloads (matrices, transition tables) are included in traces.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// TraceLogger appends one JSON line per completed analysis.
// It is safe for concurrent use. A nil TraceLogger is safe to use;
// all methods are no-ops on nil receiver.
type TraceLogger struct {
	mu     sync.Mutex
	file   *os.File
	detail bool
}

// NewTraceLogger creates a trace logger writing to dir/analyses.jsonl.
// At "info" level (the default) it returns nil and no file is created.
// At "trace" level events keep their "result" payload; at "debug" it is
// dropped. Returns nil if the file cannot be opened.
func NewTraceLogger(dir string, level string) *TraceLogger {
	lvl := ParseLevel(level)
	if lvl == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, TraceFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &TraceLogger{file: f, detail: lvl <= LevelTrace}
}

// Analysis records one analysis run.
type Analysis struct {
	Analysis string
	Network  string
	Elapsed  time.Duration
	Params   map[string]any
	Summary  map[string]any
	Result   any
}

// Log writes an analysis event as a single JSONL line with a "time" field.
// Safe to call on nil receiver.
func (tl *TraceLogger) Log(a Analysis) {
	if tl == nil {
		return
	}

	entry := map[string]any{
		"time":        time.Now().UTC().Format(time.RFC3339Nano),
		"analysis":    a.Analysis,
		"network":     a.Network,
		"duration_ms": float64(a.Elapsed.Microseconds()) / 1000,
	}
	if len(a.Params) > 0 {
		entry["params"] = maps.Clone(a.Params)
	}
	if len(a.Summary) > 0 {
		entry["summary"] = maps.Clone(a.Summary)
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.file == nil {
		return
	}
	if tl.detail && a.Result != nil {
		entry["result"] = a.Result
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = tl.file.Write(data)
}

// Close closes the underlying file. Safe to call on nil receiver.
func (tl *TraceLogger) Close() {
	if tl == nil {
		return
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()

	if tl.file != nil {
		tl.file.Close()
		tl.file = nil
	}
}
