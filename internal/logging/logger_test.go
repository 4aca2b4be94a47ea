package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"uppercase TRACE", "TRACE", LevelTrace},
		{"mixed case Debug", "Debug", slog.LevelDebug},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		logAtDebug bool
		logAtTrace bool
	}{
		{"info filters debug", "info", false, false},
		{"debug passes debug", "debug", true, false},
		{"trace passes everything", "trace", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Info("info message")
			logger.Debug("debug message")
			logger.Log(t.Context(), LevelTrace, "trace message")

			out := buf.String()
			if !strings.Contains(out, "info message") {
				t.Error("info should always be logged")
			}
			if got := strings.Contains(out, "debug message"); got != tt.logAtDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.logAtDebug)
			}
			if got := strings.Contains(out, "trace message"); got != tt.logAtTrace {
				t.Errorf("trace logged = %v, want %v", got, tt.logAtTrace)
			}
		})
	}
}

func TestNewLogger_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", &buf)
	logger.Log(t.Context(), LevelTrace, "x")

	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("expected level=TRACE, got %q", buf.String())
	}
}

func readEntries(t *testing.T, dir string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, TraceFile))
	if err != nil {
		t.Fatalf("failed to read %s: %v", TraceFile, err)
	}
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to parse JSONL entry %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestNewTraceLogger_InfoLevel(t *testing.T) {
	dir := t.TempDir()
	tl := NewTraceLogger(dir, "info")
	if tl != nil {
		t.Error("expected nil TraceLogger at info level")
	}

	tl.Log(Analysis{Analysis: "lambda_q"})

	if _, err := os.Stat(filepath.Join(dir, TraceFile)); err == nil {
		t.Errorf("%s should not exist at info level", TraceFile)
	}
}

func TestTraceLogger_DebugDropsResult(t *testing.T) {
	dir := t.TempDir()
	tl := NewTraceLogger(dir, "debug")
	defer tl.Close()

	tl.Log(Analysis{
		Analysis: "lambda_q",
		Network:  "ring-30",
		Elapsed:  1500 * time.Microsecond,
		Params:   map[string]any{"workers": 2},
		Summary:  map[string]any{"lambda_q": 1.5},
		Result:   [][]float64{{1}},
	})

	entries := readEntries(t, dir)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e["analysis"] != "lambda_q" || e["network"] != "ring-30" {
		t.Errorf("unexpected entry: %v", e)
	}
	if e["duration_ms"] != 1.5 {
		t.Errorf("duration_ms = %v, want 1.5", e["duration_ms"])
	}
	if _, ok := e["time"]; !ok {
		t.Error("expected 'time' field")
	}
	if _, ok := e["result"]; ok {
		t.Error("result payload should be omitted at debug level")
	}
	summary, _ := e["summary"].(map[string]any)
	if summary["lambda_q"] != 1.5 {
		t.Errorf("summary = %v", e["summary"])
	}
}

func TestTraceLogger_TraceKeepsResult(t *testing.T) {
	dir := t.TempDir()
	tl := NewTraceLogger(dir, "trace")
	defer tl.Close()

	tl.Log(Analysis{Analysis: "landscape", Result: []int{1, 0}})

	entries := readEntries(t, dir)
	if _, ok := entries[0]["result"]; !ok {
		t.Error("result payload should be kept at trace level")
	}
	if _, ok := entries[0]["params"]; ok {
		t.Error("empty params should be omitted")
	}
}

func TestTraceLogger_Appends(t *testing.T) {
	dir := t.TempDir()
	tl := NewTraceLogger(dir, "debug")
	tl.Log(Analysis{Analysis: "first"})
	tl.Close()

	tl = NewTraceLogger(dir, "debug")
	tl.Log(Analysis{Analysis: "second"})
	tl.Close()

	entries := readEntries(t, dir)
	if len(entries) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(entries))
	}
	if entries[0]["analysis"] != "first" || entries[1]["analysis"] != "second" {
		t.Errorf("unexpected order: %v", entries)
	}
}

func TestTraceLogger_NilSafety(t *testing.T) {
	var tl *TraceLogger
	tl.Log(Analysis{Analysis: "should_not_panic"})
	tl.Close()
}

func TestTraceLogger_LogAfterClose(t *testing.T) {
	dir := t.TempDir()
	tl := NewTraceLogger(dir, "debug")
	tl.Log(Analysis{Analysis: "before_close"})
	tl.Close()

	tl.Log(Analysis{Analysis: "after_close"})

	if n := len(readEntries(t, dir)); n != 1 {
		t.Errorf("expected 1 entry after close, got %d", n)
	}
}

func TestNewTraceLogger_CreatesDir(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "sub", "dir")

	tl := NewTraceLogger(nested, "debug")
	if tl == nil {
		t.Fatal("expected non-nil TraceLogger when dir needs creation")
	}
	defer tl.Close()

	tl.Log(Analysis{Analysis: "dir_create_test"})
	info, err := os.Stat(filepath.Join(nested, TraceFile))
	if err != nil {
		t.Fatalf("%s should exist: %v", TraceFile, err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}
}
