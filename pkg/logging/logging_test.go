// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

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

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{" Error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLogLevel(tt.input); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestStructuredLoggerAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := newStructuredLogger(&buf, "hostguard", "v1.2.3", slog.LevelInfo)

	logger.Info("pass complete", "modules", 2)
	logger.Debug("suppressed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if rec["module"] != "hostguard" {
		t.Errorf("module = %v, want hostguard", rec["module"])
	}
	if rec["version"] != "v1.2.3" {
		t.Errorf("version = %v, want v1.2.3", rec["version"])
	}
	if rec["msg"] != "pass complete" {
		t.Errorf("msg = %v, want pass complete", rec["msg"])
	}
	if _, ok := rec["source"]; ok {
		t.Error("source should only be added at debug level")
	}
}

func TestStructuredLoggerDebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	logger := newStructuredLogger(&buf, "hostguard", "dev", slog.LevelDebug)
	logger.Debug("module step started")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if _, ok := rec["source"]; !ok {
		t.Error("expected source location on debug records")
	}
}

func TestNewLogLoggerUsesDefaultHandler(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(newStructuredLogger(&buf, "hostguard", "v1.2.3", slog.LevelInfo))
	t.Cleanup(func() { slog.SetDefault(prev) })

	NewLogLogger(slog.LevelError).Print("http: TLS handshake error")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if rec["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", rec["level"])
	}
	if rec["module"] != "hostguard" {
		t.Errorf("module = %v, want hostguard", rec["module"])
	}
	if rec["msg"] != "http: TLS handshake error" {
		t.Errorf("msg = %v", rec["msg"])
	}
}

func fixedJournal(buf *bytes.Buffer) *Journal {
	j := NewJournal(buf)
	j.now = func() time.Time { return time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC) }
	return j
}

func TestJournalEvent(t *testing.T) {
	var buf bytes.Buffer
	j := fixedJournal(&buf)

	if err := j.Event("pass %s started", "abc"); err != nil {
		t.Fatalf("Event() error = %v", err)
	}

	want := "[2025-01-15 10:30:00] pass abc started\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestJournalDifferences(t *testing.T) {
	var buf bytes.Buffer
	j := fixedJournal(&buf)

	if err := j.Differences("passwd", nil); err != nil {
		t.Fatalf("Differences(nil) error = %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("empty differences must not write a line, got %q", buf.String())
	}

	if err := j.Differences("passwd", []string{"/etc/passwd content changed"}); err != nil {
		t.Fatalf("Differences() error = %v", err)
	}

	want := `[2025-01-15 10:30:00] passwd: ["/etc/passwd content changed"]` + "\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestOpenJournalAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log", "hostguard.log")

	for i := 0; i < 2; i++ {
		j, err := OpenJournal(path)
		if err != nil {
			t.Fatalf("OpenJournal() error = %v", err)
		}
		if err := j.Event("started"); err != nil {
			t.Fatalf("Event() error = %v", err)
		}
		if err := j.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		// second close is a no-op
		if err := j.Close(); err != nil {
			t.Fatalf("second Close() error = %v", err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if n := strings.Count(string(b), "started\n"); n != 2 {
		t.Errorf("expected 2 appended lines, got %d: %q", n, string(b))
	}
}

func TestOpenJournalEmptyPath(t *testing.T) {
	if _, err := OpenJournal(""); err == nil {
		t.Error("expected error for empty path")
	}
}
