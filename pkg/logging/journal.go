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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// JournalTimeFormat is the timestamp layout used for journal lines.
const JournalTimeFormat = "2006-01-02 15:04:05"

// Journal is the line-oriented event log. Every line is written with a single
// Write call to an append-only file so lines never interleave.
type Journal struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	now    func() time.Time
}

// NewJournal returns a Journal writing to w. It never closes w.
func NewJournal(w io.Writer) *Journal {
	if w == nil {
		w = io.Discard
	}
	return &Journal{w: w, now: time.Now}
}

// OpenJournal opens (or creates) the journal file at path in append mode,
// creating parent directories as needed.
func OpenJournal(path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %q: %w", path, err)
	}
	return &Journal{w: f, closer: f, now: time.Now}, nil
}

// Event writes one "[<timestamp>] <message>" line.
func (j *Journal) Event(format string, args ...any) error {
	return j.writeLine(fmt.Sprintf(format, args...))
}

// Differences writes one "[<timestamp>] <module>: <differences>" line.
// The differences are rendered as a JSON array so the line stays parseable.
func (j *Journal) Differences(module string, differences []string) error {
	if len(differences) == 0 {
		return nil
	}
	b, err := json.Marshal(differences)
	if err != nil {
		return fmt.Errorf("failed to encode differences: %w", err)
	}
	return j.writeLine(fmt.Sprintf("%s: %s", module, b))
}

func (j *Journal) writeLine(msg string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	line := fmt.Sprintf("[%s] %s\n", j.now().Format(JournalTimeFormat), msg)
	if _, err := io.WriteString(j.w, line); err != nil {
		return fmt.Errorf("failed to write journal line: %w", err)
	}
	return nil
}

// Close releases the underlying file when the journal owns one.
// It is safe to call Close more than once.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closer == nil {
		return nil
	}
	err := j.closer.Close()
	j.closer = nil
	j.w = io.Discard
	return err
}
