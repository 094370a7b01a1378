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

package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestParser_ReadContent(t *testing.T) {
	passwd := "root:x:0:0:root:/root:/bin/bash\n# comment stays\n\n"

	tests := []struct {
		name      string
		content   []byte
		opts      []Option
		want      string
		wantErr   bool
		notText   bool
		skipWrite bool
	}{
		{
			name:    "returns content unmodified",
			content: []byte(passwd),
			want:    passwd,
		},
		{
			name:    "empty file",
			content: []byte{},
			want:    "",
		},
		{
			name:    "invalid utf8",
			content: []byte{0xff, 0xfe, 0x00, 0x01},
			wantErr: true,
			notText: true,
		},
		{
			name:    "exceeds max size",
			content: []byte(strings.Repeat("a", 64)),
			opts:    []Option{WithMaxSize(16)},
			wantErr: true,
			notText: true,
		},
		{
			name:      "missing file",
			skipWrite: true,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing")
			if !tt.skipWrite {
				path = writeFile(t, "target", tt.content)
			}

			got, err := NewParser(tt.opts...).ReadContent(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadContent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if IsNotText(err) != tt.notText {
				t.Errorf("IsNotText(%v) = %v, want %v", err, IsNotText(err), tt.notText)
			}
			if got != tt.want {
				t.Errorf("ReadContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParser_ReadContent_InvalidPaths(t *testing.T) {
	p := NewParser()

	if _, err := p.ReadContent(""); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := p.ReadContent(t.TempDir()); err == nil {
		t.Error("expected error for directory")
	}
}

func TestDigest(t *testing.T) {
	// sha256("abc")
	const want = DigestPrefix + "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

	path := writeFile(t, "wtmp", []byte("abc"))
	got, err := Digest(path)
	if err != nil {
		t.Fatalf("Digest() error = %v", err)
	}
	if got != want {
		t.Errorf("Digest() = %q, want %q", got, want)
	}

	if _, err := Digest(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
