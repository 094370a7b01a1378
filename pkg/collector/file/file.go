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
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// DigestPrefix prefixes the hex digest returned by Digest.
const DigestPrefix = "sha256:"

// ErrNotText is returned when a file is not valid UTF-8 or is larger than the
// parser's maximum size.
var ErrNotText = stderrors.New("file is not comparable text")

// IsNotText reports whether err was caused by ErrNotText.
func IsNotText(err error) bool {
	return stderrors.Is(err, ErrNotText)
}

// Option configures a Parser.
type Option func(*Parser)

// Parser reads monitored files.
type Parser struct {
	maxSize int
}

// WithMaxSize sets the maximum size (in bytes) of a file returned as text.
// Default is 4MB.
func WithMaxSize(size int) Option {
	return func(p *Parser) {
		p.maxSize = size
	}
}

// NewParser creates a new file parser with the provided options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		maxSize: 4 << 20,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ReadContent returns the full, unmodified text of the file at path.
func (p *Parser) ReadContent(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat file %q: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path %q is a directory", path)
	}
	if info.Size() > int64(p.maxSize) {
		return "", fmt.Errorf("file %q exceeds maximum size of %d bytes: %w", path, p.maxSize, ErrNotText)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file %q: %w", path, err)
	}

	// size can change between stat and read on live logs
	if len(b) > p.maxSize {
		return "", fmt.Errorf("file %q exceeds maximum size of %d bytes: %w", path, p.maxSize, ErrNotText)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("content of file %q is not valid UTF-8: %w", path, ErrNotText)
	}

	return string(b), nil
}

// Digest returns the SHA-256 digest of the file at path as "sha256:<hex>".
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file %q: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file %q: %w", path, err)
	}
	return DigestPrefix + hex.EncodeToString(h.Sum(nil)), nil
}
