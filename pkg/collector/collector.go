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

package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/NVIDIA/hostguard/pkg/collector/command"
	"github.com/NVIDIA/hostguard/pkg/collector/file"
	"github.com/NVIDIA/hostguard/pkg/collector/netprobe"
	"github.com/NVIDIA/hostguard/pkg/errors"
)

// Absent is the value recorded for an artifact that could not be observed.
const Absent = ""

// Func captures one artifact.
type Func func(ctx context.Context) (any, error)

// File reads the full text of path.
func File(path string) Func {
	parser := file.NewParser()
	return func(ctx context.Context) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := parser.ReadContent(path)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeUnavailable,
				"file unavailable", err, map[string]any{"path": path})
		}
		return content, nil
	}
}

// Files reads several files into a nested mapping keyed by path. Files that
// are missing map to Absent. Content that is not UTF-8 text (e.g. wtmp) or that
// exceeds the parser limit is recorded as its SHA-256 digest instead.
func Files(paths []string) Func {
	parser := file.NewParser()
	return func(ctx context.Context) (any, error) {
		out := make(map[string]string, len(paths))
		for _, p := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			content, err := parser.ReadContent(p)
			switch {
			case err == nil:
				out[p] = content
			case file.IsNotText(err):
				digest, derr := file.Digest(p)
				if derr != nil {
					slog.Warn("failed to digest file", "path", p, "error", derr)
					out[p] = Absent
					continue
				}
				out[p] = digest
			default:
				slog.Debug("file unavailable", "path", p, "error", err)
				out[p] = Absent
			}
		}
		return out, nil
	}
}

// Command runs name with args through probe and returns its trimmed stdout.
func Command(probe *command.Probe, name string, args ...string) Func {
	return func(ctx context.Context) (any, error) {
		out, err := probe.Run(ctx, name, args...)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

// Port probes a TCP port and returns "open" or "closed".
func Port(prober *netprobe.Prober, host string, port int) Func {
	return func(ctx context.Context) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return prober.State(ctx, host, port), nil
	}
}

// Text adapts a string-producing capture to a Func.
func Text(fn func(ctx context.Context) (string, error)) Func {
	return func(ctx context.Context) (any, error) {
		s, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Fallback returns a Func that runs primary and, when it fails, secondary.
func Fallback(primary, secondary Func) Func {
	return func(ctx context.Context) (any, error) {
		v, err := primary(ctx)
		if err == nil {
			return v, nil
		}
		slog.Warn("native capture failed, falling back to command", "error", err)
		v, serr := secondary(ctx)
		if serr != nil {
			return nil, fmt.Errorf("%w (native capture: %v)", serr, err)
		}
		return v, nil
	}
}

// Capture runs fn and converts failures into the Absent value. The error is
// returned alongside so callers can log it.
func Capture(ctx context.Context, fn Func) (any, error) {
	v, err := fn(ctx)
	if err != nil {
		return Absent, err
	}
	if v == nil {
		return Absent, nil
	}
	return v, nil
}

// FilterLines drops every line matching one of the wildcard patterns and
// returns the remaining lines. Supported patterns:
//   - "prefix*" matches lines starting with "prefix"
//   - "*suffix" matches lines ending with "suffix"
//   - "*contains*" matches lines containing "contains"
//   - "exact" matches lines exactly
func FilterLines(text string, patterns []string) string {
	if len(patterns) == 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		omit := false
		for _, pattern := range patterns {
			if MatchesPattern(line, pattern) {
				omit = true
				break
			}
		}
		if !omit {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// SortedLines returns text with its lines sorted, for captures whose source
// emits rows in an unstable order.
func SortedLines(text string) string {
	if text == "" {
		return text
	}
	lines := strings.Split(text, "\n")
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// MatchesPattern checks if s matches a wildcard pattern.
// Supports multiple wildcard segments, e.g., "a*b*c" matches "aXbYc".
func MatchesPattern(s, pattern string) bool {
	// No wildcard - exact match
	if !strings.Contains(pattern, "*") {
		return s == pattern
	}

	segments := strings.Split(pattern, "*")

	pos := 0
	for i, segment := range segments {
		if segment == "" {
			continue // Skip empty segments from consecutive wildcards
		}

		// First segment must be at the start (unless pattern starts with *)
		if i == 0 && pattern[0] != '*' {
			if !strings.HasPrefix(s, segment) {
				return false
			}
			pos = len(segment)
			continue
		}

		// Last segment must be at the end (unless pattern ends with *)
		if i == len(segments)-1 && pattern[len(pattern)-1] != '*' {
			return strings.HasSuffix(s[pos:], segment)
		}

		// Middle segments must appear in order
		idx := strings.Index(s[pos:], segment)
		if idx == -1 {
			return false
		}
		pos += idx + len(segment)
	}

	return true
}
