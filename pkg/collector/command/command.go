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

package command

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/NVIDIA/hostguard/pkg/defaults"
	"github.com/NVIDIA/hostguard/pkg/errors"
)

// stderrLimit bounds the stderr excerpt carried on errors.
const stderrLimit = 512

// waitDelay bounds how long Run waits for output pipes after the process is
// killed on timeout.
const waitDelay = 2 * time.Second

// Option configures a Probe.
type Option func(*Probe)

// WithTimeout sets the per-invocation timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Probe) {
		p.timeout = timeout
	}
}

// WithEnv sets extra environment variables (KEY=VALUE) for every command.
func WithEnv(env ...string) Option {
	return func(p *Probe) {
		p.env = append(p.env, env...)
	}
}

// Probe runs commands with a bounded timeout.
type Probe struct {
	timeout time.Duration
	env     []string
}

// NewProbe creates a Probe with the given options.
func NewProbe(opts ...Option) *Probe {
	p := &Probe{
		timeout: defaults.ProbeTimeout,
		env:     []string{"LC_ALL=C"},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.timeout <= 0 {
		p.timeout = defaults.ProbeTimeout
	}
	return p
}

// Timeout returns the effective per-invocation timeout.
func (p *Probe) Timeout() time.Duration {
	return p.timeout
}

// Run executes name with args and returns its stdout with surrounding
// whitespace trimmed.
func (p *Probe) Run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(cmd.Environ(), p.env...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	cmdLine := strings.TrimSpace(name + " " + strings.Join(args, " "))

	if err != nil {
		errCtx := map[string]any{
			"command":  cmdLine,
			"duration": duration.String(),
		}
		if s := excerpt(stderr.String()); s != "" {
			errCtx["stderr"] = s
		}

		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			errCtx["timeout"] = p.timeout.String()
			slog.Warn("command probe timed out", "command", cmdLine, "timeout", p.timeout)
			return "", errors.WrapWithContext(errors.ErrCodeTimeout, "command timed out", err, errCtx)
		}

		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			errCtx["exitCode"] = exitErr.ExitCode()
		}
		slog.Warn("command probe failed", "command", cmdLine, "error", err)
		return "", errors.WrapWithContext(errors.ErrCodeUnavailable, "command failed", err, errCtx)
	}

	slog.Debug("command probe completed",
		"command", cmdLine,
		"duration", duration,
		"bytes", stdout.Len())

	return strings.TrimSpace(stdout.String()), nil
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= stderrLimit {
		return s
	}
	n := stderrLimit
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
