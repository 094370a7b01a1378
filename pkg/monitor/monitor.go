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

package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/NVIDIA/hostguard/pkg/defaults"
	"github.com/NVIDIA/hostguard/pkg/errors"
	"github.com/NVIDIA/hostguard/pkg/logging"
	"github.com/NVIDIA/hostguard/pkg/module"
	"github.com/NVIDIA/hostguard/pkg/snapshot"
)

// State is the scheduler state.
type State int32

const (
	// StateIdle is between passes.
	StateIdle State = iota
	// StateCycling is while a pass runs.
	StateCycling
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCycling:
		return "cycling"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Store is the history used by the loop.
type Store interface {
	LatestSnapshot(ctx context.Context, module string) (snapshot.Data, error)
	AppendSnapshot(ctx context.Context, module string, data snapshot.Data) (int64, error)
	AppendDiff(ctx context.Context, module string, differences []string) error
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval sets the time between the start of two passes.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		m.interval = d
	}
}

// WithJournal sets the event journal. Without one only structured logs are
// written.
func WithJournal(j *logging.Journal) Option {
	return func(m *Monitor) {
		m.journal = j
	}
}

// WithPassHook registers fn to be called after every pass.
func WithPassHook(fn func(PassResult)) Option {
	return func(m *Monitor) {
		m.onPass = fn
	}
}

// Monitor runs passes over registered modules.
type Monitor struct {
	modules  []module.Module
	store    Store
	journal  *logging.Journal
	interval time.Duration
	onPass   func(PassResult)

	state    atomic.Int32
	passes   atomic.Int64
	lastPass atomic.Int64
}

// New creates a Monitor. Module names must be unique.
func New(store Store, modules []module.Module, opts ...Option) (*Monitor, error) {
	m := &Monitor{
		modules:  modules,
		store:    store,
		interval: defaults.ScanInterval,
	}
	for _, opt := range opts {
		opt(m)
	}

	if store == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "store is required")
	}
	if len(modules) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "at least one module is required")
	}
	if m.interval <= 0 {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig, "interval must be positive",
			map[string]any{"interval": m.interval.String()})
	}
	seen := make(map[string]struct{}, len(modules))
	for _, mod := range modules {
		if mod == nil || mod.Name() == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "module name cannot be empty")
		}
		if _, dup := seen[mod.Name()]; dup {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig, "duplicate module name",
				map[string]any{"module": mod.Name()})
		}
		seen[mod.Name()] = struct{}{}
	}

	return m, nil
}

// Interval returns the configured pass interval.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// State returns the current scheduler state.
func (m *Monitor) State() State {
	return State(m.state.Load())
}

// Passes returns the number of completed passes.
func (m *Monitor) Passes() int64 {
	return m.passes.Load()
}

// LastPass returns the completion time of the last pass, or the zero time.
func (m *Monitor) LastPass() time.Time {
	ns := m.lastPass.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Ready reports whether at least one pass has completed.
func (m *Monitor) Ready() bool {
	return m.passes.Load() > 0
}

// Run runs a pass immediately and then one per interval until ctx is
// canceled. It returns nil on cancellation.
func (m *Monitor) Run(ctx context.Context) error {
	slog.Info("monitor started",
		"interval", m.interval,
		"modules", len(m.modules))
	m.event("Monitoring started (interval %s, %d modules).", m.interval, len(m.modules))

	m.RunPass(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("monitor stopped", "passes", m.passes.Load())
			return nil
		case <-ticker.C:
			// a tick and cancellation can be ready together
			if ctx.Err() != nil {
				slog.Info("monitor stopped", "passes", m.passes.Load())
				return nil
			}
			m.RunPass(ctx)
		}
	}
}

func (m *Monitor) event(format string, args ...any) {
	if m.journal == nil {
		return
	}
	if err := m.journal.Event(format, args...); err != nil {
		slog.Error("failed to write journal", "error", err)
		errorsTotal.WithLabelValues("", opJournal).Inc()
	}
}
