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
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/hostguard/pkg/module"
	"github.com/NVIDIA/hostguard/pkg/snapshot"
)

// PassResult summarizes one pass.
type PassResult struct {
	CycleID  string
	Started  time.Time
	Duration time.Duration
	Steps    []StepResult
}

// Differences returns the total number of differences found in the pass.
func (r PassResult) Differences() int {
	n := 0
	for _, s := range r.Steps {
		n += len(s.Differences)
	}
	return n
}

// Failures returns the number of steps with at least one error.
func (r PassResult) Failures() int {
	n := 0
	for _, s := range r.Steps {
		if len(s.Errors) > 0 {
			n++
		}
	}
	return n
}

// StepResult is the outcome of one module step.
type StepResult struct {
	Module      string
	SnapshotID  int64
	Skipped     bool
	Differences []string
	Errors      []error
}

// RunPass processes every module once, in registration order. Modules run on
// a context detached from ctx's cancellation.
func (m *Monitor) RunPass(ctx context.Context) PassResult {
	m.state.Store(int32(StateCycling))
	defer m.state.Store(int32(StateIdle))

	passCtx := context.WithoutCancel(ctx)
	cycleID := uuid.New().String()
	logger := slog.With("cycle", cycleID)

	res := PassResult{
		CycleID: cycleID,
		Started: time.Now(),
		Steps:   make([]StepResult, 0, len(m.modules)),
	}

	logger.Debug("pass started")
	m.event("Pass %s started.", cycleID)

	for _, mod := range m.modules {
		res.Steps = append(res.Steps, m.step(passCtx, logger, mod))
	}

	res.Duration = time.Since(res.Started)
	passDuration.Observe(res.Duration.Seconds())
	passTotal.Inc()
	m.passes.Add(1)
	now := time.Now()
	m.lastPass.Store(now.UnixNano())
	lastPassTimestamp.Set(float64(now.Unix()))

	logger.Info("pass completed",
		"duration", res.Duration,
		"modules", len(res.Steps),
		"differences", res.Differences(),
		"failures", res.Failures())

	if m.onPass != nil {
		m.onPass(res)
	}
	return res
}

// step runs load, take, persist, compare and report for one module. A panic
// inside the module is recovered and recorded as a step failure.
func (m *Monitor) step(ctx context.Context, logger *slog.Logger, mod module.Module) (res StepResult) {
	name := mod.Name()
	res.Module = name
	logger = logger.With("target", name)

	start := time.Now()
	defer func() {
		stepDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("module panic: %v", r)
			logger.Error("module step panicked", "panic", r)
			errorsTotal.WithLabelValues(name, opPanic).Inc()
			res.Errors = append(res.Errors, err)
		}
	}()

	previous, err := m.store.LatestSnapshot(ctx, name)
	if err != nil {
		logger.Error("failed to load previous snapshot, skipping module",
			"operation", opLoadPrevious,
			"error", err)
		errorsTotal.WithLabelValues(name, opLoadPrevious).Inc()
		res.Errors = append(res.Errors, err)
		res.Skipped = true
		return res
	}

	current := mod.TakeSnapshot(ctx)

	id, err := m.store.AppendSnapshot(ctx, name, current)
	if err != nil {
		logger.Error("failed to persist snapshot",
			"operation", opPersistSnapshot,
			"error", err)
		errorsTotal.WithLabelValues(name, opPersistSnapshot).Inc()
		res.Errors = append(res.Errors, err)
	} else {
		res.SnapshotID = id
	}

	normalized, err := current.Normalize()
	if err != nil {
		logger.Warn("failed to normalize snapshot", "error", err)
		normalized = current
	}

	differences := mod.CompareSnapshot(previous, normalized)
	if len(differences) == 0 {
		logger.Debug("no differences")
		return res
	}
	res.Differences = differences

	logger.Warn("differences detected", "differences", differences)
	differencesTotal.WithLabelValues(name).Add(float64(len(differences)))

	if err := m.store.AppendDiff(ctx, name, differences); err != nil {
		logger.Error("failed to persist differences",
			"operation", opPersistDiff,
			"error", err)
		errorsTotal.WithLabelValues(name, opPersistDiff).Inc()
		res.Errors = append(res.Errors, err)
	}

	if m.journal != nil {
		if err := m.journal.Differences(name, differences); err != nil {
			logger.Error("failed to journal differences",
				"operation", opJournal,
				"error", err)
			errorsTotal.WithLabelValues(name, opJournal).Inc()
			res.Errors = append(res.Errors, err)
		}
	}

	return res
}

// CaptureAll takes one snapshot of every module without persisting anything.
func CaptureAll(ctx context.Context, modules []module.Module) map[string]snapshot.Data {
	out := make(map[string]snapshot.Data, len(modules))
	for _, mod := range modules {
		out[mod.Name()] = mod.TakeSnapshot(ctx)
	}
	return out
}
