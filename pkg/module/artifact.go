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

package module

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/NVIDIA/hostguard/pkg/collector"
	"github.com/NVIDIA/hostguard/pkg/snapshot"
)

// Field binds a snapshot field name to its capture.
type Field struct {
	Name    string
	Capture collector.Func
}

// MultiArtifact captures an ordered set of fields.
type MultiArtifact struct {
	name   string
	fields []Field
}

// NewMultiArtifact returns a module named name capturing fields in order.
func NewMultiArtifact(name string, fields ...Field) *MultiArtifact {
	return &MultiArtifact{
		name:   name,
		fields: fields,
	}
}

// Name returns the module name.
func (m *MultiArtifact) Name() string {
	return m.name
}

// Fields returns the declared field names in order.
func (m *MultiArtifact) Fields() []string {
	names := make([]string, len(m.fields))
	for i, f := range m.fields {
		names[i] = f.Name
	}
	return names
}

// TakeSnapshot captures every field in declared order. A failed capture is
// recorded as the absent value.
func (m *MultiArtifact) TakeSnapshot(ctx context.Context) snapshot.Data {
	data := make(snapshot.Data, len(m.fields))
	for _, f := range m.fields {
		start := time.Now()
		v, err := collector.Capture(ctx, f.Capture)
		if err != nil {
			slog.Warn("artifact unavailable",
				"target", m.name,
				"field", f.Name,
				"error", err)
		}
		slog.Debug("captured artifact",
			"target", m.name,
			"field", f.Name,
			"duration", time.Since(start))
		data[f.Name] = v
	}
	return data
}

// CompareSnapshot reports "Changes detected in <field>." for every declared
// field whose value differs. Fields missing from previous are not reported.
func (m *MultiArtifact) CompareSnapshot(previous, current snapshot.Data) []string {
	if previous.IsEmpty() {
		return nil
	}

	// the stored side is in its JSON form; compare like with like
	changed := snapshot.ChangedFields(m.normalize(previous), m.normalize(current), m.Fields())
	if len(changed) == 0 {
		return nil
	}
	differences := make([]string, len(changed))
	for i, field := range changed {
		differences[i] = fmt.Sprintf("Changes detected in %s.", field)
	}
	return differences
}

func (m *MultiArtifact) normalize(d snapshot.Data) snapshot.Data {
	n, err := d.Normalize()
	if err != nil {
		slog.Warn("failed to normalize capture", "target", m.name, "error", err)
		return d
	}
	return n
}
