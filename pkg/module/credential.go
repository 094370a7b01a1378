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

	"github.com/NVIDIA/hostguard/pkg/collector"
	"github.com/NVIDIA/hostguard/pkg/snapshot"
)

// CredentialFile monitors the content of a single file.
type CredentialFile struct {
	name    string
	path    string
	capture collector.Func
}

// CredentialOption configures a CredentialFile.
type CredentialOption func(*CredentialFile)

// WithCapture replaces the file read, e.g. to watch a file through a
// different root while reporting the canonical path.
func WithCapture(fn collector.Func) CredentialOption {
	return func(m *CredentialFile) {
		m.capture = fn
	}
}

// NewCredentialFile returns a module named name that watches path.
func NewCredentialFile(name, path string, opts ...CredentialOption) *CredentialFile {
	m := &CredentialFile{
		name:    name,
		path:    path,
		capture: collector.File(path),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the module name.
func (m *CredentialFile) Name() string {
	return m.name
}

// Path returns the monitored file.
func (m *CredentialFile) Path() string {
	return m.path
}

// TakeSnapshot returns {content: <text>}, or empty Data when the file cannot
// be read.
func (m *CredentialFile) TakeSnapshot(ctx context.Context) snapshot.Data {
	v, err := m.capture(ctx)
	if err != nil {
		slog.Warn("credential file unavailable",
			"target", m.name,
			"path", m.path,
			"error", err)
		return snapshot.Data{}
	}
	content, _ := v.(string)
	return snapshot.NewBuilder().Set(snapshot.FieldContent, content).Build()
}

// CompareSnapshot reports a content change. Either side being empty yields
// no differences.
func (m *CredentialFile) CompareSnapshot(previous, current snapshot.Data) []string {
	if previous.IsEmpty() || current.IsEmpty() {
		return nil
	}
	prev, _ := previous.GetString(snapshot.FieldContent)
	cur, _ := current.GetString(snapshot.FieldContent)
	if prev == cur {
		return nil
	}
	return []string{fmt.Sprintf("%s content changed", m.path)}
}
