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

package snapshot

import (
	"sort"
	"time"
)

// FieldContent is the field used by single-file modules.
const FieldContent = "content"

// Data is one module's captured state: field name to value. Values are
// strings or nested mappings with string values.
type Data map[string]any

// IsEmpty reports whether the capture holds no fields. An empty capture is
// how modules encode "nothing could be read" and how the store reports
// "no previous snapshot".
func (d Data) IsEmpty() bool {
	return len(d) == 0
}

// Has checks if a field exists in the capture.
func (d Data) Has(field string) bool {
	_, ok := d[field]
	return ok
}

// GetString returns a string field. The second result is false when the field
// is missing or not a string.
func (d Data) GetString(field string) (string, bool) {
	v, ok := d[field].(string)
	return v, ok
}

// Keys returns all field names in sorted order.
func (d Data) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot is one persisted capture of a module.
type Snapshot struct {
	ID        int64     `json:"id" yaml:"id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Module    string    `json:"module" yaml:"module"`
	Data      Data      `json:"data" yaml:"data"`
}

// DiffRecord is one persisted, non-empty set of differences for a module.
type DiffRecord struct {
	ID          int64     `json:"id" yaml:"id"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	Module      string    `json:"module" yaml:"module"`
	Differences []string  `json:"differences" yaml:"differences"`
}

// Builder provides a fluent API for building Data values.
type Builder struct {
	data Data
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{data: make(Data)}
}

// Set adds or updates a string field.
func (b *Builder) Set(field, value string) *Builder {
	b.data[field] = value
	return b
}

// Build returns the Data.
func (b *Builder) Build() Data {
	return b.data
}
