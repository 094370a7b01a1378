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
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Encode serializes a capture to its stored JSON form. Empty and nil captures
// encode to "{}".
func Encode(d Data) ([]byte, error) {
	if d == nil {
		d = Data{}
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot data: %w", err)
	}
	return b, nil
}

// Decode parses a stored payload. Empty input decodes to an empty capture.
func Decode(b []byte) (Data, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return Data{}, nil
	}
	d := Data{}
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot data: %w", err)
	}
	return d, nil
}

// Normalize returns the capture exactly as it reads back from the store.
func (d Data) Normalize() (Data, error) {
	b, err := Encode(d)
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// EncodeDifferences serializes an ordered difference list.
func EncodeDifferences(differences []string) ([]byte, error) {
	if differences == nil {
		differences = []string{}
	}
	b, err := json.Marshal(differences)
	if err != nil {
		return nil, fmt.Errorf("failed to encode differences: %w", err)
	}
	return b, nil
}

// DecodeDifferences parses a stored difference list, preserving order.
func DecodeDifferences(b []byte) ([]string, error) {
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("failed to decode differences: %w", err)
	}
	return out, nil
}

// ChangedFields returns, in the order of fields, every field whose value
// differs between previous and current. A field missing from previous is not
// reported; a field missing from current while present in previous is.
// Both captures are expected to be normalized.
func ChangedFields(previous, current Data, fields []string) []string {
	var changed []string
	for _, field := range fields {
		if !previous.Has(field) {
			continue
		}
		// Compare values using reflect.DeepEqual to handle nested mappings
		if !reflect.DeepEqual(previous[field], current[field]) {
			changed = append(changed, field)
		}
	}
	return changed
}
