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

// Package snapshot defines the captured-state data model shared by modules,
// the store and the scheduler.
//
// # Overview
//
// A module's capture is a Data value: a mapping from field name to either a
// string or a nested string mapping. Data is persisted as JSON and compared
// field by field. Snapshot and DiffRecord are the immutable rows read back
// from the store.
//
// # Normalization
//
// A capture handed to a comparison must have the exact shape it would have
// after a store round trip, otherwise a nested map[string]string in memory
// would never equal the map[string]any decoded from the database. Normalize
// performs that round trip:
//
//	cur, err := data.Normalize()
//	changed := snapshot.ChangedFields(prev, cur, fields)
//
// # Building
//
//	data := snapshot.NewBuilder().
//	    Set("content", text).
//	    Build()
package snapshot
