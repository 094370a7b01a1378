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

// Package store persists snapshots and differences in an embedded SQLite
// database.
//
// # Schema
//
//	snapshots(id INTEGER PRIMARY KEY AUTOINCREMENT, timestamp TEXT, module TEXT, snapshot_data TEXT)
//	diffs(id INTEGER PRIMARY KEY AUTOINCREMENT, timestamp TEXT, module TEXT, differences TEXT)
//
// Both tables are append-only and indexed on module. Payloads are JSON. Ids
// are shared by all modules and strictly increase, so "latest" is the row
// with the highest id for a module.
//
// # Durability
//
// The database runs in WAL mode with synchronous=FULL on a single connection.
// Every write is one committed statement before the call returns.
//
// OpenReadOnly serves query tools: it never creates the file or changes the
// journal mode.
//
// # Usage
//
//	s, err := store.Open(ctx, "/var/lib/hostguard/hostguard.db")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	prev, err := s.LatestSnapshot(ctx, "passwd")
//	id, err := s.AppendSnapshot(ctx, "passwd", data)
//	err = s.AppendDiff(ctx, "passwd", differences)
//
// Failures are *errors.StructuredError values with code STORAGE and carry the
// module and operation in their context.
package store
