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

// Package defaults provides centralized configuration constants for hostguard.
//
// This package defines scan intervals, probe timeouts and server settings used
// across the codebase. Centralizing these values ensures consistency and makes
// tuning easier.
//
// # Categories
//
//   - Scheduler intervals: how often a full pass over all modules runs
//   - Collector timeouts: bounded waits for command and network probes
//   - Storage settings: SQLite busy timeout
//   - Server timeouts: for the optional status server
//
// # Usage
//
//	import "github.com/NVIDIA/hostguard/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.ProbeTimeout)
//	defer cancel()
//
// # Guidelines
//
//   - Probes: 10s default; recent-file scans walk large trees and get 2m
//   - Intervals: 60s for the monitor core, 30s for the fast variant
//   - Server shutdown: 30s for graceful shutdown
package defaults
