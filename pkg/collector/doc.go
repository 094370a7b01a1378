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

// Package collector provides the read-only capture primitives hostguard modules
// use to observe host artifacts.
//
// # Overview
//
// A collector produces one point-in-time value for a named artifact, either by
// reading a file or by invoking a read-only command with a bounded timeout:
//
//	type Func func(ctx context.Context) (any, error)
//
// Values are strings or nested string mappings. An artifact that cannot be
// observed (missing file, failing or hung command) returns an error; callers
// record the Absent value for that capture and move on, so a vanished file is
// still a reportable difference on the next comparison.
//
// No collector mutates monitored state.
//
// # Capture Strategies
//
//   - File: full text of a file (see collector/file)
//   - Command: trimmed stdout of a command under a per-probe timeout (see collector/command)
//   - Port: TCP connect probe reporting "open" or "closed" (see collector/netprobe)
//   - SystemD: enabled unit files over D-Bus (see collector/systemd)
//   - Host: listening sockets and the process table via gopsutil (see collector/host)
//
// Native captures degrade to their command equivalent with Fallback:
//
//	ports := collector.Fallback(
//	    host.ListeningPorts,
//	    collector.Command(probe, "netstat", "-tuln"),
//	)
//
// # Error Handling
//
// Capture errors are *errors.StructuredError values with code
// SERVICE_UNAVAILABLE or TIMEOUT. They are never fatal to a pass.
package collector
