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

package defaults

import "time"

// Scheduler intervals.
const (
	// ScanInterval is the default time between the start of two passes.
	ScanInterval = 60 * time.Second

	// FastScanInterval is the interval used by the fast variant (--fast).
	FastScanInterval = 30 * time.Second
)

// Collector timeouts for probe operations.
const (
	// ProbeTimeout is the default bounded wait for a command probe.
	// Probes should respect parent context deadlines when shorter.
	ProbeTimeout = 10 * time.Second

	// RecentFilesTimeout is the bounded wait for the recently-modified files scan.
	RecentFilesTimeout = 2 * time.Minute

	// PortProbeTimeout is the dial timeout for TCP port probes.
	PortProbeTimeout = 10 * time.Second

	// SystemDTimeout bounds D-Bus calls made by the systemd collector.
	SystemDTimeout = 10 * time.Second
)

// Storage settings.
const (
	// StoreBusyTimeout is applied as PRAGMA busy_timeout on the snapshot database.
	StoreBusyTimeout = 10 * time.Second

	// HistoryLimit is the default number of rows returned by history queries.
	HistoryLimit = 20
)

// Server timeouts for the optional status server.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)
