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

// Package cli implements the hostguard command line.
//
// # Commands
//
// run - Run the monitoring daemon:
//
//	hostguard run [--fast] [--interval 45s] [--metrics-address 127.0.0.1:9464]
//
// Runs a monitoring pass immediately and then once per interval until SIGINT or
// SIGTERM. A pass in progress completes before the process exits. Startup
// failures (invalid configuration, unusable database or journal) exit with 1.
//
// snapshot - Capture all modules once:
//
//	hostguard snapshot --format yaml
//
// diffs - List recorded differences:
//
//	hostguard diffs --module passwd --limit 5
//
// history - List stored snapshots:
//
//	hostguard history --module host --format json
//
// # Global Flags
//
//	--config, -c   YAML configuration file (env HOSTGUARD_CONFIG)
//	--log-level    Log level: debug, info, warn, error (env LOG_LEVEL)
//
// # Output Formats
//
// The snapshot, diffs and history commands accept --format table (default),
// yaml or json and --output to write to a file instead of stdout.
//
// # Environment Variables
//
//	HOSTGUARD_CONFIG           Configuration file
//	HOSTGUARD_DATABASE         SQLite database path
//	HOSTGUARD_JOURNAL          Event journal path
//	HOSTGUARD_INTERVAL         Pass interval, e.g. 30s
//	HOSTGUARD_METRICS_ADDRESS  Status server address
//	LOG_LEVEL                  Log verbosity
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/hostguard/pkg/cli.version=1.0.0'"
package cli
