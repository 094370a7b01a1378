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

// Package command runs read-only collaborator commands for hostguard collectors.
//
// A Probe executes a command with arguments under a mandatory per-probe
// timeout and returns its trimmed stdout. Commands run without a shell.
//
//	probe := command.NewProbe(command.WithTimeout(10 * time.Second))
//	out, err := probe.Run(ctx, "netstat", "-tuln")
//
// A non-zero exit status, a spawn failure or an expired timeout returns an
// *errors.StructuredError (TIMEOUT or SERVICE_UNAVAILABLE) carrying the
// command, exit code and a bounded excerpt of stderr. A zero or negative
// timeout falls back to defaults.ProbeTimeout.
package command
