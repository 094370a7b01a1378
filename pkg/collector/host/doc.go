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

// Package host captures listening sockets, the process table and host
// identity through gopsutil.
//
// These are the native equivalents of the `netstat -tuln` and `ps auxwf`
// command probes. Output is rendered as sorted text rows so that two captures
// of an unchanged host are byte-identical:
//
//	tcp 0.0.0.0:22 LISTEN
//	tcp6 :::443 LISTEN
//	udp 127.0.0.53:53
//
// Process rows carry pid, parent pid, user and command line but no resource
// usage, which would differ on every capture.
package host
