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

// Package systemd lists autostart services over the systemd D-Bus API.
//
// The Collector asks systemd for unit files in the "enabled" state matching
// the configured patterns (default "*.service") and renders them the way
// `systemctl list-unit-files --state=enabled` does, one "<unit> <state>" row
// per line, sorted by unit name so that equal states compare equal.
//
// # Usage
//
//	c := systemd.NewCollector()
//	text, err := c.EnabledServices(ctx)
//
// Output:
//
//	cron.service enabled
//	ssh.service enabled
//
// # Requirements
//
// The collector needs access to the system bus socket
// (/run/dbus/system_bus_socket). When the bus is unreachable the collector
// returns an error and callers fall back to the systemctl command probe.
package systemd
