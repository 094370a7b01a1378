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

// Package config loads the hostguard daemon configuration.
//
// Configuration comes from an optional YAML file layered over built-in
// defaults; command line flags and HOSTGUARD_* environment variables are
// applied on top by the CLI. Durations use Go syntax ("30s", "2m").
//
//	interval: 60s
//	database: /var/lib/hostguard/hostguard.db
//	journal: /var/log/hostguard/events.log
//	probeTimeout: 10s
//	recentFilesTimeout: 2m
//	metricsAddress: ":9464"
//	modules:
//	  credentialFiles:
//	    - name: passwd
//	      path: /etc/passwd
//	  host:
//	    enabled: true
//	    services:
//	      source: native
//	  ports:
//	    enabled: true
//	    address: 127.0.0.1
//	    list: [22, 80]
//
// Load rejects unknown keys. Validate reports the first invalid setting as an
// INVALID_CONFIG error.
package config
