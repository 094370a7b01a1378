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

// Package module defines the monitored units of hostguard.
//
// A Module owns one or more collectors, captures its state as snapshot.Data
// and compares two captures into human-readable difference strings:
//
//	type Module interface {
//	    Name() string
//	    TakeSnapshot(ctx context.Context) snapshot.Data
//	    CompareSnapshot(previous, current snapshot.Data) []string
//	}
//
// The module name is its identity and partitions the snapshot and diff
// history. Modules hold no state beyond their construction-time
// configuration; the previous capture is handed back by the caller on every
// pass.
//
// # Variants
//
// CredentialFile watches one file and reports "<path> content changed".
//
// MultiArtifact captures an ordered list of named fields and reports
// "Changes detected in <field>." for each field that differs, in declared
// order.
//
// # Factory
//
// DefaultFactory builds the standard modules (passwd, host, ports) wired to
// production collectors:
//
//	f := module.NewDefaultFactory(
//	    module.WithProbeTimeout(10*time.Second),
//	    module.WithRecentFileRoots("/etc", "/usr/bin"),
//	)
//	host := f.CreateHostModule(module.DefaultHostSpec())
//
// CompareSnapshot never performs I/O.
package module
