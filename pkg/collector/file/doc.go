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

// Package file reads monitored files for hostguard collectors.
//
// The Parser returns the full text of a file for integrity comparison, or the
// file split into lines or key/value pairs for descriptive captures such as
// /etc/os-release.
//
// # Usage
//
//	p := file.NewParser()
//	content, err := p.ReadContent("/etc/passwd")
//	if err != nil {
//	    // artifact unavailable
//	}
//
// Files that are not valid UTF-8 or that exceed the configured maximum size
// return an error matching ErrNotText. Callers that still need to detect
// changes in such files (binary login records such as /var/log/wtmp) use
// Digest, which streams the file through SHA-256:
//
//	if file.IsNotText(err) {
//	    digest, err := file.Digest("/var/log/wtmp") // "sha256:<hex>"
//	}
//
// # Thread Safety
//
// A Parser holds only configuration and is safe for concurrent use.
package file
