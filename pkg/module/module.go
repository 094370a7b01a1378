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

package module

import (
	"context"

	"github.com/NVIDIA/hostguard/pkg/snapshot"
)

// Module captures and compares the state of a set of host artifacts.
type Module interface {
	// Name returns the module identity used as the history partition key.
	Name() string
	// TakeSnapshot captures the current state. Unavailable artifacts are
	// recorded as absent values; TakeSnapshot never fails.
	TakeSnapshot(ctx context.Context) snapshot.Data
	// CompareSnapshot returns the differences between two captures. An empty
	// previous capture yields no differences.
	CompareSnapshot(previous, current snapshot.Data) []string
}
