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

// Package monitor runs the hostguard scheduler loop.
//
// A Monitor owns the registered modules, a snapshot store and an optional
// event journal. Run performs one pass immediately and then one pass per
// interval tick until the context is canceled:
//
//	Idle --(tick)--> Cycling --(all modules processed)--> Idle
//
// Every pass processes modules sequentially. For each module:
//
//  1. load the previous snapshot from the store
//  2. take a new snapshot
//  3. persist the new snapshot
//  4. compare previous and new
//  5. persist and journal the differences when there are any
//
// A failure in one step is logged, counted and never aborts the pass. When
// the previous snapshot cannot be loaded the module is skipped for the pass so
// the baseline is kept. When the new snapshot cannot be persisted the
// comparison still runs and differences are still reported.
//
// Passes never overlap. A pass that overruns the interval is followed
// immediately by the next one, without a burst of catch-up passes.
//
// # Shutdown
//
// Canceling the Run context stops the loop after the pass in progress.
// Modules run on a context detached from cancellation so an in-flight pass
// completes and its writes are not torn.
//
// # Usage
//
//	m, err := monitor.New(st, modules,
//	    monitor.WithInterval(defaults.ScanInterval),
//	    monitor.WithJournal(journal),
//	)
//	if err != nil {
//	    return err
//	}
//	return m.Run(ctx)
//
// # Observability
//
// Prometheus metrics (hostguard_*) cover pass and step durations, pass count,
// differences by module, errors by module and operation, and the time of the
// last completed pass. Every pass carries a uuid cycle id on its log records.
package monitor
