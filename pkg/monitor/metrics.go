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

package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Step operations used as the "operation" label of errors_total.
const (
	opLoadPrevious    = "load_previous"
	opPersistSnapshot = "persist_snapshot"
	opPersistDiff     = "persist_diff"
	opJournal         = "journal"
	opPanic           = "panic"
)

var (
	passDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hostguard_pass_duration_seconds",
			Help:    "Time taken by one pass over all modules",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	passTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hostguard_passes_total",
			Help: "Total number of completed passes",
		},
	)

	stepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hostguard_step_duration_seconds",
			Help:    "Time taken by one module step",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 120},
		},
		[]string{"module"},
	)

	differencesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostguard_differences_total",
			Help: "Total number of differences detected",
		},
		[]string{"module"},
	)

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostguard_errors_total",
			Help: "Total number of step failures",
		},
		[]string{"module", "operation"},
	)

	lastPassTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hostguard_last_pass_timestamp_seconds",
			Help: "Unix time of the last completed pass",
		},
	)
)
