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

// Package server implements the optional hostguard status server.
//
// The server is disabled unless a metrics address is configured. When running
// it exposes:
//
//   - GET /health  liveness, always 200 while the process serves requests
//   - GET /ready   readiness, 200 once the readiness check passes
//   - GET /metrics Prometheus metrics for passes, steps and HTTP requests
//
// Additional read-only handlers (for example the monitor status) are
// registered with WithHandler and run behind the middleware chain:
// metrics, request ID, panic recovery, rate limiting and request logging.
//
// # Usage
//
//	s := server.New(
//	    server.WithConfig(server.NewConfig("127.0.0.1:9464")),
//	    server.WithReadinessCheck(mon.Ready),
//	    server.WithHandler(map[string]http.HandlerFunc{
//	        "/v1/status": statusHandler,
//	    }),
//	)
//	err := s.Start(ctx) // blocks until ctx is canceled
//
// Start returns after a graceful shutdown bounded by Config.ShutdownTimeout.
package server
