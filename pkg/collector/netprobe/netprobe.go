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

package netprobe

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/NVIDIA/hostguard/pkg/defaults"
)

const (
	// StateOpen is reported for a port that accepts connections.
	StateOpen = "open"
	// StateClosed is reported for a port that refuses or times out.
	StateClosed = "closed"
)

// Prober probes TCP ports.
type Prober struct {
	timeout time.Duration
}

// NewProber returns a Prober with the given connect timeout. A non-positive
// timeout uses defaults.PortProbeTimeout.
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = defaults.PortProbeTimeout
	}
	return &Prober{timeout: timeout}
}

// Check reports whether host:port accepts a TCP connection.
func (p *Prober) Check(ctx context.Context, host string, port int) bool {
	d := net.Dialer{Timeout: p.timeout}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		slog.Debug("port probe failed", "address", addr, "error", err)
		return false
	}
	if err := conn.Close(); err != nil {
		slog.Debug("failed to close probe connection", "address", addr, "error", err)
	}
	return true
}

// State returns StateOpen or StateClosed for host:port.
func (p *Prober) State(ctx context.Context, host string, port int) string {
	if p.Check(ctx, host, port) {
		return StateOpen
	}
	return StateClosed
}
