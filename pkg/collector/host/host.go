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

package host

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/NVIDIA/hostguard/pkg/errors"
)

const statusListen = "LISTEN"

// Socket is one listening endpoint.
type Socket struct {
	Proto  string
	IP     string
	Port   uint32
	Status string
}

// Proc is one process table row.
type Proc struct {
	PID     int32
	PPID    int32
	User    string
	Command string
}

// ListeningPorts returns listening TCP sockets and bound UDP sockets, one per line.
func ListeningPorts(ctx context.Context) (string, error) {
	conns, err := net.ConnectionsWithContext(ctx, "inet")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnavailable, "failed to list sockets", err)
	}

	sockets := make([]Socket, 0, len(conns))
	for _, c := range conns {
		s, ok := toSocket(c)
		if !ok {
			continue
		}
		sockets = append(sockets, s)
	}

	slog.Debug("collected listening sockets", "count", len(sockets))
	return FormatSockets(sockets), nil
}

func toSocket(c net.ConnectionStat) (Socket, bool) {
	proto := "tcp"
	if c.Type == syscall.SOCK_DGRAM {
		proto = "udp"
	}
	if c.Family == syscall.AF_INET6 {
		proto += "6"
	}

	switch {
	case strings.HasPrefix(proto, "tcp"):
		if c.Status != statusListen {
			return Socket{}, false
		}
	default:
		// unconnected UDP sockets are the datagram equivalent of listening
		if c.Raddr.IP != "" && c.Raddr.Port != 0 {
			return Socket{}, false
		}
	}

	status := c.Status
	if status == "NONE" {
		status = ""
	}

	return Socket{Proto: proto, IP: c.Laddr.IP, Port: c.Laddr.Port, Status: status}, true
}

// FormatSockets renders sockets as sorted, de-duplicated lines.
func FormatSockets(sockets []Socket) string {
	seen := make(map[string]struct{}, len(sockets))
	lines := make([]string, 0, len(sockets))
	for _, s := range sockets {
		line := strings.TrimSpace(fmt.Sprintf("%s %s %s", s.Proto, joinHostPort(s.IP, s.Port), s.Status))
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, line)
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// joinHostPort follows netstat: IPv6 addresses are not bracketed.
func joinHostPort(ip string, port uint32) string {
	if ip == "" {
		ip = "*"
	}
	return fmt.Sprintf("%s:%d", ip, port)
}

// Processes returns the process table, one process per line ordered by pid.
// Processes that exit during the walk are skipped.
func Processes(ctx context.Context) (string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnavailable, "failed to list processes", err)
	}

	rows := make([]Proc, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// exited between listing and inspection
			continue
		}
		row := Proc{PID: p.Pid, Command: name}
		if ppid, err := p.PpidWithContext(ctx); err == nil {
			row.PPID = ppid
		}
		if user, err := p.UsernameWithContext(ctx); err == nil {
			row.User = user
		}
		if cmdline, err := p.CmdlineWithContext(ctx); err == nil && cmdline != "" {
			row.Command = cmdline
		}
		rows = append(rows, row)
	}

	slog.Debug("collected process table", "count", len(rows))
	return FormatProcesses(rows), nil
}

// FormatProcesses renders rows ordered by pid.
func FormatProcesses(rows []Proc) string {
	sorted := make([]Proc, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PID < sorted[j].PID })

	lines := make([]string, 0, len(sorted))
	for _, r := range sorted {
		user := r.User
		if user == "" {
			user = "?"
		}
		lines = append(lines, fmt.Sprintf("%d %d %s %s", r.PID, r.PPID, user, r.Command))
	}
	return strings.Join(lines, "\n")
}

// Identity describes the monitored host.
type Identity struct {
	Hostname        string `json:"hostname" yaml:"hostname"`
	HostID          string `json:"hostId" yaml:"hostId"`
	Platform        string `json:"platform" yaml:"platform"`
	PlatformVersion string `json:"platformVersion" yaml:"platformVersion"`
	KernelVersion   string `json:"kernelVersion" yaml:"kernelVersion"`
}

// Describe returns the host identity. Partial information is returned when
// some sources are unreadable.
func Describe(ctx context.Context) (*Identity, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil && info == nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to read host info", err)
	}
	if err != nil {
		slog.Debug("partial host info", "error", err)
	}
	return &Identity{
		Hostname:        info.Hostname,
		HostID:          info.HostID,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelVersion:   info.KernelVersion,
	}, nil
}
