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
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/NVIDIA/hostguard/pkg/collector"
	"github.com/NVIDIA/hostguard/pkg/collector/command"
	"github.com/NVIDIA/hostguard/pkg/collector/host"
	"github.com/NVIDIA/hostguard/pkg/collector/netprobe"
	"github.com/NVIDIA/hostguard/pkg/collector/systemd"
	"github.com/NVIDIA/hostguard/pkg/defaults"
)

// Source selects how an artifact with a native equivalent is captured.
type Source string

const (
	// SourceNative captures through a library API and falls back to the command.
	SourceNative Source = "native"
	// SourceCommand always runs the collaborator command.
	SourceCommand Source = "command"
)

// IsValid reports whether s is a known source.
func (s Source) IsValid() bool {
	return s == SourceNative || s == SourceCommand
}

// probeTZ is the time zone for host module commands.
const probeTZ = "TZ=UTC"

// Default module names.
const (
	NamePasswd = "passwd"
	NameHost   = "host"
	NamePorts  = "ports"
)

// Host module field names, in declared order.
const (
	FieldPasswd            = "passwd"
	FieldShadow            = "shadow"
	FieldGroup             = "group"
	FieldOpenPorts         = "open_ports"
	FieldAutostartServices = "autostart_services"
	FieldSecurityLogs      = "security_logs"
	FieldRecentFiles       = "recent_files"
	FieldProcessInfo       = "process_info"
)

// DefaultSecurityLogs are the login and audit logs captured by the host module.
var DefaultSecurityLogs = []string{
	"/var/log/auth.log",
	"/var/log/secure",
	"/var/log/wtmp",
	"/var/log/btmp",
}

// DefaultRecentFileRoots are the trees scanned for recently modified files.
var DefaultRecentFileRoots = []string{
	"/etc",
	"/bin",
	"/sbin",
	"/usr/bin",
	"/usr/sbin",
	"/usr/local/bin",
	"/root",
	"/home",
	"/var/spool/cron",
}

// HostSpec describes the host module.
type HostSpec struct {
	Name            string
	PasswdPath      string
	ShadowPath      string
	GroupPath       string
	PortsSource     Source
	ServicesSource  Source
	ProcessesSource Source
	SecurityLogs    []string
	RecentFileRoots []string
	// PortsFilter, ServicesFilter and ProcessFilter drop rows of the
	// corresponding capture that match one of these wildcard patterns.
	PortsFilter    []string
	ServicesFilter []string
	ProcessFilter  []string
}

// DefaultHostSpec returns the standard host module description.
func DefaultHostSpec() HostSpec {
	return HostSpec{
		Name:            NameHost,
		PasswdPath:      "/etc/passwd",
		ShadowPath:      "/etc/shadow",
		GroupPath:       "/etc/group",
		PortsSource:     SourceCommand,
		ServicesSource:  SourceCommand,
		ProcessesSource: SourceCommand,
		SecurityLogs:    DefaultSecurityLogs,
		RecentFileRoots: DefaultRecentFileRoots,
	}
}

// Option configures a DefaultFactory.
type Option func(*DefaultFactory)

// WithProbeTimeout sets the timeout for command probes.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(f *DefaultFactory) {
		f.probeTimeout = timeout
	}
}

// WithRecentFilesTimeout sets the timeout for the recently modified files scan.
func WithRecentFilesTimeout(timeout time.Duration) Option {
	return func(f *DefaultFactory) {
		f.recentFilesTimeout = timeout
	}
}

// WithPortProbeTimeout sets the TCP connect timeout for port probes.
func WithPortProbeTimeout(timeout time.Duration) Option {
	return func(f *DefaultFactory) {
		f.portProbeTimeout = timeout
	}
}

// DefaultFactory creates modules with production collectors.
type DefaultFactory struct {
	probeTimeout       time.Duration
	recentFilesTimeout time.Duration
	portProbeTimeout   time.Duration
	systemd            *systemd.Collector
}

// NewDefaultFactory creates a factory with the given options.
func NewDefaultFactory(opts ...Option) *DefaultFactory {
	f := &DefaultFactory{
		probeTimeout:       defaults.ProbeTimeout,
		recentFilesTimeout: defaults.RecentFilesTimeout,
		portProbeTimeout:   defaults.PortProbeTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.systemd = systemd.NewCollector()
	return f
}

// CreateCredentialModule creates a module watching a single file.
func (f *DefaultFactory) CreateCredentialModule(name, path string) Module {
	return NewCredentialFile(name, path)
}

// CreateHostModule creates the multi-artifact host module.
func (f *DefaultFactory) CreateHostModule(spec HostSpec) Module {
	// ps and find print local times; pin them so a TZ change is not a diff
	probe := command.NewProbe(command.WithTimeout(f.probeTimeout), command.WithEnv(probeTZ))
	scan := command.NewProbe(command.WithTimeout(f.recentFilesTimeout), command.WithEnv(probeTZ))

	return NewMultiArtifact(spec.Name,
		Field{Name: FieldPasswd, Capture: collector.File(spec.PasswdPath)},
		Field{Name: FieldShadow, Capture: collector.File(spec.ShadowPath)},
		Field{Name: FieldGroup, Capture: collector.File(spec.GroupPath)},
		Field{Name: FieldOpenPorts, Capture: f.openPorts(spec.PortsSource, probe, spec.PortsFilter)},
		Field{Name: FieldAutostartServices, Capture: f.autostartServices(spec.ServicesSource, probe, spec.ServicesFilter)},
		Field{Name: FieldSecurityLogs, Capture: collector.Files(spec.SecurityLogs)},
		Field{Name: FieldRecentFiles, Capture: recentFiles(scan, spec.RecentFileRoots)},
		Field{Name: FieldProcessInfo, Capture: processInfo(spec.ProcessesSource, probe, spec.ProcessFilter)},
	)
}

// CreatePortsModule creates a module with one "port_<n>" field per TCP port
// on address, each "open" or "closed".
func (f *DefaultFactory) CreatePortsModule(name, address string, ports []int) Module {
	prober := netprobe.NewProber(f.portProbeTimeout)
	fields := make([]Field, 0, len(ports))
	for _, p := range ports {
		fields = append(fields, Field{
			Name:    PortField(p),
			Capture: collector.Port(prober, address, p),
		})
	}
	return NewMultiArtifact(name, fields...)
}

// PortField returns the field name for a probed port.
func PortField(port int) string {
	return fmt.Sprintf("port_%d", port)
}

// openPorts sorts the netstat rows, which follow kernel socket table order.
func (f *DefaultFactory) openPorts(src Source, probe *command.Probe, filter []string) collector.Func {
	capture := mapText(collector.Command(probe, "netstat", "-tuln"), collector.SortedLines)
	if src == SourceNative {
		capture = collector.Fallback(collector.Text(host.ListeningPorts), capture)
	}
	return filtered(capture, filter)
}

func (f *DefaultFactory) autostartServices(src Source, probe *command.Probe, filter []string) collector.Func {
	capture := collector.Command(probe, "systemctl", "list-unit-files", "--type=service", "--state=enabled")
	if src == SourceNative {
		native := collector.Text(func(ctx context.Context) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, defaults.SystemDTimeout)
			defer cancel()
			return f.systemd.EnabledServices(ctx)
		})
		capture = collector.Fallback(native, capture)
	}
	return filtered(capture, filter)
}

func processInfo(src Source, probe *command.Probe, filter []string) collector.Func {
	capture := collector.Command(probe, "ps", "auxwf")
	if src == SourceNative {
		capture = collector.Fallback(collector.Text(host.Processes), capture)
	}
	return filtered(capture, filter)
}

// filtered drops the lines of a text capture matching one of patterns.
func filtered(capture collector.Func, patterns []string) collector.Func {
	if len(patterns) == 0 {
		return capture
	}
	return mapText(capture, func(s string) string {
		return collector.FilterLines(s, patterns)
	})
}

// mapText applies fn to a successful text capture.
func mapText(capture collector.Func, fn func(string) string) collector.Func {
	return func(ctx context.Context) (any, error) {
		v, err := capture(ctx)
		if err != nil {
			return nil, err
		}
		s, ok := v.(string)
		if !ok {
			return v, nil
		}
		return fn(s), nil
	}
}

// recentFiles scans only roots that exist; find exits non-zero on a missing
// starting point.
func recentFiles(probe *command.Probe, roots []string) collector.Func {
	return func(ctx context.Context) (any, error) {
		args := make([]string, 0, len(roots)+5)
		for _, r := range roots {
			if _, err := os.Stat(r); err != nil {
				slog.Debug("skipping missing scan root", "root", r)
				continue
			}
			args = append(args, r)
		}
		if len(args) == 0 {
			return collector.Absent, nil
		}
		args = append(args, "-xdev", "-mtime", "-2", "-ls")
		return collector.Command(probe, "find", args...)(ctx)
	}
}
