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

package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/hostguard/pkg/defaults"
	"github.com/NVIDIA/hostguard/pkg/errors"
	"github.com/NVIDIA/hostguard/pkg/module"
)

// Default file locations.
const (
	DefaultDatabasePath = "/var/lib/hostguard/hostguard.db"
	DefaultJournalPath  = "/var/log/hostguard/events.log"
	DefaultPortsAddress = "127.0.0.1"
)

// Config is the daemon configuration.
type Config struct {
	Interval           time.Duration `yaml:"interval"`
	Database           string        `yaml:"database"`
	Journal            string        `yaml:"journal"`
	ProbeTimeout       time.Duration `yaml:"probeTimeout"`
	RecentFilesTimeout time.Duration `yaml:"recentFilesTimeout"`
	PortProbeTimeout   time.Duration `yaml:"portProbeTimeout"`
	MetricsAddress     string        `yaml:"metricsAddress"`
	Modules            Modules       `yaml:"modules"`
}

// Modules configures the monitored modules.
type Modules struct {
	CredentialFiles []CredentialFile `yaml:"credentialFiles"`
	Host            Host             `yaml:"host"`
	Ports           Ports            `yaml:"ports"`
}

// CredentialFile configures a single-file module.
type CredentialFile struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Artifact selects the capture source of a host artifact.
type Artifact struct {
	Source module.Source `yaml:"source"`
	// Exclude drops output lines matching these wildcard patterns.
	Exclude []string `yaml:"exclude,omitempty"`
}

// Host configures the multi-artifact host module.
type Host struct {
	Enabled         bool     `yaml:"enabled"`
	Name            string   `yaml:"name"`
	Passwd          string   `yaml:"passwd"`
	Shadow          string   `yaml:"shadow"`
	Group           string   `yaml:"group"`
	Ports           Artifact `yaml:"ports"`
	Services        Artifact `yaml:"services"`
	Processes       Artifact `yaml:"processes"`
	SecurityLogs    []string `yaml:"securityLogs"`
	RecentFileRoots []string `yaml:"recentFileRoots"`
}

// Ports configures the TCP port module.
type Ports struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	List    []int  `yaml:"list"`
}

// Default returns the built-in configuration.
func Default() *Config {
	spec := module.DefaultHostSpec()
	return &Config{
		Interval:           defaults.ScanInterval,
		Database:           DefaultDatabasePath,
		Journal:            DefaultJournalPath,
		ProbeTimeout:       defaults.ProbeTimeout,
		RecentFilesTimeout: defaults.RecentFilesTimeout,
		PortProbeTimeout:   defaults.PortProbeTimeout,
		Modules: Modules{
			CredentialFiles: []CredentialFile{
				{Name: module.NamePasswd, Path: "/etc/passwd"},
			},
			Host: Host{
				Enabled:         true,
				Name:            spec.Name,
				Passwd:          spec.PasswdPath,
				Shadow:          spec.ShadowPath,
				Group:           spec.GroupPath,
				Ports:           Artifact{Source: spec.PortsSource},
				Services:        Artifact{Source: spec.ServicesSource},
				Processes:       Artifact{Source: spec.ProcessesSource},
				SecurityLogs:    append([]string(nil), spec.SecurityLogs...),
				RecentFileRoots: append([]string(nil), spec.RecentFileRoots...),
			},
			Ports: Ports{
				Name:    module.NamePorts,
				Address: DefaultPortsAddress,
				List:    []int{22, 80},
			},
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidConfig, "failed to read config", err,
			map[string]any{"path": path})
	}

	if err := Parse(b, cfg); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidConfig, "failed to parse config", err,
			map[string]any{"path": path})
	}
	return cfg, nil
}

// Parse decodes YAML into cfg. Keys absent from b keep their value in cfg.
func Parse(b []byte, cfg *Config) error {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	positive := []struct {
		key string
		d   time.Duration
	}{
		{"interval", c.Interval},
		{"probeTimeout", c.ProbeTimeout},
		{"recentFilesTimeout", c.RecentFilesTimeout},
		{"portProbeTimeout", c.PortProbeTimeout},
	}
	for _, p := range positive {
		if p.d <= 0 {
			return invalid(p.key, "must be positive", p.d.String())
		}
	}
	if c.Database == "" {
		return invalid("database", "cannot be empty", "")
	}

	names := make(map[string]struct{})
	claim := func(key, name string) error {
		if name == "" {
			return invalid(key, "module name cannot be empty", "")
		}
		if _, dup := names[name]; dup {
			return invalid(key, "duplicate module name", name)
		}
		names[name] = struct{}{}
		return nil
	}

	for i, cf := range c.Modules.CredentialFiles {
		key := fmt.Sprintf("modules.credentialFiles[%d]", i)
		if err := claim(key+".name", cf.Name); err != nil {
			return err
		}
		if cf.Path == "" {
			return invalid(key+".path", "cannot be empty", "")
		}
	}

	if h := c.Modules.Host; h.Enabled {
		if err := claim("modules.host.name", h.Name); err != nil {
			return err
		}
		for key, p := range map[string]string{"passwd": h.Passwd, "shadow": h.Shadow, "group": h.Group} {
			if p == "" {
				return invalid("modules.host."+key, "cannot be empty", "")
			}
		}
		for key, a := range map[string]Artifact{"ports": h.Ports, "services": h.Services, "processes": h.Processes} {
			if !a.Source.IsValid() {
				return invalid("modules.host."+key+".source", "must be native or command", string(a.Source))
			}
		}
	}

	if p := c.Modules.Ports; p.Enabled {
		if err := claim("modules.ports.name", p.Name); err != nil {
			return err
		}
		if p.Address == "" {
			return invalid("modules.ports.address", "cannot be empty", "")
		}
		if len(p.List) == 0 {
			return invalid("modules.ports.list", "cannot be empty", "")
		}
		seen := make(map[int]struct{}, len(p.List))
		for _, port := range p.List {
			if port < 1 || port > 65535 {
				return invalid("modules.ports.list", "port out of range", fmt.Sprint(port))
			}
			if _, dup := seen[port]; dup {
				return invalid("modules.ports.list", "duplicate port", fmt.Sprint(port))
			}
			seen[port] = struct{}{}
		}
	}

	if len(names) == 0 {
		return invalid("modules", "at least one module must be enabled", "")
	}
	return nil
}

func invalid(key, msg, value string) error {
	return errors.NewWithContext(errors.ErrCodeInvalidConfig, key+" "+msg,
		map[string]any{"key": key, "value": value})
}

// HostSpec converts the host settings for the module factory.
func (h Host) HostSpec() module.HostSpec {
	return module.HostSpec{
		Name:            h.Name,
		PasswdPath:      h.Passwd,
		ShadowPath:      h.Shadow,
		GroupPath:       h.Group,
		PortsSource:     h.Ports.Source,
		ServicesSource:  h.Services.Source,
		ProcessesSource: h.Processes.Source,
		SecurityLogs:    h.SecurityLogs,
		RecentFileRoots: h.RecentFileRoots,
		PortsFilter:     h.Ports.Exclude,
		ServicesFilter:  h.Services.Exclude,
		ProcessFilter:   h.Processes.Exclude,
	}
}

// FactoryOptions returns the module factory options derived from c.
func (c *Config) FactoryOptions() []module.Option {
	return []module.Option{
		module.WithProbeTimeout(c.ProbeTimeout),
		module.WithRecentFilesTimeout(c.RecentFilesTimeout),
		module.WithPortProbeTimeout(c.PortProbeTimeout),
	}
}

// BuildModules creates the enabled modules in a fixed order: credential
// files, host, ports.
func (c *Config) BuildModules(f *module.DefaultFactory) []module.Module {
	var mods []module.Module
	for _, cf := range c.Modules.CredentialFiles {
		mods = append(mods, f.CreateCredentialModule(cf.Name, cf.Path))
	}
	if c.Modules.Host.Enabled {
		mods = append(mods, f.CreateHostModule(c.Modules.Host.HostSpec()))
	}
	if p := c.Modules.Ports; p.Enabled {
		mods = append(mods, f.CreatePortsModule(p.Name, p.Address, p.List))
	}
	return mods
}
