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

package systemd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/NVIDIA/hostguard/pkg/errors"
)

// StateEnabled is the unit file state listed by EnabledServices.
const StateEnabled = "enabled"

// unitLister is the subset of *dbus.Conn used by the collector.
type unitLister interface {
	ListUnitFilesByPatternsContext(ctx context.Context, states []string, patterns []string) ([]dbus.UnitFile, error)
	Close()
}

// Collector lists enabled systemd unit files.
type Collector struct {
	patterns []string
	connect  func(ctx context.Context) (unitLister, error)
}

// NewCollector creates a collector listing "*.service" unit files.
func NewCollector() *Collector {
	return &Collector{
		patterns: []string{"*.service"},
		connect: func(ctx context.Context) (unitLister, error) {
			return dbus.NewSystemConnectionContext(ctx)
		},
	}
}

// EnabledServices returns the enabled unit files as sorted "<unit> <state>" lines.
func (c *Collector) EnabledServices(ctx context.Context) (string, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnavailable, "failed to connect to systemd", err)
	}
	defer conn.Close()

	files, err := conn.ListUnitFilesByPatternsContext(ctx, []string{StateEnabled}, c.patterns)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnavailable, "failed to list unit files", err)
	}

	slog.Debug("listed systemd unit files", "count", len(files), "patterns", c.patterns)

	return formatUnitFiles(files), nil
}

func formatUnitFiles(files []dbus.UnitFile) string {
	lines := make([]string, 0, len(files))
	for _, f := range files {
		lines = append(lines, fmt.Sprintf("%s %s", filepath.Base(f.Path), f.Type))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}
