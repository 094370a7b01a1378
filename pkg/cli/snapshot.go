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

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/urfave/cli/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/NVIDIA/hostguard/pkg/collector"
	"github.com/NVIDIA/hostguard/pkg/collector/host"
	"github.com/NVIDIA/hostguard/pkg/module"
	"github.com/NVIDIA/hostguard/pkg/monitor"
	"github.com/NVIDIA/hostguard/pkg/snapshot"
)

const maxSummaryLen = 60

func snapshotCmd() *cli.Command {
	return &cli.Command{
		Name:                  "snapshot",
		EnableShellCompletion: true,
		Usage:                 "Capture all configured modules once and print the result",
		Description: `Capture every configured module once, the same way a monitoring pass
does, and print the captured values. Nothing is stored.

The table format prints one row per captured field with a short summary of
its value. Use --format yaml or json to see the full values.

# Examples

  hostguard snapshot
  hostguard snapshot --format yaml --output capture.yaml`,
		Flags: []cli.Flag{
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			mods := cfg.BuildModules(module.NewDefaultFactory(cfg.FactoryOptions()...))
			report := captureReport{
				Captured: time.Now().UTC(),
				Modules:  monitor.CaptureAll(ctx, mods),
			}

			id, err := host.Describe(ctx)
			if err != nil {
				slog.Warn("host identity unavailable", "error", err)
			}
			report.Host = id

			return serialize(ctx, cmd, report)
		},
	}
}

// captureReport is the output of the snapshot command.
type captureReport struct {
	Host     *host.Identity           `json:"host,omitempty" yaml:"host,omitempty"`
	Captured time.Time                `json:"captured" yaml:"captured"`
	Modules  map[string]snapshot.Data `json:"modules" yaml:"modules"`
}

func (r captureReport) Columns() []string {
	return []string{"MODULE", "FIELD", "VALUE"}
}

func (r captureReport) Rows() [][]string {
	names := make([]string, 0, len(r.Modules))
	for n := range r.Modules {
		names = append(names, n)
	}
	sort.Strings(names)

	var rows [][]string
	for _, n := range names {
		data := r.Modules[n]
		if data.IsEmpty() {
			rows = append(rows, []string{n, "-", "absent"})
			continue
		}
		for _, k := range data.Keys() {
			rows = append(rows, []string{n, fieldLabel(k), summarize(data[k])})
		}
	}
	return rows
}

// fieldLabel turns a field name such as "open_ports" into "Open Ports".
func fieldLabel(field string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(field, "_", " "))
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// summarize renders a captured value on a single line.
func summarize(v any) string {
	switch val := v.(type) {
	case string:
		if val == collector.Absent {
			return "absent"
		}
		val = strings.TrimRight(val, "\n")
		if n := strings.Count(val, "\n") + 1; n > 1 {
			return fmt.Sprintf("%d lines", n)
		}
		return truncate(val, maxSummaryLen)
	case map[string]string:
		return fmt.Sprintf("%d files", len(val))
	case map[string]any:
		return fmt.Sprintf("%d files", len(val))
	case nil:
		return "absent"
	default:
		return fmt.Sprintf("%v", val)
	}
}
