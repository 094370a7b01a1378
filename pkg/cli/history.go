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
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hostguard/pkg/defaults"
	"github.com/NVIDIA/hostguard/pkg/errors"
	"github.com/NVIDIA/hostguard/pkg/snapshot"
	"github.com/NVIDIA/hostguard/pkg/store"
)

func moduleFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "module",
		Aliases: []string{"m"},
		Usage:   "Only show records of this module (default: all modules)",
	}
}

func limitFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Value:   defaults.HistoryLimit,
		Usage:   "Maximum number of records, newest first (0 for all)",
	}
}

func diffsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "diffs",
		EnableShellCompletion: true,
		Usage:                 "List recorded differences",
		Description: `List the differences recorded by previous monitoring passes, newest first.

# Examples

  hostguard diffs
  hostguard diffs --module passwd --limit 5 --format json`,
		Flags: []cli.Flag{
			moduleFlag(),
			limitFlag(),
			databaseFlag(),
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withStore(ctx, cmd, func(st *store.Store) error {
				recs, err := st.ListDiffs(ctx, cmd.String("module"), int(cmd.Int("limit")))
				if err != nil {
					return err
				}
				return serialize(ctx, cmd, diffRows(recs))
			})
		},
	}
}

func historyCmd() *cli.Command {
	return &cli.Command{
		Name:                  "history",
		EnableShellCompletion: true,
		Usage:                 "List stored snapshots",
		Description: `List stored snapshots, newest first. The table format shows the captured
fields of each snapshot; use --format yaml or json for the full values.

# Examples

  hostguard history --module host --limit 3
  hostguard history --module passwd --format yaml`,
		Flags: []cli.Flag{
			moduleFlag(),
			limitFlag(),
			databaseFlag(),
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withStore(ctx, cmd, func(st *store.Store) error {
				snaps, err := st.ListSnapshots(ctx, cmd.String("module"), int(cmd.Int("limit")))
				if err != nil {
					return err
				}
				return serialize(ctx, cmd, snapshotRows(snaps))
			})
		},
	}
}

// withStore opens the configured database read-only for the duration of fn.
// A database that does not exist yet is NOT_FOUND.
func withStore(ctx context.Context, cmd *cli.Command, fn func(*store.Store) error) error {
	if _, err := parseOutputFormat(cmd); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st, err := store.OpenReadOnly(ctx, cfg.Database, store.WithBusyTimeout(defaults.StoreBusyTimeout))
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			slog.Info("no history recorded yet, start the daemon with 'hostguard run'",
				"database", cfg.Database)
		}
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
	}()

	return fn(st)
}

type diffRows []snapshot.DiffRecord

func (d diffRows) Columns() []string {
	return []string{"ID", "TIMESTAMP", "MODULE", "DIFFERENCES"}
}

func (d diffRows) Rows() [][]string {
	rows := make([][]string, 0, len(d))
	for _, r := range d {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.Timestamp.UTC().Format(time.RFC3339),
			r.Module,
			strings.Join(r.Differences, " "),
		})
	}
	return rows
}

type snapshotRows []snapshot.Snapshot

func (s snapshotRows) Columns() []string {
	return []string{"ID", "TIMESTAMP", "MODULE", "FIELDS"}
}

func (s snapshotRows) Rows() [][]string {
	rows := make([][]string, 0, len(s))
	for _, r := range s {
		fields := "-"
		if !r.Data.IsEmpty() {
			fields = strings.Join(r.Data.Keys(), ",")
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.Timestamp.UTC().Format(time.RFC3339),
			r.Module,
			fields,
		})
	}
	return rows
}
