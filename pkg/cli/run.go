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
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/hostguard/pkg/config"
	"github.com/NVIDIA/hostguard/pkg/defaults"
	"github.com/NVIDIA/hostguard/pkg/errors"
	"github.com/NVIDIA/hostguard/pkg/logging"
	"github.com/NVIDIA/hostguard/pkg/module"
	"github.com/NVIDIA/hostguard/pkg/monitor"
	"github.com/NVIDIA/hostguard/pkg/serializer"
	"github.com/NVIDIA/hostguard/pkg/server"
	"github.com/NVIDIA/hostguard/pkg/snapshot"
	"github.com/NVIDIA/hostguard/pkg/store"
)

func runCmd() *cli.Command {
	return &cli.Command{
		Name:                  "run",
		EnableShellCompletion: true,
		Usage:                 "Run the monitoring daemon",
		Description: `Run the monitoring loop until SIGINT or SIGTERM.

The first pass runs immediately, then one pass per interval. For every module
a pass loads the previous snapshot, captures a new one, stores it and records
the differences. Non-empty differences are written to the event journal and
the diffs table.

A pass in progress when the signal arrives completes before the daemon exits.

# Examples

Run with the default configuration:
  hostguard run

Run with a 30s interval and the status server enabled:
  hostguard run --fast --metrics-address 127.0.0.1:9464`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "fast",
				Usage: fmt.Sprintf("Use the fast scan interval (%s)", defaults.FastScanInterval),
			},
			&cli.DurationFlag{
				Name:    "interval",
				Usage:   "Pass interval (overrides --fast and config)",
				Sources: cli.EnvVars("HOSTGUARD_INTERVAL"),
			},
			&cli.StringFlag{
				Name:    "journal",
				Usage:   "Path to the event journal (overrides config)",
				Sources: cli.EnvVars("HOSTGUARD_JOURNAL"),
			},
			&cli.StringFlag{
				Name:    "metrics-address",
				Usage:   "Address of the status server, e.g. 127.0.0.1:9464 (disabled when empty)",
				Sources: cli.EnvVars("HOSTGUARD_METRICS_ADDRESS"),
			},
			databaseFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runDaemon(ctx, cfg)
		},
	}
}

// applyRunFlags overrides cfg with the run command flags that were set.
func applyRunFlags(cmd *cli.Command, cfg *config.Config) {
	if cmd.Bool("fast") {
		cfg.Interval = defaults.FastScanInterval
	}
	if cmd.IsSet("interval") {
		cfg.Interval = cmd.Duration("interval")
	}
	if cmd.IsSet("journal") {
		cfg.Journal = cmd.String("journal")
	}
	if cmd.IsSet("metrics-address") {
		cfg.MetricsAddress = cmd.String("metrics-address")
	}
}

// readyPingTimeout bounds the store check behind /ready.
const readyPingTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type diffLister interface {
	ListDiffs(ctx context.Context, module string, limit int) ([]snapshot.DiffRecord, error)
}

// runDaemon opens the store and journal, then runs the monitor and the
// optional status server until ctx is canceled.
func runDaemon(ctx context.Context, cfg *config.Config) error {
	st, err := store.Open(ctx, cfg.Database, store.WithBusyTimeout(defaults.StoreBusyTimeout))
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
	}()

	journal, err := logging.OpenJournal(cfg.Journal)
	if err != nil {
		return err
	}
	defer func() {
		if err := journal.Close(); err != nil {
			slog.Warn("failed to close journal", "error", err)
		}
	}()

	mods := cfg.BuildModules(module.NewDefaultFactory(cfg.FactoryOptions()...))
	notifier := &systemdNotifier{}

	mon, err := monitor.New(st, mods,
		monitor.WithInterval(cfg.Interval),
		monitor.WithJournal(journal),
		monitor.WithPassHook(notifier.passCompleted),
	)
	if err != nil {
		return err
	}

	slog.Info("daemon starting",
		"database", cfg.Database,
		"journal", cfg.Journal,
		"interval", cfg.Interval,
		"modules", moduleNames(mods),
		"metricsAddress", cfg.MetricsAddress)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return mon.Run(gctx)
	})

	if cfg.MetricsAddress != "" {
		srvCfg := server.NewConfig(cfg.MetricsAddress)
		srvCfg.Name = name
		srvCfg.Version = version

		srv := server.New(
			server.WithConfig(srvCfg),
			server.WithReadinessCheck(daemonReady(mon, st)),
			server.WithHandler(map[string]http.HandlerFunc{
				"/v1/status": statusHandler(mon, moduleNames(mods)),
				"/v1/diffs":  diffsHandler(st),
			}),
		)
		g.Go(func() error {
			return srv.Start(gctx)
		})
	}

	err = g.Wait()
	notifier.notify(daemon.SdNotifyStopping)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "daemon stopped with error", err)
	}

	slog.Info("daemon stopped", "passes", mon.Passes())
	return nil
}

// daemonReady reports ready once a pass has completed and the store answers.
func daemonReady(mon *monitor.Monitor, st pinger) func() bool {
	return func() bool {
		if !mon.Ready() {
			return false
		}
		ctx, cancel := context.WithTimeout(context.Background(), readyPingTimeout)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			slog.Warn("store readiness check failed", "error", err)
			return false
		}
		return true
	}
}

func moduleNames(mods []module.Module) []string {
	names := make([]string, 0, len(mods))
	for _, m := range mods {
		names = append(names, m.Name())
	}
	return names
}

// systemdNotifier reports readiness after the first pass and a status line
// after every pass. It is a no-op outside systemd.
type systemdNotifier struct {
	readyOnce sync.Once
}

func (n *systemdNotifier) passCompleted(res monitor.PassResult) {
	n.readyOnce.Do(func() {
		n.notify(daemon.SdNotifyReady)
	})
	n.notify(fmt.Sprintf("STATUS=last pass %s: %d steps, %d differences, %d failures",
		res.Started.UTC().Format(time.RFC3339), len(res.Steps), res.Differences(), res.Failures()))
}

func (n *systemdNotifier) notify(state string) {
	if _, err := daemon.SdNotify(false, state); err != nil {
		slog.Debug("systemd notify failed", "state", state, "error", err)
	}
}

// Status is the body of GET /v1/status.
type Status struct {
	State    string    `json:"state" yaml:"state"`
	Interval string    `json:"interval" yaml:"interval"`
	Passes   int64     `json:"passes" yaml:"passes"`
	LastPass time.Time `json:"lastPass,omitzero" yaml:"lastPass,omitempty"`
	Modules  []string  `json:"modules" yaml:"modules"`
	Version  string    `json:"version" yaml:"version"`
}

func statusHandler(mon *monitor.Monitor, modules []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			server.WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
				"Method not allowed", false, nil)
			return
		}

		st := Status{
			State:    mon.State().String(),
			Interval: mon.Interval().String(),
			Passes:   mon.Passes(),
			LastPass: mon.LastPass(),
			Modules:  modules,
			Version:  version,
		}
		if !st.LastPass.IsZero() {
			st.LastPass = st.LastPass.UTC()
		}

		serializer.RespondJSON(w, http.StatusOK, st)
	}
}

// diffsHandler serves GET /v1/diffs?module=<name>&limit=<n>, newest first.
func diffsHandler(st diffLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			server.WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
				"Method not allowed", false, nil)
			return
		}

		q := r.URL.Query()
		limit := defaults.HistoryLimit
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
					"limit must be a non-negative integer", false, map[string]any{"limit": v})
				return
			}
			limit = n
		}

		recs, err := st.ListDiffs(r.Context(), q.Get("module"), limit)
		if err != nil {
			server.WriteErrorFromErr(w, r, err, "Failed to list differences", nil)
			return
		}
		if recs == nil {
			recs = []snapshot.DiffRecord{}
		}
		serializer.RespondJSON(w, http.StatusOK, recs)
	}
}
