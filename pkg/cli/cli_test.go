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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hostguard/pkg/collector"
	"github.com/NVIDIA/hostguard/pkg/config"
	"github.com/NVIDIA/hostguard/pkg/defaults"
	"github.com/NVIDIA/hostguard/pkg/errors"
	"github.com/NVIDIA/hostguard/pkg/module"
	"github.com/NVIDIA/hostguard/pkg/monitor"
	"github.com/NVIDIA/hostguard/pkg/snapshot"
	"github.com/NVIDIA/hostguard/pkg/store"
)

func TestFieldLabel(t *testing.T) {
	tests := map[string]string{
		"content":            "Content",
		"open_ports":         "Open Ports",
		"autostart_services": "Autostart Services",
		"port_22":            "Port 22",
	}
	for in, want := range tests {
		assert.Equal(t, want, fieldLabel(in), in)
	}
}

func TestSummarize(t *testing.T) {
	long := "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyzabcdefghijklmnop"

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"absent", collector.Absent, "absent"},
		{"nil", nil, "absent"},
		{"single line", "open", "open"},
		{"multi line", "a\nb\nc", "3 lines"},
		{"long line", long, long[:maxSummaryLen] + "..."},
		{"string map", map[string]string{"/var/log/auth.log": "x"}, "1 files"},
		{"decoded map", map[string]any{"/a": "x", "/b": "y"}, "2 files"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summarize(tt.in))
		})
	}
}

func TestSummarize_KeepsRunesWhole(t *testing.T) {
	// 'é' is two bytes; an odd prefix puts the limit inside one of them
	long := "x" + strings.Repeat("é", maxSummaryLen)

	got := summarize(long)
	assert.True(t, utf8.ValidString(got), "summary %q is not valid UTF-8", got)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), maxSummaryLen+len("..."))
	assert.Equal(t, "x"+strings.Repeat("é", (maxSummaryLen-1)/2)+"...", got)
}

func TestCaptureReport_Rows(t *testing.T) {
	r := captureReport{
		Modules: map[string]snapshot.Data{
			"passwd": {"content": "root:x:0:0\nalice:x:1000:1000"},
			"host":   {"open_ports": "tcp 0.0.0.0:22", "group": collector.Absent},
			"shadow": {},
		},
	}

	assert.Equal(t, []string{"MODULE", "FIELD", "VALUE"}, r.Columns())
	assert.Equal(t, [][]string{
		{"host", "Group", "absent"},
		{"host", "Open Ports", "tcp 0.0.0.0:22"},
		{"passwd", "Content", "2 lines"},
		{"shadow", "-", "absent"},
	}, r.Rows())
}

func TestDiffRows(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := diffRows{
		{ID: 7, Timestamp: ts, Module: "host", Differences: []string{"Changes detected in group.", "Changes detected in open_ports."}},
	}

	assert.Equal(t, []string{"ID", "TIMESTAMP", "MODULE", "DIFFERENCES"}, rows.Columns())
	assert.Equal(t, [][]string{
		{"7", "2026-03-01T10:00:00Z", "host", "Changes detected in group. Changes detected in open_ports."},
	}, rows.Rows())
}

func TestSnapshotRows(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := snapshotRows{
		{ID: 2, Timestamp: ts, Module: "host", Data: snapshot.Data{"shadow": "x", "group": "y"}},
		{ID: 1, Timestamp: ts, Module: "passwd", Data: snapshot.Data{}},
	}

	assert.Equal(t, [][]string{
		{"2", "2026-03-01T10:00:00Z", "host", "group,shadow"},
		{"1", "2026-03-01T10:00:00Z", "passwd", "-"},
	}, rows.Rows())
}

func TestApplyRunFlags(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantInterval time.Duration
		wantMetrics  string
		wantJournal  string
	}{
		{
			name:         "defaults",
			args:         []string{"run"},
			wantInterval: defaults.ScanInterval,
			wantJournal:  config.DefaultJournalPath,
		},
		{
			name:         "fast",
			args:         []string{"run", "--fast"},
			wantInterval: defaults.FastScanInterval,
			wantJournal:  config.DefaultJournalPath,
		},
		{
			name:         "explicit interval wins over fast",
			args:         []string{"run", "--fast", "--interval", "45s"},
			wantInterval: 45 * time.Second,
			wantJournal:  config.DefaultJournalPath,
		},
		{
			name:         "journal and metrics address",
			args:         []string{"run", "--journal", "/tmp/events.log", "--metrics-address", "127.0.0.1:9464"},
			wantInterval: defaults.ScanInterval,
			wantMetrics:  "127.0.0.1:9464",
			wantJournal:  "/tmp/events.log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cmd := runCmd()
			cmd.Action = func(_ context.Context, c *cli.Command) error {
				applyRunFlags(c, cfg)
				return nil
			}

			require.NoError(t, cmd.Run(context.Background(), tt.args))
			assert.Equal(t, tt.wantInterval, cfg.Interval)
			assert.Equal(t, tt.wantMetrics, cfg.MetricsAddress)
			assert.Equal(t, tt.wantJournal, cfg.Journal)
		})
	}
}

func TestRun_InvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "hostguard.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("interval: -1s\n"), 0o600))

	err := newRootCmd().Run(context.Background(), []string{name, "--config", cfgPath, "run"})
	require.Error(t, err)
}

func TestDiffsCommand(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "hostguard.db")

	st, err := store.Open(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, st.AppendDiff(ctx, "passwd", []string{"/etc/passwd content changed"}))
	require.NoError(t, st.AppendDiff(ctx, "host", []string{"Changes detected in open_ports."}))
	require.NoError(t, st.Close())

	out := filepath.Join(dir, "diffs.json")
	err = newRootCmd().Run(ctx, []string{name, "diffs",
		"--database", dbPath, "--module", "passwd", "--format", "json", "--output", out})
	require.NoError(t, err)

	b, err := os.ReadFile(out)
	require.NoError(t, err)

	var recs []snapshot.DiffRecord
	require.NoError(t, json.Unmarshal(b, &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "passwd", recs[0].Module)
	assert.Equal(t, []string{"/etc/passwd content changed"}, recs[0].Differences)
}

func TestHistoryCommand(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "hostguard.db")

	st, err := store.Open(ctx, dbPath)
	require.NoError(t, err)
	for _, content := range []string{"a", "b", "c"} {
		_, err := st.AppendSnapshot(ctx, "passwd", snapshot.Data{"content": content})
		require.NoError(t, err)
	}
	require.NoError(t, st.Close())

	out := filepath.Join(dir, "history.json")
	err = newRootCmd().Run(ctx, []string{name, "history",
		"--database", dbPath, "--limit", "2", "--format", "json", "--output", out})
	require.NoError(t, err)

	b, err := os.ReadFile(out)
	require.NoError(t, err)

	var snaps []snapshot.Snapshot
	require.NoError(t, json.Unmarshal(b, &snaps))
	require.Len(t, snaps, 2)
	assert.Equal(t, "c", snaps[0].Data["content"])
	assert.Equal(t, "b", snaps[1].Data["content"])
}

func TestDiffsCommand_MissingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state", "hostguard.db")

	err := newRootCmd().Run(context.Background(), []string{name, "diffs",
		"--database", dbPath, "--format", "json"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound), "got %v", err)

	_, statErr := os.Stat(filepath.Dir(dbPath))
	assert.True(t, os.IsNotExist(statErr), "query commands must not create the database")
}

func TestHistoryCommand_UnknownFormat(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "hostguard.db")
	err := newRootCmd().Run(context.Background(), []string{name, "history",
		"--database", dbPath, "--format", "xml"})
	require.Error(t, err)
}

func TestSnapshotCommand(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	passwd := filepath.Join(dir, "passwd")
	require.NoError(t, os.WriteFile(passwd, []byte("root:x:0:0:root:/root:/bin/bash\n"), 0o600))

	cfgPath := filepath.Join(dir, "hostguard.yaml")
	cfgYAML := "database: " + filepath.Join(dir, "unused.db") + "\n" +
		"modules:\n" +
		"  credentialFiles:\n" +
		"    - name: passwd\n" +
		"      path: " + passwd + "\n" +
		"  host:\n" +
		"    enabled: false\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o600))

	out := filepath.Join(dir, "capture.json")
	err := newRootCmd().Run(ctx, []string{name, "--config", cfgPath, "snapshot",
		"--format", "json", "--output", out})
	require.NoError(t, err)

	b, err := os.ReadFile(out)
	require.NoError(t, err)

	var report captureReport
	require.NoError(t, json.Unmarshal(b, &report))
	require.Contains(t, report.Modules, "passwd")
	assert.Equal(t, "root:x:0:0:root:/root:/bin/bash\n", report.Modules["passwd"]["content"])
	assert.False(t, report.Captured.IsZero())

	_, err = os.Stat(filepath.Join(dir, "unused.db"))
	assert.True(t, os.IsNotExist(err), "snapshot must not create the database")
}

func TestStatusHandler(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	passwd := filepath.Join(t.TempDir(), "passwd")
	require.NoError(t, os.WriteFile(passwd, []byte("root:x:0:0\n"), 0o600))

	mods := []module.Module{module.NewCredentialFile("passwd", passwd)}
	mon, err := monitor.New(st, mods, monitor.WithInterval(time.Minute))
	require.NoError(t, err)

	h := statusHandler(mon, moduleNames(mods))

	t.Run("before first pass", func(t *testing.T) {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var got Status
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "idle", got.State)
		assert.Equal(t, "1m0s", got.Interval)
		assert.Equal(t, int64(0), got.Passes)
		assert.True(t, got.LastPass.IsZero())
		assert.Equal(t, []string{"passwd"}, got.Modules)
	})

	t.Run("after a pass", func(t *testing.T) {
		mon.RunPass(ctx)

		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var got Status
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, int64(1), got.Passes)
		assert.False(t, got.LastPass.IsZero())
	})

	t.Run("method not allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodPost, "/v1/status", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error {
	return errors.New(errors.ErrCodeStorage, "database unreachable")
}

func TestDaemonReady(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	mods := []module.Module{module.NewCredentialFile("passwd", "/etc/passwd",
		module.WithCapture(func(context.Context) (any, error) { return "root:x:0:0\n", nil }))}
	mon, err := monitor.New(st, mods)
	require.NoError(t, err)

	ready := daemonReady(mon, st)
	assert.False(t, ready(), "not ready before the first pass")

	mon.RunPass(ctx)
	assert.True(t, ready())
	assert.False(t, daemonReady(mon, failingPinger{})(), "not ready while the store is unreachable")
}

type failingLister struct{}

func (failingLister) ListDiffs(context.Context, string, int) ([]snapshot.DiffRecord, error) {
	return nil, errors.New(errors.ErrCodeStorage, "failed to query diffs")
}

func TestDiffsHandler(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.AppendDiff(ctx, "passwd", []string{"/etc/passwd content changed"}))
	require.NoError(t, st.AppendDiff(ctx, "host", []string{"Changes detected in open_ports."}))

	get := func(h http.HandlerFunc, method, target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(method, target, nil))
		return w
	}

	t.Run("filtered by module", func(t *testing.T) {
		w := get(diffsHandler(st), http.MethodGet, "/v1/diffs?module=host")
		require.Equal(t, http.StatusOK, w.Code)

		var recs []snapshot.DiffRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
		require.Len(t, recs, 1)
		assert.Equal(t, []string{"Changes detected in open_ports."}, recs[0].Differences)
	})

	t.Run("limit", func(t *testing.T) {
		w := get(diffsHandler(st), http.MethodGet, "/v1/diffs?limit=1")
		require.Equal(t, http.StatusOK, w.Code)

		var recs []snapshot.DiffRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
		require.Len(t, recs, 1)
		assert.Equal(t, "host", recs[0].Module, "newest first")
	})

	t.Run("no records", func(t *testing.T) {
		w := get(diffsHandler(st), http.MethodGet, "/v1/diffs?module=group")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("invalid limit", func(t *testing.T) {
		w := get(diffsHandler(st), http.MethodGet, "/v1/diffs?limit=-3")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		w := get(diffsHandler(failingLister{}), http.MethodGet, "/v1/diffs")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), string(errors.ErrCodeStorage))
	})

	t.Run("method not allowed", func(t *testing.T) {
		w := get(diffsHandler(st), http.MethodDelete, "/v1/diffs")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestSystemdNotifier_NoSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")

	n := &systemdNotifier{}
	n.passCompleted(monitor.PassResult{Started: time.Now()})
	n.passCompleted(monitor.PassResult{Started: time.Now()})
	n.notify("STOPPING=1")
}
