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

package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/NVIDIA/hostguard/pkg/errors"
	"github.com/NVIDIA/hostguard/pkg/snapshot"
)

// timeLayout keeps lexical and chronological order equal.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is the snapshot and diff history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func storageError(op, module string, err error) error {
	return errors.WrapWithContext(errors.ErrCodeStorage, op+" failed", err,
		map[string]any{"module": module, "operation": op})
}

// AppendSnapshot persists data for module and returns the new row id.
func (s *Store) AppendSnapshot(ctx context.Context, module string, data snapshot.Data) (int64, error) {
	payload, err := snapshot.Encode(data)
	if err != nil {
		return 0, storageError("append_snapshot", module, err)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO snapshots (timestamp, module, snapshot_data) VALUES (?, ?, ?)",
		s.timestamp(), module, string(payload),
	)
	if err != nil {
		return 0, storageError("append_snapshot", module, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageError("append_snapshot", module, err)
	}
	return id, nil
}

// LatestSnapshot returns the most recent snapshot data for module, or empty
// Data when the module has no history.
func (s *Store) LatestSnapshot(ctx context.Context, module string) (snapshot.Data, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT snapshot_data FROM snapshots WHERE module = ? ORDER BY id DESC LIMIT 1",
		module,
	).Scan(&payload)
	if stderrors.Is(err, sql.ErrNoRows) {
		return snapshot.Data{}, nil
	}
	if err != nil {
		return nil, storageError("latest_snapshot", module, err)
	}

	data, err := snapshot.Decode([]byte(payload))
	if err != nil {
		return nil, storageError("latest_snapshot", module, err)
	}
	return data, nil
}

// AppendDiff persists a non-empty difference list for module. An empty list
// writes nothing.
func (s *Store) AppendDiff(ctx context.Context, module string, differences []string) error {
	if len(differences) == 0 {
		return nil
	}

	payload, err := snapshot.EncodeDifferences(differences)
	if err != nil {
		return storageError("append_diff", module, err)
	}

	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO diffs (timestamp, module, differences) VALUES (?, ?, ?)",
		s.timestamp(), module, string(payload),
	); err != nil {
		return storageError("append_diff", module, err)
	}
	return nil
}

// ListSnapshots returns up to limit snapshots, newest first. An empty module
// lists all modules; a non-positive limit returns every row.
func (s *Store) ListSnapshots(ctx context.Context, module string, limit int) ([]snapshot.Snapshot, error) {
	query, args := listQuery("SELECT id, timestamp, module, snapshot_data FROM snapshots", module, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("list_snapshots", module, err)
	}
	defer rows.Close()

	var out []snapshot.Snapshot
	for rows.Next() {
		var (
			snap    snapshot.Snapshot
			ts      string
			payload string
		)
		if err := rows.Scan(&snap.ID, &ts, &snap.Module, &payload); err != nil {
			return nil, storageError("list_snapshots", module, err)
		}
		if snap.Timestamp, err = parseTimestamp(ts); err != nil {
			return nil, storageError("list_snapshots", module, err)
		}
		if snap.Data, err = snapshot.Decode([]byte(payload)); err != nil {
			return nil, storageError("list_snapshots", module, err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list_snapshots", module, err)
	}
	return out, nil
}

// ListDiffs returns up to limit difference records, newest first. An empty
// module lists all modules; a non-positive limit returns every row.
func (s *Store) ListDiffs(ctx context.Context, module string, limit int) ([]snapshot.DiffRecord, error) {
	query, args := listQuery("SELECT id, timestamp, module, differences FROM diffs", module, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("list_diffs", module, err)
	}
	defer rows.Close()

	var out []snapshot.DiffRecord
	for rows.Next() {
		var (
			rec     snapshot.DiffRecord
			ts      string
			payload string
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.Module, &payload); err != nil {
			return nil, storageError("list_diffs", module, err)
		}
		if rec.Timestamp, err = parseTimestamp(ts); err != nil {
			return nil, storageError("list_diffs", module, err)
		}
		if rec.Differences, err = snapshot.DecodeDifferences([]byte(payload)); err != nil {
			return nil, storageError("list_diffs", module, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list_diffs", module, err)
	}
	return out, nil
}

func listQuery(base, module string, limit int) (string, []any) {
	query := base
	var args []any
	if module != "" {
		query += " WHERE module = ?"
		args = append(args, module)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return query, args
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func parseTimestamp(ts string) (time.Time, error) {
	return time.Parse(timeLayout, ts)
}
