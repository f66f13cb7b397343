package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"medals/internal"
	"medals/internal/util"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  startedAt TEXT NOT NULL,
  finishedAt TEXT NOT NULL,
  revisionId TEXT,
  rowCount INTEGER NOT NULL,
  unmappedCount INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS run_rows (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  rank INTEGER NOT NULL,
  country TEXT NOT NULL,
  noc TEXT NOT NULL,
  iso2 TEXT,
  gold INTEGER NOT NULL,
  silver INTEGER NOT NULL,
  bronze INTEGER NOT NULL,
  total INTEGER NOT NULL,
  isEu INTEGER NOT NULL,
  UNIQUE(runId, noc),
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_run_rows_runId ON run_rows(runId);
`

	_, err := d.conn.Exec(schema)
	return err
}

// InsertRun records one refresh and its ranked rows, returning the run id.
// A run aborted on unmapped countries has no rows and a non-zero UnmappedCount.
func (d *DB) InsertRun(run internal.RunRecord, rows []internal.MedalRow) (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
INSERT INTO runs (traceId, startedAt, finishedAt, revisionId, rowCount, unmappedCount)
VALUES (?, ?, ?, ?, ?, ?)
`, run.TraceID, run.StartedAt, run.FinishedAt, run.RevisionID, run.RowCount, run.UnmappedCount)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
INSERT INTO run_rows (runId, rank, country, noc, iso2, gold, silver, bronze, total, isEu)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(id, r.Rank, r.CountryName, r.NOC, r.ISO2, r.Gold, r.Silver, r.Bronze, r.Total, r.IsEU); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(id), nil
}

// ListRuns returns the most recent runs first.
func (d *DB) ListRuns(limit int) ([]internal.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(`
SELECT id, traceId, startedAt, finishedAt, revisionId, rowCount, unmappedCount
FROM runs
ORDER BY id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRecord
	for rows.Next() {
		var run internal.RunRecord
		var revision sql.NullString
		if err := rows.Scan(&run.ID, &run.TraceID, &run.StartedAt, &run.FinishedAt, &revision, &run.RowCount, &run.UnmappedCount); err != nil {
			return nil, err
		}
		if revision.Valid {
			run.RevisionID = util.StringPtr(revision.String)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// GetRun returns nil when no run has the id.
func (d *DB) GetRun(id int) (*internal.RunRecord, error) {
	var run internal.RunRecord
	var revision sql.NullString
	err := d.conn.QueryRow(`
SELECT id, traceId, startedAt, finishedAt, revisionId, rowCount, unmappedCount
FROM runs
WHERE id = ?
`, id).Scan(&run.ID, &run.TraceID, &run.StartedAt, &run.FinishedAt, &revision, &run.RowCount, &run.UnmappedCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if revision.Valid {
		run.RevisionID = util.StringPtr(revision.String)
	}
	return &run, nil
}

func (d *DB) RunRows(runID int) ([]internal.MedalRow, error) {
	rows, err := d.conn.Query(`
SELECT rank, country, noc, iso2, gold, silver, bronze, total, isEu
FROM run_rows
WHERE runId = ?
ORDER BY rank ASC, country ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.MedalRow
	for rows.Next() {
		var r internal.MedalRow
		var iso2 sql.NullString
		if err := rows.Scan(&r.Rank, &r.CountryName, &r.NOC, &iso2, &r.Gold, &r.Silver, &r.Bronze, &r.Total, &r.IsEU); err != nil {
			return nil, err
		}
		if iso2.Valid {
			r.ISO2 = util.StringPtr(iso2.String)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
