package journal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	started_at   TEXT NOT NULL,
	finished_at  TEXT,
	stats_json   TEXT
);

CREATE TABLE IF NOT EXISTS admin_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	operation    TEXT NOT NULL,
	target       TEXT,
	detail_json  TEXT,
	outcome      TEXT NOT NULL,
	error        TEXT,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS active_run (
	id           INTEGER PRIMARY KEY CHECK (id = 1),
	run_id       TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// ErrNoActiveRun is returned by ActiveRun before any run was started.
var ErrNoActiveRun = errors.New("no active run")

// #region store-struct
// Store keeps the run ledger and the administrative log in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for LogOperation.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #region start-run
// StartRun opens a new run and makes it the active one.
func (s *Store) StartRun(source string) (Run, error) {
	run := Run{
		RunID:     uuid.New().String(),
		Source:    source,
		StartedAt: time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, source, started_at) VALUES (?, ?, ?)`,
		run.RunID, run.Source, run.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO active_run (id, run_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET run_id = excluded.run_id`,
		run.RunID,
	)
	if err != nil {
		return Run{}, fmt.Errorf("set active: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit: %w", err)
	}
	return run, nil
}

// #endregion start-run

// #region finish-run
// FinishRun stamps the run as finished and stores its counters.
func (s *Store) FinishRun(runID string, stats RunStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	res, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, stats_json = ? WHERE run_id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), string(statsJSON), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, sql.ErrNoRows)
	}
	return nil
}

// #endregion finish-run

// #region get-run
// GetRun reads one run by id.
func (s *Store) GetRun(runID string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT run_id, source, started_at, finished_at, stats_json FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return run, nil
}

// ActiveRun reads the most recently started run.
func (s *Store) ActiveRun() (Run, error) {
	var runID string
	err := s.db.QueryRow(`SELECT run_id FROM active_run WHERE id = 1`).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoActiveRun
	}
	if err != nil {
		return Run{}, fmt.Errorf("get active: %w", err)
	}
	return s.GetRun(runID)
}

// ListRuns returns up to limit runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT run_id, source, started_at, finished_at, stats_json FROM runs
		 ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run                 Run
		startedAt           string
		finishedAt, statsJS sql.NullString
	)
	if err := sc.Scan(&run.RunID, &run.Source, &startedAt, &finishedAt, &statsJS); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	run.StartedAt = t
	if finishedAt.Valid {
		if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt.String); err != nil {
			return Run{}, fmt.Errorf("parse finished_at: %w", err)
		}
	}
	if statsJS.Valid {
		if err := json.Unmarshal([]byte(statsJS.String), &run.Stats); err != nil {
			return Run{}, fmt.Errorf("unmarshal stats: %w", err)
		}
	}
	return run, nil
}

// #endregion get-run
