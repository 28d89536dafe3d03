package journal

import (
	"database/sql"
	"fmt"
	"slices"
	"time"
)

// #region log-operation
// LogOperation writes one administrative operation to the admin_log table.
func LogOperation(db *sql.DB, entry OperationEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO admin_log (run_id, operation, target, detail_json, outcome, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Operation,
		nullIfEmpty(entry.Target),
		nullIfEmpty(entry.DetailJSON),
		entry.Outcome,
		nullIfEmpty(entry.Error),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log operation: %w", err)
	}
	return nil
}

// #endregion log-operation

// #region read-operations
// Operations returns the newest limit entries of runID's admin log in
// insertion order. An empty runID returns the newest limit entries across
// all runs, newest first.
func (s *Store) Operations(runID string, limit int) ([]OperationEntry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if runID == "" {
		rows, err = s.db.Query(
			`SELECT run_id, operation, target, detail_json, outcome, error, created_at
			 FROM admin_log ORDER BY id DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(
			`SELECT run_id, operation, target, detail_json, outcome, error, created_at
			 FROM admin_log WHERE run_id = ? ORDER BY id DESC LIMIT ?`, runID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query admin log: %w", err)
	}
	defer rows.Close()

	var out []OperationEntry
	for rows.Next() {
		var (
			e                      OperationEntry
			target, detail, errStr sql.NullString
			createdAt              string
		)
		if err := rows.Scan(&e.RunID, &e.Operation, &target, &detail, &e.Outcome, &errStr, &createdAt); err != nil {
			return nil, fmt.Errorf("scan admin log: %w", err)
		}
		e.Target, e.DetailJSON, e.Error = target.String, detail.String, errStr.String
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read admin log: %w", err)
	}
	if runID != "" {
		slices.Reverse(out)
	}
	return out, nil
}

// #endregion read-operations

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
