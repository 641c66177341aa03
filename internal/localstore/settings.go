package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oscarhq/oscar/internal/record"
)

// Settings rows store the full record as JSON alongside a sortable
// updated_at column so merge can compare timestamps without decoding.

func (s *Store) putSettings(ctx context.Context, id string, payload any, updatedAt time.Time) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return &StorageError{Op: fmt.Sprintf("marshal settings %s", id), Err: err}
	}

	query := `
	INSERT INTO settings (id, payload, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		payload = excluded.payload,
		updated_at = excluded.updated_at
	`

	_, err = s.conn.ExecContext(ctx, query, id, string(raw), updatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return &StorageError{Op: fmt.Sprintf("put settings %s", id), Err: err}
	}
	return nil
}

func (s *Store) getSettings(ctx context.Context, id string, out any) (bool, error) {
	var raw string
	err := s.conn.QueryRowContext(ctx, `SELECT payload FROM settings WHERE id = ?`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, &StorageError{Op: fmt.Sprintf("get settings %s", id), Err: err}
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, &StorageError{Op: fmt.Sprintf("decode settings %s", id), Err: err}
	}
	return true, nil
}

// PutCalculatorSettings stores the calculator settings singleton.
func (s *Store) PutCalculatorSettings(ctx context.Context, cs *record.CalculatorSettings) error {
	if err := cs.Validate(); err != nil {
		return &StorageError{Op: "put calculator settings", Err: err}
	}
	return s.putSettings(ctx, record.CalculatorSettingsID, cs, cs.UpdatedAt)
}

// GetCalculatorSettings returns the calculator settings, or nil if
// never saved.
func (s *Store) GetCalculatorSettings(ctx context.Context) (*record.CalculatorSettings, error) {
	var cs record.CalculatorSettings
	ok, err := s.getSettings(ctx, record.CalculatorSettingsID, &cs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &cs, nil
}

// PutTestSettings stores the test settings singleton.
func (s *Store) PutTestSettings(ctx context.Context, ts *record.TestSettings) error {
	if err := ts.Validate(); err != nil {
		return &StorageError{Op: "put test settings", Err: err}
	}
	return s.putSettings(ctx, record.TestSettingsID, ts, ts.UpdatedAt)
}

// GetTestSettings returns the test settings, or nil if never saved.
func (s *Store) GetTestSettings(ctx context.Context) (*record.TestSettings, error) {
	var ts record.TestSettings
	ok, err := s.getSettings(ctx, record.TestSettingsID, &ts)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &ts, nil
}

// PutTestResult stores a finished practice test.
func (s *Store) PutTestResult(ctx context.Context, t *record.TestResult) error {
	if err := t.Validate(); err != nil {
		return &StorageError{Op: "put test result", Err: err}
	}

	raw, err := json.Marshal(t)
	if err != nil {
		return &StorageError{Op: "marshal test result", Err: err}
	}

	query := `
	INSERT INTO test_results (id, payload, created_at)
	VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		payload = excluded.payload
	`

	_, err = s.conn.ExecContext(ctx, query, t.ID, string(raw), t.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return &StorageError{Op: fmt.Sprintf("put test result %s", t.ID), Err: err}
	}
	return nil
}

// AllTestResults returns every stored test, newest first.
func (s *Store) AllTestResults(ctx context.Context) ([]record.TestResult, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT payload FROM test_results ORDER BY created_at DESC`)
	if err != nil {
		return nil, &StorageError{Op: "list test results", Err: err}
	}
	defer rows.Close()

	var out []record.TestResult
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, &StorageError{Op: "scan test result", Err: err}
		}
		var t record.TestResult
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, &StorageError{Op: "decode test result", Err: err}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate test results", Err: err}
	}

	return out, nil
}
