package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oscarhq/oscar/internal/record"
)

// PutDailyLog inserts or updates the log for a calendar date.
func (s *Store) PutDailyLog(ctx context.Context, d *record.DailyLog) error {
	if err := d.Validate(); err != nil {
		return &StorageError{Op: "put daily log", Err: err}
	}

	ids, err := marshalIDs(d.QuestionIDs)
	if err != nil {
		return &StorageError{Op: "marshal daily log ids", Err: err}
	}

	query := `
	INSERT INTO daily_logs (date, count, question_ids, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(date) DO UPDATE SET
		count = excluded.count,
		question_ids = excluded.question_ids,
		updated_at = excluded.updated_at
	`

	_, err = s.conn.ExecContext(ctx, query,
		d.Date,
		d.Count,
		ids,
		d.CreatedAt.UTC().Format(time.RFC3339Nano),
		d.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return &StorageError{Op: fmt.Sprintf("put daily log %s", d.Date), Err: err}
	}

	return nil
}

// GetDailyLog returns the log for a date, or nil if absent.
func (s *Store) GetDailyLog(ctx context.Context, date string) (*record.DailyLog, error) {
	query := `SELECT date, count, question_ids, created_at, updated_at FROM daily_logs WHERE date = ?`

	d, err := scanDailyLog(s.conn.QueryRowContext(ctx, query, date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("get daily log %s", date), Err: err}
	}
	return d, nil
}

// AllDailyLogs returns every daily log ordered by date.
func (s *Store) AllDailyLogs(ctx context.Context) ([]record.DailyLog, error) {
	query := `SELECT date, count, question_ids, created_at, updated_at FROM daily_logs ORDER BY date`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, &StorageError{Op: "list daily logs", Err: err}
	}
	defer rows.Close()

	var out []record.DailyLog
	for rows.Next() {
		d, err := scanDailyLog(rows)
		if err != nil {
			return nil, &StorageError{Op: "scan daily log", Err: err}
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate daily logs", Err: err}
	}

	return out, nil
}

// DailyLogsInRange returns logs with startDate <= date <= endDate.
func (s *Store) DailyLogsInRange(ctx context.Context, startDate, endDate string) ([]record.DailyLog, error) {
	query := `
	SELECT date, count, question_ids, created_at, updated_at
	FROM daily_logs
	WHERE date >= ? AND date <= ?
	ORDER BY date
	`

	rows, err := s.conn.QueryContext(ctx, query, startDate, endDate)
	if err != nil {
		return nil, &StorageError{Op: "list daily logs in range", Err: err}
	}
	defer rows.Close()

	var out []record.DailyLog
	for rows.Next() {
		d, err := scanDailyLog(rows)
		if err != nil {
			return nil, &StorageError{Op: "scan daily log", Err: err}
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate daily logs", Err: err}
	}

	return out, nil
}

// DeleteDailyLog removes the log for a date. Idempotent.
func (s *Store) DeleteDailyLog(ctx context.Context, date string) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM daily_logs WHERE date = ?`, date)
	if err != nil {
		return &StorageError{Op: fmt.Sprintf("delete daily log %s", date), Err: err}
	}
	return nil
}

func scanDailyLog(row rowScanner) (*record.DailyLog, error) {
	var d record.DailyLog
	var ids sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(&d.Date, &d.Count, &ids, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if ids.Valid && ids.String != "" && ids.String != "null" {
		if err := json.Unmarshal([]byte(ids.String), &d.QuestionIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal question ids: %w", err)
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		d.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		d.UpdatedAt = t
	}

	return &d, nil
}
