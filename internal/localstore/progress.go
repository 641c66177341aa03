package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oscarhq/oscar/internal/record"
)

// PutProgress inserts or updates a progress record. Replaying the
// same record is a no-op in effect.
func (s *Store) PutProgress(ctx context.Context, p *record.Progress) error {
	if err := p.Validate(); err != nil {
		return &StorageError{Op: "put progress", Err: err}
	}

	query := `
	INSERT INTO progress (
		question_id, status, attempts, last_practiced_at,
		marked_for_revision, completed_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(question_id) DO UPDATE SET
		status = excluded.status,
		attempts = excluded.attempts,
		last_practiced_at = excluded.last_practiced_at,
		marked_for_revision = excluded.marked_for_revision,
		completed_at = excluded.completed_at,
		updated_at = excluded.updated_at
	`

	_, err := s.conn.ExecContext(ctx, query,
		p.QuestionID,
		p.Status,
		p.Attempts,
		timePtrToNull(p.LastPracticedAt),
		boolToInt(p.MarkedForRevision),
		timePtrToNull(p.CompletedAt),
		p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return &StorageError{Op: fmt.Sprintf("put progress %s", p.QuestionID), Err: err}
	}

	return nil
}

// GetProgress returns the progress record for a question, or nil if
// absent.
func (s *Store) GetProgress(ctx context.Context, questionID string) (*record.Progress, error) {
	query := `
	SELECT question_id, status, attempts, last_practiced_at,
	       marked_for_revision, completed_at, updated_at
	FROM progress
	WHERE question_id = ?
	`

	p, err := scanProgress(s.conn.QueryRowContext(ctx, query, questionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("get progress %s", questionID), Err: err}
	}
	return p, nil
}

// AllProgress returns every progress record.
func (s *Store) AllProgress(ctx context.Context) ([]record.Progress, error) {
	query := `
	SELECT question_id, status, attempts, last_practiced_at,
	       marked_for_revision, completed_at, updated_at
	FROM progress
	ORDER BY question_id
	`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, &StorageError{Op: "list progress", Err: err}
	}
	defer rows.Close()

	var out []record.Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, &StorageError{Op: "scan progress", Err: err}
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate progress", Err: err}
	}

	return out, nil
}

// DeleteProgress removes a progress record. Returns nil if the record
// doesn't exist (idempotent).
func (s *Store) DeleteProgress(ctx context.Context, questionID string) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM progress WHERE question_id = ?`, questionID)
	if err != nil {
		return &StorageError{Op: fmt.Sprintf("delete progress %s", questionID), Err: err}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (*record.Progress, error) {
	var p record.Progress
	var practiced, completed sql.NullString
	var revision int
	var updatedAt string

	err := row.Scan(
		&p.QuestionID,
		&p.Status,
		&p.Attempts,
		&practiced,
		&revision,
		&completed,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.LastPracticedAt = nullToTimePtr(practiced)
	p.MarkedForRevision = revision != 0
	p.CompletedAt = nullToTimePtr(completed)
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		p.UpdatedAt = t
	}

	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// marshalIDs serializes a question id list for storage; nil stays nil.
func marshalIDs(ids []string) (sql.NullString, error) {
	if ids == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}
