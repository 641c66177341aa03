package localstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oscarhq/oscar/internal/record"
)

// ReplaceQuestionCache swaps the cached question catalog wholesale.
// The cache is a fallback copy of remote reference data; it is never
// merged, so a successful remote read replaces it entirely.
func (s *Store) ReplaceQuestionCache(ctx context.Context, questions []record.CachedQuestion) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "begin question cache replace", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM question_cache`); err != nil {
		return &StorageError{Op: "clear question cache", Err: err}
	}

	for _, q := range questions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO question_cache (id, payload, fetched_at) VALUES (?, ?, ?)`,
			q.ID, string(q.Payload), q.FetchedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return &StorageError{Op: "insert cached question " + q.ID, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "commit question cache replace", Err: err}
	}
	return nil
}

// AllCachedQuestions returns the cached question catalog.
func (s *Store) AllCachedQuestions(ctx context.Context) ([]record.CachedQuestion, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, payload, fetched_at FROM question_cache ORDER BY id`)
	if err != nil {
		return nil, &StorageError{Op: "list cached questions", Err: err}
	}
	defer rows.Close()

	var out []record.CachedQuestion
	for rows.Next() {
		var q record.CachedQuestion
		var payload, fetchedAt string
		if err := rows.Scan(&q.ID, &payload, &fetchedAt); err != nil {
			return nil, &StorageError{Op: "scan cached question", Err: err}
		}
		q.Payload = json.RawMessage(payload)
		if t, err := time.Parse(time.RFC3339Nano, fetchedAt); err == nil {
			q.FetchedAt = t
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate cached questions", Err: err}
	}

	return out, nil
}
