package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oscarhq/oscar/internal/record"
)

// enqueuedAtLayout is fixed-width, unlike RFC3339Nano which trims
// trailing zeros, so the TEXT column sorts lexicographically in time
// order.
const enqueuedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Enqueue adds a pending write to the queue. Re-enqueueing the same
// id replaces the entry.
func (s *Store) Enqueue(ctx context.Context, w *record.PendingWrite) error {
	if err := w.Validate(); err != nil {
		return &StorageError{Op: "enqueue pending write", Err: err}
	}

	query := `
	INSERT INTO pending_queue (id, kind, action, payload, enqueued_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		kind = excluded.kind,
		action = excluded.action,
		payload = excluded.payload,
		enqueued_at = excluded.enqueued_at
	`

	_, err := s.conn.ExecContext(ctx, query,
		w.ID,
		string(w.Kind),
		string(w.Action),
		string(w.Payload),
		w.EnqueuedAt.UTC().Format(enqueuedAtLayout),
	)
	if err != nil {
		return &StorageError{Op: fmt.Sprintf("enqueue %s %s", w.Kind, w.ID), Err: err}
	}

	return nil
}

// PendingWrites returns the full queue in enqueue order.
func (s *Store) PendingWrites(ctx context.Context) ([]record.PendingWrite, error) {
	query := `SELECT id, kind, action, payload, enqueued_at FROM pending_queue ORDER BY enqueued_at, id`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, &StorageError{Op: "list pending writes", Err: err}
	}
	defer rows.Close()

	var out []record.PendingWrite
	for rows.Next() {
		var w record.PendingWrite
		var kind, action, payload, enqueuedAt string
		if err := rows.Scan(&w.ID, &kind, &action, &payload, &enqueuedAt); err != nil {
			return nil, &StorageError{Op: "scan pending write", Err: err}
		}
		w.Kind = record.Kind(kind)
		w.Action = record.Action(action)
		w.Payload = json.RawMessage(payload)
		if t, err := time.Parse(time.RFC3339Nano, enqueuedAt); err == nil {
			w.EnqueuedAt = t
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate pending writes", Err: err}
	}

	return out, nil
}

// DeletePendingWrite removes one queue entry. Idempotent. Only called
// after the corresponding remote write is confirmed.
func (s *Store) DeletePendingWrite(ctx context.Context, id string) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM pending_queue WHERE id = ?`, id)
	if err != nil {
		return &StorageError{Op: fmt.Sprintf("delete pending write %s", id), Err: err}
	}
	return nil
}

// PendingCount returns the number of queued writes.
func (s *Store) PendingCount(ctx context.Context) (int, error) {
	var count int
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_queue`).Scan(&count)
	if err != nil {
		return 0, &StorageError{Op: "count pending writes", Err: err}
	}
	return count, nil
}
