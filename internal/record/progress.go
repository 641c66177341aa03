package record

import (
	"fmt"
	"time"
)

// Lifecycle status values for a practice problem.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Progress tracks a user's work on a single practice problem, keyed
// by the problem's external identifier.
//
// CompletedAt is set on first completion and preserved across
// re-completions unless explicitly cleared. UpdatedAt must be bumped
// on every mutation; it is the sole tie-breaker for merge.
type Progress struct {
	QuestionID        string     `json:"questionId"`
	Status            string     `json:"status"`
	Attempts          int        `json:"attempts"`
	LastPracticedAt   *time.Time `json:"lastPracticedAt,omitempty"`
	MarkedForRevision bool       `json:"markedForRevision"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Validate checks the Progress record for required fields.
func (p *Progress) Validate() error {
	if p.QuestionID == "" {
		return fmt.Errorf("questionId is required")
	}
	switch p.Status {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
	default:
		return fmt.Errorf("unknown status %q", p.Status)
	}
	if p.Attempts < 0 {
		return fmt.Errorf("attempts must be non-negative (got %d)", p.Attempts)
	}
	if p.UpdatedAt.IsZero() {
		return fmt.Errorf("updatedAt is required")
	}
	return nil
}

// Key returns the merge key for this record.
func (p *Progress) Key() string { return p.QuestionID }
