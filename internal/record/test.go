package record

import (
	"fmt"
	"time"
)

// TestResult is one finished practice test. Test results are written
// through like other records but never merged: each id is written
// once and retried whole until delivered.
type TestResult struct {
	ID          string    `json:"id"`
	QuestionIDs []string  `json:"questionIds"`
	WeakIDs     []string  `json:"weakIds,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate checks the TestResult record for required fields.
func (t *TestResult) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("id is required")
	}
	if len(t.QuestionIDs) == 0 {
		return fmt.Errorf("questionIds must not be empty")
	}
	if t.CreatedAt.IsZero() {
		return fmt.Errorf("createdAt is required")
	}
	return nil
}
