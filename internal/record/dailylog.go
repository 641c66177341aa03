package record

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date key format for daily logs.
const DateLayout = "2006-01-02"

// DailyLog records how many problems were solved on one calendar
// date. At most one record exists per date per identity. The count is
// fractional to allow partial credit for revisits.
type DailyLog struct {
	Date        string    `json:"date"` // YYYY-MM-DD
	Count       float64   `json:"count"`
	QuestionIDs []string  `json:"questionIds,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks the DailyLog record for required fields.
func (d *DailyLog) Validate() error {
	if _, err := time.Parse(DateLayout, d.Date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD (got %q)", d.Date)
	}
	if d.Count < 0 {
		return fmt.Errorf("count must be non-negative (got %g)", d.Count)
	}
	if d.UpdatedAt.IsZero() {
		return fmt.Errorf("updatedAt is required")
	}
	return nil
}

// Key returns the merge key for this record.
func (d *DailyLog) Key() string { return d.Date }
