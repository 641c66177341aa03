package record

import (
	"fmt"
	"time"
)

// Fixed keys for the singleton settings records.
const (
	CalculatorSettingsID = "calculator"
	TestSettingsID       = "test"
)

// CalculatorSettings holds the pacing inputs for the completion-date
// calculator. Singleton per identity.
type CalculatorSettings struct {
	ID                    string    `json:"id"`
	TotalQuestions        int       `json:"totalQuestions"`
	QuestionsPerWeekday   int       `json:"questionsPerWeekday"`
	ExtraQuestionsToday   int       `json:"extraQuestionsToday"`
	ExtraQuestionsWeekend int       `json:"extraQuestionsWeekend"`
	StartDate             string    `json:"startDate"` // YYYY-MM-DD
	UpdatedAt             time.Time `json:"updatedAt"`
}

// Validate checks the CalculatorSettings record for required fields.
func (s *CalculatorSettings) Validate() error {
	if s.ID != CalculatorSettingsID {
		return fmt.Errorf("id must be %q (got %q)", CalculatorSettingsID, s.ID)
	}
	if s.TotalQuestions < 0 {
		return fmt.Errorf("totalQuestions must be non-negative (got %d)", s.TotalQuestions)
	}
	if s.StartDate != "" {
		if _, err := time.Parse(DateLayout, s.StartDate); err != nil {
			return fmt.Errorf("startDate must be YYYY-MM-DD (got %q)", s.StartDate)
		}
	}
	if s.UpdatedAt.IsZero() {
		return fmt.Errorf("updatedAt is required")
	}
	return nil
}

// Test source values for TestSettings.DefaultSource.
const (
	TestSourceAll       = "all"
	TestSourceCompleted = "completed"
	TestSourceTopics    = "topics"
	TestSourceCustom    = "custom"
)

// TestSettings holds the user's practice-test defaults. Singleton per
// identity.
type TestSettings struct {
	ID            string    `json:"id"`
	DefaultSource string    `json:"defaultSource"`
	DefaultCount  int       `json:"defaultCount"`
	DefaultTopics []string  `json:"defaultTopics,omitempty"`
	SyncEnabled   bool      `json:"syncEnabled"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Validate checks the TestSettings record for required fields.
func (s *TestSettings) Validate() error {
	if s.ID != TestSettingsID {
		return fmt.Errorf("id must be %q (got %q)", TestSettingsID, s.ID)
	}
	switch s.DefaultSource {
	case TestSourceAll, TestSourceCompleted, TestSourceTopics, TestSourceCustom:
	default:
		return fmt.Errorf("unknown test source %q", s.DefaultSource)
	}
	if s.DefaultCount <= 0 {
		return fmt.Errorf("defaultCount must be positive (got %d)", s.DefaultCount)
	}
	if s.UpdatedAt.IsZero() {
		return fmt.Errorf("updatedAt is required")
	}
	return nil
}
