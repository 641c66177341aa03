package record

import "time"

// Snapshot is the export format: one field per collection plus the
// export timestamp. Date fields serialize as RFC 3339 strings through
// the record types' JSON encoding. Collections absent from an import
// payload are skipped, not errors.
type Snapshot struct {
	Progress           []Progress          `json:"progress,omitempty"`
	DailyLogs          []DailyLog          `json:"dailyLogs,omitempty"`
	CalculatorSettings *CalculatorSettings `json:"calculatorSettings,omitempty"`
	TestSettings       *TestSettings       `json:"testSettings,omitempty"`
	TestResults        []TestResult        `json:"testResults,omitempty"`
	ExportedAt         time.Time           `json:"exportedAt"`
}
