package record

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind tags the record type a pending write applies to.
type Kind string

// Known pending-write kinds. Decoding is exhaustive over this set;
// an unknown kind never round-trips through the queue silently.
const (
	KindProgress           Kind = "progress"
	KindDailyLog           Kind = "daily_log"
	KindCalculatorSettings Kind = "calculator_settings"
	KindTestSettings       Kind = "test_settings"
	KindTestResult         Kind = "test_result"
)

// Action describes the intended remote operation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// PendingWrite is one queued remote write, created when a remote
// write fails and consumed by queue drain. An item is removed in its
// entirety after the corresponding remote write is confirmed, or
// retried in full on the next drain cycle; never partially deleted.
type PendingWrite struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	Action     Action          `json:"action"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

// NewPendingWrite builds a queue entry for the given record payload.
func NewPendingWrite(kind Kind, action Action, payload any) (*PendingWrite, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}
	return &PendingWrite{
		ID:         uuid.NewString(),
		Kind:       kind,
		Action:     action,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// Validate checks the PendingWrite for required fields and a known
// kind/action pair.
func (w *PendingWrite) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("id is required")
	}
	switch w.Kind {
	case KindProgress, KindDailyLog, KindCalculatorSettings, KindTestSettings, KindTestResult:
	default:
		return fmt.Errorf("unknown kind %q", w.Kind)
	}
	switch w.Action {
	case ActionCreate, ActionUpdate, ActionDelete:
	default:
		return fmt.Errorf("unknown action %q", w.Action)
	}
	if len(w.Payload) == 0 {
		return fmt.Errorf("payload is required")
	}
	if w.EnqueuedAt.IsZero() {
		return fmt.Errorf("enqueuedAt is required")
	}
	return nil
}

// Progress decodes the payload as a Progress record.
func (w *PendingWrite) Progress() (*Progress, error) {
	if w.Kind != KindProgress {
		return nil, fmt.Errorf("pending write %s is %s, not %s", w.ID, w.Kind, KindProgress)
	}
	var p Progress
	if err := json.Unmarshal(w.Payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode progress payload: %w", err)
	}
	return &p, nil
}

// DailyLog decodes the payload as a DailyLog record.
func (w *PendingWrite) DailyLog() (*DailyLog, error) {
	if w.Kind != KindDailyLog {
		return nil, fmt.Errorf("pending write %s is %s, not %s", w.ID, w.Kind, KindDailyLog)
	}
	var d DailyLog
	if err := json.Unmarshal(w.Payload, &d); err != nil {
		return nil, fmt.Errorf("failed to decode daily log payload: %w", err)
	}
	return &d, nil
}

// CalculatorSettings decodes the payload as a CalculatorSettings record.
func (w *PendingWrite) CalculatorSettings() (*CalculatorSettings, error) {
	if w.Kind != KindCalculatorSettings {
		return nil, fmt.Errorf("pending write %s is %s, not %s", w.ID, w.Kind, KindCalculatorSettings)
	}
	var s CalculatorSettings
	if err := json.Unmarshal(w.Payload, &s); err != nil {
		return nil, fmt.Errorf("failed to decode calculator settings payload: %w", err)
	}
	return &s, nil
}

// TestSettings decodes the payload as a TestSettings record.
func (w *PendingWrite) TestSettings() (*TestSettings, error) {
	if w.Kind != KindTestSettings {
		return nil, fmt.Errorf("pending write %s is %s, not %s", w.ID, w.Kind, KindTestSettings)
	}
	var s TestSettings
	if err := json.Unmarshal(w.Payload, &s); err != nil {
		return nil, fmt.Errorf("failed to decode test settings payload: %w", err)
	}
	return &s, nil
}

// TestResult decodes the payload as a TestResult record.
func (w *PendingWrite) TestResult() (*TestResult, error) {
	if w.Kind != KindTestResult {
		return nil, fmt.Errorf("pending write %s is %s, not %s", w.ID, w.Kind, KindTestResult)
	}
	var t TestResult
	if err := json.Unmarshal(w.Payload, &t); err != nil {
		return nil, fmt.Errorf("failed to decode test result payload: %w", err)
	}
	return &t, nil
}

// RemoteKey returns the remote document key the payload applies to.
func (w *PendingWrite) RemoteKey() (string, error) {
	switch w.Kind {
	case KindProgress:
		p, err := w.Progress()
		if err != nil {
			return "", err
		}
		return p.QuestionID, nil
	case KindDailyLog:
		d, err := w.DailyLog()
		if err != nil {
			return "", err
		}
		return d.Date, nil
	case KindCalculatorSettings:
		return CalculatorSettingsID, nil
	case KindTestSettings:
		return TestSettingsID, nil
	case KindTestResult:
		t, err := w.TestResult()
		if err != nil {
			return "", err
		}
		return t.ID, nil
	default:
		return "", fmt.Errorf("unknown kind %q", w.Kind)
	}
}

// Collection returns the collection name the payload belongs to.
func (w *PendingWrite) Collection() (string, error) {
	switch w.Kind {
	case KindProgress:
		return CollectionProgress, nil
	case KindDailyLog:
		return CollectionDailyLogs, nil
	case KindCalculatorSettings, KindTestSettings:
		return CollectionSettings, nil
	case KindTestResult:
		return CollectionTestResults, nil
	default:
		return "", fmt.Errorf("unknown kind %q", w.Kind)
	}
}
