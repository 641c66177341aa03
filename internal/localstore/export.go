package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oscarhq/oscar/internal/record"
)

// ExportAll collects every mergeable collection into a snapshot.
// The pending-write queue and the question cache are device state,
// not user data, and are not exported.
func (s *Store) ExportAll(ctx context.Context) (*record.Snapshot, error) {
	progress, err := s.AllProgress(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := s.AllDailyLogs(ctx)
	if err != nil {
		return nil, err
	}
	calc, err := s.GetCalculatorSettings(ctx)
	if err != nil {
		return nil, err
	}
	test, err := s.GetTestSettings(ctx)
	if err != nil {
		return nil, err
	}
	results, err := s.AllTestResults(ctx)
	if err != nil {
		return nil, err
	}

	return &record.Snapshot{
		Progress:           progress,
		DailyLogs:          logs,
		CalculatorSettings: calc,
		TestSettings:       test,
		TestResults:        results,
		ExportedAt:         time.Now().UTC(),
	}, nil
}

// ExportJSON serializes the snapshot for a user-facing export file.
func (s *Store) ExportJSON(ctx context.Context) ([]byte, error) {
	snap, err := s.ExportAll(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	return data, nil
}

// ImportAll applies a snapshot by overwrite-per-key. It is not a
// semantic merge: every present record replaces whatever the store
// holds for that key. Unknown fields in the payload are ignored and
// absent collections are skipped.
func (s *Store) ImportAll(ctx context.Context, data []byte) error {
	var snap record.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return &FormatError{Err: err}
	}
	return s.ImportSnapshot(ctx, &snap)
}

// ImportSnapshot writes a parsed snapshot into the store.
func (s *Store) ImportSnapshot(ctx context.Context, snap *record.Snapshot) error {
	for i := range snap.Progress {
		if err := s.PutProgress(ctx, &snap.Progress[i]); err != nil {
			return err
		}
	}
	for i := range snap.DailyLogs {
		if err := s.PutDailyLog(ctx, &snap.DailyLogs[i]); err != nil {
			return err
		}
	}
	if snap.CalculatorSettings != nil {
		if err := s.PutCalculatorSettings(ctx, snap.CalculatorSettings); err != nil {
			return err
		}
	}
	if snap.TestSettings != nil {
		if err := s.PutTestSettings(ctx, snap.TestSettings); err != nil {
			return err
		}
	}
	for i := range snap.TestResults {
		if err := s.PutTestResult(ctx, &snap.TestResults[i]); err != nil {
			return err
		}
	}
	return nil
}
