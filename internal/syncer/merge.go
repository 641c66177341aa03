package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/oscarhq/oscar/internal/record"
)

// LoginMerge implements Coordinator.LoginMerge.
func (c *coordinator) LoginMerge(ctx context.Context, identity string) error {
	if identity == "" {
		return nil
	}

	c.logger.Printf("Starting login merge for %s", identity)

	var errs []error
	if err := c.mergeProgress(ctx, identity); err != nil {
		c.logger.Printf("Progress merge failed: %v", err)
		errs = append(errs, err)
	}
	if err := c.mergeDailyLogs(ctx, identity); err != nil {
		c.logger.Printf("Daily log merge failed: %v", err)
		errs = append(errs, err)
	}
	if err := c.mergeSettings(ctx, identity); err != nil {
		c.logger.Printf("Settings merge failed: %v", err)
		errs = append(errs, err)
	}
	if err := c.mergeTestResults(ctx, identity); err != nil {
		c.logger.Printf("Test result merge failed: %v", err)
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		c.logger.Printf("Login merge complete for %s", identity)
	}
	return errors.Join(errs...)
}

// mergeKeyed merges one keyed collection. The winner for each key is
// the copy with the newer modification time; a tie keeps the local
// copy. Remote winners are written into the local store as they are
// found. The returned map is the full merged set, encoded for a batch
// push to the remote store.
func mergeKeyed[T any](
	ctx context.Context,
	collection string,
	remoteRaw map[string]string,
	local []T,
	key func(*T) string,
	modified func(*T) time.Time,
	putLocal func(context.Context, *T) error,
	logger *log.Logger,
) (map[string]string, error) {
	localByKey := make(map[string]*T, len(local))
	for i := range local {
		localByKey[key(&local[i])] = &local[i]
	}

	winners := make(map[string]*T, len(local)+len(remoteRaw))
	for k, raw := range remoteRaw {
		var r T
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			logger.Printf("Skipping undecodable remote %s record %q: %v", collection, k, err)
			continue
		}
		l, ok := localByKey[k]
		if ok && !modified(&r).After(modified(l)) {
			winners[k] = l
			continue
		}
		if err := putLocal(ctx, &r); err != nil {
			return nil, fmt.Errorf("failed to adopt remote %s record %q: %w", collection, k, err)
		}
		winners[k] = &r
	}
	for k, l := range localByKey {
		if _, seen := winners[k]; !seen {
			winners[k] = l
		}
	}

	merged := make(map[string]string, len(winners))
	for k, w := range winners {
		raw, err := json.Marshal(w)
		if err != nil {
			return nil, fmt.Errorf("failed to encode merged %s record %q: %w", collection, k, err)
		}
		merged[k] = string(raw)
	}
	return merged, nil
}

func (c *coordinator) mergeProgress(ctx context.Context, identity string) error {
	remoteRaw, err := c.remote.ReadAll(ctx, identity, record.CollectionProgress)
	if err != nil {
		return fmt.Errorf("failed to read remote progress: %w", err)
	}
	local, err := c.local.AllProgress(ctx)
	if err != nil {
		return fmt.Errorf("failed to read local progress: %w", err)
	}

	merged, err := mergeKeyed(ctx, record.CollectionProgress, remoteRaw, local,
		func(p *record.Progress) string { return p.QuestionID },
		func(p *record.Progress) time.Time { return p.UpdatedAt },
		c.local.PutProgress, c.logger)
	if err != nil {
		return err
	}
	if len(merged) == 0 {
		return nil
	}
	if err := c.remote.WriteBatch(ctx, identity, record.CollectionProgress, merged); err != nil {
		return fmt.Errorf("failed to push merged progress: %w", err)
	}
	c.logger.Printf("Merged %d progress records", len(merged))
	return nil
}

func (c *coordinator) mergeDailyLogs(ctx context.Context, identity string) error {
	remoteRaw, err := c.remote.ReadAll(ctx, identity, record.CollectionDailyLogs)
	if err != nil {
		return fmt.Errorf("failed to read remote daily logs: %w", err)
	}
	local, err := c.local.AllDailyLogs(ctx)
	if err != nil {
		return fmt.Errorf("failed to read local daily logs: %w", err)
	}

	merged, err := mergeKeyed(ctx, record.CollectionDailyLogs, remoteRaw, local,
		func(d *record.DailyLog) string { return d.Date },
		func(d *record.DailyLog) time.Time { return d.UpdatedAt },
		c.local.PutDailyLog, c.logger)
	if err != nil {
		return err
	}
	if len(merged) == 0 {
		return nil
	}
	if err := c.remote.WriteBatch(ctx, identity, record.CollectionDailyLogs, merged); err != nil {
		return fmt.Errorf("failed to push merged daily logs: %w", err)
	}
	c.logger.Printf("Merged %d daily logs", len(merged))
	return nil
}

// mergeTestResults unions the append-only result history. Results
// never change after creation, so there is no conflict to resolve;
// mergeKeyed degenerates to a union keyed by result id.
func (c *coordinator) mergeTestResults(ctx context.Context, identity string) error {
	remoteRaw, err := c.remote.ReadAll(ctx, identity, record.CollectionTestResults)
	if err != nil {
		return fmt.Errorf("failed to read remote test results: %w", err)
	}
	local, err := c.local.AllTestResults(ctx)
	if err != nil {
		return fmt.Errorf("failed to read local test results: %w", err)
	}

	merged, err := mergeKeyed(ctx, record.CollectionTestResults, remoteRaw, local,
		func(t *record.TestResult) string { return t.ID },
		func(t *record.TestResult) time.Time { return t.CreatedAt },
		c.local.PutTestResult, c.logger)
	if err != nil {
		return err
	}
	if len(merged) == 0 {
		return nil
	}
	if err := c.remote.WriteBatch(ctx, identity, record.CollectionTestResults, merged); err != nil {
		return fmt.Errorf("failed to push merged test results: %w", err)
	}
	c.logger.Printf("Merged %d test results", len(merged))
	return nil
}

// mergeSettings reconciles the two settings singletons. Each one is
// resolved independently with the same newer-wins rule, then both
// winners go to the remote store in one batch.
func (c *coordinator) mergeSettings(ctx context.Context, identity string) error {
	remoteRaw, err := c.remote.ReadAll(ctx, identity, record.CollectionSettings)
	if err != nil {
		return fmt.Errorf("failed to read remote settings: %w", err)
	}

	push := make(map[string]string, 2)

	localCalc, err := c.local.GetCalculatorSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to read local calculator settings: %w", err)
	}
	if err := mergeSingleton(ctx, record.CalculatorSettingsID, remoteRaw, localCalc,
		func(s *record.CalculatorSettings) time.Time { return s.UpdatedAt },
		c.local.PutCalculatorSettings, push, c.logger); err != nil {
		return err
	}

	localTest, err := c.local.GetTestSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to read local test settings: %w", err)
	}
	if err := mergeSingleton(ctx, record.TestSettingsID, remoteRaw, localTest,
		func(s *record.TestSettings) time.Time { return s.UpdatedAt },
		c.local.PutTestSettings, push, c.logger); err != nil {
		return err
	}

	if len(push) == 0 {
		return nil
	}
	if err := c.remote.WriteBatch(ctx, identity, record.CollectionSettings, push); err != nil {
		return fmt.Errorf("failed to push merged settings: %w", err)
	}
	return nil
}

// mergeSingleton resolves one settings document and records the
// winner in push. A nil local with no remote copy leaves push
// untouched.
func mergeSingleton[T any](
	ctx context.Context,
	id string,
	remoteRaw map[string]string,
	local *T,
	modified func(*T) time.Time,
	putLocal func(context.Context, *T) error,
	push map[string]string,
	logger *log.Logger,
) error {
	var remote *T
	if raw, ok := remoteRaw[id]; ok {
		var r T
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			logger.Printf("Skipping undecodable remote settings %q: %v", id, err)
		} else {
			remote = &r
		}
	}

	winner := local
	if remote != nil && (local == nil || modified(remote).After(modified(local))) {
		if err := putLocal(ctx, remote); err != nil {
			return fmt.Errorf("failed to adopt remote settings %q: %w", id, err)
		}
		winner = remote
	}
	if winner == nil {
		return nil
	}

	raw, err := json.Marshal(winner)
	if err != nil {
		return fmt.Errorf("failed to encode settings %q: %w", id, err)
	}
	push[id] = string(raw)
	return nil
}
