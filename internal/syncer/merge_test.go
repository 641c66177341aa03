package syncer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/oscarhq/oscar/internal/localstore"
	"github.com/oscarhq/oscar/internal/record"
	"github.com/oscarhq/oscar/internal/remote"
)

func setupTestCoordinator(t *testing.T) (*coordinator, *localstore.Store, *miniredis.Miniredis) {
	t.Helper()

	store, err := localstore.Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.InitSchema(context.Background()); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}

	mr := miniredis.RunT(t)
	client := remote.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)
	t.Cleanup(func() { client.Close() })

	return New(store, client, nil).(*coordinator), store, mr
}

func progressAt(id, status string, updatedAt time.Time) *record.Progress {
	return &record.Progress{
		QuestionID: id,
		Status:     status,
		Attempts:   1,
		UpdatedAt:  updatedAt,
	}
}

func seedRemoteProgress(t *testing.T, mr *miniredis.Miniredis, identity string, p *record.Progress) {
	t.Helper()
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("failed to marshal progress: %v", err)
	}
	mr.HSet("user:"+identity+":progress", p.QuestionID, string(raw))
}

func remoteProgress(t *testing.T, mr *miniredis.Miniredis, identity, questionID string) *record.Progress {
	t.Helper()
	raw := mr.HGet("user:"+identity+":progress", questionID)
	if raw == "" {
		return nil
	}
	var p record.Progress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("failed to decode remote progress: %v", err)
	}
	return &p
}

func TestLoginMergeRemoteNewerWins(t *testing.T) {
	coord, store, mr := setupTestCoordinator(t)
	ctx := context.Background()

	older := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	if err := store.PutProgress(ctx, progressAt("two-sum", record.StatusInProgress, older)); err != nil {
		t.Fatalf("PutProgress failed: %v", err)
	}
	seedRemoteProgress(t, mr, "alice", progressAt("two-sum", record.StatusCompleted, newer))

	if err := coord.LoginMerge(ctx, "alice"); err != nil {
		t.Fatalf("LoginMerge failed: %v", err)
	}

	got, err := store.GetProgress(ctx, "two-sum")
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if got.Status != record.StatusCompleted {
		t.Errorf("local status = %q, want remote winner %q", got.Status, record.StatusCompleted)
	}
	if !got.UpdatedAt.Equal(newer) {
		t.Errorf("local updatedAt = %v, want %v", got.UpdatedAt, newer)
	}
}

func TestLoginMergeLocalNewerWins(t *testing.T) {
	coord, store, mr := setupTestCoordinator(t)
	ctx := context.Background()

	older := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	if err := store.PutProgress(ctx, progressAt("two-sum", record.StatusCompleted, newer)); err != nil {
		t.Fatalf("PutProgress failed: %v", err)
	}
	seedRemoteProgress(t, mr, "alice", progressAt("two-sum", record.StatusInProgress, older))

	if err := coord.LoginMerge(ctx, "alice"); err != nil {
		t.Fatalf("LoginMerge failed: %v", err)
	}

	local, err := store.GetProgress(ctx, "two-sum")
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if local.Status != record.StatusCompleted {
		t.Errorf("local status = %q, want %q", local.Status, record.StatusCompleted)
	}

	pushed := remoteProgress(t, mr, "alice", "two-sum")
	if pushed == nil || pushed.Status != record.StatusCompleted {
		t.Errorf("remote copy = %+v, want local winner pushed", pushed)
	}
}

func TestLoginMergeTieKeepsLocal(t *testing.T) {
	coord, store, mr := setupTestCoordinator(t)
	ctx := context.Background()

	at := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	local := progressAt("two-sum", record.StatusCompleted, at)
	local.Attempts = 5
	if err := store.PutProgress(ctx, local); err != nil {
		t.Fatalf("PutProgress failed: %v", err)
	}
	seedRemoteProgress(t, mr, "alice", progressAt("two-sum", record.StatusInProgress, at))

	if err := coord.LoginMerge(ctx, "alice"); err != nil {
		t.Fatalf("LoginMerge failed: %v", err)
	}

	got, err := store.GetProgress(ctx, "two-sum")
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if got.Status != record.StatusCompleted || got.Attempts != 5 {
		t.Errorf("local copy changed on tie: %+v", got)
	}

	pushed := remoteProgress(t, mr, "alice", "two-sum")
	if pushed == nil || pushed.Status != record.StatusCompleted {
		t.Errorf("remote copy = %+v, want local copy pushed on tie", pushed)
	}
}

// Two devices edit disjoint problems while offline; after each logs
// in, both stores hold the union.
func TestLoginMergeUnionsBothSides(t *testing.T) {
	coord, store, mr := setupTestCoordinator(t)
	ctx := context.Background()

	at := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	if err := store.PutProgress(ctx, progressAt("two-sum", record.StatusCompleted, at)); err != nil {
		t.Fatalf("PutProgress failed: %v", err)
	}
	seedRemoteProgress(t, mr, "alice", progressAt("lru-cache", record.StatusInProgress, at))

	if err := coord.LoginMerge(ctx, "alice"); err != nil {
		t.Fatalf("LoginMerge failed: %v", err)
	}

	all, err := store.AllProgress(ctx)
	if err != nil {
		t.Fatalf("AllProgress failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("local store has %d records, want union of 2", len(all))
	}

	if remoteProgress(t, mr, "alice", "two-sum") == nil {
		t.Error("local-only record missing from remote store")
	}
	if remoteProgress(t, mr, "alice", "lru-cache") == nil {
		t.Error("remote-only record missing from remote store")
	}
}

func TestLoginMergeDailyLogs(t *testing.T) {
	coord, store, mr := setupTestCoordinator(t)
	ctx := context.Background()

	older := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	if err := store.PutDailyLog(ctx, &record.DailyLog{
		Date: "2026-08-01", Count: 2, CreatedAt: older, UpdatedAt: older,
	}); err != nil {
		t.Fatalf("PutDailyLog failed: %v", err)
	}
	remoteLog, _ := json.Marshal(&record.DailyLog{
		Date: "2026-08-01", Count: 4, CreatedAt: older, UpdatedAt: newer,
	})
	mr.HSet("user:alice:daily_logs", "2026-08-01", string(remoteLog))

	if err := coord.LoginMerge(ctx, "alice"); err != nil {
		t.Fatalf("LoginMerge failed: %v", err)
	}

	got, err := store.GetDailyLog(ctx, "2026-08-01")
	if err != nil {
		t.Fatalf("GetDailyLog failed: %v", err)
	}
	if got.Count != 4 {
		t.Errorf("local count = %g, want remote winner 4", got.Count)
	}
}

func TestLoginMergeSettings(t *testing.T) {
	coord, store, mr := setupTestCoordinator(t)
	ctx := context.Background()

	older := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	if err := store.PutCalculatorSettings(ctx, &record.CalculatorSettings{
		ID: record.CalculatorSettingsID, TotalQuestions: 150,
		QuestionsPerWeekday: 2, StartDate: "2026-08-01", UpdatedAt: older,
	}); err != nil {
		t.Fatalf("PutCalculatorSettings failed: %v", err)
	}
	remoteCalc, _ := json.Marshal(&record.CalculatorSettings{
		ID: record.CalculatorSettingsID, TotalQuestions: 200,
		QuestionsPerWeekday: 3, StartDate: "2026-08-01", UpdatedAt: newer,
	})
	mr.HSet("user:alice:settings", record.CalculatorSettingsID, string(remoteCalc))

	if err := coord.LoginMerge(ctx, "alice"); err != nil {
		t.Fatalf("LoginMerge failed: %v", err)
	}

	got, err := store.GetCalculatorSettings(ctx)
	if err != nil {
		t.Fatalf("GetCalculatorSettings failed: %v", err)
	}
	if got.TotalQuestions != 200 || got.QuestionsPerWeekday != 3 {
		t.Errorf("local settings = %+v, want remote winner adopted", got)
	}
	if mr.HGet("user:alice:settings", record.CalculatorSettingsID) == "" {
		t.Error("expected settings winner pushed to remote store")
	}
}

func TestLoginMergeEmptyIdentityIsNoOp(t *testing.T) {
	coord, store, mr := setupTestCoordinator(t)
	ctx := context.Background()

	at := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	if err := store.PutProgress(ctx, progressAt("two-sum", record.StatusCompleted, at)); err != nil {
		t.Fatalf("PutProgress failed: %v", err)
	}

	if err := coord.LoginMerge(ctx, ""); err != nil {
		t.Fatalf("LoginMerge with empty identity should be a no-op, got: %v", err)
	}
	if len(mr.Keys()) != 0 {
		t.Errorf("no-op merge wrote remote keys: %v", mr.Keys())
	}
}

func TestLoginMergeRemoteDownReportsError(t *testing.T) {
	coord, store, mr := setupTestCoordinator(t)
	ctx := context.Background()
	mr.Close()

	at := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	if err := store.PutProgress(ctx, progressAt("two-sum", record.StatusCompleted, at)); err != nil {
		t.Fatalf("PutProgress failed: %v", err)
	}

	if err := coord.LoginMerge(ctx, "alice"); err == nil {
		t.Fatal("expected error when remote store is unreachable")
	}

	// Local data is untouched by a failed merge.
	got, err := store.GetProgress(ctx, "two-sum")
	if err != nil || got == nil {
		t.Fatalf("local record lost after failed merge: %v, %v", got, err)
	}
}
