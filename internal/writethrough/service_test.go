package writethrough

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/oscarhq/oscar/internal/localstore"
	"github.com/oscarhq/oscar/internal/record"
	"github.com/oscarhq/oscar/internal/remote"
)

func setupTestService(t *testing.T) (*Service, *localstore.Store, *miniredis.Miniredis) {
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

	return New(store, client, nil), store, mr
}

func testProgress(id string) *record.Progress {
	return &record.Progress{
		QuestionID: id,
		Status:     record.StatusInProgress,
		Attempts:   1,
		UpdatedAt:  time.Now().UTC(),
	}
}

func TestSaveProgressWritesBothStores(t *testing.T) {
	svc, store, mr := setupTestService(t)
	ctx := context.Background()

	if err := svc.SaveProgress(ctx, testProgress("two-sum"), "alice"); err != nil {
		t.Fatalf("SaveProgress failed: %v", err)
	}

	got, err := store.GetProgress(ctx, "two-sum")
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected progress in local store")
	}

	if !mr.Exists("user:alice:progress") {
		t.Error("expected progress hash in remote store")
	}
	if mr.HGet("user:alice:progress", "two-sum") == "" {
		t.Error("expected progress field under question id")
	}

	count, err := store.PendingCount(ctx)
	if err != nil {
		t.Fatalf("PendingCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty queue after clean save, got %d", count)
	}
}

func TestSaveProgressQueuesWhenRemoteDown(t *testing.T) {
	svc, store, mr := setupTestService(t)
	ctx := context.Background()
	mr.Close()

	if err := svc.SaveProgress(ctx, testProgress("two-sum"), "alice"); err != nil {
		t.Fatalf("SaveProgress should absorb remote outage, got: %v", err)
	}

	got, err := store.GetProgress(ctx, "two-sum")
	if err != nil || got == nil {
		t.Fatalf("expected progress in local store despite outage, got %v, %v", got, err)
	}

	pending, err := store.PendingWrites(ctx)
	if err != nil {
		t.Fatalf("PendingWrites failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected exactly one queued write, got %d", len(pending))
	}
	if pending[0].Kind != record.KindProgress {
		t.Errorf("queued kind = %q, want %q", pending[0].Kind, record.KindProgress)
	}
	if pending[0].Action != record.ActionUpdate {
		t.Errorf("queued action = %q, want %q", pending[0].Action, record.ActionUpdate)
	}
}

func TestSaveWithoutIdentityStaysLocal(t *testing.T) {
	svc, store, mr := setupTestService(t)
	ctx := context.Background()

	if err := svc.SaveProgress(ctx, testProgress("two-sum"), ""); err != nil {
		t.Fatalf("SaveProgress failed: %v", err)
	}

	if mr.Exists("user::progress") || mr.Exists("user:alice:progress") {
		t.Error("anonymous save must not reach the remote store")
	}
	count, err := store.PendingCount(ctx)
	if err != nil {
		t.Fatalf("PendingCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("anonymous save must not queue, got %d entries", count)
	}
}

func TestDeleteDailyLogMirrorsDelete(t *testing.T) {
	svc, _, mr := setupTestService(t)
	ctx := context.Background()

	d := &record.DailyLog{
		Date:      "2026-08-30",
		Count:     3,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := svc.SaveDailyLog(ctx, d, "alice"); err != nil {
		t.Fatalf("SaveDailyLog failed: %v", err)
	}
	if mr.HGet("user:alice:daily_logs", "2026-08-30") == "" {
		t.Fatal("expected daily log in remote store")
	}

	if err := svc.DeleteDailyLog(ctx, d, "alice"); err != nil {
		t.Fatalf("DeleteDailyLog failed: %v", err)
	}
	if mr.HGet("user:alice:daily_logs", "2026-08-30") != "" {
		t.Error("expected daily log removed from remote store")
	}
}

func TestDeleteDailyLogQueuesWhenRemoteDown(t *testing.T) {
	svc, store, mr := setupTestService(t)
	ctx := context.Background()

	d := &record.DailyLog{
		Date:      "2026-08-30",
		Count:     3,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := svc.SaveDailyLog(ctx, d, "alice"); err != nil {
		t.Fatalf("SaveDailyLog failed: %v", err)
	}

	mr.Close()
	if err := svc.DeleteDailyLog(ctx, d, "alice"); err != nil {
		t.Fatalf("DeleteDailyLog should absorb remote outage, got: %v", err)
	}

	got, err := store.GetDailyLog(ctx, "2026-08-30")
	if err != nil {
		t.Fatalf("GetDailyLog failed: %v", err)
	}
	if got != nil {
		t.Error("expected daily log removed locally")
	}

	pending, err := store.PendingWrites(ctx)
	if err != nil {
		t.Fatalf("PendingWrites failed: %v", err)
	}
	if len(pending) != 1 || pending[0].Action != record.ActionDelete {
		t.Fatalf("expected one queued delete, got %+v", pending)
	}
}

func TestRepeatedSaveQueuesEachAttempt(t *testing.T) {
	svc, store, mr := setupTestService(t)
	ctx := context.Background()
	mr.Close()

	if err := svc.SaveProgress(ctx, testProgress("two-sum"), "alice"); err != nil {
		t.Fatalf("SaveProgress failed: %v", err)
	}
	if err := svc.SaveProgress(ctx, testProgress("two-sum"), "alice"); err != nil {
		t.Fatalf("SaveProgress failed: %v", err)
	}

	count, err := store.PendingCount(ctx)
	if err != nil {
		t.Fatalf("PendingCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 queued writes, got %d", count)
	}

	status, err := svc.SyncStatus(ctx)
	if err != nil {
		t.Fatalf("SyncStatus failed: %v", err)
	}
	if !status.HasPending || status.PendingCount != 2 {
		t.Errorf("status = %+v, want pending 2", status)
	}
}

func TestQuestionsPrefersRemoteAndRefreshesCache(t *testing.T) {
	svc, store, mr := setupTestService(t)
	ctx := context.Background()

	mr.HSet("catalog:questions", "two-sum", `{"title":"Two Sum"}`)
	mr.HSet("catalog:questions", "lru-cache", `{"title":"LRU Cache"}`)

	questions, err := svc.Questions(ctx)
	if err != nil {
		t.Fatalf("Questions failed: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}

	cached, err := store.AllCachedQuestions(ctx)
	if err != nil {
		t.Fatalf("AllCachedQuestions failed: %v", err)
	}
	if len(cached) != 2 {
		t.Errorf("expected cache refreshed with 2 questions, got %d", len(cached))
	}
}

func TestQuestionsServesCacheWhenRemoteDown(t *testing.T) {
	svc, _, mr := setupTestService(t)
	ctx := context.Background()

	mr.HSet("catalog:questions", "two-sum", `{"title":"Two Sum"}`)
	if _, err := svc.Questions(ctx); err != nil {
		t.Fatalf("Questions failed: %v", err)
	}

	mr.Close()
	questions, err := svc.Questions(ctx)
	if err != nil {
		t.Fatalf("Questions should fall back to cache, got: %v", err)
	}
	if len(questions) != 1 || questions[0].ID != "two-sum" {
		t.Fatalf("expected cached question, got %+v", questions)
	}
}
