package syncer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oscarhq/oscar/internal/record"
)

func quietConfig() *Config {
	c := DefaultConfig()
	c.DrainInterval = time.Hour
	c.ResyncDelay = time.Hour
	return c
}

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func runDaemon(t *testing.T, d *Daemon) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := d.Run(ctx); err != nil {
			t.Errorf("daemon exited with error: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestDaemonImportsDroppedSnapshot(t *testing.T) {
	store := setupTestStore(t)
	coord := New(store, newStubRemote(), nil)

	importDir := t.TempDir()
	config := quietConfig()
	config.ImportDir = importDir
	config.DebounceInterval = 20 * time.Millisecond

	d, err := NewDaemon(coord, store, StaticIdentity(""), nil, config)
	if err != nil {
		t.Fatalf("NewDaemon failed: %v", err)
	}
	runDaemon(t, d)

	snap := &record.Snapshot{
		Progress: []record.Progress{{
			QuestionID: "two-sum",
			Status:     record.StatusCompleted,
			Attempts:   2,
			UpdatedAt:  time.Now().UTC(),
		}},
		ExportedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("failed to marshal snapshot: %v", err)
	}
	dropPath := filepath.Join(importDir, "snapshot.json")
	if err := os.WriteFile(dropPath, data, 0o644); err != nil {
		t.Fatalf("failed to drop snapshot: %v", err)
	}

	waitFor(t, func() bool {
		p, err := store.GetProgress(context.Background(), "two-sum")
		return err == nil && p != nil
	}, "dropped snapshot was never imported")

	waitFor(t, func() bool {
		_, err := os.Stat(dropPath)
		return os.IsNotExist(err)
	}, "imported snapshot file was never removed")
}

func TestDaemonSetsAsideMalformedSnapshot(t *testing.T) {
	store := setupTestStore(t)
	coord := New(store, newStubRemote(), nil)

	importDir := t.TempDir()
	config := quietConfig()
	config.ImportDir = importDir
	config.DebounceInterval = 20 * time.Millisecond

	d, err := NewDaemon(coord, store, StaticIdentity(""), nil, config)
	if err != nil {
		t.Fatalf("NewDaemon failed: %v", err)
	}
	runDaemon(t, d)

	dropPath := filepath.Join(importDir, "bad.json")
	if err := os.WriteFile(dropPath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to drop file: %v", err)
	}

	waitFor(t, func() bool {
		_, err := os.Stat(dropPath + ".rejected")
		return err == nil
	}, "malformed snapshot was never set aside")
}

func TestDaemonDrainsOnTicker(t *testing.T) {
	store := setupTestStore(t)
	stub := newStubRemote()
	coord := New(store, stub, nil)

	enqueueProgress(t, store, "two-sum", 1)

	config := quietConfig()
	config.DrainInterval = 20 * time.Millisecond

	d, err := NewDaemon(coord, store, StaticIdentity("alice"), nil, config)
	if err != nil {
		t.Fatalf("NewDaemon failed: %v", err)
	}
	runDaemon(t, d)

	waitFor(t, func() bool {
		count, err := store.PendingCount(context.Background())
		return err == nil && count == 0
	}, "queue was never drained by the ticker")
}

func TestDaemonRunsInitialFullSync(t *testing.T) {
	store := setupTestStore(t)
	stub := newStubRemote()
	coord := New(store, stub, nil)
	ctx := context.Background()

	if err := store.PutProgress(ctx, &record.Progress{
		QuestionID: "two-sum",
		Status:     record.StatusCompleted,
		Attempts:   1,
		UpdatedAt:  time.Now().UTC(),
	}); err != nil {
		t.Fatalf("PutProgress failed: %v", err)
	}

	config := quietConfig()
	config.ResyncDelay = 20 * time.Millisecond

	d, err := NewDaemon(coord, store, StaticIdentity("alice"), nil, config)
	if err != nil {
		t.Fatalf("NewDaemon failed: %v", err)
	}
	runDaemon(t, d)

	waitFor(t, func() bool {
		stub.mu.Lock()
		defer stub.mu.Unlock()
		return len(stub.batches[record.CollectionProgress]) == 1
	}, "startup full sync never pushed local records")
}

func TestNewDaemonValidation(t *testing.T) {
	store := setupTestStore(t)
	coord := New(store, newStubRemote(), nil)

	if _, err := NewDaemon(nil, store, StaticIdentity(""), nil, nil); err == nil {
		t.Error("expected error for nil coordinator")
	}
	if _, err := NewDaemon(coord, nil, StaticIdentity(""), nil, nil); err == nil {
		t.Error("expected error for nil local store")
	}
	if _, err := NewDaemon(coord, store, nil, nil, nil); err == nil {
		t.Error("expected error for nil identity provider")
	}

	config := DefaultConfig()
	config.ImportDir = "/nonexistent/path/for/sure"
	if _, err := NewDaemon(coord, store, StaticIdentity(""), nil, config); err == nil {
		t.Error("expected error for unwatchable import directory")
	}
}
