package remote

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// setupTestClient starts an in-process Redis and returns a client
// wired to it.
func setupTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewWithClient(rdb, log.New(os.Stderr, "[test] ", 0)), mr
}

func TestWriteReadOne(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	if err := client.WriteOne(ctx, "u1", "progress", "q1", `{"questionId":"q1"}`); err != nil {
		t.Fatalf("WriteOne failed: %v", err)
	}

	val, ok, err := client.ReadOne(ctx, "u1", "progress", "q1")
	if err != nil {
		t.Fatalf("ReadOne failed: %v", err)
	}
	if !ok {
		t.Fatal("expected record to exist")
	}
	if val != `{"questionId":"q1"}` {
		t.Errorf("value mismatch: %s", val)
	}
}

func TestReadOneAbsent(t *testing.T) {
	client, _ := setupTestClient(t)

	_, ok, err := client.ReadOne(context.Background(), "u1", "progress", "missing")
	if err != nil {
		t.Fatalf("ReadOne failed: %v", err)
	}
	if ok {
		t.Error("expected absent record")
	}
}

func TestPerIdentityPartitioning(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	if err := client.WriteOne(ctx, "alice", "progress", "q1", `{"a":1}`); err != nil {
		t.Fatalf("WriteOne failed: %v", err)
	}

	_, ok, err := client.ReadOne(ctx, "bob", "progress", "q1")
	if err != nil {
		t.Fatalf("ReadOne failed: %v", err)
	}
	if ok {
		t.Error("records must be partitioned by identity")
	}
}

func TestWriteBatchAndReadAll(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	batch := map[string]string{
		"q1": `{"questionId":"q1"}`,
		"q2": `{"questionId":"q2"}`,
		"q3": `{"questionId":"q3"}`,
	}
	if err := client.WriteBatch(ctx, "u1", "progress", batch); err != nil {
		t.Fatalf("WriteBatch failed: %v", err)
	}

	all, err := client.ReadAll(ctx, "u1", "progress")
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 records, got %d", len(all))
	}
	if all["q2"] != batch["q2"] {
		t.Errorf("record mismatch: %s", all["q2"])
	}
}

func TestWriteBatchEmpty(t *testing.T) {
	client, _ := setupTestClient(t)

	if err := client.WriteBatch(context.Background(), "u1", "progress", nil); err != nil {
		t.Errorf("empty batch should be a no-op: %v", err)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	if err := client.WriteOne(ctx, "u1", "daily_logs", "2024-01-01", `{}`); err != nil {
		t.Fatalf("WriteOne failed: %v", err)
	}
	if err := client.Delete(ctx, "u1", "daily_logs", "2024-01-01"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := client.Delete(ctx, "u1", "daily_logs", "2024-01-01"); err != nil {
		t.Errorf("repeat delete should be a no-op: %v", err)
	}
}

func TestUnreachableServerIsRemoteError(t *testing.T) {
	client, mr := setupTestClient(t)
	mr.Close()

	err := client.WriteOne(context.Background(), "u1", "progress", "q1", `{}`)
	if err == nil {
		t.Fatal("expected error against closed server")
	}

	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %T: %v", err, err)
	}
	if re.Kind != KindTransient {
		t.Errorf("expected transient kind, got %s", re.Kind)
	}
}

func TestServerErrorClassification(t *testing.T) {
	client, mr := setupTestClient(t)
	mr.SetError("NOAUTH Authentication required.")

	err := client.WriteOne(context.Background(), "u1", "progress", "q1", `{}`)
	if err == nil {
		t.Fatal("expected error")
	}

	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %T", err)
	}
	if re.Kind != KindUnauthenticated {
		t.Errorf("expected unauthenticated kind, got %s", re.Kind)
	}
}

func TestReadCatalog(t *testing.T) {
	client, mr := setupTestClient(t)

	mr.HSet("catalog:questions", "q1", `{"title":"Two Sum"}`)

	got, err := client.ReadCatalog(context.Background(), "questions")
	if err != nil {
		t.Fatalf("ReadCatalog failed: %v", err)
	}
	if len(got) != 1 || got["q1"] == "" {
		t.Errorf("catalog mismatch: %+v", got)
	}
}
