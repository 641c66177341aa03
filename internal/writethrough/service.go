// Package writethrough implements the save path shared by every
// mutable record type: write to the local store first, then
// opportunistically mirror to the remote store, queueing the write
// when the remote store cannot take it.
//
// A save never fails because of a remote outage. After any save
// returns, either the remote store holds the record or the pending
// queue holds exactly one entry describing the outstanding write.
package writethrough

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/oscarhq/oscar/internal/localstore"
	"github.com/oscarhq/oscar/internal/record"
	"github.com/oscarhq/oscar/internal/remote"
)

// Remote is the subset of the remote client the service needs.
type Remote interface {
	WriteOne(ctx context.Context, identity, collection, key, value string) error
	Delete(ctx context.Context, identity, collection, key string) error
	ReadCatalog(ctx context.Context, collection string) (map[string]string, error)
}

// Service writes records through to both stores.
type Service struct {
	local  *localstore.Store
	remote Remote
	logger *log.Logger
}

// New creates a write-through service. If logger is nil, a default
// logger writing to stderr is used.
func New(local *localstore.Store, rs Remote, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(os.Stderr, "[writethrough] ", log.LstdFlags)
	}
	return &Service{local: local, remote: rs, logger: logger}
}

// SaveProgress persists a progress record. With an empty identity the
// record stays local-only until a future login merge.
func (s *Service) SaveProgress(ctx context.Context, p *record.Progress, identity string) error {
	if err := s.local.PutProgress(ctx, p); err != nil {
		return err
	}
	return s.mirror(ctx, identity, record.KindProgress, record.ActionUpdate, p)
}

// SaveDailyLog persists the log for a calendar date.
func (s *Service) SaveDailyLog(ctx context.Context, d *record.DailyLog, identity string) error {
	if err := s.local.PutDailyLog(ctx, d); err != nil {
		return err
	}
	return s.mirror(ctx, identity, record.KindDailyLog, record.ActionUpdate, d)
}

// DeleteDailyLog removes the log for a calendar date from both
// stores, queueing the remote delete when unreachable.
func (s *Service) DeleteDailyLog(ctx context.Context, d *record.DailyLog, identity string) error {
	if err := s.local.DeleteDailyLog(ctx, d.Date); err != nil {
		return err
	}
	return s.mirror(ctx, identity, record.KindDailyLog, record.ActionDelete, d)
}

// SaveCalculatorSettings persists the calculator settings singleton.
func (s *Service) SaveCalculatorSettings(ctx context.Context, cs *record.CalculatorSettings, identity string) error {
	if err := s.local.PutCalculatorSettings(ctx, cs); err != nil {
		return err
	}
	return s.mirror(ctx, identity, record.KindCalculatorSettings, record.ActionUpdate, cs)
}

// SaveTestSettings persists the test settings singleton.
func (s *Service) SaveTestSettings(ctx context.Context, ts *record.TestSettings, identity string) error {
	if err := s.local.PutTestSettings(ctx, ts); err != nil {
		return err
	}
	return s.mirror(ctx, identity, record.KindTestSettings, record.ActionUpdate, ts)
}

// SaveTestResult persists a finished practice test.
func (s *Service) SaveTestResult(ctx context.Context, t *record.TestResult, identity string) error {
	if err := s.local.PutTestResult(ctx, t); err != nil {
		return err
	}
	return s.mirror(ctx, identity, record.KindTestResult, record.ActionCreate, t)
}

// mirror attempts the remote write and, when the remote store is not
// currently deliverable, enqueues a pending write instead. Local
// failures while enqueueing do bubble up: losing the queue entry
// would silently diverge the two stores.
func (s *Service) mirror(ctx context.Context, identity string, kind record.Kind, action record.Action, payload any) error {
	if identity == "" {
		return nil
	}

	item, err := record.NewPendingWrite(kind, action, payload)
	if err != nil {
		return err
	}
	collection, err := item.Collection()
	if err != nil {
		return err
	}
	key, err := item.RemoteKey()
	if err != nil {
		return err
	}

	var werr error
	if action == record.ActionDelete {
		werr = s.remote.Delete(ctx, identity, collection, key)
	} else {
		werr = s.remote.WriteOne(ctx, identity, collection, key, string(item.Payload))
	}
	if werr == nil {
		return nil
	}
	if !remote.IsRemote(werr) {
		return werr
	}

	s.logger.Printf("remote write failed, queueing %s %s %s: %v", action, kind, key, werr)
	if err := s.local.Enqueue(ctx, item); err != nil {
		return fmt.Errorf("failed to queue %s %s: %w", kind, key, err)
	}
	return nil
}

// Status reports whether queued writes are waiting on the remote
// store, for UI display.
type Status struct {
	HasPending   bool
	PendingCount int
}

// SyncStatus returns the current pending-queue status.
func (s *Service) SyncStatus(ctx context.Context) (Status, error) {
	count, err := s.local.PendingCount(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{HasPending: count > 0, PendingCount: count}, nil
}

// Questions returns the problem catalog, preferring a fresh remote
// read. On success the local cache is replaced wholesale; when the
// remote store is unreachable the cached copy is served instead.
func (s *Service) Questions(ctx context.Context) ([]record.CachedQuestion, error) {
	raw, err := s.remote.ReadCatalog(ctx, record.CollectionQuestions)
	if err != nil {
		if !remote.IsRemote(err) {
			return nil, err
		}
		s.logger.Printf("catalog fetch failed, serving cache: %v", err)
		return s.local.AllCachedQuestions(ctx)
	}

	now := time.Now().UTC()
	questions := make([]record.CachedQuestion, 0, len(raw))
	for id, payload := range raw {
		questions = append(questions, record.CachedQuestion{
			ID:        id,
			Payload:   json.RawMessage(payload),
			FetchedAt: now,
		})
	}

	if err := s.local.ReplaceQuestionCache(ctx, questions); err != nil {
		return nil, err
	}
	return questions, nil
}
