package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/oscarhq/oscar/internal/record"
)

// pendingIntent is the collapsed outcome for one remote key: the
// newest queued write for that key plus the ids of every entry it
// supersedes. A key deleted and then re-created while offline replays
// as a single write, and an update followed by a delete replays as a
// single delete; the remote store only ever sees the final state.
type pendingIntent struct {
	w          *record.PendingWrite
	collection string
	key        string
	ids        []string
}

// drainBatch accumulates final intents destined for one collection.
// ids holds every queue entry the batch settles, superseded entries
// included.
type drainBatch struct {
	values map[string]string
	ids    []string
}

// DrainQueue implements Coordinator.DrainQueue.
func (c *coordinator) DrainQueue(ctx context.Context, identity string) error {
	if identity == "" {
		return nil
	}
	if !c.drainMu.TryLock() {
		c.logger.Println("Drain already in flight, skipping")
		return nil
	}
	defer c.drainMu.Unlock()

	pending, err := c.local.PendingWrites(ctx)
	if err != nil {
		return fmt.Errorf("failed to read pending queue: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}
	c.logger.Printf("Draining %d pending writes", len(pending))

	// First pass: walk the queue in enqueue order and keep only the
	// latest intent per key.
	intents := make(map[string]*pendingIntent)
	var order []string
	for i := range pending {
		w := &pending[i]
		collection, key, ok := c.resolve(ctx, w)
		if !ok {
			continue
		}
		ik := collection + "\x00" + key
		if in, exists := intents[ik]; exists {
			in.w = w
			in.ids = append(in.ids, w.ID)
			continue
		}
		intents[ik] = &pendingIntent{
			w:          w,
			collection: collection,
			key:        key,
			ids:        []string{w.ID},
		}
		order = append(order, ik)
	}

	batches := make(map[string]*drainBatch)
	var singles, deletes []*pendingIntent
	for _, ik := range order {
		in := intents[ik]
		switch {
		case in.w.Action == record.ActionDelete:
			deletes = append(deletes, in)
		case in.w.Kind == record.KindProgress || in.w.Kind == record.KindDailyLog:
			b := batches[in.collection]
			if b == nil {
				b = &drainBatch{values: make(map[string]string)}
				batches[in.collection] = b
			}
			b.values[in.key] = string(in.w.Payload)
			b.ids = append(b.ids, in.ids...)
		default:
			singles = append(singles, in)
		}
	}

	var errs []error

	for collection, b := range batches {
		if err := c.remote.WriteBatch(ctx, identity, collection, b.values); err != nil {
			errs = append(errs, fmt.Errorf("failed to replay %s batch: %w", collection, err))
			continue
		}
		for _, id := range b.ids {
			if err := c.local.DeletePendingWrite(ctx, id); err != nil {
				errs = append(errs, fmt.Errorf("failed to dequeue %s: %w", id, err))
			}
		}
		c.logger.Printf("Replayed %d queued %s writes", len(b.ids), collection)
	}

	for _, in := range deletes {
		if err := c.remote.Delete(ctx, identity, in.collection, in.key); err != nil {
			errs = append(errs, fmt.Errorf("failed to replay delete of %s %q: %w", in.collection, in.key, err))
			continue
		}
		for _, id := range in.ids {
			if err := c.local.DeletePendingWrite(ctx, id); err != nil {
				errs = append(errs, fmt.Errorf("failed to dequeue %s: %w", id, err))
			}
		}
	}

	for _, in := range singles {
		if err := c.remote.WriteOne(ctx, identity, in.collection, in.key, string(in.w.Payload)); err != nil {
			errs = append(errs, fmt.Errorf("failed to replay %s %q: %w", in.collection, in.key, err))
			continue
		}
		for _, id := range in.ids {
			if err := c.local.DeletePendingWrite(ctx, id); err != nil {
				errs = append(errs, fmt.Errorf("failed to dequeue %s: %w", id, err))
			}
		}
	}

	return errors.Join(errs...)
}

// resolve extracts the remote location of a queue entry. Entries that
// no longer decode are removed outright so a corrupt payload cannot
// wedge the queue forever.
func (c *coordinator) resolve(ctx context.Context, w *record.PendingWrite) (collection, key string, ok bool) {
	collection, err := w.Collection()
	if err == nil {
		key, err = w.RemoteKey()
	}
	if err != nil {
		c.logger.Printf("Discarding undecodable queue entry %s (%s %s): %v", w.ID, w.Action, w.Kind, err)
		if derr := c.local.DeletePendingWrite(ctx, w.ID); derr != nil {
			c.logger.Printf("Failed to discard queue entry %s: %v", w.ID, derr)
		}
		return "", "", false
	}
	return collection, key, true
}
