package syncer

import "context"

// Coordinator reconciles the local store with the remote store.
//
// The coordinator is resilient: a failure in one collection does not
// stop reconciliation of the others. Collection-level errors are
// joined and returned after every collection has been attempted.
type Coordinator interface {
	// LoginMerge performs the two-way merge that runs when an
	// identity becomes available.
	//
	// For every record present on either side, the copy with the
	// newer modification time wins. A strictly newer remote copy is
	// written into the local store; otherwise the local copy is kept,
	// including when the timestamps are equal. After merging, the
	// full merged set of each collection is pushed to the remote
	// store so both sides converge.
	//
	// Returns an error if any collection could not be merged; the
	// remaining collections are still attempted.
	LoginMerge(ctx context.Context, identity string) error

	// DrainQueue replays pending writes against the remote store.
	//
	// Keyed kinds (progress, daily logs) are grouped into one atomic
	// batch per collection: either every record in the batch lands
	// remotely and every corresponding queue entry is deleted, or the
	// batch fails and every entry stays queued for the next cycle.
	// Queued deletes and singleton kinds (settings, test results) are
	// replayed one at a time, each entry removed only after its own
	// write succeeds.
	//
	// At most one drain runs per process at a time; a call that finds
	// a drain already in flight returns immediately with no error.
	//
	// Entries whose payload no longer decodes are logged and removed
	// so they cannot wedge the queue.
	DrainQueue(ctx context.Context, identity string) error

	// FullSync runs a login merge followed by a queue drain. It is
	// the entry point for an identity change or a manual sync.
	FullSync(ctx context.Context, identity string) error
}

// RemoteStore is the subset of the remote client the coordinator
// needs. It is an interface so tests can substitute slow or failing
// remotes.
type RemoteStore interface {
	ReadAll(ctx context.Context, identity, collection string) (map[string]string, error)
	WriteOne(ctx context.Context, identity, collection, key, value string) error
	WriteBatch(ctx context.Context, identity, collection string, values map[string]string) error
	Delete(ctx context.Context, identity, collection, key string) error
}
