package syncer

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/oscarhq/oscar/internal/localstore"
)

// coordinator implements the Coordinator interface.
type coordinator struct {
	local  *localstore.Store
	remote RemoteStore
	logger *log.Logger

	// drainMu enforces the single-drain-per-process rule.
	drainMu sync.Mutex
}

// New creates a Coordinator backed by the given stores.
//
// If logger is nil, a default logger writing to stderr is used.
func New(local *localstore.Store, remote RemoteStore, logger *log.Logger) Coordinator {
	if logger == nil {
		logger = log.New(os.Stderr, "[syncer] ", log.LstdFlags)
	}
	return &coordinator{
		local:  local,
		remote: remote,
		logger: logger,
	}
}

// FullSync implements Coordinator.FullSync.
func (c *coordinator) FullSync(ctx context.Context, identity string) error {
	if err := c.LoginMerge(ctx, identity); err != nil {
		return err
	}
	return c.DrainQueue(ctx, identity)
}
