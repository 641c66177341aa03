package syncer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oscarhq/oscar/internal/localstore"
)

// Config holds configuration for the daemon.
type Config struct {
	// DrainInterval is how often to replay the pending queue while
	// connected. The interval is fixed; there is no backoff.
	DrainInterval time.Duration

	// ResyncDelay is how long after startup to run the initial full
	// sync when an identity is already present.
	ResyncDelay time.Duration

	// ImportDir, when set, is watched for snapshot JSON files.
	// Dropped files are imported into the local store and removed.
	ImportDir string

	// DebounceInterval is how long to wait before importing a dropped
	// file, so partially written files settle first.
	DebounceInterval time.Duration

	// Logger for daemon activity
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DrainInterval:    30 * time.Second,
		ResyncDelay:      time.Second,
		DebounceInterval: 500 * time.Millisecond,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// IdentityProvider reports the identity the daemon syncs for.
type IdentityProvider interface {
	// Identity returns the current identity, or "" when logged out.
	Identity() string

	// Changes delivers new identities as they become available. A nil
	// channel means the identity never changes.
	Changes() <-chan string
}

// StaticIdentity is an IdentityProvider for a fixed identity.
type StaticIdentity string

func (s StaticIdentity) Identity() string { return string(s) }

func (s StaticIdentity) Changes() <-chan string { return nil }

// Pinger reports whether the remote store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Daemon drives periodic reconciliation: full sync on identity
// changes, queue drain on a fixed interval while connected, and
// snapshot imports from a drop directory.
type Daemon struct {
	coord  Coordinator
	local  *localstore.Store
	ids    IdentityProvider
	pinger Pinger
	config *Config

	watcher *fsnotify.Watcher

	pendingImports map[string]time.Time
	importMu       sync.Mutex
}

// NewDaemon creates a daemon. pinger may be nil, in which case drains
// are attempted unconditionally and the remote client's own errors
// gate progress.
func NewDaemon(coord Coordinator, local *localstore.Store, ids IdentityProvider, pinger Pinger, config *Config) (*Daemon, error) {
	if coord == nil {
		return nil, fmt.Errorf("coordinator cannot be nil")
	}
	if local == nil {
		return nil, fmt.Errorf("local store cannot be nil")
	}
	if ids == nil {
		return nil, fmt.Errorf("identity provider cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}

	d := &Daemon{
		coord:          coord,
		local:          local,
		ids:            ids,
		pinger:         pinger,
		config:         config,
		pendingImports: make(map[string]time.Time),
	}

	if config.ImportDir != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create watcher: %w", err)
		}
		if err := watcher.Add(config.ImportDir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch import directory: %w", err)
		}
		d.watcher = watcher
	}

	return d, nil
}

// Run blocks until ctx is cancelled, reacting to identity changes,
// the drain ticker, and import drop events.
func (d *Daemon) Run(ctx context.Context) error {
	d.config.Logger.Println("Starting sync daemon")

	drainTicker := time.NewTicker(d.config.DrainInterval)
	defer drainTicker.Stop()
	debounceTicker := time.NewTicker(d.config.DebounceInterval)
	defer debounceTicker.Stop()

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if d.watcher != nil {
		defer d.watcher.Close()
		events = d.watcher.Events
		watchErrs = d.watcher.Errors
		d.config.Logger.Printf("Watching import directory: %s", d.config.ImportDir)
	}

	// Re-merge shortly after startup when already logged in, so a
	// previous session's offline edits reach the remote store.
	var resync <-chan time.Time
	if d.ids.Identity() != "" {
		timer := time.NewTimer(d.config.ResyncDelay)
		defer timer.Stop()
		resync = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			d.config.Logger.Println("Sync daemon stopped")
			return nil

		case <-resync:
			d.fullSync(ctx)

		case identity, ok := <-d.ids.Changes():
			if !ok {
				continue
			}
			if identity != "" {
				d.config.Logger.Printf("Identity changed to %s", identity)
				d.fullSync(ctx)
			}

		case <-drainTicker.C:
			d.drain(ctx)

		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}
			d.queueImport(event.Name)

		case <-debounceTicker.C:
			d.processImports(ctx)

		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

func (d *Daemon) fullSync(ctx context.Context) {
	identity := d.ids.Identity()
	if identity == "" {
		return
	}
	if err := d.coord.FullSync(ctx, identity); err != nil {
		d.config.Logger.Printf("Full sync failed: %v", err)
	}
}

func (d *Daemon) drain(ctx context.Context) {
	identity := d.ids.Identity()
	if identity == "" {
		return
	}
	if d.pinger != nil {
		if err := d.pinger.Ping(ctx); err != nil {
			d.config.Logger.Printf("Remote store unreachable, skipping drain: %v", err)
			return
		}
	}
	if err := d.coord.DrainQueue(ctx, identity); err != nil {
		d.config.Logger.Printf("Drain failed: %v", err)
	}
}

func (d *Daemon) queueImport(path string) {
	d.importMu.Lock()
	defer d.importMu.Unlock()
	d.pendingImports[path] = time.Now()
}

// processImports imports dropped snapshot files that have settled for
// at least one debounce interval. Imported files are removed; files
// that do not parse are renamed aside so they are not retried.
func (d *Daemon) processImports(ctx context.Context) {
	d.importMu.Lock()
	defer d.importMu.Unlock()

	now := time.Now()
	for path, queuedAt := range d.pendingImports {
		if now.Sub(queuedAt) < d.config.DebounceInterval {
			continue
		}
		delete(d.pendingImports, path)

		data, err := os.ReadFile(path)
		if err != nil {
			d.config.Logger.Printf("Failed to read dropped snapshot %s: %v", path, err)
			continue
		}
		if err := d.local.ImportAll(ctx, data); err != nil {
			d.config.Logger.Printf("Failed to import snapshot %s: %v", path, err)
			if rerr := os.Rename(path, path+".rejected"); rerr != nil {
				d.config.Logger.Printf("Failed to set aside %s: %v", path, rerr)
			}
			continue
		}
		d.config.Logger.Printf("Imported snapshot: %s", path)
		if err := os.Remove(path); err != nil {
			d.config.Logger.Printf("Failed to remove imported snapshot %s: %v", path, err)
		}
	}
}
