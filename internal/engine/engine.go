// Package engine implements the client-side sync engine: a materialized,
// denormalized view of the ledger that answers reads instantly, applies
// local mutations optimistically, and reconciles against full ledger reads
// so the client never presents permanently wrong state.
package engine

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/openbloc/chainfeed/internal/cache"
	"github.com/openbloc/chainfeed/internal/identity"
	"github.com/openbloc/chainfeed/internal/ledger"
	"github.com/openbloc/chainfeed/internal/models"
)

// DefaultReconcileInterval is the background reconciliation period used
// when the config does not set one.
const DefaultReconcileInterval = 15 * time.Second

// DefaultSnapshotKey is the cache key for the confirmed-layer snapshot.
const DefaultSnapshotKey = "chainfeed/view"

// Config wires an Engine to its collaborators. Ledger and Identity are
// required; Snapshots is optional (no warm start without it).
type Config struct {
	Ledger            ledger.Store
	Identity          identity.Provider
	Snapshots         cache.Snapshots
	SnapshotKey       string
	ReconcileInterval time.Duration
}

// Engine owns the materialized view. The confirmed layer is the last full
// ledger read; the optimistic layer is the confirmed layer with the pending
// mutation records applied on top. Presentation code only ever reads the
// result of Posts.
type Engine struct {
	store       ledger.Store
	ident       identity.Provider
	snaps       cache.Snapshots
	snapshotKey string
	interval    time.Duration

	mu        sync.Mutex
	confirmed []models.PostView
	pending   []*pendingMutation
	likeGates map[likeGateKey]chan struct{}
	nextPh    uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type likeGateKey struct {
	postID uint64
	actor  string
}

// New creates an Engine and seeds the confirmed layer from the snapshot
// cache when one is available. The seed is provisional: the first
// reconciliation replaces it wholesale, including entries the ledger no
// longer reports. Call Start to begin background reconciliation and Close
// to tear the engine down.
func New(cfg Config) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		store:       cfg.Ledger,
		ident:       cfg.Identity,
		snaps:       cfg.Snapshots,
		snapshotKey: cfg.SnapshotKey,
		interval:    cfg.ReconcileInterval,
		likeGates:   make(map[likeGateKey]chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
	if e.snapshotKey == "" {
		e.snapshotKey = DefaultSnapshotKey
	}
	if e.interval <= 0 {
		e.interval = DefaultReconcileInterval
	}
	e.warmStart()
	return e
}

// Start begins the periodic background reconciliation loop. The loop runs
// regardless of mutation activity so writes by other actors become visible.
func (e *Engine) Start() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		if err := e.Reconcile(e.ctx); err != nil {
			log.Printf("initial reconciliation failed, will retry: %v", err)
		}

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-e.ctx.Done():
				return
			case <-ticker.C:
				if err := e.Reconcile(e.ctx); err != nil {
					log.Printf("periodic reconciliation failed, will retry: %v", err)
				}
			}
		}
	}()
}

// Close cancels all in-flight submissions and the background loop, then
// waits for them to finish. A submission cancelled here may still have
// committed on the ledger; a later engine instance surfaces it through its
// own reconciliation.
func (e *Engine) Close() {
	e.cancel()
	e.wg.Wait()
}

// Posts returns the optimistic view: the confirmed layer with every
// unresolved pending delta applied on top, sorted by creation time
// descending with id descending as the tiebreak.
func (e *Engine) Posts() []models.PostView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderLocked()
}

// TotalPosts reports the number of posts in the optimistic view.
func (e *Engine) TotalPosts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.renderLocked())
}

// warmStart seeds the confirmed layer from the snapshot cache, if any.
func (e *Engine) warmStart() {
	if e.snaps == nil {
		return
	}
	views, err := loadSnapshot(e.snaps, e.snapshotKey)
	if err != nil {
		if !errors.Is(err, cache.ErrNoSnapshot) {
			log.Printf("snapshot warm start skipped: %v", err)
		}
		return
	}
	e.mu.Lock()
	e.confirmed = views
	e.mu.Unlock()
}
