package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"github.com/openbloc/chainfeed/internal/cache"
	"github.com/openbloc/chainfeed/internal/models"
)

// Reconcile performs a full ledger read and replaces the confirmed layer
// wholesale, then drops every pending record whose submission already
// confirmed. Safe to run concurrently with itself: the snapshot replace is
// idempotent, so when two passes race the later installation wins.
func (e *Engine) Reconcile(ctx context.Context) error {
	viewer, _ := e.ident.CurrentActor()

	posts, err := e.store.GetAllPosts(ctx)
	if err != nil {
		return fmt.Errorf("reconciliation read: %w", err)
	}

	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		comments, err := e.store.GetComments(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("reconciliation read (post %d comments): %w", p.ID, err)
		}
		liked := false
		if viewer != "" {
			liked, err = e.store.HasLiked(ctx, p.ID, viewer)
			if err != nil {
				return fmt.Errorf("reconciliation read (post %d like): %w", p.ID, err)
			}
		}
		views = append(views, models.PostView{Post: p, Comments: comments, IsLiked: liked})
	}
	sortViews(views)

	e.mu.Lock()
	e.confirmed = views

	// Confirmed submissions are now represented by the fresh snapshot;
	// their placeholder deltas must not apply on top of it.
	kept := e.pending[:0]
	for _, mut := range e.pending {
		if mut.state == statePending {
			kept = append(kept, mut)
		}
	}
	e.pending = kept
	e.mu.Unlock()

	e.persistSnapshot(views)
	return nil
}

// sortViews orders posts newest first: creation time descending, with the
// higher id winning ties since ids are assigned in creation order.
func sortViews(views []models.PostView) {
	sort.Slice(views, func(i, j int) bool {
		if !views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].CreatedAt.After(views[j].CreatedAt)
		}
		return views[i].ID > views[j].ID
	})
}

func (e *Engine) persistSnapshot(views []models.PostView) {
	if e.snaps == nil {
		return
	}
	data, err := json.Marshal(views)
	if err != nil {
		log.Printf("snapshot encode failed: %v", err)
		return
	}
	if err := e.snaps.Put(e.snapshotKey, data); err != nil {
		log.Printf("snapshot write failed: %v", err)
	}
}

func loadSnapshot(snaps cache.Snapshots, key string) ([]models.PostView, error) {
	data, err := snaps.Get(key)
	if err != nil {
		return nil, err
	}
	var views []models.PostView
	if err := json.Unmarshal(data, &views); err != nil {
		return nil, fmt.Errorf("snapshot decode: %w", err)
	}
	return views, nil
}
