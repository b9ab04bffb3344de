package engine

import (
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openbloc/chainfeed/internal/ledger"
)

// MutationKind identifies which ledger operation a pending mutation maps to.
type MutationKind string

const (
	MutationCreatePost MutationKind = "create_post"
	MutationAddComment MutationKind = "add_comment"
	MutationToggleLike MutationKind = "toggle_like"
)

type mutationState int

const (
	statePending mutationState = iota

	// stateConfirmed means the submission succeeded but the entity may not
	// be in the confirmed layer yet (the post-submission reconciliation
	// read failed). The record keeps applying until a reconciliation pass
	// lands.
	stateConfirmed

	stateReverted
)

// pendingMutation records one optimistic delta. The view renders deltas
// from these records, so reverting is exact removal of the record rather
// than any content matching. Placeholder ids live in a sentinel range that
// ledger-assigned ids can never reach.
type pendingMutation struct {
	id          uuid.UUID
	kind        MutationKind
	state       mutationState
	actor       string
	content     string
	postID      uint64 // target post for comments and likes
	placeholder uint64 // client-local id for created entities
	createdAt   time.Time
}

// placeholderBase starts the client-local id range. Ledger ids count up
// from 1; nothing real collides with the high half of the uint64 space.
const placeholderBase = uint64(1) << 63

func (e *Engine) allocPlaceholderLocked() uint64 {
	e.nextPh++
	return placeholderBase + e.nextPh
}

// CreatePost applies an optimistic post synchronously and submits the
// ledger mutation in the background. The returned channel receives exactly
// one value: nil once the mutation is confirmed on the ledger, or the error
// that caused the optimistic delta to be reverted.
func (e *Engine) CreatePost(content string) <-chan error {
	ch := make(chan error, 1)

	actor, ok := e.ident.CurrentActor()
	if !ok {
		ch <- ErrUnauthenticated
		return ch
	}
	if strings.TrimSpace(content) == "" {
		ch <- ledger.ErrEmptyContent
		return ch
	}

	e.mu.Lock()
	mut := &pendingMutation{
		id:          uuid.New(),
		kind:        MutationCreatePost,
		actor:       actor,
		content:     content,
		placeholder: e.allocPlaceholderLocked(),
		createdAt:   time.Now(),
	}
	mut.postID = mut.placeholder
	e.pending = append(e.pending, mut)
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		_, err := e.store.CreatePost(e.ctx, actor, content)
		e.resolve(mut, err, ch)
	}()
	return ch
}

// AddComment applies an optimistic comment on the target post and submits
// the ledger mutation in the background.
func (e *Engine) AddComment(postID uint64, content string) <-chan error {
	ch := make(chan error, 1)

	actor, ok := e.ident.CurrentActor()
	if !ok {
		ch <- ErrUnauthenticated
		return ch
	}
	if strings.TrimSpace(content) == "" {
		ch <- ledger.ErrEmptyContent
		return ch
	}

	e.mu.Lock()
	mut := &pendingMutation{
		id:          uuid.New(),
		kind:        MutationAddComment,
		actor:       actor,
		content:     content,
		postID:      postID,
		placeholder: e.allocPlaceholderLocked(),
		createdAt:   time.Now(),
	}
	e.pending = append(e.pending, mut)
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		_, err := e.store.AddComment(e.ctx, postID, actor, content)
		e.resolve(mut, err, ch)
	}()
	return ch
}

// ToggleLike flips the viewer's like optimistically and submits the toggle.
// Toggles for the same (post, actor) pair are serialized: while one is in
// flight, a second call waits for it to resolve before computing its own
// delta, so the client never double-counts its own flips.
func (e *Engine) ToggleLike(postID uint64) <-chan error {
	ch := make(chan error, 1)

	actor, ok := e.ident.CurrentActor()
	if !ok {
		ch <- ErrUnauthenticated
		return ch
	}

	key := likeGateKey{postID: postID, actor: actor}

	e.mu.Lock()
	gate, busy := e.likeGates[key]
	if !busy {
		mut := e.beginToggleLocked(key)
		e.mu.Unlock()
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.submitToggle(key, mut, ch)
		}()
		return ch
	}
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for {
			select {
			case <-gate:
			case <-e.ctx.Done():
				ch <- e.ctx.Err()
				return
			}

			e.mu.Lock()
			next, stillBusy := e.likeGates[key]
			if !stillBusy {
				mut := e.beginToggleLocked(key)
				e.mu.Unlock()
				e.submitToggle(key, mut, ch)
				return
			}
			gate = next
			e.mu.Unlock()
		}
	}()
	return ch
}

// beginToggleLocked records the optimistic toggle and claims the per-pair
// gate. Caller holds e.mu.
func (e *Engine) beginToggleLocked(key likeGateKey) *pendingMutation {
	e.likeGates[key] = make(chan struct{})
	mut := &pendingMutation{
		id:        uuid.New(),
		kind:      MutationToggleLike,
		actor:     key.actor,
		postID:    key.postID,
		createdAt: time.Now(),
	}
	e.pending = append(e.pending, mut)
	return mut
}

func (e *Engine) submitToggle(key likeGateKey, mut *pendingMutation, ch chan error) {
	_, err := e.store.ToggleLike(e.ctx, mut.postID, mut.actor)
	if err != nil {
		e.revert(mut)
		e.releaseGate(key)
		ch <- &SubmissionError{Kind: mut.kind, Err: err}
		return
	}

	e.mu.Lock()
	mut.state = stateConfirmed
	e.mu.Unlock()
	e.releaseGate(key)

	if rerr := e.Reconcile(e.ctx); rerr != nil {
		log.Printf("post-submission reconciliation failed, will retry: %v", rerr)
	}
	ch <- nil
}

func (e *Engine) releaseGate(key likeGateKey) {
	e.mu.Lock()
	if gate, ok := e.likeGates[key]; ok {
		close(gate)
		delete(e.likeGates, key)
	}
	e.mu.Unlock()
}

// resolve finishes a create or comment submission: confirm and reconcile on
// success, revert the recorded delta on failure.
func (e *Engine) resolve(mut *pendingMutation, err error, ch chan error) {
	if err != nil {
		e.revert(mut)
		ch <- &SubmissionError{Kind: mut.kind, Err: err}
		return
	}

	e.mu.Lock()
	mut.state = stateConfirmed
	e.mu.Unlock()

	if rerr := e.Reconcile(e.ctx); rerr != nil {
		// Confirmed on the ledger but not visible locally yet; the next
		// periodic pass picks it up.
		log.Printf("post-submission reconciliation failed, will retry: %v", rerr)
	}
	ch <- nil
}

// revert removes the mutation's delta exactly, by record identity.
func (e *Engine) revert(mut *pendingMutation) {
	e.mu.Lock()
	defer e.mu.Unlock()
	mut.state = stateReverted
	for i, p := range e.pending {
		if p.id == mut.id {
			e.pending = append(e.pending[:i], e.pending[i+1:]...)
			break
		}
	}
}
