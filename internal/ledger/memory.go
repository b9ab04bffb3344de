package ledger

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/openbloc/chainfeed/internal/models"
)

// MemoryStore is the reference Store implementation. A single mutex
// serializes mutations, which is what makes every mutation atomic with
// respect to readers: the like count and the like records are only ever
// updated under the same lock. Subscribers are invoked after that lock is
// released, so a slow subscriber never stalls readers; emitMu keeps
// delivery in commit order.
type MemoryStore struct {
	mu     sync.RWMutex
	emitMu sync.Mutex

	posts    map[uint64]*models.Post
	comments map[uint64]*models.Comment
	likes    map[likeKey]bool

	nextPostID    uint64
	nextCommentID uint64

	subscribers []EventFunc
	now         func() time.Time
}

type likeKey struct {
	postID uint64
	actor  string
}

// NewMemoryStore creates an empty in-memory ledger store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts:         make(map[uint64]*models.Post),
		comments:      make(map[uint64]*models.Comment),
		likes:         make(map[likeKey]bool),
		nextPostID:    1,
		nextCommentID: 1,
		now:           time.Now,
	}
}

// Subscribe registers fn to receive every committed event. Subscribers are
// invoked synchronously in commit order, after the mutation's state change.
func (s *MemoryStore) Subscribe(fn EventFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// commitLocked hands off s.mu and delivers ev to the subscribers. emitMu is
// claimed before the store lock is dropped, so events arrive in commit order
// while readers proceed against the already-committed state.
func (s *MemoryStore) commitLocked(ev Event) {
	subs := s.subscribers
	s.emitMu.Lock()
	s.mu.Unlock()
	defer s.emitMu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// CreatePost records a new post with a zero like count and no comments.
func (s *MemoryStore) CreatePost(ctx context.Context, author, content string) (uint64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, ErrEmptyContent
	}

	s.mu.Lock()

	id := s.nextPostID
	s.nextPostID++

	post := &models.Post{
		ID:        id,
		Author:    author,
		Content:   content,
		LikeCount: 0,
		CreatedAt: s.now(),
	}
	s.posts[id] = post

	s.commitLocked(Event{
		Kind:      EventPostCreated,
		PostID:    id,
		Actor:     author,
		Content:   content,
		CreatedAt: post.CreatedAt,
	})
	return id, nil
}

// AddComment records a comment and appends its id to the parent post.
func (s *MemoryStore) AddComment(ctx context.Context, postID uint64, author, content string) (uint64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, ErrEmptyContent
	}

	s.mu.Lock()

	post, ok := s.posts[postID]
	if !ok {
		s.mu.Unlock()
		return 0, ErrPostNotFound
	}

	id := s.nextCommentID
	s.nextCommentID++

	comment := &models.Comment{
		ID:        id,
		PostID:    postID,
		Author:    author,
		Content:   content,
		CreatedAt: s.now(),
	}
	s.comments[id] = comment
	post.CommentIDs = append(post.CommentIDs, id)

	s.commitLocked(Event{
		Kind:      EventCommentAdded,
		PostID:    postID,
		CommentID: id,
		Actor:     author,
		Content:   content,
		CreatedAt: comment.CreatedAt,
	})
	return id, nil
}

// ToggleLike flips the actor's like record and adjusts the post's like
// count in the same critical section.
func (s *MemoryStore) ToggleLike(ctx context.Context, postID uint64, actor string) (models.LikeState, error) {
	s.mu.Lock()

	post, ok := s.posts[postID]
	if !ok {
		s.mu.Unlock()
		return models.LikeState{}, ErrPostNotFound
	}

	key := likeKey{postID: postID, actor: actor}
	liked := !s.likes[key]
	s.likes[key] = liked
	if liked {
		post.LikeCount++
	} else {
		post.LikeCount--
	}
	state := models.LikeState{Liked: liked, LikeCount: post.LikeCount}

	kind := EventPostLiked
	if !liked {
		kind = EventPostUnliked
	}
	s.commitLocked(Event{
		Kind:      kind,
		PostID:    postID,
		Actor:     actor,
		LikeCount: state.LikeCount,
		CreatedAt: s.now(),
	})
	return state, nil
}

// GetPost retrieves a post by id.
func (s *MemoryStore) GetPost(ctx context.Context, postID uint64) (models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[postID]
	if !ok {
		return models.Post{}, ErrPostNotFound
	}
	return clonePost(post), nil
}

// GetComments returns the post's comments in ledger append order, following
// the parent's comment id sequence rather than timestamps.
func (s *MemoryStore) GetComments(ctx context.Context, postID uint64) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[postID]
	if !ok {
		return nil, ErrPostNotFound
	}

	comments := make([]models.Comment, 0, len(post.CommentIDs))
	for _, id := range post.CommentIDs {
		if c, ok := s.comments[id]; ok {
			comments = append(comments, *c)
		}
	}
	return comments, nil
}

// GetAllPosts returns every post with no ordering guarantee.
func (s *MemoryStore) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, clonePost(p))
	}
	return posts, nil
}

// HasLiked reports the actor's current like flag for the post.
func (s *MemoryStore) HasLiked(ctx context.Context, postID uint64, actor string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.posts[postID]; !ok {
		return false, ErrPostNotFound
	}
	return s.likes[likeKey{postID: postID, actor: actor}], nil
}

func clonePost(p *models.Post) models.Post {
	out := *p
	out.CommentIDs = append([]uint64(nil), p.CommentIDs...)
	return out
}
