package ledger

import (
	"context"
	"errors"

	"github.com/openbloc/chainfeed/internal/models"
)

// Sentinel errors returned by every Store implementation. Callers match with
// errors.Is; transports are expected to preserve the mapping end to end.
var (
	// ErrPostNotFound indicates a reference to an unknown post id.
	ErrPostNotFound = errors.New("post not found")

	// ErrEmptyContent indicates a create or comment mutation with empty
	// content. Clients reject it before submitting; the store re-checks as
	// the authority.
	ErrEmptyContent = errors.New("content must not be empty")
)

// Store is the authoritative ledger surface for posts, comments and likes.
//
// All mutating operations are atomic per entity: no reader may observe a
// state where a post's like count disagrees with the set of true-valued
// like records for that post. Ids are assigned only by the store, strictly
// increasing, and never reused.
type Store interface {
	// CreatePost records a new post and returns its ledger-assigned id.
	CreatePost(ctx context.Context, author, content string) (uint64, error)

	// AddComment records a comment and appends its id to the parent post.
	AddComment(ctx context.Context, postID uint64, author, content string) (uint64, error)

	// ToggleLike flips the actor's like record for the post and adjusts the
	// like count in the same atomic step.
	ToggleLike(ctx context.Context, postID uint64, actor string) (models.LikeState, error)

	// GetPost retrieves a single post by id.
	GetPost(ctx context.Context, postID uint64) (models.Post, error)

	// GetComments returns the post's comments in ledger append order.
	GetComments(ctx context.Context, postID uint64) ([]models.Comment, error)

	// GetAllPosts returns every post. No ordering is guaranteed; callers sort.
	GetAllPosts(ctx context.Context) ([]models.Post, error)

	// HasLiked reports whether the actor currently likes the post.
	HasLiked(ctx context.Context, postID uint64, actor string) (bool, error)
}
