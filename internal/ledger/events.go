package ledger

import "time"

// EventKind identifies the mutation an event describes.
type EventKind string

const (
	EventPostCreated  EventKind = "post_created"
	EventCommentAdded EventKind = "comment_added"
	EventPostLiked    EventKind = "post_liked"
	EventPostUnliked  EventKind = "post_unliked"
)

// Event is emitted by a Store after each successful mutation, in commit
// order. Fields not relevant to the kind are zero.
type Event struct {
	Kind      EventKind `json:"kind" bson:"kind"`
	PostID    uint64    `json:"post_id" bson:"post_id"`
	CommentID uint64    `json:"comment_id,omitempty" bson:"comment_id,omitempty"`
	Actor     string    `json:"actor" bson:"actor"`
	Content   string    `json:"content,omitempty" bson:"content,omitempty"`
	LikeCount int       `json:"likes_count" bson:"likes_count"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// EventFunc receives committed events. Subscribers run synchronously after
// the mutation commits; they may read from the store but must not mutate it.
type EventFunc func(Event)
