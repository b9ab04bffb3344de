package models

import "time"

// Post represents a post recorded on the ledger. Ids are assigned by the
// ledger in creation order and are never reused. Content and author are
// immutable once recorded; only LikeCount and CommentIDs change over time.
type Post struct {
	ID         uint64    `json:"id"`
	Author     string    `json:"author"` // wallet address of the creator
	Content    string    `json:"content"`
	LikeCount  int       `json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
	CommentIDs []uint64  `json:"comment_ids"` // ledger append order, never reordered
}

// CreatePostRequest defines the request body for publishing a new post.
// The author is taken from the verified bearer token, never from the body.
type CreatePostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=280"`
}
