package models

import "time"

// Comment represents a comment on a post. Comments are append-only: once
// recorded on the ledger they are never edited or deleted.
type Comment struct {
	ID        uint64    `json:"id"`
	PostID    uint64    `json:"post_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommentRequest defines the request body for commenting on a post.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
