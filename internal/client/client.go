// Package client implements the ledger Store interface over a chainfeed
// node's HTTP API, so the sync engine stays transport-agnostic: HTTP
// statuses are translated back into the ledger error taxonomy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openbloc/chainfeed/internal/ledger"
	"github.com/openbloc/chainfeed/internal/models"
)

// ErrUnauthorized indicates the node rejected the bearer token.
var ErrUnauthorized = errors.New("ledger node rejected the bearer token")

// Ledger is an HTTP implementation of ledger.Store.
type Ledger struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the node at baseURL, authenticating every
// request with the given bearer token.
func New(baseURL, token string) *Ledger {
	return &Ledger{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// CreatePost submits a post mutation and returns the ledger-assigned id.
func (l *Ledger) CreatePost(ctx context.Context, author, content string) (uint64, error) {
	var post models.Post
	err := l.do(ctx, http.MethodPost, "/api/v1/posts", models.CreatePostRequest{Content: content}, &post)
	if err != nil {
		return 0, err
	}
	return post.ID, nil
}

// AddComment submits a comment mutation and returns the assigned id.
func (l *Ledger) AddComment(ctx context.Context, postID uint64, author, content string) (uint64, error) {
	var comment models.Comment
	path := fmt.Sprintf("/api/v1/posts/%d/comments", postID)
	err := l.do(ctx, http.MethodPost, path, models.CreateCommentRequest{Content: content}, &comment)
	if err != nil {
		return 0, err
	}
	return comment.ID, nil
}

// ToggleLike submits a like toggle and returns the authoritative state.
func (l *Ledger) ToggleLike(ctx context.Context, postID uint64, actor string) (models.LikeState, error) {
	var state models.LikeState
	path := fmt.Sprintf("/api/v1/posts/%d/likes/toggle", postID)
	if err := l.do(ctx, http.MethodPost, path, nil, &state); err != nil {
		return models.LikeState{}, err
	}
	return state, nil
}

// GetPost retrieves a post by id.
func (l *Ledger) GetPost(ctx context.Context, postID uint64) (models.Post, error) {
	var post models.Post
	path := fmt.Sprintf("/api/v1/posts/%d", postID)
	if err := l.do(ctx, http.MethodGet, path, nil, &post); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// GetComments returns a post's comments in ledger append order.
func (l *Ledger) GetComments(ctx context.Context, postID uint64) ([]models.Comment, error) {
	var comments []models.Comment
	path := fmt.Sprintf("/api/v1/posts/%d/comments", postID)
	if err := l.do(ctx, http.MethodGet, path, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// GetAllPosts returns every post on the node.
func (l *Ledger) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := l.do(ctx, http.MethodGet, "/api/v1/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// HasLiked reports the authenticated actor's like flag for a post. The
// actor argument is carried for Store compatibility; the node resolves the
// actor from the bearer token.
func (l *Ledger) HasLiked(ctx context.Context, postID uint64, actor string) (bool, error) {
	var status struct {
		Liked bool `json:"liked"`
	}
	path := fmt.Sprintf("/api/v1/posts/%d/likes/status", postID)
	if err := l.do(ctx, http.MethodGet, path, nil, &status); err != nil {
		return false, err
	}
	return status.Liked, nil
}

func (l *Ledger) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, l.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+l.token)

	resp, err := l.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return translateStatus(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func translateStatus(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return ledger.ErrPostNotFound
	case http.StatusBadRequest:
		// The node reports the empty-content sentinel verbatim; every other
		// 400 (validation limits, malformed payloads or ids) stays distinct.
		if payload.Message == ledger.ErrEmptyContent.Error() {
			return ledger.ErrEmptyContent
		}
		return fmt.Errorf("ledger node rejected the request: %s", payload.Message)
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return fmt.Errorf("ledger node returned %d: %s", resp.StatusCode, payload.Message)
	}
}
