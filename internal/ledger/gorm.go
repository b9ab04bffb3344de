package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openbloc/chainfeed/internal/models"
)

// GormStore implements Store on PostgreSQL via GORM. Every mutation runs in
// a single transaction so the like count and the like records can never be
// observed out of step, and the database's sequences are what make ids
// strictly increasing.
type GormStore struct {
	db *gorm.DB

	mu          sync.Mutex
	subscribers []EventFunc
}

type postRow struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Author    string `gorm:"index;not null"`
	Content   string `gorm:"not null"`
	LikeCount int    `gorm:"not null;default:0"`
	CreatedAt time.Time
}

func (postRow) TableName() string { return "posts" }

type commentRow struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	PostID    uint64 `gorm:"index;not null"`
	Author    string `gorm:"not null"`
	Content   string `gorm:"not null"`
	CreatedAt time.Time
}

func (commentRow) TableName() string { return "comments" }

type likeRow struct {
	PostID uint64 `gorm:"primaryKey;autoIncrement:false"`
	Actor  string `gorm:"primaryKey"`
	Liked  bool   `gorm:"not null"`
}

func (likeRow) TableName() string { return "likes" }

// NewGormStore creates a Store backed by the given GORM database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates or updates the ledger tables.
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&postRow{}, &commentRow{}, &likeRow{})
}

// Subscribe registers fn to receive every committed event.
func (s *GormStore) Subscribe(fn EventFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *GormStore) emit(ev Event) {
	s.mu.Lock()
	subs := s.subscribers
	s.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// CreatePost records a new post and returns its database-assigned id.
func (s *GormStore) CreatePost(ctx context.Context, author, content string) (uint64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, ErrEmptyContent
	}

	row := postRow{Author: author, Content: content, CreatedAt: time.Now()}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}

	s.emit(Event{
		Kind:      EventPostCreated,
		PostID:    row.ID,
		Actor:     author,
		Content:   content,
		CreatedAt: row.CreatedAt,
	})
	return row.ID, nil
}

// AddComment records a comment in the same transaction that verifies the
// parent post exists.
func (s *GormStore) AddComment(ctx context.Context, postID uint64, author, content string) (uint64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, ErrEmptyContent
	}

	row := commentRow{PostID: postID, Author: author, Content: content, CreatedAt: time.Now()}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post postRow
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return 0, err
	}

	s.emit(Event{
		Kind:      EventCommentAdded,
		PostID:    postID,
		CommentID: row.ID,
		Actor:     author,
		Content:   content,
		CreatedAt: row.CreatedAt,
	})
	return row.ID, nil
}

// ToggleLike flips the like row and adjusts the post's like count inside one
// transaction, holding a row lock on the post so concurrent toggles for the
// same post serialize at the database.
func (s *GormStore) ToggleLike(ctx context.Context, postID uint64, actor string) (models.LikeState, error) {
	var state models.LikeState
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post postRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		var like likeRow
		err := tx.Where("post_id = ? AND actor = ?", postID, actor).First(&like).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			like = likeRow{PostID: postID, Actor: actor, Liked: true}
			if err := tx.Create(&like).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			like.Liked = !like.Liked
			if err := tx.Save(&like).Error; err != nil {
				return err
			}
		}

		delta := -1
		if like.Liked {
			delta = 1
		}
		if err := tx.Model(&post).UpdateColumn("like_count", gorm.Expr("like_count + ?", delta)).Error; err != nil {
			return err
		}

		state = models.LikeState{Liked: like.Liked, LikeCount: post.LikeCount + delta}
		return nil
	})
	if err != nil {
		return models.LikeState{}, err
	}

	kind := EventPostLiked
	if !state.Liked {
		kind = EventPostUnliked
	}
	s.emit(Event{
		Kind:      kind,
		PostID:    postID,
		Actor:     actor,
		LikeCount: state.LikeCount,
		CreatedAt: time.Now(),
	})
	return state, nil
}

// GetPost retrieves a post by id, including its comment id sequence.
func (s *GormStore) GetPost(ctx context.Context, postID uint64) (models.Post, error) {
	var row postRow
	if err := s.db.WithContext(ctx).First(&row, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Post{}, ErrPostNotFound
		}
		return models.Post{}, err
	}

	ids, err := s.commentIDs(ctx, postID)
	if err != nil {
		return models.Post{}, err
	}
	return toPost(row, ids), nil
}

// GetComments returns the post's comments ordered by id, which is append
// order since comment ids are assigned by the insert sequence.
func (s *GormStore) GetComments(ctx context.Context, postID uint64) ([]models.Comment, error) {
	var exists int64
	if err := s.db.WithContext(ctx).Model(&postRow{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrPostNotFound
	}

	var rows []commentRow
	if err := s.db.WithContext(ctx).Where("post_id = ?", postID).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}

	comments := make([]models.Comment, len(rows))
	for i, r := range rows {
		comments[i] = models.Comment{
			ID:        r.ID,
			PostID:    r.PostID,
			Author:    r.Author,
			Content:   r.Content,
			CreatedAt: r.CreatedAt,
		}
	}
	return comments, nil
}

// GetAllPosts returns every post. Ordering is left to callers.
func (s *GormStore) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	var rows []postRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(rows))
	for _, row := range rows {
		ids, err := s.commentIDs(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		posts = append(posts, toPost(row, ids))
	}
	return posts, nil
}

// HasLiked reports whether the actor currently likes the post.
func (s *GormStore) HasLiked(ctx context.Context, postID uint64, actor string) (bool, error) {
	var exists int64
	if err := s.db.WithContext(ctx).Model(&postRow{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
		return false, err
	}
	if exists == 0 {
		return false, ErrPostNotFound
	}

	var like likeRow
	err := s.db.WithContext(ctx).Where("post_id = ? AND actor = ?", postID, actor).First(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return like.Liked, nil
}

func (s *GormStore) commentIDs(ctx context.Context, postID uint64) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&commentRow{}).
		Where("post_id = ?", postID).Order("id asc").Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func toPost(row postRow, commentIDs []uint64) models.Post {
	return models.Post{
		ID:         row.ID,
		Author:     row.Author,
		Content:    row.Content,
		LikeCount:  row.LikeCount,
		CreatedAt:  row.CreatedAt,
		CommentIDs: commentIDs,
	}
}
