package ledger

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.CreatePost(ctx, "alice", "x")
	require.NoError(t, err)

	post, err := s.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", post.Author)
	assert.Equal(t, "x", post.Content)
	assert.Equal(t, 0, post.LikeCount)
	assert.Empty(t, post.CommentIDs)
	assert.False(t, post.CreatedAt.IsZero())
}

func TestCreatePost_EmptyContent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.CreatePost(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = s.CreatePost(ctx, "alice", "   ")
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestPostIDs_StrictlyIncreasing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var last uint64
	for i := 0; i < 5; i++ {
		id, err := s.CreatePost(ctx, "alice", "post")
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id
	}
}

func TestAddComment_UnknownPost(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.AddComment(ctx, 42, "bob", "hi")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestGetComments_AppendOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// Freeze the clock so every comment collides on timestamp; order must
	// come from the append sequence alone.
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	postID, err := s.CreatePost(ctx, "alice", "post")
	require.NoError(t, err)

	contents := []string{"c1", "c2", "c3"}
	for _, content := range contents {
		_, err := s.AddComment(ctx, postID, "bob", content)
		require.NoError(t, err)
	}

	comments, err := s.GetComments(ctx, postID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	for i, content := range contents {
		assert.Equal(t, content, comments[i].Content)
	}

	post, err := s.GetPost(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{comments[0].ID, comments[1].ID, comments[2].ID}, post.CommentIDs)
}

func TestToggleLike_DoubleToggleRestoresState(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	postID, err := s.CreatePost(ctx, "alice", "post")
	require.NoError(t, err)

	state, err := s.ToggleLike(ctx, postID, "alice")
	require.NoError(t, err)
	assert.Equal(t, true, state.Liked)
	assert.Equal(t, 1, state.LikeCount)

	state, err = s.ToggleLike(ctx, postID, "alice")
	require.NoError(t, err)
	assert.Equal(t, false, state.Liked)
	assert.Equal(t, 0, state.LikeCount)

	liked, err := s.HasLiked(ctx, postID, "alice")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestToggleLike_CountMatchesTrueRecords(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	postID, err := s.CreatePost(ctx, "alice", "post")
	require.NoError(t, err)

	actors := []string{"alice", "bob", "carol", "bob", "dave", "carol"}
	for _, actor := range actors {
		_, err := s.ToggleLike(ctx, postID, actor)
		require.NoError(t, err)

		// The invariant must hold at every observable state.
		post, err := s.GetPost(ctx, postID)
		require.NoError(t, err)
		trueRecords := 0
		for _, a := range []string{"alice", "bob", "carol", "dave"} {
			liked, err := s.HasLiked(ctx, postID, a)
			require.NoError(t, err)
			if liked {
				trueRecords++
			}
		}
		assert.Equal(t, trueRecords, post.LikeCount)
	}

	// alice and dave liked once; bob and carol toggled back off.
	post, err := s.GetPost(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, 2, post.LikeCount)
}

func TestToggleLike_UnknownPost(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.ToggleLike(ctx, 7, "alice")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestSubscribe_EmitsCommitOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })

	postID, err := s.CreatePost(ctx, "alice", "post")
	require.NoError(t, err)
	_, err = s.AddComment(ctx, postID, "bob", "hi")
	require.NoError(t, err)
	_, err = s.ToggleLike(ctx, postID, "bob")
	require.NoError(t, err)
	_, err = s.ToggleLike(ctx, postID, "bob")
	require.NoError(t, err)

	require.Len(t, events, 4)
	assert.Equal(t, EventPostCreated, events[0].Kind)
	assert.Equal(t, EventCommentAdded, events[1].Kind)
	assert.Equal(t, EventPostLiked, events[2].Kind)
	assert.Equal(t, 1, events[2].LikeCount)
	assert.Equal(t, EventPostUnliked, events[3].Kind)
	assert.Equal(t, 0, events[3].LikeCount)
}

func TestSubscribe_SlowSubscriberDoesNotBlockReaders(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	entered := make(chan struct{})
	release := make(chan struct{})
	s.Subscribe(func(Event) {
		entered <- struct{}{}
		<-release
	})

	done := make(chan error, 1)
	go func() {
		_, err := s.CreatePost(ctx, "alice", "post")
		done <- err
	}()
	<-entered

	// The mutation has committed and its subscriber is still running;
	// reads must see the new state without waiting for it.
	posts, err := s.GetAllPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	liked, err := s.HasLiked(ctx, posts[0].ID, "alice")
	require.NoError(t, err)
	assert.False(t, liked)

	close(release)
	require.NoError(t, <-done)
}

func TestSubscribe_SubscriberMayReadStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var observed int
	s.Subscribe(func(ev Event) {
		post, err := s.GetPost(ctx, ev.PostID)
		require.NoError(t, err)
		observed = post.LikeCount
	})

	postID, err := s.CreatePost(ctx, "alice", "post")
	require.NoError(t, err)

	_, err = s.ToggleLike(ctx, postID, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, observed)
}

func TestEvent_ZeroLikeCountSurvivesEncoding(t *testing.T) {
	// An unlike that lands on zero must still journal the authoritative
	// count.
	data, err := json.Marshal(Event{Kind: EventPostUnliked, PostID: 1, Actor: "bob"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"likes_count":0`)
}

func TestGetAllPosts_ReturnsEveryPost(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for i := 0; i < 3; i++ {
		_, err := s.CreatePost(ctx, "alice", "post")
		require.NoError(t, err)
	}

	posts, err := s.GetAllPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}
