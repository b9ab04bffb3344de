package client_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbloc/chainfeed/internal/client"
	"github.com/openbloc/chainfeed/internal/engine"
	"github.com/openbloc/chainfeed/internal/identity"
	"github.com/openbloc/chainfeed/internal/ledger"
	"github.com/openbloc/chainfeed/internal/middleware"
	"github.com/openbloc/chainfeed/internal/router"
	"github.com/openbloc/chainfeed/pkg/validators"
)

const testSecret = "test-secret"

func startNode(t *testing.T) *httptest.Server {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()
	router.SetupRoutes(e, ledger.NewMemoryStore(), testSecret, nil)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func nodeClient(t *testing.T, srv *httptest.Server, actor string) *client.Ledger {
	t.Helper()
	token, err := middleware.SignActorToken(testSecret, actor)
	require.NoError(t, err)
	return client.New(srv.URL, token)
}

func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	srv := startNode(t)
	alice := nodeClient(t, srv, "0xalice")
	bob := nodeClient(t, srv, "0xbob")

	postID, err := alice.CreatePost(ctx, "0xalice", "Hello")
	require.NoError(t, err)

	posts, err := alice.GetAllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Hello", posts[0].Content)
	assert.Equal(t, "0xalice", posts[0].Author)

	_, err = bob.AddComment(ctx, postID, "0xbob", "Hi")
	require.NoError(t, err)

	comments, err := alice.GetComments(ctx, postID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "0xbob", comments[0].Author)
	assert.Equal(t, "Hi", comments[0].Content)

	state, err := alice.ToggleLike(ctx, postID, "0xalice")
	require.NoError(t, err)
	assert.True(t, state.Liked)
	assert.Equal(t, 1, state.LikeCount)

	state, err = alice.ToggleLike(ctx, postID, "0xalice")
	require.NoError(t, err)
	assert.False(t, state.Liked)
	assert.Equal(t, 0, state.LikeCount)
}

func TestErrorTranslation(t *testing.T) {
	ctx := context.Background()
	srv := startNode(t)
	alice := nodeClient(t, srv, "0xalice")

	_, err := alice.GetPost(ctx, 999)
	assert.ErrorIs(t, err, ledger.ErrPostNotFound)

	_, err = alice.CreatePost(ctx, "0xalice", "")
	assert.ErrorIs(t, err, ledger.ErrEmptyContent)

	_, err = alice.AddComment(ctx, 999, "0xalice", "hi")
	assert.ErrorIs(t, err, ledger.ErrPostNotFound)

	intruder := client.New(srv.URL, "not-a-token")
	_, err = intruder.GetAllPosts(ctx)
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	// Other 400s (validation limits, malformed input) must not collapse
	// into the empty-content sentinel.
	_, err = alice.CreatePost(ctx, "0xalice", strings.Repeat("a", 281))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ledger.ErrEmptyContent)
}

// The sync engine runs unchanged over the HTTP transport: the client
// translates statuses back into the ledger error taxonomy, so optimistic
// apply, confirmation and revert behave exactly as with a local store.
func TestEngineOverHTTPTransport(t *testing.T) {
	srv := startNode(t)
	alice := nodeClient(t, srv, "0xalice")

	eng := engine.New(engine.Config{
		Ledger:   alice,
		Identity: identity.Static{Address: "0xalice"},
	})
	t.Cleanup(eng.Close)

	require.NoError(t, <-eng.CreatePost("Hello over the wire"))

	views := eng.Posts()
	require.Len(t, views, 1)
	assert.Equal(t, "Hello over the wire", views[0].Content)
	assert.Equal(t, uint64(1), views[0].ID)

	require.NoError(t, <-eng.ToggleLike(views[0].ID))
	views = eng.Posts()
	assert.True(t, views[0].IsLiked)
	assert.Equal(t, 1, views[0].LikeCount)

	err := <-eng.CreatePost(" ")
	assert.ErrorIs(t, err, ledger.ErrEmptyContent)
}
