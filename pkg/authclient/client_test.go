package authclient_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authhttp "github.com/foldstash/foldstash/internal/auth/http"
	"github.com/foldstash/foldstash/internal/auth/service"
	"github.com/foldstash/foldstash/internal/auth/store/drivers/sqlite"
	"github.com/foldstash/foldstash/pkg/authclient"
)

// testServer wires a real router over an in-memory store so the client is
// exercised against actual handler and cookie behavior.
type testServer struct {
	*httptest.Server

	sessions *service.SessionService

	// refreshCalls counts hits on the refresh endpoint.
	refreshCalls atomic.Int64

	// refreshDelay slows the refresh endpoint down so concurrent callers
	// overlap with an in-flight rotation.
	refreshDelay time.Duration
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sessions := &service.SessionService{
		Store:      st,
		AccessTTL:  service.DefaultAccessTTL,
		RefreshTTL: service.DefaultRefreshTTL,
	}
	auth := &service.AuthService{Store: st, Sessions: sessions}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := authhttp.NewRouter("test", false, st, auth, logger)
	router.ApplyRoutes()

	ts := &testServer{sessions: sessions}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/refresh" {
			ts.refreshCalls.Add(1)
			if ts.refreshDelay > 0 {
				time.Sleep(ts.refreshDelay)
			}
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newSignedInClient(t *testing.T, ts *testServer) *authclient.Client {
	t.Helper()

	c, err := authclient.NewClient(ts.URL)
	require.NoError(t, err)

	_, err = c.Register(context.Background(), authclient.RegisterRequest{
		Name:     "Alice Tester",
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Str0ng-pass!",
	})
	require.NoError(t, err)
	return c
}

func TestClientRegisterLoginMe(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	c := newSignedInClient(t, ts)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	// A fresh client signs in with the same account by email.
	c2, err := authclient.NewClient(ts.URL)
	require.NoError(t, err)
	user, err := c2.Login(ctx, "alice@example.com", "Str0ng-pass!")
	require.NoError(t, err)
	assert.Equal(t, me, user)
}

func TestClientErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	newSignedInClient(t, ts)

	c, err := authclient.NewClient(ts.URL)
	require.NoError(t, err)

	t.Run("bad credentials", func(t *testing.T) {
		_, err := c.Login(ctx, "alice", "wrong-password")
		assert.True(t, authclient.IsUnauthorized(err), "got %v", err)
	})

	t.Run("conflict", func(t *testing.T) {
		_, err := c.Register(ctx, authclient.RegisterRequest{
			Name:     "Other Person",
			Username: "alice",
			Email:    "other@example.com",
			Password: "Str0ng-pass!",
		})
		assert.True(t, authclient.IsConflict(err), "got %v", err)
	})

	t.Run("validation names the field", func(t *testing.T) {
		_, err := c.Register(ctx, authclient.RegisterRequest{
			Name:     "Other Person",
			Username: "bob",
			Email:    "not-an-email",
			Password: "Str0ng-pass!",
		})
		field, ok := authclient.IsValidation(err)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, "email", field)
	})
}

func TestClientAutoRefreshOnStaleToken(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	// Sign in while access tokens expire immediately, then restore the
	// normal lifetime so the rotated pair works.
	ts.sessions.AccessTTL = time.Nanosecond
	c := newSignedInClient(t, ts)
	ts.sessions.AccessTTL = service.DefaultAccessTTL

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
	assert.EqualValues(t, 1, ts.refreshCalls.Load())

	// The rotated token is live now; no further refresh needed.
	_, err = c.Me(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, ts.refreshCalls.Load())
}

func TestClientConcurrent401sShareOneRefresh(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	ts.sessions.AccessTTL = time.Nanosecond
	c := newSignedInClient(t, ts)
	ts.sessions.AccessTTL = service.DefaultAccessTTL
	ts.refreshDelay = 200 * time.Millisecond

	const callers = 16

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.Me(ctx)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}

	// Every 401'd caller joined the same rotation. The refresh token is
	// one-shot, so a second concurrent rotation would have killed the
	// session for everyone.
	assert.EqualValues(t, 1, ts.refreshCalls.Load())
}

func TestClientRefreshFailurePropagatesToAllWaiters(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	ts.sessions.AccessTTL = time.Nanosecond
	c, err := authclient.NewClient(ts.URL)
	require.NoError(t, err)
	user, err := c.Register(ctx, authclient.RegisterRequest{
		Name:     "Alice Tester",
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Str0ng-pass!",
	})
	require.NoError(t, err)
	ts.sessions.AccessTTL = service.DefaultAccessTTL
	ts.refreshDelay = 200 * time.Millisecond

	// The jar holds a stale access cookie; deleting the session rows means
	// rotation can never succeed.
	require.NoError(t, ts.sessions.Store.Sessions().DeleteUserSessions(ctx, user.ID))

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.Me(ctx)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		assert.ErrorIs(t, err, authclient.ErrSessionExpired, "caller %d", i)
	}
}
