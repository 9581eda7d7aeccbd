package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authhttp "github.com/foldstash/foldstash/internal/auth/http"
	"github.com/foldstash/foldstash/internal/auth/service"
	"github.com/foldstash/foldstash/internal/auth/store/drivers/sqlite"
	"github.com/foldstash/foldstash/pkg/authclient"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	auth := &service.AuthService{
		Store: st,
		Sessions: &service.SessionService{
			Store:      st,
			AccessTTL:  service.DefaultAccessTTL,
			RefreshTTL: service.DefaultRefreshTTL,
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := authhttp.NewRouter("test", false, st, auth, logger)
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := c.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func decodeUser(t *testing.T, resp *http.Response) authclient.User {
	t.Helper()
	defer resp.Body.Close()
	var out authclient.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.User
}

func registerAlice(t *testing.T, c *http.Client, base string) authclient.User {
	t.Helper()
	resp := postJSON(t, c, base+"/api/auth/register", authclient.RegisterRequest{
		Name:     "Alice Tester",
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Str0ng-pass!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeUser(t, resp)
}

func TestRegisterSetsSessionCookies(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)

	resp := postJSON(t, c, srv.URL+"/api/auth/register", authclient.RegisterRequest{
		Name:     "Alice Tester",
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Str0ng-pass!",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var access, refresh *http.Cookie
	for _, ck := range resp.Cookies() {
		switch ck.Name {
		case authhttp.AccessCookieName:
			access = ck
		case authhttp.RefreshCookieName:
			refresh = ck
		}
	}
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, "/api/auth", refresh.Path)
	assert.Less(t, access.MaxAge, refresh.MaxAge)
	assert.NotEqual(t, access.Value, refresh.Value)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)

	t.Run("validation error names the field", func(t *testing.T) {
		resp := postJSON(t, c, srv.URL+"/api/auth/register", authclient.RegisterRequest{
			Name:     "Alice Tester",
			Username: "alice",
			Email:    "not-an-email",
			Password: "Str0ng-pass!",
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var out authclient.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "email", out.Field)
		assert.NotEmpty(t, out.Error)
	})

	t.Run("duplicate is a conflict", func(t *testing.T) {
		registerAlice(t, newClient(t), srv.URL)

		resp := postJSON(t, c, srv.URL+"/api/auth/register", authclient.RegisterRequest{
			Name:     "Other Person",
			Username: "alice",
			Email:    "other@example.com",
			Password: "Str0ng-pass!",
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("garbage body", func(t *testing.T) {
		resp, err := c.Post(srv.URL+"/api/auth/register", "application/json", bytes.NewReader([]byte("{nope")))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLoginAndMe(t *testing.T) {
	srv := newTestServer(t)

	registered := registerAlice(t, newClient(t), srv.URL)

	c := newClient(t)
	resp := postJSON(t, c, srv.URL+"/api/auth/login", authclient.LoginRequest{
		Login:    "alice@example.com",
		Password: "Str0ng-pass!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, registered, decodeUser(t, resp))

	me, err := c.Get(srv.URL + "/api/auth/me")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, me.StatusCode)
	assert.Equal(t, registered, decodeUser(t, me))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	registerAlice(t, newClient(t), srv.URL)

	c := newClient(t)
	for _, req := range []authclient.LoginRequest{
		{Login: "alice", Password: "wrong-password"},
		{Login: "nobody", Password: "Str0ng-pass!"},
	} {
		resp := postJSON(t, c, srv.URL+"/api/auth/login", req)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var out authclient.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		resp.Body.Close()
		// Same message for unknown account and wrong password.
		assert.Equal(t, "invalid login or password", out.Error)
	}
}

func TestMeWithoutSession(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)

	resp, err := c.Get(srv.URL + "/api/auth/me")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshRotatesCookies(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)

	registered := registerAlice(t, c, srv.URL)

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	authPath, err := url.Parse(srv.URL + "/api/auth/")
	require.NoError(t, err)

	oldAccess := cookieByName(c.Jar.Cookies(base), authhttp.AccessCookieName)
	oldRefresh := cookieByName(c.Jar.Cookies(authPath), authhttp.RefreshCookieName)
	require.NotNil(t, oldAccess)
	require.NotNil(t, oldRefresh)

	resp, err := c.Post(srv.URL+"/api/auth/refresh", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, registered, decodeUser(t, resp))

	newAccess := cookieByName(c.Jar.Cookies(base), authhttp.AccessCookieName)
	newRefresh := cookieByName(c.Jar.Cookies(authPath), authhttp.RefreshCookieName)
	require.NotNil(t, newAccess)
	require.NotNil(t, newRefresh)
	assert.NotEqual(t, oldAccess.Value, newAccess.Value)
	assert.NotEqual(t, oldRefresh.Value, newRefresh.Value)

	// jar now holds the rotated pair; the session keeps working.
	me, err := c.Get(srv.URL + "/api/auth/me")
	require.NoError(t, err)
	defer me.Body.Close()
	assert.Equal(t, http.StatusOK, me.StatusCode)
}

func TestRefreshWithoutCookieClearsSession(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)

	resp, err := c.Post(srv.URL+"/api/auth/refresh", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Both cookies come back expired.
	cleared := 0
	for _, ck := range resp.Cookies() {
		if ck.Name == authhttp.AccessCookieName || ck.Name == authhttp.RefreshCookieName {
			assert.LessOrEqual(t, ck.MaxAge, 0)
			cleared++
		}
	}
	assert.Equal(t, 2, cleared)
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)

	registerAlice(t, c, srv.URL)

	resp, err := c.Post(srv.URL+"/api/auth/logout", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out authclient.OKResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.OK)

	// Session is gone server-side.
	me, err := c.Get(srv.URL + "/api/auth/me")
	require.NoError(t, err)
	defer me.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, me.StatusCode)

	// Logging out again still succeeds.
	again, err := c.Post(srv.URL+"/api/auth/logout", "application/json", nil)
	require.NoError(t, err)
	defer again.Body.Close()
	assert.Equal(t, http.StatusOK, again.StatusCode)
}

func TestHealthProbes(t *testing.T) {
	srv := newTestServer(t)
	c := srv.Client()

	for _, path := range []string{"/livez", "/readyz"} {
		resp, err := c.Get(srv.URL + path)
		require.NoError(t, err)

		var out authclient.HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "ok", out.Status, path)
	}
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, ck := range cookies {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
