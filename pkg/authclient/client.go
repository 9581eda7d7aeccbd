// Package authclient is the Go client for the foldstash auth service. It
// holds the session cookies in an ordinary cookie jar and transparently
// refreshes an expired access token, coalescing concurrent refreshes into a
// single request.
package authclient

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// Client talks to the auth service on behalf of one signed-in user. It is
// safe for concurrent use; session state lives entirely in the cookie jar.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// refreshGroup collapses simultaneous refresh attempts into one HTTP
	// call whose outcome every waiter shares.
	refreshGroup singleflight.Group
}

// NewClient creates a client with its own cookie jar. Tokens issued by
// Login or Register are stored there and attached to subsequent requests
// automatically.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Register creates an account and signs it in. The session cookies land in
// the jar.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (User, error) {
	var out AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", req, &out, http.StatusCreated)
	if err != nil {
		return User{}, err
	}
	return out.User, nil
}

// Login signs in with a username or email plus password.
func (c *Client) Login(ctx context.Context, login, password string) (User, error) {
	var out AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login",
		LoginRequest{Login: login, Password: password}, &out, http.StatusOK)
	if err != nil {
		return User{}, err
	}
	return out.User, nil
}

// Me returns the signed-in identity, refreshing the session first if the
// access token has gone stale.
func (c *Client) Me(ctx context.Context) (User, error) {
	var out AuthResponse
	err := c.doAuthJSON(ctx, http.MethodGet, "/api/auth/me", nil, &out, http.StatusOK)
	if err != nil {
		return User{}, err
	}
	return out.User, nil
}

// Logout revokes the session server-side and drops the cookies. Always safe
// to call, signed in or not.
func (c *Client) Logout(ctx context.Context) error {
	var out OKResponse
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, &out, http.StatusOK)
}

// Do performs an authenticated JSON request against an arbitrary API path
// with the same 401, refresh, retry behavior as Me. Resource clients for the
// rest of the API build on this.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, expectedStatus int) error {
	return c.doAuthJSON(ctx, method, path, body, out, expectedStatus)
}

// Refresh forces a token rotation now rather than waiting for a 401. Mostly
// useful for long-idle clients about to do a burst of work.
func (c *Client) Refresh(ctx context.Context) error {
	return c.refresh(ctx)
}

// refresh rotates the session tokens via the refresh endpoint. Concurrent
// callers share a single in-flight request: the refresh cookie is one-shot,
// so letting every 401'd request race its own rotation would tear down the
// session it is trying to save.
func (c *Client) refresh(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		var out AuthResponse
		err := c.doJSON(ctx, http.MethodPost, "/api/auth/refresh", nil, &out, http.StatusOK)
		if IsUnauthorized(err) {
			return nil, ErrSessionExpired
		}
		return nil, err
	})
	return err
}

// doAuthJSON performs a request that needs a live access token. On a 401 it
// refreshes once and retries; a second 401 or a failed refresh surfaces as
// ErrSessionExpired.
func (c *Client) doAuthJSON(
	ctx context.Context,
	method, path string,
	body, out any,
	expectedStatus int,
) error {
	err := c.doJSON(ctx, method, path, body, out, expectedStatus)
	if !IsUnauthorized(err) {
		return err
	}

	if err := c.refresh(ctx); err != nil {
		return err
	}

	err = c.doJSON(ctx, method, path, body, out, expectedStatus)
	if IsUnauthorized(err) {
		return ErrSessionExpired
	}
	return err
}
