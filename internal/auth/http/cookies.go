package http

import (
	"net/http"
	"time"

	"github.com/foldstash/foldstash/internal/auth/domain"
)

// Cookie names are canonical across server, client and gate.
const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"

	// The refresh cookie is scoped to the auth endpoints so the browser
	// does not attach the long-lived token to every request.
	accessCookiePath  = "/"
	refreshCookiePath = "/api/auth"
)

// setSessionCookies writes both token cookies with lifetimes matching the
// session record. Secure is off only for plain-HTTP dev setups.
func setSessionCookies(w http.ResponseWriter, tokens domain.SessionTokens, secure bool) {
	now := time.Now()
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookieName,
		Value:    tokens.AccessToken,
		Path:     accessCookiePath,
		MaxAge:   maxAge(now, tokens.AccessExpiresAt),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    tokens.RefreshToken,
		Path:     refreshCookiePath,
		MaxAge:   maxAge(now, tokens.RefreshExpiresAt),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookies expires both cookies. Only called when the session is
// unrecoverable; a merely-expired access token keeps its cookies so the
// refresh flow can run.
func clearSessionCookies(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookieName,
		Value:    "",
		Path:     accessCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func maxAge(now, expires time.Time) int {
	d := int(expires.Sub(now).Seconds())
	if d < 1 {
		return 1
	}
	return d
}

// cookieValue returns the named cookie's value, or "" when absent.
func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
