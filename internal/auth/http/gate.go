package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/foldstash/foldstash/pkg/httpx"
)

// GateAction is the outcome of a gate decision.
type GateAction int

const (
	// GateAllow lets the request through untouched.
	GateAllow GateAction = iota
	// GateRedirect sends the browser to Decision.Location.
	GateRedirect
)

// GateDecision is what the gate wants done with a page request.
type GateDecision struct {
	Action   GateAction
	Location string
}

// gateSkipPrefixes are path prefixes the gate never touches: API calls carry
// their own 401 semantics and assets must load on every page.
var gateSkipPrefixes = []string{"/api", "/static", "/_next"}

// gateSkipFiles are well-known root files crawlers and browsers fetch
// unauthenticated.
var gateSkipFiles = map[string]bool{
	"/favicon.ico": true,
	"/robots.txt":  true,
	"/sitemap.xml": true,
}

const loginPath = "/auth/login"

// DecideGate is the pure page-routing rule, depending only on the request
// path and whether an access cookie is present. It never inspects the token:
// a stale cookie reaches the page, whose own API calls then 401 and trigger
// the refresh flow.
//
//   - API, asset and well-known paths always pass.
//   - A signed-in visitor on an /auth page is bounced to the home page.
//   - A signed-out visitor anywhere else is bounced to the login page with
//     the original path preserved in ?next= for the post-login redirect.
func DecideGate(path string, hasSession bool) GateDecision {
	for _, prefix := range gateSkipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return GateDecision{Action: GateAllow}
		}
	}
	if gateSkipFiles[path] {
		return GateDecision{Action: GateAllow}
	}

	onAuthPage := path == "/auth" || strings.HasPrefix(path, "/auth/")

	if onAuthPage && hasSession {
		return GateDecision{Action: GateRedirect, Location: "/"}
	}
	if !onAuthPage && !hasSession {
		return GateDecision{
			Action:   GateRedirect,
			Location: loginPath + "?next=" + url.QueryEscape(path),
		}
	}
	return GateDecision{Action: GateAllow}
}

// Gate applies DecideGate in front of a page handler. Session presence is
// judged by the access cookie alone.
func Gate() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasSession := cookieValue(r, AccessCookieName) != ""

			decision := DecideGate(r.URL.Path, hasSession)
			if decision.Action == GateRedirect {
				http.Redirect(w, r, decision.Location, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
