package http

import (
	"errors"
	"net/http"

	"github.com/foldstash/foldstash/internal/auth/service"
	"github.com/foldstash/foldstash/pkg/httpx"
	"github.com/foldstash/foldstash/pkg/slogx"
)

type RefreshHandler struct {
	AuthService   *service.AuthService
	SecureCookies bool
}

// ServeHTTP rotates the refresh cookie into a fresh token pair. A failed
// rotation means the session can never recover, so both cookies are cleared
// alongside the 401; the client should send the user back to login.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := cookieValue(r, RefreshCookieName)
	if token == "" {
		clearSessionCookies(w, h.SecureCookies)
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	identity, tokens, err := h.AuthService.Refresh(ctx, token, sessionMeta(r))
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			clearSessionCookies(w, h.SecureCookies)
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		log.Error("refresh failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to refresh session")
		return
	}

	setSessionCookies(w, tokens, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, identityPayload(identity))
}
