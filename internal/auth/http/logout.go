package http

import (
	"net/http"

	"github.com/foldstash/foldstash/internal/auth/service"
	"github.com/foldstash/foldstash/pkg/authclient"
	"github.com/foldstash/foldstash/pkg/httpx"
	"github.com/foldstash/foldstash/pkg/slogx"
)

type LogoutHandler struct {
	AuthService   *service.AuthService
	SecureCookies bool
}

// ServeHTTP revokes whatever session the cookies point at and clears them.
// Always succeeds: logging out twice, or with no session at all, is fine.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	access := cookieValue(r, AccessCookieName)
	refresh := cookieValue(r, RefreshCookieName)

	if err := h.AuthService.Logout(ctx, access, refresh); err != nil {
		// Revocation is best effort; the cookies still get cleared.
		slogx.FromContext(ctx).Error("logout revocation failed", "err", err)
	}

	clearSessionCookies(w, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, authclient.OKResponse{OK: true})
}
