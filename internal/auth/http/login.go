package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/foldstash/foldstash/internal/auth/service"
	"github.com/foldstash/foldstash/pkg/authclient"
	"github.com/foldstash/foldstash/pkg/httpx"
	"github.com/foldstash/foldstash/pkg/slogx"
)

type LoginHandler struct {
	AuthService   *service.AuthService
	SecureCookies bool
}

// ServeHTTP verifies credentials and opens a session. Bad credentials are a
// 401 with a deliberately generic message.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authclient.LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identity, tokens, err := h.AuthService.Login(ctx, req.Login, req.Password, sessionMeta(r))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
			return
		}
		log.Error("login failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}

	setSessionCookies(w, tokens, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, identityPayload(identity))
}
