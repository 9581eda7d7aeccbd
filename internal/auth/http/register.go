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

type RegisterHandler struct {
	AuthService   *service.AuthService
	SecureCookies bool
}

// ServeHTTP creates an account and signs it in, setting both session cookies
// on the response. Responds 201 with the new identity.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authclient.RegisterRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identity, tokens, err := h.AuthService.Register(
		ctx, req.Name, req.Username, req.Email, req.Password, sessionMeta(r),
	)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeValidationError(w, verr)
		case errors.Is(err, service.ErrConflict):
			writeError(w, http.StatusConflict, service.ErrConflict.Error())
		default:
			log.Error("register failed", "err", err)
			writeError(w, http.StatusInternalServerError, "failed to create account")
		}
		return
	}

	setSessionCookies(w, tokens, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusCreated, identityPayload(identity))
}

// maxBodyBytes caps auth request bodies; the largest legitimate payload is a
// registration form.
const maxBodyBytes = 1 << 16
