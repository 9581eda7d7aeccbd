package http

import (
	"net/http"

	"github.com/foldstash/foldstash/pkg/httpx"
)

type MeHandler struct{}

// ServeHTTP returns the identity resolved by the Authenticated middleware.
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, identityPayload(identity))
}
