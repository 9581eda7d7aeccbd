package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/foldstash/foldstash/internal/auth/domain"
	"github.com/foldstash/foldstash/internal/auth/service"
	"github.com/foldstash/foldstash/pkg/authclient"
	"github.com/foldstash/foldstash/pkg/httpx"
	"github.com/foldstash/foldstash/pkg/slogx"
)

type ctxKey struct{}

// IdentityFromContext returns the authenticated identity placed by the
// Authenticated middleware.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(domain.Identity)
	return id, ok
}

// Authenticated resolves the access cookie to an identity and stores it in
// the request context. A missing or stale token is a plain 401 without
// clearing cookies: the client may still hold a refresh token that can
// recover the session.
func Authenticated(auth *service.AuthService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := cookieValue(r, AccessCookieName)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			identity, err := auth.Authenticate(ctx, token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					writeError(w, http.StatusUnauthorized, "not authenticated")
					return
				}
				slogx.FromContext(ctx).Error("authenticate failed", "err", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ctxKey{}, identity)))
		})
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	httpx.WriteJSON(w, code, authclient.ErrorResponse{Error: msg})
}

func writeValidationError(w http.ResponseWriter, verr *service.ValidationError) {
	httpx.WriteJSON(w, http.StatusBadRequest, authclient.ErrorResponse{
		Error: verr.Reason,
		Field: verr.Field,
	})
}

func identityPayload(id domain.Identity) authclient.AuthResponse {
	return authclient.AuthResponse{User: authclient.User{
		ID:       id.ID,
		Name:     id.Name,
		Username: id.Username,
		Email:    id.Email,
	}}
}

// sessionMeta captures the client details recorded against a session.
func sessionMeta(r *http.Request) domain.SessionMeta {
	return domain.SessionMeta{
		UserAgent: r.UserAgent(),
		IP:        httpx.ClientIP(r),
	}
}
