package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/foldstash/foldstash/internal/auth/service"
	"github.com/foldstash/foldstash/internal/auth/store"
	"github.com/foldstash/foldstash/pkg/httpx"
	"github.com/foldstash/foldstash/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion  string
	secureCookies bool
	startTime     time.Time
	logger        *slog.Logger

	store       store.Store
	AuthService *service.AuthService
}

func NewRouter(
	buildVersion string,
	secureCookies bool,
	st store.Store,
	auth *service.AuthService,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		buildVersion:  buildVersion,
		secureCookies: secureCookies,
		startTime:     time.Now(),
		store:         st,
		AuthService:   auth,
		logger:        logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /register and /login - strict rate limit (credential guessing
	// and bulk account creation both ride these).
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(&RegisterHandler{AuthService: r.AuthService, SecureCookies: r.secureCookies},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(&LoginHandler{AuthService: r.AuthService, SecureCookies: r.secureCookies},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /refresh - strict rate limit; a well-behaved client refreshes
	// once per access lifetime, anything chattier is a bug or an attack.
	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(&RefreshHandler{AuthService: r.AuthService, SecureCookies: r.secureCookies},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /me - every page load hits this, so lenient.
	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(&MeHandler{},
			Authenticated(r.AuthService),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /logout - lenient; it is idempotent and unauthenticated.
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(&LogoutHandler{AuthService: r.AuthService, SecureCookies: r.secureCookies},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may
	// poll frequently).
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
