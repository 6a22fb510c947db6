// Package http exposes the gateway's HTTP surface: system endpoints and
// the token-verified session route demonstrating the request boundary that
// game and vote handlers mount behind.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/movevote/movevote/pkg/httpx"
	"github.com/movevote/movevote/pkg/jwtx"
	"github.com/movevote/movevote/pkg/slogx"
)

// Router holds shared dependencies for the gateway handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.RemoteKeySet
	verifier     *jwtx.TokenVerifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
}

// NewRouter creates a Router with the default middleware chain: request
// logging outermost, then per-client rate limiting.
func NewRouter(
	keys *jwtx.RemoteKeySet,
	verifier *jwtx.TokenVerifier,
	buildVersion string,
	logger *slog.Logger,
	limit httpx.RateLimitConfig,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.NewRateLimiter(limit).Middleware(),
	}

	return r
}

// ApplyRoutes registers all gateway routes.
func (r *Router) ApplyRoutes() {
	r.registerSystem()
	r.registerSession()
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", r.handleLivez)
	r.Mux.HandleFunc("GET /readyz", r.handleReadyz)
}

func (r *Router) registerSession() {
	r.Mux.Handle("GET /v1/session", httpx.Chain(
		http.HandlerFunc(r.handleSession),
		httpx.AuthnMiddleware(r.verifier),
	))
}

// ServeHTTP implements http.Handler and applies the global middleware
// chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}
