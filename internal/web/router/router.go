// Package router exposes a loaded manifest over a read-only JSON API.
package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/conduit-lang/contractabi/internal/web/auth"
	"github.com/conduit-lang/contractabi/internal/web/middleware"
	"github.com/conduit-lang/contractabi/internal/web/response"
	"github.com/conduit-lang/contractabi/runtime/metadata"
)

// RouteInfo describes a registered route
type RouteInfo struct {
	Method  string
	Pattern string
}

// ReloadResult reports what a reload changed
type ReloadResult struct {
	Contract    string `json:"contract"`
	Fingerprint string `json:"fingerprint"`
	Previous    string `json:"previous"`
	Changed     bool   `json:"changed"`
}

// Reloader refreshes the served manifest from its source
type Reloader func(ctx context.Context) (*ReloadResult, error)

// Options configures the explorer API
type Options struct {
	Logger *zap.Logger
	// CORSOrigins enables CORS for these origins
	CORSOrigins []string
	// Live, when set, serves reload notifications on GET /ws
	Live http.Handler
	// Reload and Auth together enable POST /admin/reload for tokens with
	// the reload scope.
	Reload Reloader
	Auth   *auth.AuthService
}

// New builds the explorer API on top of reg
func New(reg *metadata.Registry, opts Options) chi.Router {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &handlers{api: metadata.NewAPI(reg)}

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(log, "/healthz"))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS(opts.CORSOrigins))
	r.Use(middleware.ETag(reg.Fingerprint))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", h.health)
	r.Get("/contract", h.contract)
	r.Get("/constructors", h.constructors)
	r.Route("/messages", func(r chi.Router) {
		r.Get("/", h.messages)
		r.Get("/{name}", h.message)
	})
	r.Get("/selectors/{selector}", h.selector)
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.events)
		r.Get("/{name}", h.event)
	})
	r.Get("/types/dependencies", h.dependencies)
	r.Route("/registry", func(r chi.Router) {
		r.Get("/strings", h.strings)
		r.Get("/types", h.types)
	})

	if opts.Live != nil {
		r.Get("/ws", opts.Live.ServeHTTP)
	}
	if opts.Reload != nil && opts.Auth != nil {
		r.With(auth.RequireScope(opts.Auth, auth.ScopeReload)).Post("/admin/reload", reload(opts.Reload, log))
	}

	return r
}

// Routes lists the registered routes, for startup logging
func Routes(r chi.Routes) ([]RouteInfo, error) {
	var routes []RouteInfo
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, RouteInfo{Method: method, Pattern: route})
		return nil
	})
	return routes, err
}
