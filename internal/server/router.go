package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"shipment-parser/internal/cache"
	"shipment-parser/internal/handlers"
	"shipment-parser/internal/parser"
	"shipment-parser/internal/ratelimit"
)

// Options are the dependencies of the HTTP surface.
type Options struct {
	Parser        *parser.Parser
	Cache         *cache.Manager
	MaxInputBytes int
	// APIKey, when set, is required as a bearer token on the parse routes.
	APIKey string
	// RateLimiter, when set, throttles the parse routes per client.
	RateLimiter *ratelimit.Limiter
	Logger      *slog.Logger
}

// Handlers groups the route handlers
type Handlers struct {
	parseHandler  *handlers.ParseHandler
	healthHandler *handlers.HealthHandler
	apiKey        string
	limiter       *ratelimit.Limiter
	logger        *slog.Logger
}

// NewHandlers creates the route handlers
func NewHandlers(opts Options) *Handlers {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Handlers{
		parseHandler:  handlers.NewParseHandler(opts.Parser, opts.Cache, opts.MaxInputBytes, opts.Logger),
		healthHandler: handlers.NewHealthHandler(opts.Parser.Strategies(), opts.Cache),
		apiKey:        opts.APIKey,
		limiter:       opts.RateLimiter,
		logger:        opts.Logger,
	}
}

// RegisterChiRoutes registers all routes with a chi router
func (h *Handlers) RegisterChiRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthHandler.HealthCheck)

		r.Group(func(r chi.Router) {
			if h.apiKey != "" {
				r.Use(AuthMiddleware(h.apiKey, h.logger))
			}
			if h.limiter != nil {
				r.Use(RateLimitMiddleware(h.limiter, h.logger))
			}
			r.Post("/parse", h.parseHandler.Parse)
			r.Post("/export", h.parseHandler.Export)
		})
	})
}

// NewRouter builds the chi router with the middleware stack
func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestIDHeaderMiddleware)
	r.Use(LoggingMiddleware(opts.Logger))
	r.Use(RecoveryMiddleware(opts.Logger))
	r.Use(CORSMiddleware)
	r.Use(ContentTypeMiddleware)
	r.Use(SecurityMiddleware)

	NewHandlers(opts).RegisterChiRoutes(r)
	return r
}

// New creates the HTTP server
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: handler,

		// Timeouts
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
