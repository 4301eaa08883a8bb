// Package api provides the HTTP API server and handlers for the storybook library.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/storybook/internal/config"
	"github.com/listenupapp/storybook/internal/http/response"
	"github.com/listenupapp/storybook/internal/logger"
	"github.com/listenupapp/storybook/internal/media/images"
	"github.com/listenupapp/storybook/internal/ratelimit"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	store         Pinger
	services      *Services
	router        *chi.Mux
	api           huma.API
	encoder       *images.Encoder
	placeholders  *images.Placeholders
	uploadLimiter *ratelimit.KeyedRateLimiter
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store Pinger, services *Services, cfg *config.Config, log *slog.Logger) *Server {
	s := &Server{
		store:         store,
		services:      services,
		router:        chi.NewRouter(),
		encoder:       images.NewEncoder(cfg.Images.MaxDimension),
		placeholders:  images.NewPlaceholders(),
		uploadLimiter: ratelimit.PerMinute(cfg.Images.UploadRatePerMinute),
		logger:        logger.OrDiscard(log).With("component", "api"),
	}

	s.setupMiddleware(cfg.Server.CORSOrigins)

	humaConfig := huma.DefaultConfig("Storybook API", Version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerBookRoutes()
	s.registerSearchRoutes()
	s.registerImageRoutes()

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "no route for "+r.URL.Path, s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, r.Method+" not allowed on "+r.URL.Path, s.logger)
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the typed API, for OpenAPI export and tests.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources.
func (s *Server) Close() {
	s.uploadLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(recoverer(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(middleware.Compress(5))
}
