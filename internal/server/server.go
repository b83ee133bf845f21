// Package server provides the HTTP server and routing for the propensity API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/propensity/internal/database"
	"github.com/aristath/propensity/internal/events"
	"github.com/aristath/propensity/internal/modules/backtest"
	backtesthandlers "github.com/aristath/propensity/internal/modules/backtest/handlers"
	"github.com/aristath/propensity/internal/modules/dataset"
	datasethandlers "github.com/aristath/propensity/internal/modules/dataset/handlers"
	profilehandlers "github.com/aristath/propensity/internal/modules/profile/handlers"
	questionnairehandlers "github.com/aristath/propensity/internal/modules/questionnaire/handlers"
	screenerhandlers "github.com/aristath/propensity/internal/modules/screener/handlers"
)

// Config holds server configuration
type Config struct {
	Log        zerolog.Logger
	Port       int
	DevMode    bool
	Datasets   *dataset.Service
	Backtests  *backtest.Service
	Events     *events.Manager
	CacheDB    *database.DB
	DatasetsDB *database.DB
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    Config
	system *SystemHandlers
	stream *EventsStreamHandler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
	}

	var datasets DatasetInfoProvider
	if cfg.Datasets != nil {
		datasets = cfg.Datasets
	}
	s.system = NewSystemHandlers(datasets, s.databases(), cfg.Log)
	if cfg.Events != nil {
		s.stream = NewEventsStreamHandler(cfg.Events.Bus(), cfg.Log)
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) databases() []*database.DB {
	var dbs []*database.DB
	for _, db := range []*database.DB{s.cfg.CacheDB, s.cfg.DatasetsDB} {
		if db != nil {
			dbs = append(dbs, db)
		}
	}
	return dbs
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.system.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/system/status", s.system.HandleSystemStatus)

		if s.stream != nil {
			r.Get("/events/ws", s.stream.ServeHTTP)
		}

		questionnairehandlers.NewHandler(s.cfg.Log).RegisterRoutes(r)
		profilehandlers.NewHandler(s.cfg.Log).RegisterRoutes(r)

		if s.cfg.Datasets != nil {
			datasethandlers.NewHandler(s.cfg.Datasets, s.cfg.Log).RegisterRoutes(r)
			screenerhandlers.NewHandler(s.cfg.Datasets, s.cfg.Log).RegisterRoutes(r)
		}
		if s.cfg.Backtests != nil {
			backtesthandlers.NewHandler(s.cfg.Backtests, s.cfg.Log).RegisterRoutes(r)
		}
	})
}

// Router exposes the configured router, used by tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	if s.stream != nil {
		s.stream.CloseAll()
	}
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
