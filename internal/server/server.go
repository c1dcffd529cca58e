package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/AJaySi/ALwrity-sub003/models"
)

// Config holds HTTP server configuration.
type Config struct {
	Addr            string        `json:"addr" yaml:"addr"`
	RequestTimeout  time.Duration `json:"requestTimeout" yaml:"request_timeout"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdown_timeout"`
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// DashboardProvider supplies the latest published dashboard snapshot.
type DashboardProvider interface {
	Dashboard() *models.Dashboard
}

// Server serves the computed view model to dashboard frontends over REST
// and pushes snapshot updates over websocket.
type Server struct {
	config   Config
	provider DashboardProvider
	hub      *Hub
}

// NewServer creates a server around a dashboard provider.
func NewServer(config Config, provider DashboardProvider) *Server {
	return &Server{
		config:   config,
		provider: provider,
		hub:      NewHub(),
	}
}

// Broadcast pushes a fresh dashboard snapshot to all websocket clients.
// Wired as the collector's update callback.
func (s *Server) Broadcast(dash *models.Dashboard) {
	s.hub.Broadcast(dash)
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/events", s.handleEvents)
		r.Get("/insights", s.handleInsights)
		r.Get("/failures", s.handleFailures)
	})

	return r
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run(ctx)

	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.RequestTimeout,
		WriteTimeout: 0, // websocket connections stay open
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.config.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
