package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/calproxy/calproxy/internal/calendar"
	"github.com/calproxy/calproxy/internal/config"
	"github.com/calproxy/calproxy/internal/google"
	"github.com/calproxy/calproxy/internal/instrumentation"
	"github.com/calproxy/calproxy/internal/session"
)

const (
	// DefaultReadHeaderTimeout bounds how long reading request headers may take.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultIdleTimeout is the keep-alive idle timeout.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the default timeout for graceful server shutdown.
	DefaultShutdownTimeout = 30 * time.Second
)

// EventLister is the narrow calendar-facing dependency of the handlers.
type EventLister interface {
	ListEvents(ctx context.Context, calendarID string, window calendar.Window) ([]*gcal.Event, error)
}

// ListerFactory builds an EventLister for one user's access token.
// Clients are cheap per-request wrappers around the shared HTTP stack.
type ListerFactory func(ctx context.Context, accessToken string) (EventLister, error)

// Options configures a Server. Zero fields fall back to production defaults.
type Options struct {
	Config config.Config

	// Store holds session records. Defaults to an in-memory store with
	// the configured TTL.
	Store session.Store

	// Verifier resolves access tokens to identities. Defaults to
	// Google's userinfo endpoint.
	Verifier google.Verifier

	// ListerFactory builds calendar clients. Defaults to the real
	// Calendar API.
	ListerFactory ListerFactory

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

// Server is the calproxy HTTP API server.
type Server struct {
	cfg        config.Config
	store      session.Store
	verifier   google.Verifier
	newLister  ListerFactory
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	health     *HealthChecker
	httpServer *http.Server
}

// New creates a Server from opts.
func New(opts Options) (*Server, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Store == nil {
		opts.Store = session.NewMemoryStoreWithLogger(opts.Config.SessionTTL, opts.Logger)
	}
	if opts.Verifier == nil {
		opts.Verifier = google.NewUserInfoClient()
	}
	if opts.ListerFactory == nil {
		opts.ListerFactory = func(ctx context.Context, accessToken string) (EventLister, error) {
			return calendar.NewClient(ctx, accessToken)
		}
	}

	s := &Server{
		cfg:       opts.Config,
		store:     opts.Store,
		verifier:  opts.Verifier,
		newLister: opts.ListerFactory,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
	s.health = NewHealthChecker()

	return s, nil
}

// Handler returns the fully wired HTTP handler for the API server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	standard := []Middleware{
		requestLogger(s.logger, s.metrics),
		corsMiddleware(s.cfg.AllowedOrigin),
	}

	mux.HandleFunc("POST /api/auth/google", withMiddleware(s.handleGoogleAuth, standard...))
	mux.HandleFunc("POST /api/auth/logout", withMiddleware(s.handleLogout, standard...))
	mux.HandleFunc("GET /api/auth/calendar/events", withMiddleware(s.handleRawEvents, standard...))
	mux.HandleFunc("GET /api/calendar/events", withMiddleware(s.handleCalendarEvents, standard...))

	// Preflight requests arrive as OPTIONS on the API paths
	mux.HandleFunc("OPTIONS /api/", withMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, standard...))

	s.health.RegisterHealthEndpoints(mux)

	return mux
}

// Start starts the API server in a blocking manner.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}

	s.logger.Info("starting API server", "addr", s.cfg.Addr, "env", s.cfg.Environment)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the API server and its session store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)

	if memStore, ok := s.store.(*session.MemoryStore); ok {
		memStore.Stop()
	}

	if s.httpServer != nil {
		s.logger.Info("shutting down API server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Health exposes the health checker, mainly for the serve command and tests.
func (s *Server) Health() *HealthChecker {
	return s.health
}
