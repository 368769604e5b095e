package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/calproxy/calproxy/internal/config"
	"github.com/calproxy/calproxy/internal/instrumentation"
	"github.com/calproxy/calproxy/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr               string
		googleClientID     string
		googleClientSecret string
		allowedOrigin      string
		environment        string
		sessionTTL         time.Duration
		metricsEnabled     bool
		metricsAddr        string
		debugMode          bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the calendar proxy API server",
		Long: `Start the calendar proxy API server.

The server exposes:
  POST /api/auth/google          Verify a Google access token, open a session
  GET  /api/auth/calendar/events Raw upcoming events for the session
  GET  /api/calendar/events      Windowed and keyword-filtered events
  GET  /healthz, /readyz         Health endpoints

Configuration:
  Every flag can also be set through an environment variable:
    --addr / ADDR (or PORT), --google-client-id / GOOGLE_CLIENT_ID,
    --google-client-secret / GOOGLE_CLIENT_SECRET,
    --allowed-origin / ALLOWED_ORIGIN, --env / APP_ENV,
    --session-ttl / SESSION_TTL, --metrics-enabled / METRICS_ENABLED,
    --metrics-addr / METRICS_ADDR, --debug / DEBUG.
  An explicitly set flag wins over its environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			// Flags override environment configuration only when set
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("google-client-id") {
				cfg.GoogleClientID = googleClientID
			}
			if cmd.Flags().Changed("google-client-secret") {
				cfg.GoogleClientSecret = googleClientSecret
			}
			if cmd.Flags().Changed("allowed-origin") {
				cfg.AllowedOrigin = allowedOrigin
			}
			if cmd.Flags().Changed("env") {
				cfg.Environment = environment
			}
			if cmd.Flags().Changed("session-ttl") {
				cfg.SessionTTL = sessionTTL
			}
			if cmd.Flags().Changed("metrics-enabled") {
				cfg.MetricsEnabled = metricsEnabled
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug = debugMode
			}

			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "API server listen address")
	cmd.Flags().StringVar(&googleClientID, "google-client-id", "", "Google OAuth client ID the verified tokens belong to")
	cmd.Flags().StringVar(&googleClientSecret, "google-client-secret", "", "Google OAuth client secret")
	cmd.Flags().StringVar(&allowedOrigin, "allowed-origin", "", "Single origin allowed for credentialed cross-origin requests")
	cmd.Flags().StringVar(&environment, "env", config.EnvDevelopment, "Runtime environment: development or production")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", config.DefaultSessionTTL, "Idle time before a session is evicted")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", config.DefaultMetricsAddr, "Metrics server address")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	return cmd
}

func runServe(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.Debug)
	slog.SetDefault(logger)

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("instrumentation shutdown failed", "error", err)
		}
	}()

	var metrics *instrumentation.Metrics
	if provider.Enabled() {
		metrics = provider.Metrics()
	}

	srv, err := server.New(server.Options{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if cfg.MetricsEnabled && provider.Enabled() {
		metricsServer = server.NewMetricsServer(cfg.MetricsAddr)
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		logger.Info("metrics server listening", "addr", metricsServer.Addr())
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	srv.Health().SetReady(true)

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received, stopping servers")
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()

		if metricsServer != nil {
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Error("metrics server shutdown failed", "error", err)
			}
		}
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("error shutting down API server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("API server stopped with error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
