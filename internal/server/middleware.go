package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/calproxy/calproxy/internal/instrumentation"
)

// Middleware wraps an http.HandlerFunc with cross-cutting behavior.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// withMiddleware applies middlewares to handler, outermost first.
func withMiddleware(handler http.HandlerFunc, middlewares ...Middleware) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// requestLogger logs every request and records HTTP metrics.
func requestLogger(logger *slog.Logger, metrics *instrumentation.Metrics) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next(wrapped, r)

			duration := time.Since(start)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"duration_ms", duration.Milliseconds(),
			)

			metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, wrapped.status, duration)
		}
	}
}

// corsMiddleware allows credentialed cross-origin requests from the
// single configured frontend origin. With no configured origin the
// middleware passes requests through untouched.
func corsMiddleware(allowedOrigin string) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := allowedOrigin != "" && origin == allowedOrigin

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept")
				// Credentials must be allowed for the session cookie to travel
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Vary", "Origin")
			}

			// Handle preflight requests
			if r.Method == http.MethodOptions {
				if allowed || origin == "" {
					w.WriteHeader(http.StatusNoContent)
				} else {
					w.WriteHeader(http.StatusForbidden)
				}
				return
			}

			next(w, r)
		}
	}
}
