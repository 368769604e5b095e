package server

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the JSON body returned for every handler failure.
// Details carries the underlying error text and is only populated
// outside production.
type errorResponse struct {
	Message     string `json:"message"`
	Details     string `json:"details,omitempty"`
	NeedsReauth bool   `json:"needsReauth,omitempty"`
}

// apiError describes a handler failure at the HTTP boundary.
type apiError struct {
	status      int
	message     string
	details     string
	needsReauth bool
}

// writeError converts an apiError to its JSON response. Details are
// suppressed in production deployments.
func (s *Server) writeError(w http.ResponseWriter, apiErr apiError) {
	body := errorResponse{
		Message:     apiErr.message,
		NeedsReauth: apiErr.needsReauth,
	}
	if !s.cfg.IsProduction() {
		body.Details = apiErr.details
	}

	writeJSON(w, apiErr.status, body)
}

// writeJSON renders v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
