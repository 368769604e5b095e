package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/calproxy/calproxy/internal/calendar"
	"github.com/calproxy/calproxy/internal/google"
	"github.com/calproxy/calproxy/internal/instrumentation"
	"github.com/calproxy/calproxy/internal/logging"
	"github.com/calproxy/calproxy/internal/session"
)

// authRequest is the body of POST /api/auth/google.
type authRequest struct {
	AccessToken string `json:"access_token"`
}

// authResponse confirms a successful token exchange.
type authResponse struct {
	Message string   `json:"message"`
	User    authUser `json:"user"`
}

type authUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// eventsResponse is the body of GET /api/calendar/events. Date echoes
// the request's date parameter and is null when none was supplied.
type eventsResponse struct {
	Events []*gcal.Event `json:"events"`
	Date   *string       `json:"date"`
}

// handleGoogleAuth exchanges a client-supplied Google access token for a
// session: the token is verified against the userinfo endpoint and
// cached under the user's stable subject id, which becomes the session
// cookie value.
func (s *Server) handleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessToken == "" {
		s.metrics.RecordAuthAttempt(ctx, instrumentation.AuthResultInvalid)
		s.writeError(w, apiError{
			status:  http.StatusBadRequest,
			message: "Access token is required",
		})
		return
	}

	start := time.Now()
	verifyCtx, span := instrumentation.StartGoogleAPISpan(ctx, "userinfo.get")
	userInfo, err := s.verifier.VerifyAccessToken(verifyCtx, req.AccessToken)
	instrumentation.EndSpan(span, err)
	if err != nil {
		s.metrics.RecordGoogleAPIOperation(ctx, "userinfo.get", "error", time.Since(start))
		s.metrics.RecordAuthAttempt(ctx, instrumentation.AuthResultRejected)

		// Provider rejections and transport failures share the same
		// response shape but are distinguished in the logs.
		if errors.Is(err, google.ErrProviderRejected) {
			s.logger.Warn("authentication rejected by provider", logging.Err(err),
				"token", logging.SanitizeToken(req.AccessToken))
		} else {
			s.logger.Error("userinfo exchange failed", logging.Err(err))
		}

		s.writeError(w, apiError{
			status:  http.StatusUnauthorized,
			message: "Authentication failed",
			details: err.Error(),
		})
		return
	}
	s.metrics.RecordGoogleAPIOperation(ctx, "userinfo.get", "success", time.Since(start))

	// Re-authentication of a known subject overwrites, so only a
	// genuinely new session moves the gauge.
	isNew := !s.store.Has(userInfo.Sub)

	s.store.Put(session.Record{
		SessionID:   userInfo.Sub,
		AccessToken: req.AccessToken,
		Email:       userInfo.Email,
		Name:        userInfo.Name,
	})

	if isNew {
		s.metrics.SessionOpened(ctx)
	}
	s.metrics.RecordAuthAttempt(ctx, instrumentation.AuthResultSuccess)

	session.SetCookie(w, userInfo.Sub, session.CookieOptions{Secure: s.cfg.IsProduction()})

	s.logger.Info("user authenticated", logging.UserHash(userInfo.Email), "session_new", isNew)

	writeJSON(w, http.StatusOK, authResponse{
		Message: "Authentication successful",
		User: authUser{
			Email: userInfo.Email,
			Name:  userInfo.Name,
		},
	})
}

// handleRawEvents serves GET /api/auth/calendar/events: the default
// window's raw event list without local filtering.
func (s *Server) handleRawEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record, ok := s.resolveSession(r)
	if !ok {
		s.writeError(w, apiError{
			status:  http.StatusUnauthorized,
			message: "Not authenticated",
		})
		return
	}

	events, err := s.listEvents(ctx, record.AccessToken, calendar.DefaultWindow(time.Now()))
	if err != nil {
		s.logger.Error("calendar passthrough failed", logging.Err(err), "token_exists", true)
		s.writeError(w, apiError{
			status:  http.StatusInternalServerError,
			message: "Failed to fetch calendar events",
			details: err.Error(),
		})
		return
	}

	if events == nil {
		events = []*gcal.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// handleCalendarEvents serves GET /api/calendar/events with the
// optional date window and free-text filtering.
func (s *Server) handleCalendarEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record, ok := s.resolveSession(r)
	if !ok {
		s.writeError(w, apiError{
			status:  http.StatusUnauthorized,
			message: "Not authenticated",
		})
		return
	}

	dateParam := r.URL.Query().Get("date")
	searchQuery := r.URL.Query().Get("searchQuery")

	window := calendar.DefaultWindow(time.Now())
	var echoDate *string
	if dateParam != "" {
		day, err := calendar.ParseDay(dateParam)
		if err != nil {
			s.writeError(w, apiError{
				status:  http.StatusBadRequest,
				message: "Invalid date parameter",
				details: err.Error(),
			})
			return
		}
		window = calendar.DayWindow(day)
		echoDate = &dateParam
	}

	events, err := s.listEvents(ctx, record.AccessToken, window)
	if err != nil {
		tokenExists := s.store.Has(record.SessionID)

		if errors.Is(err, calendar.ErrReauthRequired) {
			s.logger.Warn("calendar credential rejected", logging.Err(err), "token_exists", tokenExists)
			s.writeError(w, apiError{
				status:      http.StatusUnauthorized,
				message:     "Calendar access needed",
				needsReauth: true,
			})
			return
		}

		s.logger.Error("calendar listing failed", logging.Err(err), "token_exists", tokenExists)
		s.writeError(w, apiError{
			status:  http.StatusInternalServerError,
			message: "Error fetching calendar events",
			details: err.Error(),
		})
		return
	}

	filtered := calendar.FilterEvents(events, searchQuery)
	if filtered == nil {
		filtered = []*gcal.Event{}
	}

	writeJSON(w, http.StatusOK, eventsResponse{
		Events: filtered,
		Date:   echoDate,
	})
}

// resolveSession maps the request's session cookie to a stored record.
// The upstream is never contacted for requests without a valid session.
func (s *Server) resolveSession(r *http.Request) (session.Record, bool) {
	sessionID := session.FromRequest(r)
	if sessionID == "" {
		return session.Record{}, false
	}
	return s.store.Get(sessionID)
}

// listEvents builds a per-request calendar client for the stored
// credential and issues the listing call, recording API metrics.
func (s *Server) listEvents(ctx context.Context, accessToken string, window calendar.Window) ([]*gcal.Event, error) {
	lister, err := s.newLister(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	listCtx, span := instrumentation.StartGoogleAPISpan(ctx, "events.list",
		attribute.String(instrumentation.SpanAttrCalendarID, calendar.PrimaryCalendarID))
	events, err := lister.ListEvents(listCtx, calendar.PrimaryCalendarID, window)
	instrumentation.EndSpan(span, err)

	result := "success"
	if err != nil {
		result = "error"
	}
	s.metrics.RecordGoogleAPIOperation(ctx, "events.list", result, time.Since(start))

	return events, err
}

// handleLogout closes the session named by the cookie and clears it
// from the browser. Requests without a live session still get the
// cookie cleared.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if sessionID := session.FromRequest(r); sessionID != "" {
		if s.store.Has(sessionID) {
			s.store.Delete(sessionID)
			s.metrics.SessionClosed(ctx)
			s.logger.Info("session closed")
		}
	}

	session.ClearCookie(w, session.CookieOptions{Secure: s.cfg.IsProduction()})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
