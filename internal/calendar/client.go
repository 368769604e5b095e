package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// PrimaryCalendarID names the authenticated user's primary calendar.
const PrimaryCalendarID = "primary"

// maxResults caps a single listing request. Recurring events are
// expanded into individual instances, so the cap applies to instances.
const maxResults = 2500

// ErrReauthRequired is returned when the upstream rejects the cached
// credential. Callers surface it distinctly so the client can prompt
// for a fresh login instead of showing a generic failure.
var ErrReauthRequired = errors.New("calendar access needs re-authentication")

// Client wraps the Google Calendar service for a single user's credential.
type Client struct {
	svc *calendar.Service
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	endpoint string
}

// WithEndpoint overrides the Calendar API base URL, used by tests to
// point the client at a fake upstream.
func WithEndpoint(url string) ClientOption {
	return func(o *clientOptions) {
		o.endpoint = url
	}
}

// NewClient creates a Calendar client authenticated with the given
// bearer access token.
func NewClient(ctx context.Context, accessToken string, opts ...ClientOption) (*Client, error) {
	var options clientOptions
	for _, opt := range opts {
		opt(&options)
	}

	token := &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}

	// Create HTTP client with the token
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	clientOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if options.endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(options.endpoint))
	}

	svc, err := calendar.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{svc: svc}, nil
}

// ListEvents lists events in a calendar within a time window, expanding
// recurring events into instances, ordered by start time ascending.
func (c *Client) ListEvents(ctx context.Context, calendarID string, window Window) ([]*calendar.Event, error) {
	events, err := c.svc.Events.List(calendarID).
		TimeMin(window.Start.Format(time.RFC3339)).
		TimeMax(window.End.Format(time.RFC3339)).
		SingleEvents(true).
		MaxResults(maxResults).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		if isAuthError(err) {
			return nil, fmt.Errorf("failed to list events: %w", ErrReauthRequired)
		}
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return events.Items, nil
}

// isAuthError reports whether an upstream failure means the credential
// is expired or invalid rather than a generic outage.
func isAuthError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "invalid_grant") ||
		strings.Contains(msg, "Invalid Credentials")
}
