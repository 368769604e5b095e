package session

import (
	"net/http"
	"time"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// CookieMaxAge is how long the session cookie lives in the browser.
const CookieMaxAge = 24 * time.Hour

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	// Secure should be set in production deployments. The frontend is
	// served from a different origin, so SameSite=None is required and
	// browsers only accept that combination over HTTPS.
	Secure bool
}

// SetCookie issues the session cookie to the client.
func SetCookie(w http.ResponseWriter, sessionID string, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteNoneMode,
	})
}

// ClearCookie removes the session cookie from the client.
func ClearCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteNoneMode,
	})
}

// FromRequest extracts the session identifier from the request cookie.
// An empty string means no session cookie was presented.
func FromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
