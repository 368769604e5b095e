// Package session provides the in-memory session store that maps session
// identifiers to cached Google access tokens, plus the cookie plumbing
// that carries the identifier between requests.
//
// Sessions live only for the lifetime of the process. The store is
// deliberately a narrow interface so a persistent backend can be swapped
// in later without touching the handlers.
package session
