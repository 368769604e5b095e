// Package server implements the HTTP surface of calproxy: the Google
// token-exchange endpoint that populates the session store, the
// calendar event queries that consume it, CORS and request logging
// middleware, health endpoints, and a dedicated Prometheus metrics
// server.
package server
