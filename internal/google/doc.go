// Package google talks to Google's OAuth2 userinfo endpoint to verify
// client-supplied access tokens and resolve them to a stable identity.
//
// The provider is treated purely as a network collaborator behind a
// narrow Verifier interface, so handlers and tests never depend on
// Google-specific SDK behavior.
package google
