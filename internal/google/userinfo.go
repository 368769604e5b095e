package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// DefaultUserInfoURL is Google's OpenID Connect userinfo endpoint. The
// v3 endpoint returns the stable "sub" claim used as the session key.
const DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// ErrProviderRejected is returned when Google answers the userinfo call
// with a non-success status, i.e. the access token is invalid or expired.
var ErrProviderRejected = errors.New("identity provider rejected the access token")

// UserInfo represents the user information from Google's userinfo endpoint.
type UserInfo struct {
	// Sub is the unique Google user ID.
	Sub string `json:"sub"`

	// Email is the user's email address.
	Email string `json:"email"`

	// EmailVerified indicates if the email is verified.
	EmailVerified bool `json:"email_verified"`

	// Name is the user's full name.
	Name string `json:"name"`

	// Picture is the URL of the user's profile picture.
	Picture string `json:"picture"`
}

// Verifier resolves a bearer access token to a verified identity.
type Verifier interface {
	VerifyAccessToken(ctx context.Context, accessToken string) (*UserInfo, error)
}

// UserInfoClient is a Verifier backed by Google's userinfo endpoint.
type UserInfoClient struct {
	userInfoURL string
}

// Option configures a UserInfoClient.
type Option func(*UserInfoClient)

// WithUserInfoURL overrides the userinfo endpoint, used by tests to
// point the client at a fake provider.
func WithUserInfoURL(url string) Option {
	return func(c *UserInfoClient) {
		c.userInfoURL = url
	}
}

// NewUserInfoClient creates a Verifier that calls Google's userinfo endpoint.
func NewUserInfoClient(opts ...Option) *UserInfoClient {
	c := &UserInfoClient{
		userInfoURL: DefaultUserInfoURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VerifyAccessToken validates a token by calling the userinfo endpoint
// with the token as a bearer credential.
func (c *UserInfoClient) VerifyAccessToken(ctx context.Context, accessToken string) (*UserInfo, error) {
	token := &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}

	// Create HTTP client with the token
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d: %w", resp.StatusCode, ErrProviderRejected)
	}

	var userInfo UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}

	if userInfo.Sub == "" {
		return nil, fmt.Errorf("userinfo response missing subject: %w", ErrProviderRejected)
	}

	return &userInfo, nil
}
