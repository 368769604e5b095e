package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyAccessToken_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ya29.valid", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(UserInfo{
			Sub:   "1234567890",
			Email: "user@example.com",
			Name:  "Test User",
		})
	}))
	defer srv.Close()

	client := NewUserInfoClient(WithUserInfoURL(srv.URL))

	info, err := client.VerifyAccessToken(context.Background(), "ya29.valid")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", info.Sub)
	assert.Equal(t, "user@example.com", info.Email)
	assert.Equal(t, "Test User", info.Name)
}

func TestVerifyAccessToken_ProviderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewUserInfoClient(WithUserInfoURL(srv.URL))

	_, err := client.VerifyAccessToken(context.Background(), "expired")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderRejected)
}

func TestVerifyAccessToken_MissingSubject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"user@example.com"}`))
	}))
	defer srv.Close()

	client := NewUserInfoClient(WithUserInfoURL(srv.URL))

	_, err := client.VerifyAccessToken(context.Background(), "ya29.valid")
	assert.ErrorIs(t, err, ErrProviderRejected)
}

func TestVerifyAccessToken_UnreachableProvider(t *testing.T) {
	client := NewUserInfoClient(WithUserInfoURL("http://127.0.0.1:1/userinfo"))

	_, err := client.VerifyAccessToken(context.Background(), "ya29.valid")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProviderRejected)
}
