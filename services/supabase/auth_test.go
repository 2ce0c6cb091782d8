package supabase

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeURL(t *testing.T) {
	client, err := NewClient(Config{URL: "https://xyz.supabase.co", AnonKey: "k"})
	require.NoError(t, err)

	raw, err := client.AuthorizeURL(ProviderGoogle, "http://localhost:8080/v1/auth/callback")
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/auth/v1/authorize", parsed.Path)
	assert.Equal(t, "google", parsed.Query().Get("provider"))
	assert.Equal(t, "http://localhost:8080/v1/auth/callback", parsed.Query().Get("redirect_to"))

	_, err = client.AuthorizeURL(Provider("myspace"), "")
	assert.Error(t, err)
}

func TestRefreshSession(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
		w.Write([]byte(`{
			"access_token": "new-access",
			"refresh_token": "new-refresh",
			"expires_in": 3600,
			"user": {
				"id": "user-1",
				"email": "ada@example.com",
				"user_metadata": {"avatar_url": "https://a/b.png", "full_name": "Ada L"}
			}
		}`))
	})

	session, err := client.RefreshSession(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", session.AccessToken)
	assert.Equal(t, "new-refresh", session.RefreshToken)
	assert.Equal(t, "user-1", session.User.ID)
	assert.Equal(t, "ada@example.com", session.User.Email)
	assert.Equal(t, "Ada L", session.User.FullName)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)
}

func TestRefreshSession_MissingAccessToken(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	_, err := client.RefreshSession(context.Background(), "old")
	assert.Error(t, err)
}

func TestUser(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":"user-1","email":"ada@example.com","user_metadata":{}}`))
	})

	user, err := client.User(context.Background(), "access")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
}

func TestLogout(t *testing.T) {
	var path string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, client.Logout(context.Background(), "access"))
	assert.Equal(t, "/auth/v1/logout", path)
}
