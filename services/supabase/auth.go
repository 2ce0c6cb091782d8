package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/notespro/notespro/services/notespro/datatypes"
)

// Provider is a redirect-based external identity provider.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

// IsValid reports whether p is a supported sign-in provider.
func (p Provider) IsValid() bool {
	return p == ProviderGoogle || p == ProviderGitHub
}

// tokenResponse is GoTrue's session payload for token grants.
type tokenResponse struct {
	AccessToken  string     `json:"access_token"`
	TokenType    string     `json:"token_type"`
	ExpiresIn    int        `json:"expires_in"`
	RefreshToken string     `json:"refresh_token"`
	User         gotrueUser `json:"user"`
}

type gotrueUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		AvatarURL string `json:"avatar_url"`
		FullName  string `json:"full_name"`
	} `json:"user_metadata"`
}

func (u gotrueUser) toUser() datatypes.User {
	return datatypes.User{
		ID:        u.ID,
		Email:     u.Email,
		AvatarURL: u.UserMetadata.AvatarURL,
		FullName:  u.UserMetadata.FullName,
	}
}

// AuthorizeURL builds the GoTrue authorize endpoint for a redirect-based
// OAuth sign-in. The browser is sent here; the provider redirects back to
// redirectTo with tokens in the URL fragment.
func (c *Client) AuthorizeURL(provider Provider, redirectTo string) (string, error) {
	if !provider.IsValid() {
		return "", fmt.Errorf("supabase: unsupported provider %q", provider)
	}
	query := url.Values{}
	query.Set("provider", string(provider))
	if redirectTo != "" {
		query.Set("redirect_to", redirectTo)
	}
	return c.baseURL + "/auth/v1/authorize?" + query.Encode(), nil
}

// RefreshSession exchanges a refresh token for a fresh session. Used both
// to restore a persisted session at startup and by the background refresh
// loop before expiry.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*datatypes.UserSession, error) {
	query := url.Values{}
	query.Set("grant_type", "refresh_token")
	body := map[string]string{"refresh_token": refreshToken}

	data, err := c.do(ctx, http.MethodPost, "/auth/v1/token", query, nil, "", body)
	if err != nil {
		return nil, err
	}
	var tok tokenResponse
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("supabase: decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("supabase: token response missing access token")
	}
	return &datatypes.UserSession{
		User:         tok.User.toUser(),
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	}, nil
}

// User resolves the identity behind an access token. Used after an OAuth
// redirect hands the gateway tokens whose user is not yet known.
func (c *Client) User(ctx context.Context, token string) (datatypes.User, error) {
	data, err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, nil, token, nil)
	if err != nil {
		return datatypes.User{}, err
	}
	var u gotrueUser
	if err := json.Unmarshal(data, &u); err != nil {
		return datatypes.User{}, fmt.Errorf("supabase: decode user: %w", err)
	}
	if u.ID == "" {
		return datatypes.User{}, fmt.Errorf("supabase: user response missing id")
	}
	return u.toUser(), nil
}

// Logout revokes the session behind the access token. Revocation failures
// are surfaced but callers treat them as best-effort: local sign-out
// proceeds regardless.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, token, nil)
	return err
}
