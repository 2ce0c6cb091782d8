package datatypes

import "time"

// User is the authenticated identity as reported by the auth provider.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
	FullName  string `json:"full_name,omitempty"`
}

// UserSession is the current provider session. A nil *UserSession means
// unauthenticated. Tokens never leave the process; API responses carry
// only the User portion.
type UserSession struct {
	User         User      `json:"user"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"-"`
}

// Expired reports whether the access token is past (or within margin of)
// its expiry.
func (s *UserSession) Expired(margin time.Duration) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(margin).After(s.ExpiresAt)
}
