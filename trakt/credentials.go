package trakt

import "time"

// Credentials is the durable authentication state for one API application.
// The JSON field names match the on-disk credential file format.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	AccessToken  string `json:"oauth_token"`
	RefreshToken string `json:"oauth_refresh"`
	// ExpiresAt is the absolute expiry of AccessToken in epoch seconds.
	// A non-empty AccessToken always has ExpiresAt set.
	ExpiresAt int64 `json:"oauth_expires_at"`
}

// HasToken reports whether an access token is present
func (c Credentials) HasToken() bool {
	return c.AccessToken != ""
}

// Expired reports whether the access token is unusable at the given time:
// absent, missing an expiry, or at/past it.
func (c Credentials) Expired(now time.Time) bool {
	if c.AccessToken == "" || c.ExpiresAt == 0 {
		return true
	}
	return now.Unix() >= c.ExpiresAt
}

// CredentialStore persists credentials across processes. Implementations
// must be safe for concurrent use.
type CredentialStore interface {
	// Load reads the stored credentials. A store with no prior state
	// returns empty credentials and no error.
	Load() (Credentials, error)
	// Save durably replaces the stored credentials
	Save(Credentials) error
}
