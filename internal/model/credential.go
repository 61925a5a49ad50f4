package model

import "time"

// CredentialRecord is one user's OAuth credential set against the device
// cloud. A record is created at the OAuth code exchange and replaced as a
// whole by a successful refresh; it is never deleted automatically, a stale
// record just gets overwritten by the next login.
type CredentialRecord struct {
	UserID           string    `json:"user_id"`
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	Region           string    `json:"region"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RefreshExpired reports whether the record is dead: once the refresh token
// itself lapses only a full re-login can produce a usable token.
func (r CredentialRecord) RefreshExpired(now time.Time) bool {
	return !now.Before(r.RefreshExpiresAt)
}

// AccessExpired reports whether the access token needs a refresh.
func (r CredentialRecord) AccessExpired(now time.Time) bool {
	return !now.Before(r.AccessExpiresAt)
}

// AccessGrant pairs a currently usable access token with the regional
// endpoint it is valid for. Every remote call takes a grant explicitly;
// nothing holds token state between requests.
type AccessGrant struct {
	AccessToken string
	Region      string
}
