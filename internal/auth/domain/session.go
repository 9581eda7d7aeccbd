package domain

import "time"

// Session models one issued token-pair lifecycle as stored in the DB. Only
// fingerprints of the bearer secrets are persisted; the raw tokens exist
// transiently in a SessionTokens value at issuance time and are never
// recoverable from a Session.
type Session struct {
	ID               string
	UserID           string
	AccessTokenHash  string // deterministic fingerprint (base64url SHA-256)
	RefreshTokenHash string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	UserAgent        string // diagnostic only, never authorizes anything
	IP               string // diagnostic only
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SessionTokens carries the raw bearer pair back to the transport layer,
// exactly once, at creation or rotation time.
type SessionTokens struct {
	UserID           string
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// SessionMeta is optional diagnostic metadata captured from the request.
type SessionMeta struct {
	UserAgent string
	IP        string
}
