package config

import "time"

type SecurityConfig interface {
	GetCookieSecret() string
	GetSessionTokenKey() string
	GetStateTTL() time.Duration
	GetApprovalTTL() time.Duration
	GetSessionTokenExpiry() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetCookieSecret returns the HMAC key used to sign the approved-clients
// cookie. Rotating it invalidates all remembered approvals.
func (Security) GetCookieSecret() string {
	return GetEnv("COOKIE_SECRET", "")
}

// GetSessionTokenKey returns the HS256 key for downstream session tokens.
func (Security) GetSessionTokenKey() string {
	return GetEnv("SESSION_TOKEN_KEY", "")
}

func (Security) GetStateTTL() time.Duration {
	return 10 * time.Minute // state records, CSRF and binding cookies
}

func (Security) GetApprovalTTL() time.Duration {
	return 30 * 24 * time.Hour // remembered client approvals
}

func (Security) GetSessionTokenExpiry() time.Duration {
	return 1 * time.Hour
}
