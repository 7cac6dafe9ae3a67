package config

import "strings"

type UpstreamConfig interface {
	GetUpstreamIssuer() string
	GetUpstreamClientID() string
	GetUpstreamClientSecret() string
	GetUpstreamScopes() []string
}

type Upstream struct{}

var _ UpstreamConfig = Upstream{}

// GetUpstreamIssuer returns the upstream identity provider's issuer URL
// (e.g., "https://accounts.google.com"). OIDC discovery runs against it.
func (Upstream) GetUpstreamIssuer() string {
	return GetEnv("UPSTREAM_ISSUER", "")
}

func (Upstream) GetUpstreamClientID() string {
	return GetEnv("UPSTREAM_CLIENT_ID", "")
}

func (Upstream) GetUpstreamClientSecret() string {
	return GetEnv("UPSTREAM_CLIENT_SECRET", "")
}

func (Upstream) GetUpstreamScopes() []string {
	scopes := GetEnv("UPSTREAM_SCOPES", "openid profile email")
	return strings.Fields(scopes)
}
