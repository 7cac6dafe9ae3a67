package clients

import "strings"

// Client is a registered MCP client allowed to request authorization
// through the bridge. Name, ClientURI and LogoURI are attacker-influenced
// display metadata; the consent renderer sanitizes them before use.
type Client struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ClientURI    string   `json:"clientUri"`
	LogoURI      string   `json:"logoUri"`
	RedirectURIs []string `json:"redirectURIs"`
	Scopes       []string `json:"scopes"` // Allowed scopes for this client
}

// ValidateRedirectURI checks the requested redirect URI against the
// client's registered list. Exact string match only.
func (c *Client) ValidateRedirectURI(uri string) error {
	if uri == "" {
		return ErrInvalidRedirectURI
	}
	for _, registered := range c.RedirectURIs {
		if registered == uri {
			return nil
		}
	}
	return ErrInvalidRedirectURI
}

// HasScope checks if the client has permission for a specific scope
func (c *Client) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ValidateScopes checks if all requested scopes are allowed for this client
func (c *Client) ValidateScopes(requestedScopes string) error {
	if requestedScopes == "" {
		return nil
	}
	for _, scope := range splitScopes(requestedScopes) {
		if !c.HasScope(scope) {
			return ErrInvalidScope
		}
	}
	return nil
}

func splitScopes(scopes string) []string {
	result := []string{}
	for _, s := range strings.Split(scopes, " ") {
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}
