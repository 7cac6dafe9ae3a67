// Package sessionbinding ties a state token to the browser that started
// the flow. The binding cookie holds sha256(token); at callback time the
// digest of the token in the URL must equal the cookie's digest. This is
// independent of CSRF protection: CSRF covers the consent POST, the
// binding covers the upstream redirect round-trip.
package sessionbinding

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"
)

const (
	// CookieName is host-locked, see the csrf package.
	CookieName = "__Host-consent.binding"

	// TTL matches the state-record lifetime.
	TTL = 10 * time.Minute
)

var (
	// ErrMissingBinding signals the binding cookie is absent: cookies
	// were cleared mid-flow or the flow resumed in a different browser.
	ErrMissingBinding = errors.New("missing session binding")

	// ErrMismatch signals the callback's state token does not hash to the
	// cookie's digest: possible token theft or replay from another session.
	ErrMismatch = errors.New("session binding mismatch")
)

// Bind returns the cookie proving which browser created stateToken.
func Bind(stateToken string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    digest(stateToken),
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(TTL.Seconds()),
	}
}

// Verify recomputes the digest of the token found in the callback URL and
// compares it against the binding cookie. On success it returns a
// directive clearing the cookie.
func Verify(stateToken string, cookies []*http.Cookie) (*http.Cookie, error) {
	var bound string
	for _, c := range cookies {
		if c.Name == CookieName {
			bound = c.Value
			break
		}
	}
	if bound == "" {
		return nil, ErrMissingBinding
	}
	if !hmac.Equal([]byte(digest(stateToken)), []byte(bound)) {
		return nil, ErrMismatch
	}

	return ClearCookie(), nil
}

// ClearCookie returns a directive expiring the binding cookie.
func ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
