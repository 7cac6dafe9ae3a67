// Package csrf issues and validates the anti-forgery token protecting the
// consent form. The token travels twice: once as a hidden form field and
// once in an HttpOnly cookie; both must match byte-for-byte at submission.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"time"
)

const (
	// CookieName is host-locked: the __Host- prefix requires Secure,
	// Path=/ and forbids a Domain attribute, so a subdomain cannot set a
	// colliding cookie.
	CookieName = "__Host-consent.csrf"

	// FormField is the hidden input carrying the token in the consent form.
	FormField = "csrf_token"

	// TTL matches the state-record lifetime.
	TTL = 10 * time.Minute
)

var (
	ErrMissingToken = errors.New("missing CSRF token")
	ErrMismatch     = errors.New("CSRF token mismatch")
)

// Issue generates a fresh token and the cookie that must accompany the
// rendered consent form.
func Issue() (string, *http.Cookie) {
	b := make([]byte, 16)
	rand.Read(b)
	token := base64.RawURLEncoding.EncodeToString(b)

	return token, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(TTL.Seconds()),
	}
}

// Validate compares the submitted form token against the cookie token.
// Both sides must be present and byte-identical. On success it returns a
// directive clearing the cookie so the token cannot be replayed.
func Validate(form url.Values, cookies []*http.Cookie) (*http.Cookie, error) {
	formToken := form.Get(FormField)
	cookieToken := cookieValue(cookies, CookieName)

	if formToken == "" || cookieToken == "" {
		return nil, ErrMissingToken
	}
	if subtle.ConstantTimeCompare([]byte(formToken), []byte(cookieToken)) != 1 {
		return nil, ErrMismatch
	}

	return ClearCookie(), nil
}

// ClearCookie returns a directive expiring the CSRF cookie.
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

func cookieValue(cookies []*http.Cookie, name string) string {
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
