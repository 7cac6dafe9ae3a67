// Package approvals remembers which clients a browser has already
// consented to, in one long-lived HMAC-signed cookie. The cookie value is
// hex(signature) + "." + base64(JSON array of client IDs); the signature
// covers the raw JSON text. Anything that fails to verify is treated as
// "no prior approvals" rather than an error.
package approvals

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	// CookieName is host-locked, see the csrf package.
	CookieName = "__Host-approved-clients"

	// TTL keeps approvals for 30 days. The cookie is rewritten wholesale
	// on each new approval, not extended.
	TTL = 30 * 24 * time.Hour
)

// IsApproved reports whether clientID was previously approved by this
// browser. It fails closed: an absent, malformed, or tampered cookie
// means not approved.
func IsApproved(clientID string, cookies []*http.Cookie, secret []byte) bool {
	for _, id := range approvedClients(cookies, secret) {
		if id == clientID {
			return true
		}
	}
	return false
}

// AddApproval unions clientID into the approved set, re-signs and returns
// the replacement cookie. Existing approvals that fail signature
// verification are discarded, not preserved.
func AddApproval(clientID string, cookies []*http.Cookie, secret []byte) (*http.Cookie, error) {
	ids := approvedClients(cookies, secret)

	exists := false
	for _, id := range ids {
		if id == clientID {
			exists = true
			break
		}
	}
	if !exists {
		ids = append(ids, clientID)
	}
	sort.Strings(ids)

	payload, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}

	return &http.Cookie{
		Name:     CookieName,
		Value:    sign(payload, secret) + "." + base64.StdEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(TTL.Seconds()),
	}, nil
}

// approvedClients parses the signed cookie and returns the verified set,
// or nil when anything about the cookie is off.
func approvedClients(cookies []*http.Cookie, secret []byte) []string {
	var raw string
	for _, c := range cookies {
		if c.Name == CookieName {
			raw = c.Value
			break
		}
	}
	if raw == "" {
		return nil
	}

	parts := strings.SplitN(raw, ".", 2)
	if len(parts) != 2 {
		return nil
	}

	payload, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil
	}
	if !hmac.Equal([]byte(sign(payload, secret)), []byte(parts[0])) {
		return nil
	}

	var ids []string
	if err := json.Unmarshal(payload, &ids); err != nil {
		return nil
	}
	return ids
}

func sign(payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
