// Package token mints the downstream session token handed back to an MCP
// client after a completed authorization flow.
package token

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Identity carries the upstream-verified user identity embedded in the
// minted token.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Minter creates HS256-signed session tokens
type Minter struct {
	issuer string
	key    []byte
	expiry time.Duration
}

// NewMinter creates a new session token minter
func NewMinter(issuer string, key []byte, expiry time.Duration) (*Minter, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("[token NewMinter] signing key is required")
	}
	return &Minter{issuer: issuer, key: key, expiry: expiry}, nil
}

// Mint creates a session token for identity, bound to the client and
// scope that were approved.
func (m *Minter) Mint(identity Identity, clientID, scope string) (string, error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"iss":       m.issuer,
		"sub":       identity.Subject,
		"aud":       clientID,
		"client_id": clientID,
		"scope":     scope,
		"email":     identity.Email,
		"name":      identity.Name,
		"iat":       now.Unix(),
		"exp":       now.Add(m.expiry).Unix(),
		"jti":       uuid.New().String(), // Unique token ID
	}

	signedToken, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signedToken, nil
}

// Verify parses and validates a minted session token, returning its claims.
func (m *Minter) Verify(tokenString string) (jwtlib.MapClaims, error) {
	parsed, err := jwtlib.Parse(tokenString, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.key, nil
	}, jwtlib.WithIssuer(m.issuer), jwtlib.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("[Minter Verify] %w", err)
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("[Minter Verify] invalid token claims")
	}
	return claims, nil
}
