// Package statestore persists in-flight authorization requests behind
// single-use state tokens. A record survives for one TTL window and is
// consumed by the first successful Validate; a second Validate with the
// same token fails exactly as an unknown token would.
package statestore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

const (
	// KeyPrefix namespaces state records in shared stores.
	KeyPrefix = "oauth:state:"

	// DefaultTTL is how long an unconsumed state record lives.
	DefaultTTL = 10 * time.Minute

	tokenBytes = 16 // 128 bits of entropy
)

var (
	// ErrInvalidOrExpiredState is returned when a token is unknown,
	// expired, or already consumed. The three cases are deliberately
	// indistinguishable to the caller.
	ErrInvalidOrExpiredState = errors.New("invalid or expired state")

	// ErrCorruptState is returned when a stored record fails to
	// deserialize. Treated as a server error, not a client error.
	ErrCorruptState = errors.New("corrupt state record")
)

// PendingAuthorizationRequest describes one in-flight authorization
// request from a downstream client. The store serializes it, holds it
// for the TTL, and returns it unmodified.
type PendingAuthorizationRequest struct {
	ClientID     string            `json:"clientId"`
	RedirectURI  string            `json:"redirectUri"`
	Scope        string            `json:"scope"`
	ClientState  string            `json:"clientState"` // the downstream client's own state parameter
	CodeVerifier string            `json:"codeVerifier"`
	Nonce        string            `json:"nonce"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// Repo stores pending authorization requests with at-most-once retrieval.
type Repo interface {
	// Create generates a fresh unguessable token, writes the record with
	// the store's TTL and returns the token.
	Create(ctx context.Context, req *PendingAuthorizationRequest) (string, error)

	// Validate retrieves and deletes the record for token. Retrieval and
	// deletion are one logical step: two concurrent Validates with the
	// same token must not both succeed. There is no renewal; a token is
	// strictly single-shot.
	Validate(ctx context.Context, token string) (*PendingAuthorizationRequest, error)
}

// NewStateToken creates a random base64url token with 128-bit entropy.
func NewStateToken() string {
	b := make([]byte, tokenBytes)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
