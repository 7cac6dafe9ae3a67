package statestore

import (
	"context"
	"errors"
	"sync"
	"time"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type entry struct {
	req       *PendingAuthorizationRequest
	expiresAt time.Time
}

// InMemoryRepo is a thread-safe in-memory implementation of the Repo
// interface. Expiry is lazy: expired entries are swept opportunistically
// on Create and treated as absent on Validate.
type InMemoryRepo struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
}

// NewInMemoryRepo creates a new in-memory state repository
func NewInMemoryRepo(ttl time.Duration) *InMemoryRepo {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InMemoryRepo{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Create stores a copy of the request under a fresh token
func (r *InMemoryRepo) Create(_ context.Context, req *PendingAuthorizationRequest) (string, error) {
	if req == nil {
		return "", errors.New("request cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweep()

	token := NewStateToken()
	reqCopy := *req
	r.entries[token] = entry{
		req:       &reqCopy,
		expiresAt: NowTimeFunc().Add(r.ttl),
	}
	return token, nil
}

// Validate consumes the record for token. Lookup and delete happen under
// one lock so concurrent Validates with the same token cannot both succeed.
func (r *InMemoryRepo) Validate(_ context.Context, token string) (*PendingAuthorizationRequest, error) {
	if token == "" {
		return nil, ErrInvalidOrExpiredState
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.entries[token]
	if !exists {
		return nil, ErrInvalidOrExpiredState
	}
	delete(r.entries, token)

	if NowTimeFunc().After(e.expiresAt) {
		return nil, ErrInvalidOrExpiredState
	}

	reqCopy := *e.req
	return &reqCopy, nil
}

// sweep removes expired entries. Must be called with mu held.
func (r *InMemoryRepo) sweep() {
	now := NowTimeFunc()
	for token, e := range r.entries {
		if now.After(e.expiresAt) {
			delete(r.entries, token)
		}
	}
}
