package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/mcpbridge/consent-bridge/internal/errors"
)

// RedisRepo backs the state store with redis. GETDEL makes retrieval and
// deletion a single atomic step, and SET ... EX delegates expiry to the
// store itself, so expired, consumed, and unknown tokens all surface as
// redis.Nil.
type RedisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepo creates a redis-backed state repository from a connection
// URL (e.g., "redis://localhost:6379/0").
func NewRedisRepo(url string, ttl time.Duration) (*RedisRepo, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[statestore NewRedisRepo] parse redis URL")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, apperrors.Wrapf(err, "[statestore NewRedisRepo] redis ping failed")
	}

	return &RedisRepo{client: client, ttl: ttl}, nil
}

// Create writes the serialized request under a fresh token with the TTL
func (r *RedisRepo) Create(ctx context.Context, req *PendingAuthorizationRequest) (string, error) {
	if req == nil {
		return "", errors.New("request cannot be nil")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", apperrors.Wrapf(err, "[RedisRepo Create] serialize request")
	}

	token := NewStateToken()
	if err := r.client.Set(ctx, KeyPrefix+token, payload, r.ttl).Err(); err != nil {
		return "", apperrors.Wrapf(err, "[RedisRepo Create] write state record")
	}
	return token, nil
}

// Validate atomically retrieves and deletes the record for token
func (r *RedisRepo) Validate(ctx context.Context, token string) (*PendingAuthorizationRequest, error) {
	if token == "" {
		return nil, ErrInvalidOrExpiredState
	}

	payload, err := r.client.GetDel(ctx, KeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidOrExpiredState
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "[RedisRepo Validate] read state record")
	}

	var req PendingAuthorizationRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return nil, ErrCorruptState
	}
	return &req, nil
}

// Health checks the redis connection
func (r *RedisRepo) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the redis connection
func (r *RedisRepo) Close() error {
	return r.client.Close()
}
