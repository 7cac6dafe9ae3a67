package statestore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mcpbridge/consent-bridge/statestore"
)

func TestInMemoryRepo_CreateAndValidate(t *testing.T) {
	repo := statestore.NewInMemoryRepo(statestore.DefaultTTL)
	ctx := context.Background()

	req := &statestore.PendingAuthorizationRequest{
		ClientID:    "demo-client",
		RedirectURI: "https://client.example.com/callback",
		Scope:       "read",
		ClientState: "client-state-123",
		CreatedAt:   time.Now(),
	}

	token, err := repo.Create(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	t.Run("first validate returns the original request", func(t *testing.T) {
		got, err := repo.Validate(ctx, token)
		require.NoError(t, err)
		require.Equal(t, "demo-client", got.ClientID)
		require.Equal(t, "read", got.Scope)
		require.Equal(t, "client-state-123", got.ClientState)
	})

	t.Run("second validate fails as not found", func(t *testing.T) {
		_, err := repo.Validate(ctx, token)
		require.ErrorIs(t, err, statestore.ErrInvalidOrExpiredState)
	})
}

func TestInMemoryRepo_UnknownToken(t *testing.T) {
	repo := statestore.NewInMemoryRepo(statestore.DefaultTTL)

	_, err := repo.Validate(context.Background(), "never-issued")
	require.ErrorIs(t, err, statestore.ErrInvalidOrExpiredState)
}

func TestInMemoryRepo_EmptyToken(t *testing.T) {
	repo := statestore.NewInMemoryRepo(statestore.DefaultTTL)

	_, err := repo.Validate(context.Background(), "")
	require.ErrorIs(t, err, statestore.ErrInvalidOrExpiredState)
}

func TestInMemoryRepo_ExpiredToken(t *testing.T) {
	repo := statestore.NewInMemoryRepo(statestore.DefaultTTL)
	ctx := context.Background()

	token, err := repo.Create(ctx, &statestore.PendingAuthorizationRequest{ClientID: "demo-client"})
	require.NoError(t, err)

	// Shift the clock past the TTL
	statestore.NowTimeFunc = func() time.Time { return time.Now().Add(statestore.DefaultTTL + time.Minute) }
	defer func() { statestore.NowTimeFunc = time.Now }()

	_, err = repo.Validate(ctx, token)
	require.ErrorIs(t, err, statestore.ErrInvalidOrExpiredState)

	t.Run("expired is indistinguishable from unknown", func(t *testing.T) {
		_, unknownErr := repo.Validate(ctx, "never-issued")
		require.Equal(t, unknownErr, err)
	})
}

func TestInMemoryRepo_ConcurrentValidate(t *testing.T) {
	repo := statestore.NewInMemoryRepo(statestore.DefaultTTL)
	ctx := context.Background()

	token, err := repo.Create(ctx, &statestore.PendingAuthorizationRequest{ClientID: "demo-client"})
	require.NoError(t, err)

	const goroutines = 16
	var wg sync.WaitGroup
	successes := make(chan struct{}, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Validate(ctx, token); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	count := 0
	for range successes {
		count++
	}
	require.Equal(t, 1, count, "exactly one concurrent validate may succeed")
}

func TestInMemoryRepo_TokensAreUnique(t *testing.T) {
	repo := statestore.NewInMemoryRepo(statestore.DefaultTTL)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := repo.Create(ctx, &statestore.PendingAuthorizationRequest{ClientID: "demo-client"})
		require.NoError(t, err)
		require.False(t, seen[token])
		seen[token] = true
	}
}

func TestInMemoryRepo_NilRequest(t *testing.T) {
	repo := statestore.NewInMemoryRepo(statestore.DefaultTTL)

	_, err := repo.Create(context.Background(), nil)
	require.Error(t, err)
}
