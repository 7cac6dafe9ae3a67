package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mcpbridge/consent-bridge/token"
)

func TestMinter_MintAndVerify(t *testing.T) {
	minter, err := token.NewMinter("https://bridge.example.com", []byte("signing-key"), time.Hour)
	require.NoError(t, err)

	identity := token.Identity{
		Subject: "user-123",
		Email:   "user@example.com",
		Name:    "Test User",
	}

	minted, err := minter.Mint(identity, "demo-client", "read write")
	require.NoError(t, err)
	require.NotEmpty(t, minted)

	claims, err := minter.Verify(minted)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims["sub"])
	require.Equal(t, "demo-client", claims["client_id"])
	require.Equal(t, "read write", claims["scope"])
	require.Equal(t, "user@example.com", claims["email"])
	require.NotEmpty(t, claims["jti"])
}

func TestMinter_RejectsWrongKey(t *testing.T) {
	minter, err := token.NewMinter("https://bridge.example.com", []byte("signing-key"), time.Hour)
	require.NoError(t, err)

	other, err := token.NewMinter("https://bridge.example.com", []byte("other-key"), time.Hour)
	require.NoError(t, err)

	minted, err := minter.Mint(token.Identity{Subject: "user-123"}, "demo-client", "read")
	require.NoError(t, err)

	_, err = other.Verify(minted)
	require.Error(t, err)
}

func TestMinter_RejectsExpired(t *testing.T) {
	minter, err := token.NewMinter("https://bridge.example.com", []byte("signing-key"), time.Hour)
	require.NoError(t, err)

	token.NowTimeFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	minted, err := minter.Mint(token.Identity{Subject: "user-123"}, "demo-client", "read")
	token.NowTimeFunc = time.Now
	require.NoError(t, err)

	_, err = minter.Verify(minted)
	require.Error(t, err)
}

func TestNewMinter_RequiresKey(t *testing.T) {
	_, err := token.NewMinter("https://bridge.example.com", nil, time.Hour)
	require.Error(t, err)
}
