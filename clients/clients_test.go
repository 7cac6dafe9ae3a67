package clients_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcpbridge/consent-bridge/clients"
)

func demoClient() *clients.Client {
	return &clients.Client{
		ID:           "demo-client",
		Name:         "Demo Client",
		ClientURI:    "https://client.example.com",
		RedirectURIs: []string{"https://client.example.com/callback"},
		Scopes:       []string{"read", "write"},
	}
}

func TestClient_ValidateRedirectURI(t *testing.T) {
	c := demoClient()

	t.Run("registered URI", func(t *testing.T) {
		require.NoError(t, c.ValidateRedirectURI("https://client.example.com/callback"))
	})

	t.Run("unregistered URI", func(t *testing.T) {
		err := c.ValidateRedirectURI("https://evil.example.com/callback")
		require.ErrorIs(t, err, clients.ErrInvalidRedirectURI)
	})

	t.Run("prefix match is not enough", func(t *testing.T) {
		err := c.ValidateRedirectURI("https://client.example.com/callback/extra")
		require.ErrorIs(t, err, clients.ErrInvalidRedirectURI)
	})

	t.Run("empty URI", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateRedirectURI(""), clients.ErrInvalidRedirectURI)
	})
}

func TestClient_ValidateScopes(t *testing.T) {
	c := demoClient()

	t.Run("allowed scopes", func(t *testing.T) {
		require.NoError(t, c.ValidateScopes("read write"))
	})

	t.Run("empty scopes", func(t *testing.T) {
		require.NoError(t, c.ValidateScopes(""))
	})

	t.Run("disallowed scope", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateScopes("read admin"), clients.ErrInvalidScope)
	})
}

func TestInMemoryRepo(t *testing.T) {
	repo := clients.NewInMemoryRepo()

	require.NoError(t, repo.Upsert(demoClient()))

	t.Run("get", func(t *testing.T) {
		got, err := repo.Get("demo-client")
		require.NoError(t, err)
		require.Equal(t, "Demo Client", got.Name)
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := repo.Get("nope")
		require.ErrorIs(t, err, clients.ErrClientNotFound)
	})

	t.Run("returned client is a copy", func(t *testing.T) {
		got, err := repo.Get("demo-client")
		require.NoError(t, err)
		got.Name = "Mutated"

		again, err := repo.Get("demo-client")
		require.NoError(t, err)
		require.Equal(t, "Demo Client", again.Name)
	})

	t.Run("list", func(t *testing.T) {
		require.NoError(t, repo.Upsert(&clients.Client{ID: "another-client", Name: "Another"}))

		all, err := repo.List(0, 10)
		require.NoError(t, err)
		require.Len(t, all, 2)
		require.Equal(t, "another-client", all[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete("another-client"))
		_, err := repo.Get("another-client")
		require.ErrorIs(t, err, clients.ErrClientNotFound)
	})
}

func TestNewInMemoryRepoFromFile(t *testing.T) {
	t.Run("loads registered clients", func(t *testing.T) {
		dir := t.TempDir()
		registry := `[{"id":"file-client","name":"File Client","redirectURIs":["https://file.example.com/cb"],"scopes":["read"]}]`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "clients.json"), []byte(registry), 0o600))

		repo, err := clients.NewInMemoryRepoFromFile(dir)
		require.NoError(t, err)

		got, err := repo.Get("file-client")
		require.NoError(t, err)
		require.Equal(t, "File Client", got.Name)
	})

	t.Run("missing file yields empty registry", func(t *testing.T) {
		repo, err := clients.NewInMemoryRepoFromFile(t.TempDir())
		require.NoError(t, err)

		all, err := repo.List(0, 10)
		require.NoError(t, err)
		require.Empty(t, all)
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "clients.json"), []byte("{not json"), 0o600))

		_, err := clients.NewInMemoryRepoFromFile(dir)
		require.Error(t, err)
	})
}
