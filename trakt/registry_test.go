package trakt

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// configureTestDefaults points the registry at a throwaway credential
// file and restores a clean registry when the test finishes.
func configureTestDefaults(t *testing.T) {
	t.Helper()

	Configure(Options{
		ClientID:        "test-client",
		ClientSecret:    "test-secret",
		CredentialsFile: filepath.Join(t.TempDir(), "credentials.json"),
		Logger:          zerolog.Nop(),
	})
	t.Cleanup(func() { Configure(Options{}) })
}

func TestDefaultsMemoize(t *testing.T) {
	configureTestDefaults(t)

	store1, err := DefaultStore()
	require.NoError(t, err)
	store2, err := DefaultStore()
	require.NoError(t, err)
	assert.Same(t, store1, store2)

	auth1, err := DefaultAuth()
	require.NoError(t, err)
	auth2, err := DefaultAuth()
	require.NoError(t, err)
	assert.Same(t, auth1, auth2)

	client1, err := DefaultClient()
	require.NoError(t, err)
	client2, err := DefaultClient()
	require.NoError(t, err)
	assert.Same(t, client1, client2)

	// the client is built on the same memoized authenticator
	assert.Same(t, auth1, client1.Auth())
}

func TestResetDropsInstances(t *testing.T) {
	configureTestDefaults(t)

	client1, err := DefaultClient()
	require.NoError(t, err)

	Reset()

	client2, err := DefaultClient()
	require.NoError(t, err)
	assert.NotSame(t, client1, client2)

	// options survive a reset
	assert.Equal(t, "test-client", client2.Auth().Credentials().ClientID)
}

func TestConfigureReplacesInstances(t *testing.T) {
	configureTestDefaults(t)

	client1, err := DefaultClient()
	require.NoError(t, err)

	Configure(Options{
		ClientID:        "other-client",
		CredentialsFile: filepath.Join(t.TempDir(), "credentials.json"),
		Logger:          zerolog.Nop(),
	})
	t.Cleanup(func() { Configure(Options{}) })

	client2, err := DefaultClient()
	require.NoError(t, err)
	assert.NotSame(t, client1, client2)
	assert.Equal(t, "other-client", client2.Auth().Credentials().ClientID)
}

func TestDefaultClientWithoutClientID(t *testing.T) {
	Configure(Options{
		CredentialsFile: filepath.Join(t.TempDir(), "credentials.json"),
		Logger:          zerolog.Nop(),
	})
	t.Cleanup(func() { Configure(Options{}) })

	_, err := DefaultClient()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client id is required")
}
