package store

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigilmap/vigil/internal/config"
)

func newTestStore(t *testing.T) (*TokenStore, *config.Config) {
	t.Helper()
	cfg := &config.Config{State: config.StateConfig{Dir: t.TempDir()}}
	s, err := NewTokenStore(cfg)
	require.NoError(t, err)
	return s, cfg
}

func TestTokenStoreRoundTrip(t *testing.T) {
	s, cfg := newTestStore(t)
	require.NoError(t, s.SetTokens("acc-1", "ref-1"))
	require.NoError(t, s.SetDisplayName("ana"))

	// a fresh store instance reads what the previous one persisted
	reloaded, err := NewTokenStore(cfg)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", reloaded.Access())
	assert.Equal(t, "ref-1", reloaded.Refresh())
	assert.Equal(t, "ana", reloaded.DisplayName())
}

func TestSetTokensKeepsMissingValues(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.SetTokens("acc-1", "ref-1"))

	// the refresh flow replaces only the access token
	require.NoError(t, s.SetTokens("acc-2", ""))
	assert.Equal(t, "acc-2", s.Access())
	assert.Equal(t, "ref-1", s.Refresh())
}

func TestClearRemovesEverythingTogether(t *testing.T) {
	s, cfg := newTestStore(t)
	require.NoError(t, s.SetTokens("acc", "ref"))
	require.NoError(t, s.SetDisplayName("ana"))

	require.NoError(t, s.Clear())

	assert.Empty(t, s.Access())
	assert.Empty(t, s.Refresh())
	assert.Empty(t, s.DisplayName())

	_, err := os.Stat(cfg.State.CredentialsPath())
	assert.True(t, os.IsNotExist(err), "credentials file removed")

	// clearing an already clear store is fine
	require.NoError(t, s.Clear())
}

func TestNewTokenStoreWithoutFile(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Empty(t, s.Access())
	assert.Empty(t, s.Refresh())
}
