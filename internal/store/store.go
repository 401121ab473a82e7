// Package store persists the client's credentials: the access token, the
// refresh token and the display name. The access token does not carry the
// display name, so it is stored alongside the tokens.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vigilmap/vigil/internal/config"
	"gopkg.in/yaml.v3"
)

// Credentials is the on-disk shape of the persisted session state.
type Credentials struct {
	Access      string `yaml:"access,omitempty"`
	Refresh     string `yaml:"refresh,omitempty"`
	DisplayName string `yaml:"display_name,omitempty"`
}

// TokenStore is a file-backed key/value holder. Pure storage, no token
// logic: lifecycle decisions live in the session manager.
type TokenStore struct {
	path  string
	creds Credentials
}

// NewTokenStore opens the credentials file under the configured state dir,
// loading whatever was persisted by a previous run.
func NewTokenStore(cfg *config.Config) (*TokenStore, error) {
	s := &TokenStore{path: cfg.State.CredentialsPath()}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return s, nil
}

func (s *TokenStore) Access() string      { return s.creds.Access }
func (s *TokenStore) Refresh() string     { return s.creds.Refresh }
func (s *TokenStore) DisplayName() string { return s.creds.DisplayName }

// SetTokens persists a token pair. An empty access or refresh value keeps
// the stored one, matching the refresh flow where only access changes.
func (s *TokenStore) SetTokens(access, refresh string) error {
	if access != "" {
		s.creds.Access = access
	}
	if refresh != "" {
		s.creds.Refresh = refresh
	}
	return s.save()
}

// SetDisplayName persists the display name shown while signed in.
func (s *TokenStore) SetDisplayName(name string) error {
	s.creds.DisplayName = name
	return s.save()
}

// Clear removes all three keys together. Removing the file is the atomic
// variant of clearing them one by one.
func (s *TokenStore) Clear() error {
	s.creds = Credentials{}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

func (s *TokenStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	data, err := yaml.Marshal(&s.creds)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}
