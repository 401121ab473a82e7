// Package session owns the token lifecycle: decode, expiry check, proactive
// refresh, login, registration and logout.
package session

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vigilmap/vigil/internal/apierr"
	"github.com/vigilmap/vigil/internal/logger"
	"github.com/vigilmap/vigil/internal/requester"
	"github.com/vigilmap/vigil/internal/store"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Session is the derived view of the persisted tokens.
type Session struct {
	UserID      int64
	DisplayName string
}

// Manager drives the session lifecycle. It owns the authenticated bearer
// identity: every successful token mutation updates it, logout clears it.
// Auth endpoints themselves are always called anonymously.
type Manager struct {
	store     *store.TokenStore
	requester *requester.HTTPRequester
	authed    *requester.BearerIdentity
	anon      requester.AnonymousIdentity
}

type ManagerParams struct {
	fx.In

	Store     *store.TokenStore
	Requester *requester.HTTPRequester
}

// NewManager restores any persisted session: the stored access token is
// installed on the authenticated identity at boot.
func NewManager(params ManagerParams) *Manager {
	return &Manager{
		store:     params.Store,
		requester: params.Requester,
		authed:    requester.NewBearerIdentity(params.Store.Access()),
	}
}

// AuthedIdentity returns the identity carrying the current access token.
func (m *Manager) AuthedIdentity() requester.Identity { return m.authed }

// IsAuthenticated reports whether a session exists. Absence of the access
// token means anonymous.
func (m *Manager) IsAuthenticated() bool { return m.store.Access() != "" }

// HasRefreshToken reports whether a refresh attempt is possible.
func (m *Manager) HasRefreshToken() bool { return m.store.Refresh() != "" }

// Current returns the derived session, or nil when anonymous. The user id
// comes from the access token, the display name from storage.
func (m *Manager) Current() *Session {
	claims := Decode(m.store.Access())
	if claims == nil {
		return nil
	}
	return &Session{UserID: claims.UserID, DisplayName: m.store.DisplayName()}
}

// EnsureValid guarantees a usable access token, refreshing proactively when
// the stored one is gone or expiring within the skew window. On failure it
// returns ErrSessionExpired and leaves the stored session untouched; the
// caller decides whether to clear it.
func (m *Manager) EnsureValid(ctx context.Context) error {
	access := m.store.Access()
	if access == "" {
		return apierr.ErrSessionExpired
	}
	if !IsExpiringSoon(Decode(access), DefaultSkew) {
		return nil
	}
	return m.RefreshAccess(ctx)
}

// RefreshAccess performs a single refresh attempt. A network failure is
// treated the same as an explicit rejection: the session is unusable, no
// further attempt is made.
func (m *Manager) RefreshAccess(ctx context.Context) error {
	refresh := m.store.Refresh()
	if refresh == "" {
		return apierr.ErrSessionExpired
	}

	resp, err := m.requester.Do(ctx, http.MethodPost, "/token/refresh/", nil, map[string]string{"refresh": refresh}, m.anon)
	if err != nil {
		logger.Warn("token refresh failed", zap.Error(err))
		return apierr.ErrSessionExpired
	}
	if !resp.OK() {
		return apierr.ErrSessionExpired
	}

	var payload struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil || payload.Access == "" {
		return apierr.ErrSessionExpired
	}

	if err := m.store.SetTokens(payload.Access, ""); err != nil {
		return err
	}
	m.authed.SetToken(payload.Access)
	return nil
}

// Login exchanges credentials for a token pair and derives the session.
func (m *Manager) Login(ctx context.Context, username, password string) (*Session, error) {
	resp, err := m.requester.Do(ctx, http.MethodPost, "/token/", nil,
		map[string]string{"username": username, "password": password}, m.anon)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &apierr.AuthError{StatusCode: resp.StatusCode, Detail: apierr.Detail(resp.Body)}
	}

	var payload struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil || payload.Access == "" || payload.Refresh == "" {
		return nil, &apierr.AuthError{StatusCode: resp.StatusCode, Detail: "invalid token response"}
	}

	if err := m.store.SetTokens(payload.Access, payload.Refresh); err != nil {
		return nil, err
	}
	if err := m.store.SetDisplayName(username); err != nil {
		return nil, err
	}
	m.authed.SetToken(payload.Access)

	logger.Info("signed in", zap.String("username", username))
	return m.Current(), nil
}

// RegisteredUser is the server's echo of a successful registration.
type RegisteredUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Register creates an account. Signing in afterwards is a separate step,
// matching the service's register-then-login flow.
func (m *Manager) Register(ctx context.Context, username, password string) (*RegisteredUser, error) {
	resp, err := m.requester.Do(ctx, http.MethodPost, "/register/", nil,
		map[string]string{"username": username, "password": password}, m.anon)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &apierr.AuthError{StatusCode: resp.StatusCode, Detail: apierr.Detail(resp.Body)}
	}

	user := &RegisteredUser{Username: username}
	_ = json.Unmarshal(resp.Body, user)
	return user, nil
}

// Logout clears the persisted session and reverts the authenticated
// identity to anonymous.
func (m *Manager) Logout() {
	m.ClearSession()
	logger.Info("signed out")
}

// ClearSession drops all persisted fields together and removes the bearer
// credential from the authenticated identity.
func (m *Manager) ClearSession() {
	if err := m.store.Clear(); err != nil {
		logger.Warn("failed to clear stored credentials", zap.Error(err))
	}
	m.authed.ClearToken()
}
