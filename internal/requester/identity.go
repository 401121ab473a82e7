package requester

import (
	"net/http"
)

// Identity decides what credential an outgoing request carries. The client
// keeps two of them: one anonymous, one bearing the current access token.
type Identity interface {
	ApplyAuth(req *http.Request) error
}

// AnonymousIdentity sends requests without an Authorization header.
type AnonymousIdentity struct{}

func (AnonymousIdentity) ApplyAuth(*http.Request) error { return nil }

// BearerIdentity attaches "Authorization: Bearer <token>" to every request.
// The token is swappable in place so a refresh immediately applies to all
// future requests routed through this identity.
type BearerIdentity struct {
	token string
}

// NewBearerIdentity creates a bearer identity, optionally pre-loaded with a
// token restored from storage.
func NewBearerIdentity(token string) *BearerIdentity {
	return &BearerIdentity{token: token}
}

// SetToken installs a new access token.
func (b *BearerIdentity) SetToken(token string) { b.token = token }

// ClearToken reverts the identity to sending no credential.
func (b *BearerIdentity) ClearToken() { b.token = "" }

// Token returns the currently installed access token.
func (b *BearerIdentity) Token() string { return b.token }

// ApplyAuth adds the bearer credential when one is installed.
func (b *BearerIdentity) ApplyAuth(req *http.Request) error {
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	return nil
}
