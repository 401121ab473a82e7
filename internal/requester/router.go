package requester

import (
	"context"
	"net/http"
	"net/url"

	"github.com/vigilmap/vigil/internal/logger"
	"go.uber.org/fx"
)

// SessionController is the slice of the session manager the router needs
// for its reactive refresh policy.
type SessionController interface {
	// AuthedIdentity returns the identity carrying the current access token.
	AuthedIdentity() Identity
	// HasRefreshToken reports whether a refresh attempt is even possible.
	HasRefreshToken() bool
	// RefreshAccess performs a single refresh attempt and installs the new
	// access token on the authenticated identity.
	RefreshAccess(ctx context.Context) error
	// ClearSession drops all persisted session state.
	ClearSession()
}

// Router chooses between the authenticated and anonymous transport
// identities and wraps the retry-once-on-401 policy around authenticated
// calls. It complements the proactive session check: mutating call sites
// validate the session first, the router stays as a safety net for clock
// skew or concurrent expiry.
type Router struct {
	requester *HTTPRequester
	session   SessionController
	anon      AnonymousIdentity
}

type RouterParams struct {
	fx.In

	Requester *HTTPRequester
	Session   SessionController
}

// NewRouter creates a Router over the shared requester.
func NewRouter(params RouterParams) *Router {
	return &Router{
		requester: params.Requester,
		session:   params.Session,
	}
}

// Route selects the transport identity for a call. Pure selection, no I/O.
func (rt *Router) Route(usesAuth bool) Identity {
	if usesAuth {
		return rt.session.AuthedIdentity()
	}
	return rt.anon
}

// Do executes a request under the routed identity. For authenticated calls
// a 401 triggers exactly one refresh attempt and one replay; a failed
// refresh, a missing refresh token, or a second 401 surfaces the original
// response and clears the session.
func (rt *Router) Do(ctx context.Context, method, path string, query url.Values, body any, usesAuth bool) (*Response, error) {
	resp, err := rt.requester.Do(ctx, method, path, query, body, rt.Route(usesAuth))
	if err != nil || !usesAuth || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	if !rt.session.HasRefreshToken() {
		rt.session.ClearSession()
		return resp, nil
	}
	if err := rt.session.RefreshAccess(ctx); err != nil {
		logger.Warn("refresh after 401 failed")
		rt.session.ClearSession()
		return resp, nil
	}

	retry, err := rt.requester.Do(ctx, method, path, query, body, rt.session.AuthedIdentity())
	if err != nil {
		return nil, err
	}
	if retry.StatusCode == http.StatusUnauthorized {
		rt.session.ClearSession()
		return resp, nil
	}
	return retry, nil
}
