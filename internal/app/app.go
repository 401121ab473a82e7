// Package app composes the session, pin and viewport layers into the
// client's user-facing operations.
package app

import (
	"context"
	"errors"

	"github.com/vigilmap/vigil/internal/apierr"
	"github.com/vigilmap/vigil/internal/pins"
	"github.com/vigilmap/vigil/internal/session"
	"github.com/vigilmap/vigil/internal/viewport"

	"go.uber.org/fx"
)

// App wires the client together and owns the transient draft state.
type App struct {
	session  *session.Manager
	store    *pins.Store
	service  *pins.Service
	engine   *pins.Engine
	loader   *viewport.Loader
	notifier pins.Notifier

	draft *pins.Draft
}

type Params struct {
	fx.In

	Session  *session.Manager
	Store    *pins.Store
	Service  *pins.Service
	Engine   *pins.Engine
	Loader   *viewport.Loader
	Notifier pins.Notifier
}

// New creates the composed client application.
func New(params Params) *App {
	return &App{
		session:  params.Session,
		store:    params.Store,
		service:  params.Service,
		engine:   params.Engine,
		loader:   params.Loader,
		notifier: params.Notifier,
	}
}

func (a *App) Session() *session.Manager { return a.session }
func (a *App) Store() *pins.Store        { return a.store }
func (a *App) Pins() *pins.Service       { return a.service }

// AttachMap binds the viewport loader to a map instance.
func (a *App) AttachMap(ctx context.Context, m viewport.Map) {
	a.loader.Attach(ctx, m)
}

// Login authenticates and reloads the viewport under the authenticated
// identity, which may reveal the viewer's own pending pins.
func (a *App) Login(ctx context.Context, username, password string) (*session.Session, error) {
	sess, err := a.session.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	a.loader.Resubscribe(ctx)
	return sess, nil
}

// Register creates an account; signing in remains a separate step.
func (a *App) Register(ctx context.Context, username, password string) (*session.RegisteredUser, error) {
	return a.session.Register(ctx, username, password)
}

// Logout clears the session, discards any draft and reloads the viewport
// as an anonymous viewer.
func (a *App) Logout(ctx context.Context) {
	a.session.Logout()
	a.draft = nil
	a.loader.Resubscribe(ctx)
}

// HandleMapClick starts a draft at the clicked coordinate. Only signed-in
// users may create pins; anonymous clicks are ignored.
func (a *App) HandleMapClick(lat, lng float64) {
	if !a.session.IsAuthenticated() {
		return
	}
	a.draft = &pins.Draft{Lat: lat, Lng: lng}
}

// Draft returns the pending draft, or nil.
func (a *App) Draft() *pins.Draft { return a.draft }

// CancelDraft discards the pending draft.
func (a *App) CancelDraft() { a.draft = nil }

// SubmitDraft completes the pending draft. The created pin is prepended to
// the store; the server echoes it back even though it starts pending,
// since owners see their own pins.
func (a *App) SubmitDraft(ctx context.Context, title, description string) (pins.Pin, error) {
	if a.draft == nil {
		return pins.Pin{}, errors.New("no draft in progress")
	}

	if err := a.session.EnsureValid(ctx); err != nil {
		a.session.ClearSession()
		a.notifier.Notify("Your session expired. Please sign in again.")
		return pins.Pin{}, err
	}

	pin, err := a.service.Create(ctx, *a.draft, title, description)
	if err != nil {
		if errors.Is(err, apierr.ErrSessionExpired) {
			a.session.ClearSession()
			a.notifier.Notify("Your session expired. Please sign in again.")
		} else {
			a.notifier.Notify("Could not create the pin: " + err.Error())
		}
		return pins.Pin{}, err
	}

	a.store.Prepend(pin)
	a.draft = nil
	return pin, nil
}

// ToggleConfirmation flips the viewer's confirmation on a pin.
func (a *App) ToggleConfirmation(ctx context.Context, id int64) error {
	return a.engine.Toggle(ctx, id)
}

// Module provides the composed application
var Module = fx.Options(
	fx.Provide(
		New,
	),
)
