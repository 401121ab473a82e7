package pins

import (
	"context"
	"errors"

	"github.com/vigilmap/vigil/internal/apierr"
	"github.com/vigilmap/vigil/internal/logger"
	"github.com/vigilmap/vigil/internal/session"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Notifier surfaces non-fatal, user-visible notices.
type Notifier interface {
	Notify(msg string)
}

// Engine applies optimistic confirmation toggles: the local pin flips
// immediately, then the network result either reconciles it with the
// server's authoritative record or rolls it back to the pre-toggle
// snapshot.
//
// Each toggle carries a per-pin attempt number. A toggle issued while an
// earlier one is still in flight supersedes it: the stale attempt's
// reconcile or rollback is discarded instead of clobbering newer state.
type Engine struct {
	store    *Store
	service  *Service
	session  *session.Manager
	notifier Notifier

	attempts map[int64]uint64
}

type EngineParams struct {
	fx.In

	Store    *Store
	Service  *Service
	Session  *session.Manager
	Notifier Notifier
}

// NewEngine creates a confirmation engine.
func NewEngine(params EngineParams) *Engine {
	return &Engine{
		store:    params.Store,
		service:  params.Service,
		session:  params.Session,
		notifier: params.Notifier,
		attempts: make(map[int64]uint64),
	}
}

// Toggle confirms or unconfirms the pin with the given id for the current
// viewer. Preconditions are checked before any I/O: a session must exist
// (reported to the user otherwise), the viewer must not own the pin, and
// the pin must be active. The latter two are silent no-ops.
func (e *Engine) Toggle(ctx context.Context, id int64) error {
	sess := e.session.Current()
	if sess == nil {
		e.notifier.Notify("You must be signed in to confirm pins.")
		return nil
	}

	pin, ok := e.store.Get(id)
	if !ok {
		return nil
	}
	if pin.OwnedBy(sess.UserID) || !pin.Confirmable() {
		return nil
	}

	snapshot := pin
	adding := !pin.UserConfirmed
	attempt := e.beginAttempt(id)

	// Optimistic step: flip locally before the network call resolves.
	e.store.Patch(id, func(p *Pin) {
		delta := 1
		if !adding {
			delta = -1
		}
		count := p.ConfirmationsCount + delta
		if count < 0 {
			count = 0
		}
		p.UserConfirmed = adding
		p.ConfirmationsCount = count
		p.Color = TierForCount(count)
	})

	updated, err := e.send(ctx, id, adding)
	if err != nil {
		if e.current(id, attempt) {
			e.store.Set(snapshot)
		}
		if errors.Is(err, apierr.ErrSessionExpired) {
			e.session.ClearSession()
			e.notifier.Notify("Your session expired. Please sign in again.")
		} else {
			logger.Error("confirmation toggle failed", zap.Int64("pin", id), zap.Error(err))
			e.notifier.Notify("Could not update the confirmation: " + err.Error())
		}
		return err
	}

	// Reconcile: the server owns count and tier, which guards against
	// concurrent confirmations from other viewers.
	if e.current(id, attempt) {
		e.store.Set(updated)
	}
	return nil
}

func (e *Engine) send(ctx context.Context, id int64, adding bool) (Pin, error) {
	if err := e.session.EnsureValid(ctx); err != nil {
		return Pin{}, err
	}
	if adding {
		return e.service.Confirm(ctx, id)
	}
	return e.service.Unconfirm(ctx, id)
}

func (e *Engine) beginAttempt(id int64) uint64 {
	e.attempts[id]++
	return e.attempts[id]
}

func (e *Engine) current(id int64, attempt uint64) bool {
	return e.attempts[id] == attempt
}
