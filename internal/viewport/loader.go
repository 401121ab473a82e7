package viewport

import (
	"context"

	"github.com/vigilmap/vigil/internal/geo"
	"github.com/vigilmap/vigil/internal/logger"
	"github.com/vigilmap/vigil/internal/pins"
	"github.com/vigilmap/vigil/internal/session"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// fitPadding is the fraction added around the pins' bounding rectangle
// when the camera is fitted.
const fitPadding = 0.2

// Loader issues a spatially filtered pin fetch on every viewport settle,
// falls back to an unfiltered fetch when the filtered result is empty, and
// fits the camera to the loaded pins once per attached map.
//
// Loads are stamped with a generation; a response that resolves after a
// newer load has started is discarded rather than applied stale.
type Loader struct {
	service  *pins.Service
	store    *pins.Store
	session  *session.Manager
	notifier pins.Notifier

	m      Map
	cancel func()
	fitted bool
	gen    uint64
}

type LoaderParams struct {
	fx.In

	Service  *pins.Service
	Store    *pins.Store
	Session  *session.Manager
	Notifier pins.Notifier
}

// NewLoader creates a detached loader.
func NewLoader(params LoaderParams) *Loader {
	return &Loader{
		service:  params.Service,
		store:    params.Store,
		session:  params.Session,
		notifier: params.Notifier,
	}
}

// Attach binds the loader to a map instance, performs the initial load and
// subscribes to settle events. The one-time camera fit is armed per
// attached map.
func (l *Loader) Attach(ctx context.Context, m Map) {
	l.Detach()
	l.m = m
	l.fitted = false
	l.subscribe(ctx)
}

// Resubscribe re-establishes the event subscription after the acting
// identity changed: the authenticated and anonymous identities may see
// different pin sets, so the current viewport is reloaded under the new
// one. The camera fit state carries over; fitting happens at most once
// per attached map, not per identity.
func (l *Loader) Resubscribe(ctx context.Context) {
	if l.m == nil {
		return
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.subscribe(ctx)
}

// Detach drops the map binding and its subscription.
func (l *Loader) Detach() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.m = nil
}

func (l *Loader) subscribe(ctx context.Context) {
	l.Load(ctx)
	l.cancel = l.m.OnMoveEnd(func() {
		l.Load(ctx)
	})
}

// Load fetches the pins for the current viewport and replaces the store's
// contents. A fetch failure surfaces a notice and leaves the store
// untouched; the next settle event retries naturally.
func (l *Loader) Load(ctx context.Context) {
	if l.m == nil {
		return
	}
	l.gen++
	gen := l.gen

	usesAuth := l.session.IsAuthenticated()
	bounds := l.m.Bounds()

	list, err := l.service.List(ctx, usesAuth, pins.ListOptions{BBox: &bounds})
	if err != nil {
		logger.Error("viewport pin fetch failed", zap.Error(err))
		l.notifier.Notify("Could not load pins for the visible area.")
		return
	}

	// The filter can exclude everything while the collection is non-empty
	// globally, e.g. a viewer starting zoomed into an empty area. Recover
	// with an unrestricted fetch.
	if len(list) == 0 {
		list, err = l.service.List(ctx, usesAuth, pins.ListOptions{})
		if err != nil {
			logger.Error("fallback pin fetch failed", zap.Error(err))
			l.notifier.Notify("Could not load pins.")
			return
		}
		logger.Debug("viewport empty, fallback to full list",
			zap.Int("count", len(list)), zap.Bool("authed", usesAuth))
	}

	if gen != l.gen {
		logger.Debug("discarding stale viewport load", zap.Uint64("gen", gen))
		return
	}

	l.store.ReplaceAll(list)

	if !l.fitted && len(list) > 0 {
		points := make([]geo.Point, 0, len(list))
		for _, p := range list {
			points = append(points, geo.Point{Lat: p.Lat, Lng: p.Lng})
		}
		if b, ok := geo.BoundsOf(points); ok {
			l.m.FitBounds(b.Pad(fitPadding))
			l.fitted = true
		}
	}
}
