// Package viewport reacts to map camera movement and keeps the pin store
// in sync with what the viewer can see.
package viewport

import (
	"github.com/vigilmap/vigil/internal/geo"
)

// Map is the rendering capability the loader drives. It reports the
// visible rectangle, accepts a camera-fit request, and emits an event each
// time the viewport settles after a pan or zoom. The loader performs the
// initial load itself, so implementations only report later settles.
type Map interface {
	// Bounds returns the currently visible rectangle.
	Bounds() geo.Bounds
	// FitBounds animates the camera to the given rectangle.
	FitBounds(b geo.Bounds)
	// OnMoveEnd registers a settle callback and returns its unsubscribe.
	OnMoveEnd(fn func()) (cancel func())
}
