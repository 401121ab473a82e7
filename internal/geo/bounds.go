// Package geo holds the rectangular coordinate math shared by the pin
// services and the viewport loader.
package geo

import (
	"fmt"
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lng float64
}

// Bounds is a geographic rectangle in degrees: west/east bound longitude,
// south/north bound latitude.
type Bounds struct {
	West  float64
	South float64
	East  float64
	North float64
}

// BoundsOf computes the minimal rectangle covering all points. The second
// return is false for an empty input.
func BoundsOf(points []Point) (Bounds, bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		West:  points[0].Lng,
		South: points[0].Lat,
		East:  points[0].Lng,
		North: points[0].Lat,
	}
	for _, p := range points[1:] {
		if p.Lng < b.West {
			b.West = p.Lng
		}
		if p.Lng > b.East {
			b.East = p.Lng
		}
		if p.Lat < b.South {
			b.South = p.Lat
		}
		if p.Lat > b.North {
			b.North = p.Lat
		}
	}
	return b, true
}

// Pad grows the rectangle by the given fraction of its extent in each
// direction.
func (b Bounds) Pad(fraction float64) Bounds {
	dLng := (b.East - b.West) * fraction
	dLat := (b.North - b.South) * fraction
	return Bounds{
		West:  b.West - dLng,
		South: b.South - dLat,
		East:  b.East + dLng,
		North: b.North + dLat,
	}
}

// Query renders the rectangle in the service's in_bbox parameter order:
// west,south,east,north.
func (b Bounds) Query() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.West, b.South, b.East, b.North)
}
