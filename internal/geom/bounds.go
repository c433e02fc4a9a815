package geom

import (
	"math"

	"github.com/elektrokombinacija/dronefleet/internal/core"
)

// Rect is an axis-aligned bounding box.
type Rect struct {
	Min, Max core.Pos
}

// Bounds returns the bounding box of a polygon.
func Bounds(pg core.Polygon) Rect {
	r := Rect{
		Min: core.Pos{X: math.Inf(1), Y: math.Inf(1)},
		Max: core.Pos{X: math.Inf(-1), Y: math.Inf(-1)},
	}
	for _, p := range pg {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r
}

// SegmentBounds returns the bounding box of segment ab.
func SegmentBounds(a, b core.Pos) Rect {
	return Rect{
		Min: core.Pos{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: core.Pos{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// Overlaps reports whether two boxes share any point.
func (r Rect) Overlaps(o Rect) bool {
	return r.Min.X <= o.Max.X+Epsilon && o.Min.X <= r.Max.X+Epsilon &&
		r.Min.Y <= o.Max.Y+Epsilon && o.Min.Y <= r.Max.Y+Epsilon
}

// Union grows r to cover o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: core.Pos{X: math.Min(r.Min.X, o.Min.X), Y: math.Min(r.Min.Y, o.Min.Y)},
		Max: core.Pos{X: math.Max(r.Max.X, o.Max.X), Y: math.Max(r.Max.Y, o.Max.Y)},
	}
}
