// Package geom implements the planar predicates that decide which straight
// flights are legal: point-in-polygon, segment intersection and
// segment-polygon crossing.
package geom

import (
	"math"

	"github.com/elektrokombinacija/dronefleet/internal/core"
)

// Epsilon is the tolerance used for collinearity and boundary tests.
const Epsilon = 1e-9

// Orientation returns +1 if a->b->c turns counter-clockwise, -1 if
// clockwise and 0 if the three points are collinear.
func Orientation(a, b, c core.Pos) int {
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	switch {
	case cross > Epsilon:
		return 1
	case cross < -Epsilon:
		return -1
	default:
		return 0
	}
}

// withinBox reports whether p lies in the bounding box of segment ab.
func withinBox(p, a, b core.Pos) bool {
	return p.X >= math.Min(a.X, b.X)-Epsilon && p.X <= math.Max(a.X, b.X)+Epsilon &&
		p.Y >= math.Min(a.Y, b.Y)-Epsilon && p.Y <= math.Max(a.Y, b.Y)+Epsilon
}

// PointOnSegment reports whether p lies on segment ab.
func PointOnSegment(p, a, b core.Pos) bool {
	return Orientation(a, b, p) == 0 && withinBox(p, a, b)
}

// SegmentsIntersect reports whether segments a1a2 and b1b2 share a point.
// Proper crossings and touching endpoints both count.
func SegmentsIntersect(a1, a2, b1, b2 core.Pos) bool {
	o1 := Orientation(a1, a2, b1)
	o2 := Orientation(a1, a2, b2)
	o3 := Orientation(b1, b2, a1)
	o4 := Orientation(b1, b2, a2)

	if o1 != o2 && o3 != o4 && o1 != 0 && o2 != 0 && o3 != 0 && o4 != 0 {
		return true
	}

	// Collinear and touching cases.
	if o1 == 0 && withinBox(b1, a1, a2) {
		return true
	}
	if o2 == 0 && withinBox(b2, a1, a2) {
		return true
	}
	if o3 == 0 && withinBox(a1, b1, b2) {
		return true
	}
	if o4 == 0 && withinBox(a2, b1, b2) {
		return true
	}
	return false
}

// PointInPolygon is a ray-casting parity test. Points on the boundary are
// always reported inside.
func PointInPolygon(p core.Pos, pg core.Polygon) bool {
	n := len(pg)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a, b := pg.Edge(i)
		if PointOnSegment(p, a, b) {
			return true
		}
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := pg[i], pg[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// SegmentCrossesPolygon reports whether the flight p1->p2 enters the
// polygon: either endpoint inside, or the segment meets any edge. Grazing a
// vertex counts as crossing.
func SegmentCrossesPolygon(p1, p2 core.Pos, pg core.Polygon) bool {
	if len(pg) < 3 {
		return false
	}
	if !Bounds(pg).Overlaps(SegmentBounds(p1, p2)) {
		return false
	}
	if PointInPolygon(p1, pg) || PointInPolygon(p2, pg) {
		return true
	}
	for i := range pg {
		a, b := pg.Edge(i)
		if SegmentsIntersect(p1, p2, a, b) {
			return true
		}
	}
	return false
}
