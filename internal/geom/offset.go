package geom

import (
	"math"

	"github.com/elektrokombinacija/dronefleet/internal/core"
)

// OutwardNormal returns the unit normal of polygon edge i pointing away
// from the interior, judged by vertex winding.
func OutwardNormal(pg core.Polygon, i int) core.Pos {
	a, b := pg.Edge(i)
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l < Epsilon {
		return core.Pos{}
	}
	// Right-hand normal points outward for counter-clockwise winding.
	n := core.Pos{X: dy / l, Y: -dx / l}
	if pg.SignedArea() < 0 {
		n = core.Pos{X: -n.X, Y: -n.Y}
	}
	return n
}

// EdgeWaypoint returns the midpoint of edge i pushed outward by margin.
func EdgeWaypoint(pg core.Polygon, i int, margin float64) core.Pos {
	a, b := pg.Edge(i)
	n := OutwardNormal(pg, i)
	return core.Pos{
		X: (a.X+b.X)/2 + n.X*margin,
		Y: (a.Y+b.Y)/2 + n.Y*margin,
	}
}

// CornerWaypoint returns vertex i pushed outward by margin along the
// bisector of its two edge normals.
func CornerWaypoint(pg core.Polygon, i int, margin float64) core.Pos {
	prev := (i - 1 + len(pg)) % len(pg)
	n1 := OutwardNormal(pg, prev)
	n2 := OutwardNormal(pg, i)
	dx, dy := n1.X+n2.X, n1.Y+n2.Y
	l := math.Hypot(dx, dy)
	if l < Epsilon {
		dx, dy, l = n2.X, n2.Y, 1
	}
	v := pg[i]
	return core.Pos{X: v.X + dx/l*margin, Y: v.Y + dy/l*margin}
}
