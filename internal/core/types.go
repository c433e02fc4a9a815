// Package core defines the domain records shared by the fleet planner:
// drones, deliveries, no-fly zones and the routing graph built from them.
package core

import (
	"fmt"
	"math"
)

// Pos is a point in the 2D airspace plane.
type Pos struct {
	X, Y float64
}

// Dist returns the Euclidean distance between two positions.
func (p Pos) Dist(q Pos) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

func (p Pos) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Polygon is an ordered vertex list. The closing edge from the last vertex
// back to the first is implicit.
type Polygon []Pos

// Validate checks the polygon has at least three vertices.
func (pg Polygon) Validate() error {
	if len(pg) < 3 {
		return fmt.Errorf("%w: %d vertices", ErrInvalidPolygon, len(pg))
	}
	return nil
}

// Edge returns the i-th polygon edge as a segment (a, b).
func (pg Polygon) Edge(i int) (a, b Pos) {
	return pg[i], pg[(i+1)%len(pg)]
}

// SignedArea is positive for counter-clockwise vertex order.
func (pg Polygon) SignedArea() float64 {
	area := 0.0
	for i := range pg {
		a, b := pg.Edge(i)
		area += a.X*b.Y - b.X*a.Y
	}
	return area / 2
}

// Centroid returns the vertex average.
func (pg Polygon) Centroid() Pos {
	var c Pos
	if len(pg) == 0 {
		return c
	}
	for _, p := range pg {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(pg))
	return Pos{X: c.X / n, Y: c.Y / n}
}

// DroneID identifies a drone.
type DroneID int

// DeliveryID identifies a delivery point.
type DeliveryID int

// ZoneID identifies a no-fly zone.
type ZoneID int
