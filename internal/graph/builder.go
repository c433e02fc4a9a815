// Package graph builds the routing graph over drone starts, delivery points
// and optional detour points around no-fly zones.
package graph

import (
	"fmt"

	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/geom"
)

// DefaultMargin is the distance detour points keep from zone boundaries.
const DefaultMargin = 2.0

// Options controls which detour nodes the builder emits.
type Options struct {
	ZoneCorners bool    // one node outside each zone vertex
	Waypoints   bool    // one node outside each zone edge midpoint
	Margin      float64 // offset from the boundary
}

// DefaultOptions emits edge waypoints only.
func DefaultOptions() Options {
	return Options{Waypoints: true, Margin: DefaultMargin}
}

// Build creates the node set and the time-independent edge baseline. An
// edge is dropped only when a permanently active zone blocks it; zones with
// an activity window are left for the search to check at query time.
func Build(drones []*core.Drone, deliveries []*core.Delivery, zones []*core.NoFlyZone, opts Options) (*core.Graph, error) {
	for _, z := range zones {
		if err := z.Validate(); err != nil {
			return nil, err
		}
	}
	if opts.Margin <= 0 {
		opts.Margin = DefaultMargin
	}

	g := core.NewGraph()

	for _, d := range drones {
		n := &core.Node{ID: d.StartNode(), Pos: d.Home, Origin: core.VehicleStart{Drone: d.ID}}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("drone %d: %w", d.ID, err)
		}
	}
	for _, dl := range deliveries {
		n := &core.Node{ID: dl.Node(), Pos: dl.Location, Origin: core.TaskSite{Delivery: dl.ID}}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("delivery %d: %w", dl.ID, err)
		}
	}

	permanent := permanentZones(zones)
	for _, z := range zones {
		if err := addDetours(g, z, permanent, opts); err != nil {
			return nil, err
		}
	}

	ids := g.NodeIDs()
	for i := 0; i < len(ids); i++ {
		a := g.Nodes[ids[i]]
		for j := i + 1; j < len(ids); j++ {
			b := g.Nodes[ids[j]]
			if Blocked(a.Pos, b.Pos, permanent) {
				continue
			}
			g.AddEdge(a.ID, b.ID, a.Pos.Dist(b.Pos))
		}
	}

	return g, nil
}

// Blocked reports whether any of the zones crosses segment ab.
func Blocked(a, b core.Pos, zones []*core.NoFlyZone) bool {
	for _, z := range zones {
		if geom.SegmentCrossesPolygon(a, b, z.Shape) {
			return true
		}
	}
	return false
}

// InsideAny reports whether p lies in any of the zones.
func InsideAny(p core.Pos, zones []*core.NoFlyZone) bool {
	for _, z := range zones {
		if geom.PointInPolygon(p, z.Shape) {
			return true
		}
	}
	return false
}

func permanentZones(zones []*core.NoFlyZone) []*core.NoFlyZone {
	var out []*core.NoFlyZone
	for _, z := range zones {
		if z.Permanent() {
			out = append(out, z)
		}
	}
	return out
}

func addDetours(g *core.Graph, z *core.NoFlyZone, permanent []*core.NoFlyZone, opts Options) error {
	// Offset points that still land inside a zone are discarded.
	usable := func(p core.Pos) bool {
		return !geom.PointInPolygon(p, z.Shape) && !InsideAny(p, permanent)
	}

	if opts.ZoneCorners {
		for i := range z.Shape {
			p := geom.CornerWaypoint(z.Shape, i, opts.Margin)
			if !usable(p) {
				continue
			}
			n := &core.Node{ID: core.ZoneCornerID(z.ID, i), Pos: p, Origin: core.ZoneCorner{Zone: z.ID, Vertex: i}}
			if err := g.AddNode(n); err != nil {
				return fmt.Errorf("zone %d: %w", z.ID, err)
			}
		}
	}
	if opts.Waypoints {
		for i := range z.Shape {
			p := geom.EdgeWaypoint(z.Shape, i, opts.Margin)
			if !usable(p) {
				continue
			}
			n := &core.Node{ID: core.WaypointID(z.ID, i), Pos: p, Origin: core.Waypoint{Zone: z.ID, Edge: i}}
			if err := g.AddNode(n); err != nil {
				return fmt.Errorf("zone %d: %w", z.ID, err)
			}
		}
	}
	return nil
}
