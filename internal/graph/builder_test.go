package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/geom"
)

func fixture() ([]*core.Drone, []*core.Delivery) {
	drones := []*core.Drone{
		core.NewDrone(1, 5, 1000, 10, core.Pos{X: 0, Y: 0}),
		core.NewDrone(2, 2, 1000, 10, core.Pos{X: 100, Y: 0}),
	}
	deliveries := []*core.Delivery{
		{ID: 101, Location: core.Pos{X: 10, Y: 0}, Weight: 3, Priority: 1},
		{ID: 102, Location: core.Pos{X: 50, Y: 40}, Weight: 1, Priority: 2},
	}
	return drones, deliveries
}

func wall() *core.NoFlyZone {
	return &core.NoFlyZone{ID: 1001, Shape: core.Polygon{
		{X: 3, Y: -5}, {X: 7, Y: -5}, {X: 7, Y: 5}, {X: 3, Y: 5},
	}}
}

func TestBuildWithoutZonesIsComplete(t *testing.T) {
	drones, deliveries := fixture()
	g, err := Build(drones, deliveries, nil, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 4, g.Len())
	assert.Equal(t, 6, g.EdgeCount())
	assert.Equal(t, []core.NodeID{"D1_START", "D2_START", "T101", "T102"}, g.NodeIDs())

	for _, e := range g.Neighbors("D1_START") {
		if e.To == "T101" {
			assert.InDelta(t, 10, e.Cost, 1e-9)
		}
	}
}

func TestBuildPrunesPermanentZone(t *testing.T) {
	drones, deliveries := fixture()
	g, err := Build(drones, deliveries, []*core.NoFlyZone{wall()}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 4, g.Len(), "no detour nodes requested")
	assert.False(t, g.HasEdge("D1_START", "T101"))
	assert.True(t, g.HasEdge("D2_START", "T101"))
}

func TestBuildKeepsWindowedZoneEdges(t *testing.T) {
	drones, deliveries := fixture()
	z := wall()
	z.Active = &core.Window{Start: core.Clock(9, 0), End: core.Clock(10, 0)}

	g, err := Build(drones, deliveries, []*core.NoFlyZone{z}, Options{})
	require.NoError(t, err)
	assert.True(t, g.HasEdge("D1_START", "T101"), "time-dependent zones are checked at query time")
}

func TestBuildDetourNodes(t *testing.T) {
	drones, deliveries := fixture()
	z := wall()
	g, err := Build(drones, deliveries, []*core.NoFlyZone{z}, Options{ZoneCorners: true, Waypoints: true, Margin: 2})
	require.NoError(t, err)

	assert.Equal(t, 4+4+4, g.Len())
	for _, id := range g.NodeIDs() {
		n := g.Nodes[id]
		if !n.Detour() {
			continue
		}
		assert.False(t, geom.PointInPolygon(n.Pos, z.Shape), "%s inside zone", id)
	}

	wp, ok := g.Node(core.WaypointID(1001, 0))
	require.True(t, ok)
	assert.Equal(t, core.KindWaypoint, wp.Kind())
	assert.InDelta(t, -7, wp.Pos.Y, 1e-9)
}

func TestBuildDiscardsDetourInsideOtherZone(t *testing.T) {
	z := wall()
	cover := &core.NoFlyZone{ID: 1002, Shape: core.Polygon{
		{X: 0, Y: -20}, {X: 20, Y: -20}, {X: 20, Y: -6}, {X: 0, Y: -6},
	}}
	g, err := Build(nil, nil, []*core.NoFlyZone{z, cover}, Options{Waypoints: true, Margin: 2})
	require.NoError(t, err)

	_, ok := g.Node(core.WaypointID(1001, 0))
	assert.False(t, ok, "bottom waypoint of 1001 falls inside 1002")
	_, ok = g.Node(core.WaypointID(1001, 2))
	assert.True(t, ok)
}

func TestBuildRejectsBadInput(t *testing.T) {
	drones, deliveries := fixture()

	_, err := Build(drones, deliveries, []*core.NoFlyZone{{ID: 9, Shape: core.Polygon{{X: 0, Y: 0}, {X: 1, Y: 1}}}}, DefaultOptions())
	assert.ErrorIs(t, err, core.ErrInvalidPolygon)

	dup := append(drones, core.NewDrone(1, 1, 1, 1, core.Pos{}))
	_, err = Build(dup, deliveries, nil, DefaultOptions())
	assert.ErrorIs(t, err, core.ErrDuplicateID)
}
