package algo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/graph"
)

func TestSearch_DirectEdgeIsOptimal(t *testing.T) {
	drones, deliveries := createPair()
	s := newSearcher(t, drones, deliveries, nil, graph.Options{})

	path, err := s.Search("D1_START", "T101", 0)
	require.NoError(t, err)
	require.True(t, path.Found())
	assert.Equal(t, []core.NodeID{"D1_START", "T101"}, path.Nodes)
	assert.InDelta(t, 10, path.Cost, 1e-9)

	path, err = s.Search("D2_START", "T101", 0)
	require.NoError(t, err)
	assert.InDelta(t, 90, path.Cost, 1e-9)
}

func TestSearch_StartEqualsGoal(t *testing.T) {
	drones, deliveries := createPair()
	s := newSearcher(t, drones, deliveries, nil, graph.Options{})

	path, err := s.Search("T101", "T101", 0)
	require.NoError(t, err)
	assert.Equal(t, []core.NodeID{"T101"}, path.Nodes)
	assert.Zero(t, path.Cost)
}

func TestSearch_Obstructed(t *testing.T) {
	drones := []*core.Drone{core.NewDrone(1, 5, 1000, 10, core.Pos{})}
	deliveries := []*core.Delivery{{ID: 101, Location: core.Pos{X: 10, Y: 0}, Weight: 1, Priority: 1}}
	zones := []*core.NoFlyZone{createWall(nil)}

	bare := newSearcher(t, drones, deliveries, zones, graph.Options{})
	path, err := bare.Search("D1_START", "T101", 0)
	require.NoError(t, err)
	assert.False(t, path.Found())
	assert.True(t, math.IsInf(path.Cost, 1))

	detour := newSearcher(t, drones, deliveries, zones, graph.Options{ZoneCorners: true, Waypoints: true, Margin: 2})
	path, err = detour.Search("D1_START", "T101", 0)
	require.NoError(t, err)
	require.True(t, path.Found())
	assert.GreaterOrEqual(t, path.Cost, 10.0)
	assert.Greater(t, len(path.Nodes), 2)
	assert.Equal(t, core.NodeID("D1_START"), path.Nodes[0])
	assert.Equal(t, core.NodeID("T101"), path.Nodes[len(path.Nodes)-1])

	for i := 1; i < len(path.Nodes); i++ {
		assert.True(t, detour.EdgeLegal(path.Nodes[i-1], path.Nodes[i], 0))
	}
}

func TestSearch_TimeGatedZone(t *testing.T) {
	drones := []*core.Drone{core.NewDrone(1, 5, 1000, 10, core.Pos{})}
	deliveries := []*core.Delivery{{ID: 101, Location: core.Pos{X: 10, Y: 0}, Weight: 1, Priority: 1}}
	zones := []*core.NoFlyZone{createWall(&core.Window{Start: core.Clock(9, 0), End: core.Clock(10, 0)})}
	s := newSearcher(t, drones, deliveries, zones, graph.Options{})

	tests := []struct {
		name  string
		now   core.ClockTime
		legal bool
	}{
		{"before window", core.Clock(8, 59), true},
		{"window start", core.Clock(9, 0), false},
		{"inside window", core.Clock(9, 30), false},
		{"window end", core.Clock(10, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.legal, s.EdgeLegal("D1_START", "T101", tt.now))

			path, err := s.Search("D1_START", "T101", tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.legal, path.Found())
		})
	}
}

func TestSearch_UnknownNode(t *testing.T) {
	drones, deliveries := createPair()
	s := newSearcher(t, drones, deliveries, nil, graph.Options{})

	_, err := s.Search("D9_START", "T101", 0)
	assert.ErrorIs(t, err, core.ErrUnknownNode)
	_, err = s.Search("D1_START", "T999", 0)
	assert.ErrorIs(t, err, core.ErrUnknownNode)
}

func TestSearch_ReportsToObserver(t *testing.T) {
	drones, deliveries := createPair()
	g, err := graph.Build(drones, deliveries, nil, graph.Options{})
	require.NoError(t, err)
	rec := &recorder{}
	s := NewSearcher(g, nil, rec)

	_, err = s.Search("D1_START", "T101", core.Clock(12, 0))
	require.NoError(t, err)
	require.Len(t, rec.searches, 1)
	assert.True(t, rec.searches[0].Found)
	assert.Equal(t, core.Clock(12, 0), rec.searches[0].Now)
}

func TestEnergyModel(t *testing.T) {
	m := DefaultEnergyModel()
	d := core.NewDrone(1, 5, 1000, 10, core.Pos{})

	assert.InDelta(t, 6.5, m.Usage(10, d, 3), 1e-9)
	assert.InDelta(t, 5, m.Usage(10, d, 0), 1e-9)
	assert.InDelta(t, 7.5, m.Usage(10, d, 5), 1e-9)
	assert.InDelta(t, 5, m.ReturnUsage(10), 1e-9)
	assert.InDelta(t, 2000, m.Range(d, 0), 1e-9)

	free := EnergyModel{}
	assert.True(t, math.IsInf(free.Range(d, 1), 1))
}
