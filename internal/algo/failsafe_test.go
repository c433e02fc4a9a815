package algo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/graph"
)

func TestFailSafe_Nominal(t *testing.T) {
	drones, deliveries := createPair()
	s := newSearcher(t, drones, deliveries, nil, graph.Options{})
	rec := &recorder{}

	report, err := NewFailSafe(s, DefaultEnergyModel(), rec).Check(drones[0], 0)
	require.NoError(t, err)
	assert.Equal(t, FailSafeNominal, report.Outcome)
	assert.Empty(t, rec.failsafes)
}

func TestFailSafe_ReturnsHome(t *testing.T) {
	drones := []*core.Drone{core.NewDrone(1, 5, 1000, 10, core.Pos{})}
	drones[0].CurrentBattery = 205
	deliveries := []*core.Delivery{{ID: 101, Location: core.Pos{X: 20, Y: 0}, Weight: 0, Priority: 1}}
	s := newSearcher(t, drones, deliveries, nil, graph.Options{})
	rec := &recorder{}

	res, err := NewAssigner(s, DefaultAssignConfig(), rec).Solve(context.Background(), drones, deliveries)
	require.NoError(t, err)
	assert.Equal(t, core.Assignment{101: 1}, res.Assignment)

	d := drones[0]
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, FailSafeReturned, res.Alerts[0].Outcome)
	assert.InDelta(t, 19.5, res.Alerts[0].BatteryPercent, 1e-9)
	assert.InDelta(t, 10, res.Alerts[0].Energy, 1e-9)
	assert.InDelta(t, 185, d.CurrentBattery, 1e-9)
	assert.Equal(t, core.NodeID("D1_START"), d.LastNode)
	assert.Equal(t, d.Home, d.CurrentPos)
	assert.False(t, d.Busy)
	require.Len(t, rec.failsafes, 1)
	assert.Equal(t, FailSafeReturned, rec.failsafes[0].Outcome)
}

func TestFailSafe_StrandedLeavesStateUnchanged(t *testing.T) {
	drones := []*core.Drone{core.NewDrone(1, 5, 100, 10, core.Pos{})}
	deliveries := []*core.Delivery{{ID: 101, Location: core.Pos{X: 170, Y: 0}, Weight: 0, Priority: 1}}
	s := newSearcher(t, drones, deliveries, nil, graph.Options{})

	res, err := NewAssigner(s, DefaultAssignConfig(), nil).Solve(context.Background(), drones, deliveries)
	require.NoError(t, err)

	d := drones[0]
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, FailSafeStranded, res.Alerts[0].Outcome)
	assert.NotEmpty(t, res.Alerts[0].Reason)
	assert.InDelta(t, 15, d.CurrentBattery, 1e-9)
	assert.Equal(t, core.NodeID("T101"), d.LastNode)
	assert.Len(t, d.BatteryHistory, 2)
}

func TestFailSafe_NoPathHome(t *testing.T) {
	drones := []*core.Drone{core.NewDrone(1, 5, 100, 10, core.Pos{})}
	deliveries := []*core.Delivery{{ID: 101, Location: core.Pos{X: 10, Y: 0}, Weight: 0, Priority: 1}}
	zones := []*core.NoFlyZone{createWall(&core.Window{Start: core.Clock(9, 0), End: core.Clock(10, 0)})}
	s := newSearcher(t, drones, deliveries, zones, graph.Options{})

	d := drones[0]
	d.LastNode = "T101"
	d.CurrentPos = deliveries[0].Location
	d.CurrentBattery = 10

	fs := NewFailSafe(s, DefaultEnergyModel(), nil)
	report, err := fs.Check(d, core.Clock(9, 30))
	require.NoError(t, err)
	assert.Equal(t, FailSafeStranded, report.Outcome)
	assert.False(t, report.Path.Found())
	assert.InDelta(t, 10, d.CurrentBattery, 1e-9)

	reports, err := fs.CheckAll(drones, core.Clock(11, 0))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, FailSafeReturned, reports[0].Outcome)
	assert.InDelta(t, 5, d.CurrentBattery, 1e-9)
}
