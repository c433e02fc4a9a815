package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/dronefleet/internal/algo"
	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/scenario"
)

// createReplay builds one drone flying home -> (10,0) -> (10,10).
func createReplay(t *testing.T) *State {
	t.Helper()

	d := core.NewDrone(1, 5, 100, 10, core.Pos{})
	s := &scenario.Scenario{
		Name:   "replay",
		Width:  20,
		Height: 20,
		Drones: []*core.Drone{d},
		Deliveries: []*core.Delivery{
			{ID: 101, Location: core.Pos{X: 10}, Weight: 1, Priority: 1},
			{ID: 102, Location: core.Pos{X: 10, Y: 10}, Weight: 1, Priority: 1},
		},
	}

	g := core.NewGraph()
	require.NoError(t, g.AddNode(&core.Node{ID: d.StartNode(), Pos: d.Home, Origin: core.VehicleStart{Drone: 1}}))
	require.NoError(t, g.AddNode(&core.Node{ID: core.TaskNodeID(101), Pos: core.Pos{X: 10}, Origin: core.TaskSite{Delivery: 101}}))
	require.NoError(t, g.AddNode(&core.Node{ID: core.TaskNodeID(102), Pos: core.Pos{X: 10, Y: 10}, Origin: core.TaskSite{Delivery: 102}}))

	res := &algo.AssignResult{
		Assignment: core.Assignment{101: 1, 102: 1},
		Routes: map[core.DeliveryID]algo.Route{
			101: {Drone: 1, Delivery: 101, Path: core.Path{Nodes: []core.NodeID{"D1_START", "T101"}, Cost: 10}, Energy: 20},
			102: {Drone: 1, Delivery: 102, Path: core.Path{Nodes: []core.NodeID{"T101", "T102"}, Cost: 10}, Energy: 30},
		},
		Order: []core.DeliveryID{101, 102},
	}
	return NewState(s, g, res, core.Clock(10, 0))
}

func TestState_PositionsFollowPlayback(t *testing.T) {
	st := createReplay(t)
	assert.Equal(t, 2, st.Steps())

	assert.Equal(t, core.Pos{}, st.CurrentPositions()[1])

	st.Playback.SetPosition(0.5)
	assert.Equal(t, core.Pos{X: 5}, st.CurrentPositions()[1])

	st.Playback.SetPosition(1)
	assert.Equal(t, core.Pos{X: 10}, st.CurrentPositions()[1])

	st.Playback.SetPosition(1.25)
	assert.Equal(t, core.Pos{X: 10, Y: 2.5}, st.CurrentPositions()[1])

	st.Playback.SetPosition(2)
	assert.Equal(t, core.Pos{X: 10, Y: 10}, st.CurrentPositions()[1])
}

func TestState_PathHistory(t *testing.T) {
	st := createReplay(t)
	assert.Empty(t, st.PathHistory(1))

	st.Playback.SetPosition(1.5)
	assert.Equal(t, []core.Pos{{}, {X: 10}, {X: 10, Y: 5}}, st.PathHistory(1))
	assert.Empty(t, st.PathHistory(2))
}

func TestState_BatteryAndServed(t *testing.T) {
	st := createReplay(t)
	assert.InDelta(t, 100.0, st.BatteryPercent(1), 1e-9)
	assert.Empty(t, st.Served())

	st.Playback.SetPosition(1.9)
	assert.InDelta(t, 80.0, st.BatteryPercent(1), 1e-9)
	assert.Equal(t, []core.DeliveryID{101}, st.Served())

	st.Playback.SetPosition(2)
	assert.InDelta(t, 50.0, st.BatteryPercent(1), 1e-9)
	assert.Equal(t, []core.DeliveryID{101, 102}, st.Served())
	assert.Zero(t, st.BatteryPercent(9))
}

func TestState_ZoneActive(t *testing.T) {
	st := createReplay(t)
	w, err := core.ParseWindow("09:30", "10:30")
	require.NoError(t, err)

	assert.True(t, st.ZoneActive(&core.NoFlyZone{ID: 1}))
	assert.True(t, st.ZoneActive(&core.NoFlyZone{ID: 2, Active: &w}))

	st.Now = core.Clock(11, 0)
	assert.False(t, st.ZoneActive(&core.NoFlyZone{ID: 2, Active: &w}))
}

func TestPlayback_Steps(t *testing.T) {
	p := NewPlaybackState(3)

	p.StepForward()
	assert.Equal(t, 1.0, p.Position)
	p.SetPosition(1.4)
	p.StepForward()
	assert.Equal(t, 2.0, p.Position)
	p.StepBack()
	assert.Equal(t, 1.0, p.Position)
	p.SetPosition(1.4)
	p.StepBack()
	assert.Equal(t, 1.0, p.Position)

	p.SetPosition(-3)
	assert.Zero(t, p.Position)
	p.StepBack()
	assert.Zero(t, p.Position)
	p.SetPosition(9)
	assert.Equal(t, 3.0, p.Position)
	assert.Equal(t, 1.0, p.Progress())
}

func TestPlayback_AdvanceStopsAtEnd(t *testing.T) {
	p := NewPlaybackState(2)
	p.SetSpeed(4)
	p.TogglePlay()
	require.True(t, p.Playing)

	p.advanceBy(250 * time.Millisecond)
	assert.InDelta(t, 1.0, p.Position, 1e-9)

	p.advanceBy(time.Second)
	assert.Equal(t, 2.0, p.Position)
	assert.False(t, p.Playing)

	p.TogglePlay()
	assert.Zero(t, p.Position, "replay restarts from the beginning")
}

func TestPlayback_SpeedClamped(t *testing.T) {
	p := NewPlaybackState(1)
	p.SetSpeed(100)
	assert.Equal(t, 10.0, p.Speed)
	p.SetSpeed(0)
	assert.Equal(t, 0.1, p.Speed)
	assert.Zero(t, NewPlaybackState(0).Progress())
}

func TestEventLog_Until(t *testing.T) {
	l := NewEventLog()
	l.Add(Event{Step: 1, Text: "a"})
	l.Add(Event{Step: 1, Text: "b"})
	l.Add(Event{Step: 2, Text: "c"})

	assert.Empty(t, l.Until(0))
	assert.Len(t, l.Until(1), 2)
	assert.Len(t, l.Until(5), 3)
	assert.Equal(t, 3, l.Len())
}
