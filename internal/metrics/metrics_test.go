package metrics

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/dronefleet/internal/algo"
	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/graph"
)

func TestObserverCountsEvents(t *testing.T) {
	o := NewObserver()

	o.OnSearch(algo.SearchEvent{Found: true, Expanded: 3})
	o.OnSearch(algo.SearchEvent{Found: false, Expanded: 7})
	o.OnCommit(algo.CommitEvent{Drone: 1, Energy: 6.5, BatteryPercent: 99.35})
	o.OnRound(algo.RoundEvent{Round: 1, Commits: 1, Remaining: 2})
	o.OnFailSafe(algo.FailSafeEvent{Drone: 2, Outcome: algo.FailSafeStranded, BatteryPercent: 12})
	o.OnGeneration(algo.GenerationEvent{Generation: 1, Best: 8, Mean: -40})

	assert.Equal(t, 1.0, testutil.ToFloat64(o.Searches.WithLabelValues("found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.Searches.WithLabelValues("no_path")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.Assignments.WithLabelValues("1")))
	assert.InDelta(t, 6.5, testutil.ToFloat64(o.EnergyUsed.WithLabelValues("1")), 1e-9)
	assert.InDelta(t, 99.35, testutil.ToFloat64(o.Battery.WithLabelValues("1")), 1e-9)
	assert.Equal(t, 12.0, testutil.ToFloat64(o.Battery.WithLabelValues("2")))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.Remaining))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.FailSafe.WithLabelValues("stranded")))
	assert.Equal(t, 8.0, testutil.ToFloat64(o.BestFitness))
	assert.Equal(t, 2, testutil.CollectAndCount(o.Searches))

	totals, err := o.Totals()
	require.NoError(t, err)
	assert.Equal(t, 2.0, totals["dronefleet_search_expanded_nodes"])
	assert.Equal(t, 1.0, totals["dronefleet_rounds_total"])
}

func TestObserverWithAssigner(t *testing.T) {
	drones := []*core.Drone{
		core.NewDrone(1, 5, 1000, 10, core.Pos{}),
		core.NewDrone(2, 2, 1000, 10, core.Pos{X: 100, Y: 0}),
	}
	deliveries := []*core.Delivery{{ID: 101, Location: core.Pos{X: 10, Y: 0}, Weight: 3, Priority: 1}}
	g, err := graph.Build(drones, deliveries, nil, graph.DefaultOptions())
	require.NoError(t, err)

	o := NewObserver()
	s := algo.NewSearcher(g, nil, o)
	_, err = algo.NewAssigner(s, algo.DefaultAssignConfig(), o).Solve(context.Background(), drones, deliveries)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(o.Assignments.WithLabelValues("1")))
	assert.Equal(t, 0.0, testutil.ToFloat64(o.Remaining))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.Searches.WithLabelValues("found")), "drone 2 is too weak to be searched")

	var buf bytes.Buffer
	require.NoError(t, o.WriteText(&buf))
	assert.Contains(t, buf.String(), `dronefleet_assignments_total{drone="1"} 1`)
}

func TestRegisterRuntimeIsIdempotent(t *testing.T) {
	o := NewObserver()
	assert.NotPanics(t, func() {
		o.RegisterRuntime()
		o.RegisterRuntime()
	})
}
