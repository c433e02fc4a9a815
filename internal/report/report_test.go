package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/dronefleet/internal/algo"
	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/graph"
	"github.com/elektrokombinacija/dronefleet/internal/scenario"
)

func pairScenario() *scenario.Scenario {
	return &scenario.Scenario{
		Name: "pair",
		Drones: []*core.Drone{
			core.NewDrone(1, 5, 1000, 10, core.Pos{}),
			core.NewDrone(2, 2, 1000, 10, core.Pos{X: 100, Y: 0}),
		},
		Deliveries: []*core.Delivery{
			{ID: 101, Location: core.Pos{X: 10, Y: 0}, Weight: 3, Priority: 1},
			{ID: 102, Location: core.Pos{X: 10, Y: 10}, Weight: 9, Priority: 2},
		},
	}
}

func run(t *testing.T, s *scenario.Scenario) (*Report, *algo.Searcher, *algo.AssignResult) {
	t.Helper()
	g, err := graph.Build(s.Drones, s.Deliveries, s.Zones, graph.DefaultOptions())
	require.NoError(t, err)
	searcher := algo.NewSearcher(g, s.Zones, nil)
	now := core.Clock(10, 0)
	cfg := algo.DefaultAssignConfig()
	cfg.Now = now
	res, err := algo.NewAssigner(searcher, cfg, nil).Solve(context.Background(), s.Drones, s.Deliveries)
	require.NoError(t, err)
	return Build(s, g, now, res), searcher, res
}

func TestBuild(t *testing.T) {
	r, _, _ := run(t, pairScenario())

	assert.Equal(t, "pair", r.Scenario)
	assert.Equal(t, "10:00", r.Now)
	require.Len(t, r.Routes, 1)
	assert.Equal(t, core.DeliveryID(101), r.Routes[0].Delivery)
	assert.Equal(t, core.DroneID(1), r.Routes[0].Drone)
	assert.InDelta(t, 10, r.Routes[0].Distance, 1e-9)
	assert.InDelta(t, 1, r.Routes[0].Extension, 1e-9)
	assert.Equal(t, []core.DeliveryID{102}, r.Unassigned)

	assert.Equal(t, 2, r.Summary.Deliveries)
	assert.Equal(t, 1, r.Summary.Served)
	assert.InDelta(t, 0.5, r.Summary.ServedRate, 1e-9)
	assert.InDelta(t, 10, r.Summary.DistancePerServed, 1e-9)
	assert.InDelta(t, 6.5, r.Summary.TotalEnergy, 1e-9)

	require.Len(t, r.Drones, 2)
	assert.InDelta(t, 993.5, r.Drones[0].Battery, 1e-9)
	assert.Equal(t, []core.DeliveryID{101}, r.Drones[0].Deliveries)
	assert.Len(t, r.Drones[0].History, 2)
	assert.Empty(t, r.Drones[1].Deliveries)
}

func TestExtensionRatio(t *testing.T) {
	assert.Equal(t, 1.0, ExtensionRatio(0, 0))
	assert.Equal(t, 1.5, ExtensionRatio(15, 10))
}

func TestDetourExtension(t *testing.T) {
	s := &scenario.Scenario{
		Name:       "wall",
		Drones:     []*core.Drone{core.NewDrone(1, 5, 1000, 10, core.Pos{})},
		Deliveries: []*core.Delivery{{ID: 101, Location: core.Pos{X: 10, Y: 0}, Weight: 1, Priority: 1}},
		Zones: []*core.NoFlyZone{{ID: 1001, Shape: core.Polygon{
			{X: 3, Y: -5}, {X: 7, Y: -5}, {X: 7, Y: 5}, {X: 3, Y: 5},
		}}},
	}
	g, err := graph.Build(s.Drones, s.Deliveries, s.Zones, graph.Options{ZoneCorners: true, Waypoints: true, Margin: 2})
	require.NoError(t, err)
	res, err := algo.NewAssigner(algo.NewSearcher(g, s.Zones, nil), algo.DefaultAssignConfig(), nil).
		Solve(context.Background(), s.Drones, s.Deliveries)
	require.NoError(t, err)

	r := Build(s, g, 0, res)
	require.Len(t, r.Routes, 1)
	assert.InDelta(t, 10, r.Routes[0].Straight, 1e-9)
	assert.Greater(t, r.Routes[0].Extension, 1.0)
	assert.Greater(t, r.Summary.MeanExtension, 1.0)
}

func TestAddGenetic(t *testing.T) {
	s := pairScenario()
	r, searcher, res := run(t, s)

	cfg := algo.DefaultGeneticConfig()
	cfg.Seed = 5
	gr, err := algo.NewOptimizer(searcher, cfg, nil).Run(context.Background(), s.Drones, s.Deliveries)
	require.NoError(t, err)

	r.AddGenetic(gr, res.Assignment)
	require.NotNil(t, r.Genetic)
	assert.Equal(t, gr.Fitness, r.Genetic.Fitness)
	assert.Contains(t, r.Genetic.Infeasible, core.DeliveryID(102), "nobody can lift 9kg")
	assert.GreaterOrEqual(t, r.Genetic.Agreement, 0.0)
	assert.LessOrEqual(t, r.Genetic.Agreement, 1.0)
}

func TestWriters(t *testing.T) {
	r, _, _ := run(t, pairScenario())
	r.AddPhase("build", 2*time.Millisecond)

	var text bytes.Buffer
	require.NoError(t, r.WriteText(&text))
	assert.Contains(t, text.String(), "D1_START -> T101")
	assert.Contains(t, text.String(), "Served 1/2")
	assert.Contains(t, text.String(), "Unassigned: 102")
	assert.Contains(t, text.String(), "build")

	var out bytes.Buffer
	require.NoError(t, r.WriteCSV(&out))
	records, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "delivery", records[0][1])
	assert.Equal(t, []string{"101", "1", "1"}, records[1][1:4])

	var doc bytes.Buffer
	require.NoError(t, r.WriteYAML(&doc))
	var back map[string]any
	require.NoError(t, yaml.Unmarshal(doc.Bytes(), &back))
	assert.Equal(t, "pair", back["scenario"])
	assert.Equal(t, r.RunID.String(), back["run_id"])
}
