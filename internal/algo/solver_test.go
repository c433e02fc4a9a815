package algo

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/graph"
)

// createPair creates the two-drone, one-delivery reference scenario.
func createPair() ([]*core.Drone, []*core.Delivery) {
	drones := []*core.Drone{
		core.NewDrone(1, 5, 1000, 10, core.Pos{X: 0, Y: 0}),
		core.NewDrone(2, 2, 1000, 10, core.Pos{X: 100, Y: 0}),
	}
	deliveries := []*core.Delivery{
		{ID: 101, Location: core.Pos{X: 10, Y: 0}, Weight: 3, Priority: 1},
	}
	return drones, deliveries
}

// createWall creates a zone covering the midpoint of (0,0)-(10,0).
func createWall(active *core.Window) *core.NoFlyZone {
	return &core.NoFlyZone{
		ID: 1001,
		Shape: core.Polygon{
			{X: 3, Y: -5}, {X: 7, Y: -5}, {X: 7, Y: 5}, {X: 3, Y: 5},
		},
		Active: active,
	}
}

// createRandom creates a seeded fleet with tight batteries around one
// permanent zone.
func createRandom(seed uint64) ([]*core.Drone, []*core.Delivery, []*core.NoFlyZone) {
	rng := rand.New(rand.NewPCG(seed, seed))
	pos := func() core.Pos {
		return core.Pos{X: rng.Float64() * 100, Y: rng.Float64() * 100}
	}

	var drones []*core.Drone
	for i := 1; i <= 4; i++ {
		drones = append(drones, core.NewDrone(core.DroneID(i), 2+rng.Float64()*8, 100+rng.Float64()*300, 10, pos()))
	}
	zones := []*core.NoFlyZone{{
		ID:    1001,
		Shape: core.Polygon{{X: 40, Y: 40}, {X: 60, Y: 40}, {X: 60, Y: 60}, {X: 40, Y: 60}},
	}}
	var deliveries []*core.Delivery
	for i := 0; i < 12; i++ {
		deliveries = append(deliveries, &core.Delivery{
			ID:       core.DeliveryID(101 + i),
			Location: pos(),
			Weight:   1 + rng.Float64()*4,
			Priority: 1 + rng.IntN(5),
		})
	}
	return drones, deliveries, zones
}

func newSearcher(t *testing.T, drones []*core.Drone, deliveries []*core.Delivery, zones []*core.NoFlyZone, opts graph.Options) *Searcher {
	t.Helper()
	g, err := graph.Build(drones, deliveries, zones, opts)
	require.NoError(t, err)
	return NewSearcher(g, zones, nil)
}

func cloneFleet(drones []*core.Drone, deliveries []*core.Delivery) ([]*core.Drone, []*core.Delivery) {
	ds := make([]*core.Drone, len(drones))
	for i, d := range drones {
		ds[i] = d.Clone()
	}
	dl := make([]*core.Delivery, len(deliveries))
	for i, d := range deliveries {
		c := *d
		dl[i] = &c
	}
	return ds, dl
}

// recorder keeps every event it sees.
type recorder struct {
	mu          sync.Mutex
	searches    []SearchEvent
	commits     []CommitEvent
	rounds      []RoundEvent
	failsafes   []FailSafeEvent
	generations []GenerationEvent
}

func (r *recorder) OnSearch(ev SearchEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches = append(r.searches, ev)
}

func (r *recorder) OnCommit(ev CommitEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = append(r.commits, ev)
}

func (r *recorder) OnRound(ev RoundEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds = append(r.rounds, ev)
}

func (r *recorder) OnFailSafe(ev FailSafeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failsafes = append(r.failsafes, ev)
}

func (r *recorder) OnGeneration(ev GenerationEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generations = append(r.generations, ev)
}
