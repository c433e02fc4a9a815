package scenario

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/elektrokombinacija/dronefleet/internal/core"
)

// First ids handed out by the generator.
const (
	FirstDeliveryID = 101
	FirstZoneID     = 1001
)

// Params controls random scenario generation.
type Params struct {
	Drones     int
	Deliveries int
	Zones      int
	Width      float64
	Height     float64

	// DeliveryWindowRate is the share of deliveries given a time window.
	DeliveryWindowRate float64
	// ZoneWindows lets zones draw an activity window; otherwise all zones
	// are permanent.
	ZoneWindows bool

	Seed uint64 // 0 picks a random seed
}

// DefaultParams mirrors the demo scale.
func DefaultParams() Params {
	return Params{Drones: 5, Deliveries: 20, Zones: 2, Width: 1000, Height: 1000, ZoneWindows: true}
}

var (
	zoneStarts = []string{"", "09:30", "10:30"}
	zoneEnds   = []string{"", "11:00", "12:00"}
)

// Generate builds a random scenario. Equal non-zero seeds give equal
// scenarios.
func Generate(p Params) *Scenario {
	seed := p.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	s := &Scenario{
		Name:   fmt.Sprintf("random_%dd_%dt_%dz_%d", p.Drones, p.Deliveries, p.Zones, seed),
		Width:  p.Width,
		Height: p.Height,
		Seed:   seed,
	}

	for i := 0; i < p.Drones; i++ {
		battery := float64(5000 + rng.IntN(15001))
		s.Drones = append(s.Drones, core.NewDrone(
			core.DroneID(i+1),
			round1(uniform(rng, 2, 10)),
			battery,
			round1(uniform(rng, 5, 20)),
			gridPoint(rng, p.Width, p.Height),
		))
	}

	for i := 0; i < p.Deliveries; i++ {
		dl := &core.Delivery{
			ID:       core.DeliveryID(FirstDeliveryID + i),
			Location: gridPoint(rng, p.Width, p.Height),
			Weight:   round1(uniform(rng, 1, 5)),
			Priority: 1 + rng.IntN(5),
		}
		if rng.Float64() < p.DeliveryWindowRate {
			dl.TimeWindow = randomWindow(rng)
		}
		s.Deliveries = append(s.Deliveries, dl)
	}

	for i := 0; i < p.Zones; i++ {
		z := &core.NoFlyZone{ID: core.ZoneID(FirstZoneID + i), Shape: randomPolygon(rng, p.Width, p.Height)}
		if p.ZoneWindows {
			start := zoneStarts[rng.IntN(len(zoneStarts))]
			end := zoneEnds[rng.IntN(len(zoneEnds))]
			if start != "" && end != "" {
				w, err := core.ParseWindow(start, end)
				if err == nil {
					z.Active = &w
				}
			}
		}
		s.Zones = append(s.Zones, z)
	}

	return s
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// gridPoint picks integer coordinates in [0, w] x [0, h].
func gridPoint(rng *rand.Rand, w, h float64) core.Pos {
	return core.Pos{X: float64(rng.IntN(int(w) + 1)), Y: float64(rng.IntN(int(h) + 1))}
}

// randomWindow draws a window between 09:00 and 17:00 at least 30 minutes
// long.
func randomWindow(rng *rand.Rand) *core.Window {
	start := 9*60 + rng.IntN(7*60)
	end := start + 30 + rng.IntN(17*60-start-30+1)
	w := core.Window{Start: core.Clock(0, start), End: core.Clock(0, end)}
	return &w
}

// randomPolygon places 3 to 6 vertices in the centre half of the map and
// orders them by angle around their mean so the outline is simple.
func randomPolygon(rng *rand.Rand, w, h float64) core.Polygon {
	n := 3 + rng.IntN(4)
	pg := make(core.Polygon, 0, n)
	for len(pg) < n {
		p := core.Pos{
			X: float64(rng.IntN(int(w)/2+1) + int(w)/4),
			Y: float64(rng.IntN(int(h)/2+1) + int(h)/4),
		}
		if !contains(pg, p) {
			pg = append(pg, p)
		}
	}

	var cx, cy float64
	for _, p := range pg {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(n)
	cy /= float64(n)
	sort.Slice(pg, func(i, j int) bool {
		return math.Atan2(pg[i].Y-cy, pg[i].X-cx) < math.Atan2(pg[j].Y-cy, pg[j].X-cx)
	})
	return pg
}

func contains(pg core.Polygon, p core.Pos) bool {
	for _, q := range pg {
		if q == p {
			return true
		}
	}
	return false
}
