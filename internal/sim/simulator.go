// Package sim flies a finished plan in simulated time.
//
// The matcher checks time windows and zone activity at a single planning
// instant. Flying the plan at each drone's speed shows what that instant
// hides: the clock time every delivery is actually reached, whether it
// lands inside its window, and any zone that switches on while a drone is
// inside it or crossing it.
package sim

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/dronefleet/internal/algo"
	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/geom"
	"github.com/elektrokombinacija/dronefleet/internal/scenario"
)

// SimulationConfig configures the simulation parameters.
type SimulationConfig struct {
	// Clock time every drone takes off
	Start core.ClockTime

	// Time step for simulation
	TimeStep time.Duration

	// Upper bound on simulated time
	Duration time.Duration
}

// DefaultConfig returns default simulation configuration.
func DefaultConfig(start core.ClockTime) SimulationConfig {
	return SimulationConfig{
		Start:    start,
		TimeStep: time.Second,
		Duration: 12 * time.Hour,
	}
}

// Arrival records a delivery reached in simulated time.
type Arrival struct {
	Delivery core.DeliveryID `yaml:"delivery"`
	Drone    core.DroneID    `yaml:"drone"`
	At       string          `yaml:"at"`
	Window   string          `yaml:"window,omitempty"`
	InWindow bool            `yaml:"in_window"`
}

// Incursion records a drone found inside an active zone.
type Incursion struct {
	Drone core.DroneID `yaml:"drone"`
	Zone  core.ZoneID  `yaml:"zone"`
	At    string       `yaml:"at"`
	Pos   [2]float64   `yaml:"pos,flow"`
}

// SimulationMetrics collects metrics during simulation.
type SimulationMetrics struct {
	SimulatedTime time.Duration `yaml:"simulated_time"`
	Steps         int           `yaml:"steps"`
	Makespan      time.Duration `yaml:"makespan"`
	Completed     int           `yaml:"completed"`
	Planned       int           `yaml:"planned"`
	WindowsMet    int           `yaml:"windows_met"`
	WindowsMissed int           `yaml:"windows_missed"`
	Arrivals      []Arrival     `yaml:"arrivals"`
	Incursions    []Incursion   `yaml:"incursions,omitempty"`
}

// leg is one committed route scheduled on its drone's timeline.
type leg struct {
	drone    core.DroneID
	delivery *core.Delivery
	points   []core.Pos
	depart   time.Duration // offset from Start
	arrive   time.Duration
	done     bool
}

type zoneKey struct {
	drone core.DroneID
	zone  core.ZoneID
}

// Simulator advances drones along their routes in fixed time steps.
type Simulator struct {
	mu sync.Mutex

	config SimulationConfig
	zones  []*core.NoFlyZone

	drones []core.DroneID
	legs   map[core.DroneID][]*leg
	end    time.Duration

	currentTime time.Duration
	inside      map[zoneKey]bool

	metrics SimulationMetrics
}

// NewSimulator schedules every route of res back to back per drone, in
// commit order, at the drone's speed.
func NewSimulator(s *scenario.Scenario, g *core.Graph, res *algo.AssignResult, config SimulationConfig) (*Simulator, error) {
	if config.TimeStep <= 0 {
		return nil, fmt.Errorf("simulation time step must be positive, got %v", config.TimeStep)
	}

	sim := &Simulator{
		config: config,
		zones:  s.Zones,
		legs:   make(map[core.DroneID][]*leg),
		inside: make(map[zoneKey]bool),
	}

	speeds := make(map[core.DroneID]float64, len(s.Drones))
	for _, d := range s.Drones {
		speeds[d.ID] = d.Speed
		sim.drones = append(sim.drones, d.ID)
	}
	deliveries := make(map[core.DeliveryID]*core.Delivery, len(s.Deliveries))
	for _, dl := range s.Deliveries {
		deliveries[dl.ID] = dl
	}

	for _, did := range res.Order {
		route := res.Routes[did]
		speed := speeds[route.Drone]
		if speed <= 0 {
			return nil, fmt.Errorf("%w: drone %d cannot fly at speed %g", core.ErrInvalidDrone, route.Drone, speed)
		}

		l := &leg{drone: route.Drone, delivery: deliveries[did]}
		for _, id := range route.Path.Nodes {
			n, ok := g.Node(id)
			if !ok {
				return nil, fmt.Errorf("%w: %s", core.ErrUnknownNode, id)
			}
			l.points = append(l.points, n.Pos)
		}

		if prev := sim.legs[route.Drone]; len(prev) > 0 {
			l.depart = prev[len(prev)-1].arrive
		}
		flight := polylineLength(l.points) / speed
		l.arrive = l.depart + time.Duration(math.Ceil(flight*float64(time.Second)))

		sim.legs[route.Drone] = append(sim.legs[route.Drone], l)
		sim.end = max(sim.end, l.arrive)
		sim.metrics.Planned++
	}

	return sim, nil
}

// Run executes the simulation until every leg is flown or the duration
// cap is reached. On cancellation the metrics so far are returned with
// the context error.
func (s *Simulator) Run(ctx context.Context) (*SimulationMetrics, error) {
	horizon := min(s.end, s.config.Duration)

	for {
		if err := ctx.Err(); err != nil {
			m := s.Metrics()
			return &m, err
		}

		s.step()
		if s.currentTime >= horizon {
			break
		}
		s.currentTime = min(s.currentTime+s.config.TimeStep, horizon)
	}

	m := s.Metrics()
	return &m, nil
}

// step samples every drone at the current time.
func (s *Simulator) step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.Steps++
	s.metrics.SimulatedTime = s.currentTime
	clock := s.config.Start.Add(s.currentTime)

	for _, id := range s.drones {
		legs := s.legs[id]
		if len(legs) == 0 {
			continue
		}
		pos := positionAt(legs, s.currentTime)
		s.checkZones(id, pos, clock)
		s.checkArrivals(legs)
	}
}

// checkZones records each entry into an active zone once; leaving the
// zone or the zone switching off rearms it.
func (s *Simulator) checkZones(id core.DroneID, pos core.Pos, clock core.ClockTime) {
	for _, z := range s.zones {
		key := zoneKey{drone: id, zone: z.ID}
		in := z.ActiveAt(clock) && geom.PointInPolygon(pos, z.Shape)
		if in && !s.inside[key] {
			s.metrics.Incursions = append(s.metrics.Incursions, Incursion{
				Drone: id,
				Zone:  z.ID,
				At:    clock.String(),
				Pos:   [2]float64{pos.X, pos.Y},
			})
		}
		s.inside[key] = in
	}
}

// checkArrivals completes legs whose arrival time has passed.
func (s *Simulator) checkArrivals(legs []*leg) {
	for _, l := range legs {
		if l.done || l.arrive > s.currentTime {
			continue
		}
		l.done = true

		at := s.config.Start.Add(l.arrive)
		a := Arrival{Drone: l.drone, At: at.String(), InWindow: true}
		if l.delivery != nil {
			a.Delivery = l.delivery.ID
			if w := l.delivery.TimeWindow; w != nil {
				a.Window = w.String()
				a.InWindow = w.Contains(at)
			}
		}
		if a.InWindow {
			s.metrics.WindowsMet++
		} else {
			s.metrics.WindowsMissed++
		}
		s.metrics.Arrivals = append(s.metrics.Arrivals, a)
		s.metrics.Completed++
		s.metrics.Makespan = max(s.metrics.Makespan, l.arrive)
	}
}

// positionAt finds where a drone is at offset t on its timeline. Before the
// first leg it sits at the first leg's origin; after the last it hovers at
// the last delivery.
func positionAt(legs []*leg, t time.Duration) core.Pos {
	for _, l := range legs {
		if t > l.arrive {
			continue
		}
		if len(l.points) == 0 {
			return core.Pos{}
		}
		span := l.arrive - l.depart
		if span <= 0 || t <= l.depart {
			return l.points[0]
		}
		return alongPolyline(l.points, float64(t-l.depart)/float64(span))
	}
	last := legs[len(legs)-1]
	if len(last.points) == 0 {
		return core.Pos{}
	}
	return last.points[len(last.points)-1]
}

func polylineLength(pts []core.Pos) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += pts[i-1].Dist(pts[i])
	}
	return total
}

// alongPolyline returns the point at fraction alpha of the polyline's length.
func alongPolyline(pts []core.Pos, alpha float64) core.Pos {
	total := polylineLength(pts)
	if total <= 0 || alpha >= 1 {
		return pts[len(pts)-1]
	}
	remaining := max(alpha, 0) * total
	for i := 1; i < len(pts); i++ {
		seg := pts[i-1].Dist(pts[i])
		if remaining <= seg {
			f := remaining / seg
			return core.Pos{
				X: pts[i-1].X + f*(pts[i].X-pts[i-1].X),
				Y: pts[i-1].Y + f*(pts[i].Y-pts[i-1].Y),
			}
		}
		remaining -= seg
	}
	return pts[len(pts)-1]
}

// Metrics returns current simulation metrics.
func (s *Simulator) Metrics() SimulationMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.metrics
	m.Arrivals = append([]Arrival(nil), s.metrics.Arrivals...)
	m.Incursions = append([]Incursion(nil), s.metrics.Incursions...)
	return m
}

// WriteYAML writes the current metrics as YAML.
func (s *Simulator) WriteYAML(w io.Writer) error {
	m := s.Metrics()

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode simulation metrics: %w", err)
	}
	return enc.Close()
}

// WriteText prints a summary of the flight followed by every late arrival
// and zone incursion.
func (s *Simulator) WriteText(w io.Writer) error {
	m := s.Metrics()

	fmt.Fprintf(w, "Simulation from %s: %d/%d delivered, makespan %v, %d steps\n",
		s.config.Start, m.Completed, m.Planned, m.Makespan, m.Steps)
	fmt.Fprintf(w, "  windows met %d, missed %d, zone incursions %d\n",
		m.WindowsMet, m.WindowsMissed, len(m.Incursions))
	for _, a := range m.Arrivals {
		if !a.InWindow {
			fmt.Fprintf(w, "  late: T%d by D%d at %s (window %s)\n", a.Delivery, a.Drone, a.At, a.Window)
		}
	}
	for _, in := range m.Incursions {
		fmt.Fprintf(w, "  incursion: D%d entered zone %d at %s (%.1f, %.1f)\n",
			in.Drone, in.Zone, in.At, in.Pos[0], in.Pos[1])
	}
	_, err := fmt.Fprintln(w)
	return err
}

// ExportMetrics writes metrics to a YAML file.
func (s *Simulator) ExportMetrics(path string) error {
	var buf bytes.Buffer
	if err := s.WriteYAML(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
