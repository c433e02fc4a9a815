// Package report turns planner results into KPIs, tables and exports.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/elektrokombinacija/dronefleet/internal/algo"
	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/scenario"
)

// RouteRow describes one served delivery.
type RouteRow struct {
	Delivery  core.DeliveryID `yaml:"delivery"`
	Drone     core.DroneID    `yaml:"drone"`
	Round     int             `yaml:"round"`
	Path      []core.NodeID   `yaml:"path,flow"`
	Distance  float64         `yaml:"distance"`
	Straight  float64         `yaml:"straight"`  // direct distance from the path's first node
	Extension float64         `yaml:"extension"` // distance / straight, 1 for a direct flight
	Energy    float64         `yaml:"energy"`
}

// DroneRow is the end-of-run state of one drone.
type DroneRow struct {
	Drone          core.DroneID      `yaml:"drone"`
	Battery        float64           `yaml:"battery"`
	Capacity       float64           `yaml:"capacity"`
	BatteryPercent float64           `yaml:"battery_percent"`
	History        []float64         `yaml:"history,flow"`
	Deliveries     []core.DeliveryID `yaml:"deliveries,flow"`
	Distance       float64           `yaml:"distance"`
	LastNode       core.NodeID       `yaml:"last_node"`
}

// AlertRow is a fail-safe intervention.
type AlertRow struct {
	Drone          core.DroneID `yaml:"drone"`
	Outcome        string       `yaml:"outcome"`
	BatteryPercent float64      `yaml:"battery_percent"`
	Reason         string       `yaml:"reason,omitempty"`
}

// GeneticRow summarises an optimizer run.
type GeneticRow struct {
	RunID            uuid.UUID                        `yaml:"run_id"`
	Fitness          float64                          `yaml:"fitness"`
	Assignment       map[core.DeliveryID]core.DroneID `yaml:"assignment"`
	Infeasible       []core.DeliveryID                `yaml:"infeasible,flow"`
	BestByGeneration []float64                        `yaml:"best_by_generation,flow"`
	Agreement        float64                          `yaml:"agreement"` // share of deliveries mapped like the greedy plan
}

// Phase is the wall time of one pipeline step.
type Phase struct {
	Name     string        `yaml:"name"`
	Duration time.Duration `yaml:"duration"`
}

// Summary holds the fleet-level KPIs.
type Summary struct {
	Deliveries        int     `yaml:"deliveries"`
	Served            int     `yaml:"served"`
	ServedRate        float64 `yaml:"served_rate"`
	TotalDistance     float64 `yaml:"total_distance"`
	DistancePerServed float64 `yaml:"distance_per_delivery"`
	MeanExtension     float64 `yaml:"mean_extension"`
	TotalEnergy       float64 `yaml:"total_energy"`
	Rounds            int     `yaml:"rounds"`
}

// Report is everything a run exposes to reporting sinks.
type Report struct {
	RunID      uuid.UUID         `yaml:"run_id"`
	Scenario   string            `yaml:"scenario"`
	Now        string            `yaml:"now"`
	Summary    Summary           `yaml:"summary"`
	Routes     []RouteRow        `yaml:"routes"`
	Drones     []DroneRow        `yaml:"drones"`
	Unassigned []core.DeliveryID `yaml:"unassigned,flow"`
	Blocked    []core.DeliveryID `yaml:"blocked,flow"`
	Alerts     []AlertRow        `yaml:"alerts,omitempty"`
	Genetic    *GeneticRow       `yaml:"genetic,omitempty"`
	Phases     []Phase           `yaml:"phases,omitempty"`
}

// Build collects KPIs from a finished matcher run. g resolves path nodes
// to positions for the straight-line comparison.
func Build(s *scenario.Scenario, g *core.Graph, now core.ClockTime, res *algo.AssignResult) *Report {
	r := &Report{
		RunID:      res.RunID,
		Scenario:   s.Name,
		Now:        now.String(),
		Unassigned: res.Unassigned,
		Blocked:    res.Blocked,
	}

	perDrone := make(map[core.DroneID]float64)
	extSum := 0.0
	for _, did := range res.Order {
		route := res.Routes[did]
		row := RouteRow{
			Delivery:  did,
			Drone:     route.Drone,
			Round:     route.Round,
			Path:      route.Path.Nodes,
			Distance:  route.Path.Cost,
			Energy:    route.Energy,
			Extension: 1,
		}
		if len(route.Path.Nodes) > 0 {
			first, _ := g.Node(route.Path.Nodes[0])
			last, _ := g.Node(route.Path.Nodes[len(route.Path.Nodes)-1])
			if first != nil && last != nil {
				row.Straight = first.Pos.Dist(last.Pos)
			}
		}
		row.Extension = ExtensionRatio(row.Distance, row.Straight)
		extSum += row.Extension

		r.Routes = append(r.Routes, row)
		perDrone[route.Drone] += route.Path.Cost
		r.Summary.TotalDistance += route.Path.Cost
		r.Summary.TotalEnergy += route.Energy
	}

	byDrone := res.Assignment.ByDrone()
	for _, d := range s.Drones {
		r.Drones = append(r.Drones, DroneRow{
			Drone:          d.ID,
			Battery:        d.CurrentBattery,
			Capacity:       d.BatteryCapacity,
			BatteryPercent: d.BatteryPercentage(),
			History:        append([]float64(nil), d.BatteryHistory...),
			Deliveries:     byDrone[d.ID],
			Distance:       perDrone[d.ID],
			LastNode:       d.LastNode,
		})
	}

	for _, a := range res.Alerts {
		r.Alerts = append(r.Alerts, AlertRow{
			Drone:          a.Drone,
			Outcome:        a.Outcome.String(),
			BatteryPercent: a.BatteryPercent,
			Reason:         a.Reason,
		})
	}

	r.Summary.Deliveries = len(s.Deliveries)
	r.Summary.Served = len(r.Routes)
	r.Summary.Rounds = res.Rounds
	if r.Summary.Deliveries > 0 {
		r.Summary.ServedRate = float64(r.Summary.Served) / float64(r.Summary.Deliveries)
	}
	if r.Summary.Served > 0 {
		r.Summary.DistancePerServed = r.Summary.TotalDistance / float64(r.Summary.Served)
		r.Summary.MeanExtension = extSum / float64(r.Summary.Served)
	}
	return r
}

// ExtensionRatio compares a flown distance with the straight line. A zero
// straight distance gives 1.
func ExtensionRatio(distance, straight float64) float64 {
	if straight <= 0 || math.IsInf(distance, 0) {
		return 1
	}
	return distance / straight
}

// AddGenetic attaches an optimizer result and its agreement with the
// greedy plan.
func (r *Report) AddGenetic(res *algo.GeneticResult, greedy core.Assignment) {
	row := &GeneticRow{
		RunID:            res.RunID,
		Fitness:          res.Fitness,
		Assignment:       map[core.DeliveryID]core.DroneID(res.Assignment),
		Infeasible:       res.Infeasible,
		BestByGeneration: res.BestByGeneration,
	}
	if len(res.Assignment) > 0 {
		same := 0
		for did, drone := range res.Assignment {
			if g, ok := greedy[did]; ok && g == drone {
				same++
			}
		}
		row.Agreement = float64(same) / float64(len(res.Assignment))
	}
	r.Genetic = row
}

// AddPhase records the duration of a pipeline step.
func (r *Report) AddPhase(name string, d time.Duration) {
	r.Phases = append(r.Phases, Phase{Name: name, Duration: d})
}

// DronesByID returns drone rows sorted by id.
func (r *Report) DronesByID() []DroneRow {
	out := append([]DroneRow(nil), r.Drones...)
	sort.Slice(out, func(i, j int) bool { return out[i].Drone < out[j].Drone })
	return out
}
