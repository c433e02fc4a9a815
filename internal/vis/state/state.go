// Package state manages the visualization state.
package state

import (
	"github.com/elektrokombinacija/dronefleet/internal/algo"
	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/scenario"
)

// State holds all visualization state. Scenario is the fleet as loaded,
// before planning moved any drone; Result replays on top of it.
type State struct {
	Scenario  *scenario.Scenario
	Graph     *core.Graph
	Result    *algo.AssignResult
	Now       core.ClockTime
	Log       *EventLog
	Playback  *PlaybackState
	ShowGraph bool
	Selected  core.DroneID // 0 means none
}

// NewState creates a new visualization state.
func NewState(s *scenario.Scenario, g *core.Graph, res *algo.AssignResult, now core.ClockTime) *State {
	st := &State{
		Scenario: s,
		Graph:    g,
		Now:      now,
		Log:      NewEventLog(),
	}
	st.SetResult(res)
	return st
}

// SetResult replaces the replayed plan and rewinds playback.
func (s *State) SetResult(res *algo.AssignResult) {
	s.Result = res
	steps := 0
	if res != nil {
		steps = len(res.Order)
	}
	s.Playback = NewPlaybackState(steps)
}

// Steps returns the number of committed routes.
func (s *State) Steps() int {
	if s.Result == nil {
		return 0
	}
	return len(s.Result.Order)
}

// RouteAt returns the i-th committed route.
func (s *State) RouteAt(i int) algo.Route {
	return s.Result.Routes[s.Result.Order[i]]
}

// RoutePositions resolves a route's nodes to coordinates.
func (s *State) RoutePositions(r algo.Route) []core.Pos {
	positions := make([]core.Pos, 0, len(r.Path.Nodes))
	for _, id := range r.Path.Nodes {
		if n, ok := s.Graph.Node(id); ok {
			positions = append(positions, n.Pos)
		}
	}
	return positions
}

// ZoneActive reports whether a zone blocks traffic at the planning instant.
func (s *State) ZoneActive(z *core.NoFlyZone) bool {
	return z.ActiveAt(s.Now)
}

// CurrentPositions returns interpolated drone positions at the current
// playback position.
func (s *State) CurrentPositions() map[core.DroneID]core.Pos {
	positions := make(map[core.DroneID]core.Pos)
	if s.Scenario == nil {
		return positions
	}

	for _, d := range s.Scenario.Drones {
		positions[d.ID] = d.Home
	}

	step := s.Playback.Step()
	for i := range min(step+1, s.Steps()) {
		r := s.RouteAt(i)
		alpha := 1.0
		if i == step {
			alpha = s.Playback.Position - float64(step)
		}
		if pts := s.RoutePositions(r); len(pts) > 0 {
			positions[r.Drone] = interpolatePosition(pts, alpha)
		}
	}
	return positions
}

// PathHistory returns the flown track of a drone up to the current
// playback position, for trails.
func (s *State) PathHistory(id core.DroneID) []core.Pos {
	var history []core.Pos

	step := s.Playback.Step()
	for i := range min(step+1, s.Steps()) {
		r := s.RouteAt(i)
		if r.Drone != id {
			continue
		}
		pts := s.RoutePositions(r)
		if i == step {
			alpha := s.Playback.Position - float64(step)
			if alpha <= 0 {
				break
			}
			pts = append(flownPrefix(pts, alpha), interpolatePosition(pts, alpha))
		}
		if len(history) > 0 && len(pts) > 0 && history[len(history)-1] == pts[0] {
			pts = pts[1:]
		}
		history = append(history, pts...)
	}
	return history
}

// BatteryPercent returns a drone's battery after the fully flown routes.
func (s *State) BatteryPercent(id core.DroneID) float64 {
	var d *core.Drone
	for _, cand := range s.Scenario.Drones {
		if cand.ID == id {
			d = cand
			break
		}
	}
	if d == nil || d.BatteryCapacity <= 0 {
		return 0
	}

	battery := d.CurrentBattery
	for i := range min(s.Playback.Step(), s.Steps()) {
		if r := s.RouteAt(i); r.Drone == id {
			battery -= r.Energy
		}
	}
	return battery / d.BatteryCapacity * 100
}

// Served returns the deliveries completed at the current playback position.
func (s *State) Served() []core.DeliveryID {
	n := min(s.Playback.Step(), s.Steps())
	if n == 0 {
		return nil
	}
	return append([]core.DeliveryID(nil), s.Result.Order[:n]...)
}

// interpolatePosition walks a polyline by arc length; alpha is the flown
// fraction.
func interpolatePosition(pts []core.Pos, alpha float64) core.Pos {
	if len(pts) == 0 {
		return core.Pos{}
	}
	if alpha <= 0 || len(pts) == 1 {
		return pts[0]
	}
	if alpha >= 1 {
		return pts[len(pts)-1]
	}

	total := 0.0
	for i := range len(pts) - 1 {
		total += pts[i].Dist(pts[i+1])
	}
	if total <= 0 {
		return pts[len(pts)-1]
	}

	remaining := alpha * total
	for i := range len(pts) - 1 {
		seg := pts[i].Dist(pts[i+1])
		if remaining <= seg {
			f := remaining / seg
			return core.Pos{
				X: pts[i].X + f*(pts[i+1].X-pts[i].X),
				Y: pts[i].Y + f*(pts[i+1].Y-pts[i].Y),
			}
		}
		remaining -= seg
	}
	return pts[len(pts)-1]
}

// flownPrefix returns the polyline vertices already passed at alpha.
func flownPrefix(pts []core.Pos, alpha float64) []core.Pos {
	total := 0.0
	for i := range len(pts) - 1 {
		total += pts[i].Dist(pts[i+1])
	}

	out := []core.Pos{pts[0]}
	travelled := 0.0
	for i := range len(pts) - 1 {
		travelled += pts[i].Dist(pts[i+1])
		if travelled > alpha*total {
			break
		}
		out = append(out, pts[i+1])
	}
	return out
}
