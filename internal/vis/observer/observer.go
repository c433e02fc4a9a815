// Package observer feeds planner events into the visualization log.
package observer

import (
	"fmt"
	"sync"

	"github.com/elektrokombinacija/dronefleet/internal/algo"
	"github.com/elektrokombinacija/dronefleet/internal/vis/state"
)

// Recorder implements algo.Observer by writing readable entries to an
// EventLog. Each entry carries the commit count at the time it fired, so
// the panel can reveal them in step with playback.
type Recorder struct {
	log *state.EventLog

	mu      sync.Mutex
	commits int
}

var _ algo.Observer = (*Recorder)(nil)

// NewRecorder creates a recorder writing to log.
func NewRecorder(log *state.EventLog) *Recorder {
	return &Recorder{log: log}
}

func (r *Recorder) step() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commits
}

// OnSearch is ignored; there are too many searches to list.
func (r *Recorder) OnSearch(algo.SearchEvent) {}

// OnCommit logs an assignment.
func (r *Recorder) OnCommit(ev algo.CommitEvent) {
	r.mu.Lock()
	r.commits++
	step := r.commits
	r.mu.Unlock()

	r.log.Add(state.Event{
		Step: step,
		Text: fmt.Sprintf("T%d -> D%d  cost %.1f, energy %.1f, %.0f%% left",
			ev.Delivery, ev.Drone, ev.Cost, ev.Energy, ev.BatteryPercent),
	})
}

// OnRound logs the round summary.
func (r *Recorder) OnRound(ev algo.RoundEvent) {
	r.log.Add(state.Event{
		Step: r.step(),
		Text: fmt.Sprintf("round %d: %d assigned, %d left", ev.Round, ev.Commits, ev.Remaining),
	})
}

// OnFailSafe logs a critical battery.
func (r *Recorder) OnFailSafe(ev algo.FailSafeEvent) {
	sev := state.SeverityWarn
	if ev.Outcome == algo.FailSafeStranded {
		sev = state.SeverityError
	}
	r.log.Add(state.Event{
		Step:     r.step(),
		Severity: sev,
		Text:     fmt.Sprintf("D%d %s at %.0f%%", ev.Drone, ev.Outcome, ev.BatteryPercent),
	})
}

// OnGeneration is ignored; the replay shows the greedy plan only.
func (r *Recorder) OnGeneration(algo.GenerationEvent) {}
