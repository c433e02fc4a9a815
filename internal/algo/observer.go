package algo

import (
	"context"
	"log/slog"

	"github.com/elektrokombinacija/dronefleet/internal/core"
)

// SearchEvent describes one completed path query.
type SearchEvent struct {
	Start, Goal core.NodeID
	Now         core.ClockTime
	Found       bool
	Cost        float64
	Expanded    int
}

// CommitEvent describes an assignment applied to a drone.
type CommitEvent struct {
	Round          int
	Delivery       core.DeliveryID
	Drone          core.DroneID
	Cost           float64
	Energy         float64
	BatteryBefore  float64
	BatteryAfter   float64
	BatteryPercent float64
}

// RoundEvent summarises one matching round.
type RoundEvent struct {
	Round     int
	Commits   int
	Remaining int
}

// FailSafeEvent reports a fail-safe check that found a critical battery.
type FailSafeEvent struct {
	Drone          core.DroneID
	Outcome        FailSafeOutcome
	BatteryPercent float64
	Cost           float64
}

// GenerationEvent reports population fitness after one generation.
type GenerationEvent struct {
	Generation int
	Best       float64
	Mean       float64
}

// Observer receives notifications from the planners after every search,
// mutation and generation. Implementations must be safe for concurrent
// use: searches run in parallel when parallel scanning is enabled.
type Observer interface {
	OnSearch(ev SearchEvent)
	OnCommit(ev CommitEvent)
	OnRound(ev RoundEvent)
	OnFailSafe(ev FailSafeEvent)
	OnGeneration(ev GenerationEvent)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnSearch(SearchEvent)         {}
func (NopObserver) OnCommit(CommitEvent)         {}
func (NopObserver) OnRound(RoundEvent)           {}
func (NopObserver) OnFailSafe(FailSafeEvent)     {}
func (NopObserver) OnGeneration(GenerationEvent) {}

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) OnSearch(ev SearchEvent) {
	for _, o := range m {
		o.OnSearch(ev)
	}
}

func (m MultiObserver) OnCommit(ev CommitEvent) {
	for _, o := range m {
		o.OnCommit(ev)
	}
}

func (m MultiObserver) OnRound(ev RoundEvent) {
	for _, o := range m {
		o.OnRound(ev)
	}
}

func (m MultiObserver) OnFailSafe(ev FailSafeEvent) {
	for _, o := range m {
		o.OnFailSafe(ev)
	}
}

func (m MultiObserver) OnGeneration(ev GenerationEvent) {
	for _, o := range m {
		o.OnGeneration(ev)
	}
}

// LogObserver writes events to a structured logger. Searches are logged at
// debug level since there are many of them.
type LogObserver struct {
	Logger *slog.Logger
}

// NewLogObserver tags the logger with the planner component.
func NewLogObserver(l *slog.Logger) *LogObserver {
	if l == nil {
		l = slog.Default()
	}
	return &LogObserver{Logger: l.With(slog.String("component", "planner"))}
}

func (o *LogObserver) OnSearch(ev SearchEvent) {
	o.Logger.Debug("path search",
		slog.String("start", string(ev.Start)),
		slog.String("goal", string(ev.Goal)),
		slog.String("now", ev.Now.String()),
		slog.Bool("found", ev.Found),
		slog.Float64("cost", ev.Cost),
		slog.Int("expanded", ev.Expanded))
}

func (o *LogObserver) OnCommit(ev CommitEvent) {
	o.Logger.Info("delivery assigned",
		slog.Int("round", ev.Round),
		slog.Int("delivery", int(ev.Delivery)),
		slog.Int("drone", int(ev.Drone)),
		slog.Float64("cost", ev.Cost),
		slog.Float64("energy", ev.Energy),
		slog.Float64("battery_pct", ev.BatteryPercent))
}

func (o *LogObserver) OnRound(ev RoundEvent) {
	o.Logger.Info("round finished",
		slog.Int("round", ev.Round),
		slog.Int("commits", ev.Commits),
		slog.Int("remaining", ev.Remaining))
}

func (o *LogObserver) OnFailSafe(ev FailSafeEvent) {
	level := slog.LevelWarn
	if ev.Outcome == FailSafeStranded {
		level = slog.LevelError
	}
	o.Logger.Log(context.Background(), level, "battery critical",
		slog.Int("drone", int(ev.Drone)),
		slog.String("outcome", ev.Outcome.String()),
		slog.Float64("battery_pct", ev.BatteryPercent),
		slog.Float64("return_cost", ev.Cost))
}

func (o *LogObserver) OnGeneration(ev GenerationEvent) {
	o.Logger.Debug("generation",
		slog.Int("generation", ev.Generation),
		slog.Float64("best", ev.Best),
		slog.Float64("mean", ev.Mean))
}
