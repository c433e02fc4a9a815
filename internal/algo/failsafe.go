package algo

import (
	"fmt"

	"github.com/elektrokombinacija/dronefleet/internal/core"
)

// FailSafeOutcome is the result of a fail-safe check.
type FailSafeOutcome int

const (
	FailSafeNominal  FailSafeOutcome = iota // Battery above critical level
	FailSafeReturned                        // Drone flown home
	FailSafeStranded                        // Critical and no affordable way home
)

func (o FailSafeOutcome) String() string {
	return [...]string{"nominal", "returned", "stranded"}[o]
}

// FailSafeReport describes one check.
type FailSafeReport struct {
	Drone          core.DroneID
	Outcome        FailSafeOutcome
	BatteryPercent float64 // level when the check ran
	Path           core.Path
	Energy         float64
	Reason         string
}

// FailSafe sends drones with a critical battery back to their start node.
type FailSafe struct {
	searcher *Searcher
	energy   EnergyModel
	observer Observer
}

// NewFailSafe creates a monitor. A nil observer is allowed.
func NewFailSafe(s *Searcher, energy EnergyModel, obs Observer) *FailSafe {
	if obs == nil {
		obs = NopObserver{}
	}
	return &FailSafe{searcher: s, energy: energy, observer: obs}
}

// Check inspects one drone. Below the critical level it requests a path
// home and, if one exists and the battery covers the empty flight, moves
// the drone there and frees it. Otherwise the drone is left untouched and
// the report says Stranded; recovery is the caller's decision.
func (f *FailSafe) Check(d *core.Drone, now core.ClockTime) (FailSafeReport, error) {
	report := FailSafeReport{Drone: d.ID, Outcome: FailSafeNominal, BatteryPercent: d.BatteryPercentage()}
	if !d.IsCritical() {
		return report, nil
	}

	path, err := f.searcher.Search(d.LastNode, d.StartNode(), now)
	if err != nil {
		return report, fmt.Errorf("fail-safe drone %d: %w", d.ID, err)
	}
	report.Path = path

	switch {
	case !path.Found():
		report.Outcome = FailSafeStranded
		report.Reason = "no legal path home"
	default:
		report.Energy = f.energy.ReturnUsage(path.Cost)
		if !d.Consume(report.Energy) {
			report.Outcome = FailSafeStranded
			report.Reason = fmt.Sprintf("return needs %.2f, battery has %.2f", report.Energy, d.CurrentBattery)
			break
		}
		d.LastNode = d.StartNode()
		d.CurrentPos = d.Home
		d.Busy = false
		report.Outcome = FailSafeReturned
	}

	f.observer.OnFailSafe(FailSafeEvent{
		Drone:          d.ID,
		Outcome:        report.Outcome,
		BatteryPercent: report.BatteryPercent,
		Cost:           path.Cost,
	})
	return report, nil
}

// CheckAll runs Check over the fleet and returns the non-nominal reports.
func (f *FailSafe) CheckAll(drones []*core.Drone, now core.ClockTime) ([]FailSafeReport, error) {
	var out []FailSafeReport
	for _, d := range drones {
		r, err := f.Check(d, now)
		if err != nil {
			return out, err
		}
		if r.Outcome != FailSafeNominal {
			out = append(out, r)
		}
	}
	return out, nil
}
