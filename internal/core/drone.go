package core

import "fmt"

// DefaultCriticalPercent is the battery level below which the fail-safe
// sends a drone home.
const DefaultCriticalPercent = 20.0

// Drone is a range- and capacity-limited delivery vehicle.
type Drone struct {
	ID              DroneID
	MaxPayload      float64 // kg
	BatteryCapacity float64
	CurrentBattery  float64
	Speed           float64
	Home            Pos
	CurrentPos      Pos
	LastNode        NodeID // node the next path starts from
	Busy            bool
	CriticalPercent float64
	BatteryHistory  []float64 // percentage samples, append-only
}

// NewDrone creates a drone parked at home with a full battery.
func NewDrone(id DroneID, maxPayload, battery, speed float64, home Pos) *Drone {
	return &Drone{
		ID:              id,
		MaxPayload:      maxPayload,
		BatteryCapacity: battery,
		CurrentBattery:  battery,
		Speed:           speed,
		Home:            home,
		CurrentPos:      home,
		LastNode:        VehicleStartID(id),
		CriticalPercent: DefaultCriticalPercent,
		BatteryHistory:  []float64{100},
	}
}

// Validate checks the static drone parameters.
func (d *Drone) Validate() error {
	switch {
	case d.MaxPayload < 0:
		return fmt.Errorf("%w: drone %d has negative payload", ErrInvalidDrone, d.ID)
	case d.BatteryCapacity <= 0:
		return fmt.Errorf("%w: drone %d has no battery capacity", ErrInvalidDrone, d.ID)
	case d.CurrentBattery < 0 || d.CurrentBattery > d.BatteryCapacity:
		return fmt.Errorf("%w: drone %d battery %.2f outside [0, %.2f]",
			ErrInvalidDrone, d.ID, d.CurrentBattery, d.BatteryCapacity)
	}
	return nil
}

// StartNode is the drone's vehicle-start node in the routing graph.
func (d *Drone) StartNode() NodeID {
	return VehicleStartID(d.ID)
}

// CanCarry reports whether the payload fits.
func (d *Drone) CanCarry(weight float64) bool {
	return d.MaxPayload >= weight
}

// BatteryPercentage returns current battery level as percentage.
func (d *Drone) BatteryPercentage() float64 {
	if d.BatteryCapacity <= 0 {
		return 0
	}
	return d.CurrentBattery / d.BatteryCapacity * 100
}

// IsCritical reports whether the battery dropped below the critical level.
func (d *Drone) IsCritical() bool {
	return d.BatteryPercentage() < d.CriticalPercent
}

// Consume deducts energy and records a history sample. It refuses (and
// changes nothing) when the battery would go negative.
func (d *Drone) Consume(energy float64) bool {
	if energy < 0 || energy > d.CurrentBattery {
		return false
	}
	d.CurrentBattery -= energy
	d.RecordBattery()
	return true
}

// RecordBattery appends the current percentage to the history.
func (d *Drone) RecordBattery() {
	d.BatteryHistory = append(d.BatteryHistory, d.BatteryPercentage())
}

// Clone returns a deep copy; callers that must not mutate fleet state
// work on clones.
func (d *Drone) Clone() *Drone {
	c := *d
	c.BatteryHistory = append([]float64(nil), d.BatteryHistory...)
	return &c
}

func (d *Drone) String() string {
	return fmt.Sprintf("Drone %d: payload %.1fkg, battery %.1f/%.1f, speed %.1f, at %s, busy=%v",
		d.ID, d.MaxPayload, d.CurrentBattery, d.BatteryCapacity, d.Speed, d.CurrentPos, d.Busy)
}
