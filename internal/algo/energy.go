package algo

import (
	"math"

	"github.com/elektrokombinacija/dronefleet/internal/core"
)

// Reference energy constants.
const (
	DefaultBaseRate   = 0.5 // energy per distance unit, empty
	DefaultLoadFactor = 0.5 // extra share at full payload
)

// EnergyModel converts flown distance and payload into battery use.
type EnergyModel struct {
	BaseRate   float64
	LoadFactor float64
}

// DefaultEnergyModel returns the reference constants.
func DefaultEnergyModel() EnergyModel {
	return EnergyModel{BaseRate: DefaultBaseRate, LoadFactor: DefaultLoadFactor}
}

// Usage is the battery needed to fly distance carrying payload:
// distance * base * (1 + payload/maxPayload * load).
func (m EnergyModel) Usage(distance float64, d *core.Drone, payload float64) float64 {
	factor := 1.0
	if d.MaxPayload > 0 {
		factor += payload / d.MaxPayload * m.LoadFactor
	}
	return distance * m.BaseRate * factor
}

// ReturnUsage is the battery needed for an empty flight.
func (m EnergyModel) ReturnUsage(distance float64) float64 {
	return distance * m.BaseRate
}

// Range is the distance the drone can still fly carrying payload.
func (m EnergyModel) Range(d *core.Drone, payload float64) float64 {
	perUnit := m.Usage(1, d, payload)
	if perUnit <= 0 {
		return math.Inf(1)
	}
	return d.CurrentBattery / perUnit
}
