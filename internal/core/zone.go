package core

import "fmt"

// NoFlyZone is a polygon drones may not enter or cross while it is active.
type NoFlyZone struct {
	ID     ZoneID
	Shape  Polygon
	Active *Window // nil means always active
}

// Validate checks the polygon and window.
func (z *NoFlyZone) Validate() error {
	if err := z.Shape.Validate(); err != nil {
		return fmt.Errorf("zone %d: %w", z.ID, err)
	}
	if z.Active != nil {
		if err := z.Active.Validate(); err != nil {
			return fmt.Errorf("zone %d: %w", z.ID, err)
		}
	}
	return nil
}

// Permanent reports whether the zone has no activity window.
func (z *NoFlyZone) Permanent() bool {
	return z.Active == nil
}

// ActiveAt reports whether the zone blocks traffic at t.
func (z *NoFlyZone) ActiveAt(t ClockTime) bool {
	return z.Active == nil || z.Active.Contains(t)
}

func (z *NoFlyZone) String() string {
	active := "always"
	if z.Active != nil {
		active = z.Active.String()
	}
	return fmt.Sprintf("No-fly zone %d: %d vertices, active %s", z.ID, len(z.Shape), active)
}
