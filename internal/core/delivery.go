package core

import "fmt"

// Delivery is a point that needs a package dropped off.
type Delivery struct {
	ID         DeliveryID
	Location   Pos
	Weight     float64 // kg
	Priority   int     // higher is more urgent
	TimeWindow *Window // nil means always eligible
	Delivered  bool
}

// Validate checks the static delivery parameters.
func (d *Delivery) Validate() error {
	if d.Weight < 0 {
		return fmt.Errorf("%w: delivery %d has negative weight", ErrInvalidDelivery, d.ID)
	}
	if d.TimeWindow != nil {
		if err := d.TimeWindow.Validate(); err != nil {
			return fmt.Errorf("delivery %d: %w", d.ID, err)
		}
	}
	return nil
}

// Node is the delivery's node in the routing graph.
func (d *Delivery) Node() NodeID {
	return TaskNodeID(d.ID)
}

// EligibleAt reports whether the delivery may be served at t.
func (d *Delivery) EligibleAt(t ClockTime) bool {
	return d.TimeWindow == nil || d.TimeWindow.Contains(t)
}

func (d *Delivery) String() string {
	tw := "any"
	if d.TimeWindow != nil {
		tw = d.TimeWindow.String()
	}
	return fmt.Sprintf("Delivery %d: at %s, %.1fkg, priority %d, window %s, delivered=%v",
		d.ID, d.Location, d.Weight, d.Priority, tw, d.Delivered)
}
