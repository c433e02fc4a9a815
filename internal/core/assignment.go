package core

import "sort"

// Assignment maps deliveries to drones.
type Assignment map[DeliveryID]DroneID

// DeliveryIDs returns the assigned deliveries in ascending order.
func (a Assignment) DeliveryIDs() []DeliveryID {
	ids := make([]DeliveryID, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ByDrone groups assigned deliveries per drone, each list ascending.
func (a Assignment) ByDrone() map[DroneID][]DeliveryID {
	out := make(map[DroneID][]DeliveryID)
	for _, did := range a.DeliveryIDs() {
		out[a[did]] = append(out[a[did]], did)
	}
	return out
}

// Path is a node sequence with its total cost. A path with no nodes means
// the goal was unreachable and carries an infinite cost.
type Path struct {
	Nodes []NodeID
	Cost  float64
}

// Found reports whether the search reached its goal.
func (p Path) Found() bool {
	return len(p.Nodes) > 0
}
