package core

import "fmt"

// NodeID is a unique routing-graph node identifier.
type NodeID string

// VehicleStartID is the node id of a drone's start position.
func VehicleStartID(id DroneID) NodeID {
	return NodeID(fmt.Sprintf("D%d_START", id))
}

// TaskNodeID is the node id of a delivery point.
func TaskNodeID(id DeliveryID) NodeID {
	return NodeID(fmt.Sprintf("T%d", id))
}

// ZoneCornerID is the node id of the detour point at a zone vertex.
func ZoneCornerID(id ZoneID, vertex int) NodeID {
	return NodeID(fmt.Sprintf("Z%d_C%d", id, vertex))
}

// WaypointID is the node id of the safety waypoint beside a zone edge.
func WaypointID(id ZoneID, edge int) NodeID {
	return NodeID(fmt.Sprintf("Z%d_W%d", id, edge))
}

// NodeKind classifies graph nodes.
type NodeKind int

const (
	KindVehicleStart NodeKind = iota // Drone home
	KindTask                         // Delivery point
	KindZoneCorner                   // Detour point off a zone vertex
	KindWaypoint                     // Detour point off a zone edge midpoint
)

func (k NodeKind) String() string {
	return [...]string{"vehicle-start", "task", "zone-corner", "waypoint"}[k]
}

// Origin is the entity a node was derived from. The set of
// implementations is closed: VehicleStart, TaskSite, ZoneCorner, Waypoint.
type Origin interface {
	Kind() NodeKind
	origin()
}

// VehicleStart marks a drone's start node.
type VehicleStart struct{ Drone DroneID }

// TaskSite marks a delivery node.
type TaskSite struct{ Delivery DeliveryID }

// ZoneCorner marks a detour node placed outside a zone vertex.
type ZoneCorner struct {
	Zone   ZoneID
	Vertex int
}

// Waypoint marks a safety node placed outside a zone edge midpoint.
type Waypoint struct {
	Zone ZoneID
	Edge int
}

func (VehicleStart) Kind() NodeKind { return KindVehicleStart }
func (TaskSite) Kind() NodeKind     { return KindTask }
func (ZoneCorner) Kind() NodeKind   { return KindZoneCorner }
func (Waypoint) Kind() NodeKind     { return KindWaypoint }

func (VehicleStart) origin() {}
func (TaskSite) origin()     {}
func (ZoneCorner) origin()   {}
func (Waypoint) origin()     {}

// Node is a point in the routing graph.
type Node struct {
	ID     NodeID
	Pos    Pos
	Origin Origin
}

// Kind returns the node classification.
func (n *Node) Kind() NodeKind {
	return n.Origin.Kind()
}

// Detour reports whether the node exists only to route around zones.
func (n *Node) Detour() bool {
	k := n.Kind()
	return k == KindZoneCorner || k == KindWaypoint
}
