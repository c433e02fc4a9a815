package core

import "fmt"

// Edge connects two nodes. Cost is the Euclidean length of the segment.
type Edge struct {
	From, To NodeID
	Cost     float64
}

// Graph is the routing graph. Node insertion order is kept so that every
// traversal is deterministic.
type Graph struct {
	Nodes map[NodeID]*Node
	Edges map[NodeID][]Edge // Adjacency list
	order []NodeID
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[NodeID]*Node),
		Edges: make(map[NodeID][]Edge),
	}
}

// AddNode adds a node to the graph.
func (g *Graph) AddNode(n *Node) error {
	if _, exists := g.Nodes[n.ID]; exists {
		return fmt.Errorf("%w: node %s", ErrDuplicateID, n.ID)
	}
	g.Nodes[n.ID] = n
	g.Edges[n.ID] = []Edge{}
	g.order = append(g.order, n.ID)
	return nil
}

// AddEdge adds a bidirectional edge.
func (g *Graph) AddEdge(from, to NodeID, cost float64) {
	g.Edges[from] = append(g.Edges[from], Edge{From: from, To: to, Cost: cost})
	g.Edges[to] = append(g.Edges[to], Edge{From: to, To: from, Cost: cost})
}

// Node looks up a node by id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.Nodes[id]
	return n, ok
}

// NodeIDs returns node ids in insertion order.
func (g *Graph) NodeIDs() []NodeID {
	return append([]NodeID(nil), g.order...)
}

// Neighbors returns the edges leaving v in insertion order.
func (g *Graph) Neighbors(v NodeID) []Edge {
	return g.Edges[v]
}

// HasEdge reports whether a direct edge joins a and b.
func (g *Graph) HasEdge(a, b NodeID) bool {
	for _, e := range g.Edges[a] {
		if e.To == b {
			return true
		}
	}
	return false
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.Edges {
		n += len(edges)
	}
	return n / 2
}

// Len returns the node count.
func (g *Graph) Len() int {
	return len(g.order)
}
