// Package algo holds the time-aware path search, the energy model and
// the planners built on them: the greedy matcher, the fail-safe monitor
// and the genetic optimizer.
package algo

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/geom"
)

// NoPath is the result of a search whose goal is unreachable.
func NoPath() core.Path {
	return core.Path{Cost: math.Inf(1)}
}

type edgeKey struct {
	a, b core.NodeID
}

func keyOf(a, b core.NodeID) edgeKey {
	if b < a {
		a, b = b, a
	}
	return edgeKey{a: a, b: b}
}

// Searcher answers cheapest-legal-path queries over one routing graph and
// zone list. Zone geometry never changes, so the zones each edge meets are
// worked out once; whether those zones block the edge is decided per query
// from the query instant. A Searcher is safe for concurrent use.
type Searcher struct {
	graph     *core.Graph
	zones     []*core.NoFlyZone
	crossings map[edgeKey][]int // indices into zones
	observer  Observer
}

// NewSearcher prepares a searcher. A nil observer is allowed.
func NewSearcher(g *core.Graph, zones []*core.NoFlyZone, obs Observer) *Searcher {
	if obs == nil {
		obs = NopObserver{}
	}
	s := &Searcher{
		graph:     g,
		zones:     zones,
		crossings: make(map[edgeKey][]int),
		observer:  obs,
	}

	boxes := make([]geom.Rect, len(zones))
	for i, z := range zones {
		boxes[i] = geom.Bounds(z.Shape)
	}
	for _, from := range g.NodeIDs() {
		for _, e := range g.Neighbors(from) {
			k := keyOf(e.From, e.To)
			if _, done := s.crossings[k]; done {
				continue
			}
			a, b := g.Nodes[e.From].Pos, g.Nodes[e.To].Pos
			seg := geom.SegmentBounds(a, b)
			hits := []int{}
			for i, z := range zones {
				if !boxes[i].Overlaps(seg) {
					continue
				}
				if geom.SegmentCrossesPolygon(a, b, z.Shape) {
					hits = append(hits, i)
				}
			}
			s.crossings[k] = hits
		}
	}
	return s
}

// Graph returns the searched graph.
func (s *Searcher) Graph() *core.Graph { return s.graph }

// Zones returns the zone list edges are checked against.
func (s *Searcher) Zones() []*core.NoFlyZone { return s.zones }

// EdgeLegal reports whether flying the direct edge from->to is allowed at
// now: no zone the segment meets may be active.
func (s *Searcher) EdgeLegal(from, to core.NodeID, now core.ClockTime) bool {
	for _, zi := range s.crossings[keyOf(from, to)] {
		if s.zones[zi].ActiveAt(now) {
			return false
		}
	}
	return true
}

// astarNode for priority queue.
type astarNode struct {
	id     core.NodeID
	g      float64 // Cost so far
	f      float64 // g + h
	seq    int     // insertion order, last tie-break
	parent *astarNode
	index  int // heap index
}

// astarHeap orders by f, then g, then insertion order.
type astarHeap []*astarNode

func (h astarHeap) Len() int { return len(h) }
func (h astarHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].g != h[j].g {
		return h[i].g < h[j].g
	}
	return h[i].seq < h[j].seq
}
func (h astarHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *astarHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *astarHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// Search finds the cheapest legal path from start to goal at instant now.
// An unreachable goal is not an error: it yields NoPath(). Unknown node ids
// are rejected.
func (s *Searcher) Search(start, goal core.NodeID, now core.ClockTime) (core.Path, error) {
	startNode, ok := s.graph.Node(start)
	if !ok {
		return NoPath(), fmt.Errorf("search start %q: %w", start, core.ErrUnknownNode)
	}
	goalNode, ok := s.graph.Node(goal)
	if !ok {
		return NoPath(), fmt.Errorf("search goal %q: %w", goal, core.ErrUnknownNode)
	}

	heuristic := func(n *core.Node) float64 {
		return n.Pos.Dist(goalNode.Pos)
	}

	open := &astarHeap{}
	heap.Init(open)
	seq := 0
	heap.Push(open, &astarNode{id: start, g: 0, f: heuristic(startNode), seq: seq})

	best := map[core.NodeID]float64{start: 0}
	closed := make(map[core.NodeID]bool)
	expanded := 0

	for open.Len() > 0 {
		current := heap.Pop(open).(*astarNode)
		if closed[current.id] {
			continue
		}
		if current.id == goal {
			path := reconstructPath(current)
			s.observer.OnSearch(SearchEvent{Start: start, Goal: goal, Now: now, Found: true, Cost: path.Cost, Expanded: expanded})
			return path, nil
		}
		closed[current.id] = true
		expanded++

		for _, e := range s.graph.Neighbors(current.id) {
			if closed[e.To] {
				continue
			}
			if !s.EdgeLegal(e.From, e.To, now) {
				continue
			}
			g := current.g + e.Cost
			if old, seen := best[e.To]; seen && g >= old {
				continue
			}
			best[e.To] = g
			seq++
			heap.Push(open, &astarNode{
				id:     e.To,
				g:      g,
				f:      g + heuristic(s.graph.Nodes[e.To]),
				seq:    seq,
				parent: current,
			})
		}
	}

	s.observer.OnSearch(SearchEvent{Start: start, Goal: goal, Now: now, Found: false, Cost: math.Inf(1), Expanded: expanded})
	return NoPath(), nil
}

func reconstructPath(node *astarNode) core.Path {
	var ids []core.NodeID
	for n := node; n != nil; n = n.parent {
		ids = append(ids, n.id)
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return core.Path{Nodes: ids, Cost: node.g}
}
