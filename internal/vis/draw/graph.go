// Package draw provides rendering functions for visualization.
package draw

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/vis/interact"
)

// Colors for different node kinds
var (
	ColorNodeStart     = color.NRGBA{R: 80, G: 180, B: 100, A: 255}
	ColorNodeTask      = color.NRGBA{R: 100, G: 140, B: 220, A: 255}
	ColorNodeCorner    = color.NRGBA{R: 200, G: 140, B: 80, A: 255}
	ColorNodeWaypoint  = color.NRGBA{R: 120, G: 130, B: 140, A: 255}
	ColorEdgeDefault   = color.NRGBA{R: 80, G: 90, B: 100, A: 120}
	ColorEdgeHighlight = color.NRGBA{R: 150, G: 170, B: 190, A: 255}
)

// NodeColor returns the fill colour for a node kind.
func NodeColor(k core.NodeKind) color.NRGBA {
	switch k {
	case core.KindVehicleStart:
		return ColorNodeStart
	case core.KindTask:
		return ColorNodeTask
	case core.KindZoneCorner:
		return ColorNodeCorner
	default:
		return ColorNodeWaypoint
	}
}

// DrawGraph renders the routing graph. Edges are drawn only when asked,
// since a visibility graph is dense.
func DrawGraph(gtx layout.Context, g *core.Graph, camera *interact.Camera, edges bool) {
	if edges {
		// Draw edges first (underneath nodes)
		for _, id := range g.NodeIDs() {
			n1 := g.Nodes[id]
			for _, e := range g.Neighbors(id) {
				// Only draw each edge once
				if id > e.To {
					continue
				}
				if n2, ok := g.Node(e.To); ok {
					DrawEdge(gtx, n1.Pos, n2.Pos, camera, ColorEdgeDefault, 1)
				}
			}
		}
	}

	for _, id := range g.NodeIDs() {
		n := g.Nodes[id]
		radius := float32(5)
		if n.Detour() {
			radius = 3
		}
		DrawVertex(gtx, n.Pos, camera, NodeColor(n.Kind()), radius)
	}
}

// DrawVertex draws a vertex as a filled circle. The radius is in screen
// pixels and does not scale with zoom.
func DrawVertex(gtx layout.Context, pos core.Pos, camera *interact.Camera, col color.NRGBA, radius float32) {
	screenX, screenY := camera.WorldToScreen(pos.X, pos.Y)
	drawFilledCircle(gtx, screenX, screenY, radius, col)
}

// DrawEdge draws an edge as a line between two positions.
func DrawEdge(gtx layout.Context, p1, p2 core.Pos, camera *interact.Camera, col color.NRGBA, width float32) {
	x1, y1 := camera.WorldToScreen(p1.X, p1.Y)
	x2, y2 := camera.WorldToScreen(p2.X, p2.Y)
	drawPathSegment(gtx, x1, y1, x2, y2, width, col)
}

// DrawCircleOutline draws a circle outline.
func DrawCircleOutline(gtx layout.Context, centerX, centerY float32, radius float32, col color.NRGBA, strokeWidth float32) {
	// Outer circle
	var outerPath clip.Path
	outerPath.Begin(gtx.Ops)
	outerPath.Move(f32.Pt(centerX+radius, centerY))

	segments := 24
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		x := centerX + radius*float32(math.Cos(angle))
		y := centerY + radius*float32(math.Sin(angle))
		outerPath.Line(f32.Pt(x-outerPath.Pos().X, y-outerPath.Pos().Y))
	}
	outerPath.Close()

	// Inner circle (hole)
	innerR := max(radius-strokeWidth, 0)
	outerPath.Move(f32.Pt(centerX+innerR-outerPath.Pos().X, centerY-outerPath.Pos().Y))
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		x := centerX + innerR*float32(math.Cos(angle))
		y := centerY + innerR*float32(math.Sin(angle))
		outerPath.Line(f32.Pt(x-outerPath.Pos().X, y-outerPath.Pos().Y))
	}
	outerPath.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: outerPath.End()}.Op())
}

// HitTestVertex checks if screen point hits a vertex.
func HitTestVertex(screenX, screenY float32, pos core.Pos, camera *interact.Camera, radius float32) bool {
	vx, vy := camera.WorldToScreen(pos.X, pos.Y)
	dx := screenX - vx
	dy := screenY - vy
	return dx*dx+dy*dy <= radius*radius
}

// FindNodeAt finds the first node in insertion order at screen coordinates.
func FindNodeAt(screenX, screenY float32, g *core.Graph, camera *interact.Camera) *core.Node {
	radius := float32(8) // Hit test radius
	for _, id := range g.NodeIDs() {
		if n := g.Nodes[id]; HitTestVertex(screenX, screenY, n.Pos, camera, radius) {
			return n
		}
	}
	return nil
}

// DrawGrid draws a background grid.
func DrawGrid(gtx layout.Context, camera *interact.Camera, gridSize float64, col color.NRGBA) {
	bounds := gtx.Constraints.Max

	// Visible world bounds; Y is flipped so the bottom edge has the low value
	minWorldX, maxWorldY := camera.ScreenToWorld(0, 0)
	maxWorldX, minWorldY := camera.ScreenToWorld(float32(bounds.X), float32(bounds.Y))

	// Skip when zoomed out so far the lines would merge
	if gridSize*float64(camera.Zoom) < 4 {
		return
	}

	startX := math.Floor(minWorldX/gridSize) * gridSize
	startY := math.Floor(minWorldY/gridSize) * gridSize

	for x := startX; x <= maxWorldX; x += gridSize {
		sx, _ := camera.WorldToScreen(x, 0)
		if sx >= 0 && sx <= float32(bounds.X) {
			rect := image.Rect(int(sx), 0, int(sx)+1, bounds.Y)
			paint.FillShape(gtx.Ops, col, clip.Rect(rect).Op())
		}
	}

	for y := startY; y <= maxWorldY; y += gridSize {
		_, sy := camera.WorldToScreen(0, y)
		if sy >= 0 && sy <= float32(bounds.Y) {
			rect := image.Rect(0, int(sy), bounds.X, int(sy)+1)
			paint.FillShape(gtx.Ops, col, clip.Rect(rect).Op())
		}
	}
}
