package draw

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/vis/interact"
)

// DrawPath draws a polyline of world positions.
func DrawPath(gtx layout.Context, path []core.Pos, camera *interact.Camera, col color.NRGBA, width float32) {
	if len(path) < 2 {
		return
	}

	for i := 0; i < len(path)-1; i++ {
		x1, y1 := camera.WorldToScreen(path[i].X, path[i].Y)
		x2, y2 := camera.WorldToScreen(path[i+1].X, path[i+1].Y)

		drawPathSegment(gtx, x1, y1, x2, y2, width, col)
	}
}

// DrawPathTrail draws a fading trail behind a drone.
func DrawPathTrail(gtx layout.Context, history []core.Pos, camera *interact.Camera, baseColor color.NRGBA, maxWidth float32) {
	if len(history) < 2 {
		return
	}

	n := len(history)
	for i := 0; i < n-1; i++ {
		// Fade alpha from start to end
		col := baseColor
		col.A = uint8(50 + float64(i)/float64(n)*150)

		// Width also fades
		w := maxWidth * (0.3 + 0.7*float32(i)/float32(n))

		x1, y1 := camera.WorldToScreen(history[i].X, history[i].Y)
		x2, y2 := camera.WorldToScreen(history[i+1].X, history[i+1].Y)

		drawPathSegment(gtx, x1, y1, x2, y2, w, col)
	}
}

func drawPathSegment(gtx layout.Context, x1, y1, x2, y2, width float32, col color.NRGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 0.1 {
		return
	}

	dx /= length
	dy /= length
	px := -dy * width / 2
	py := dx * width / 2

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x1+px, y1+py))
	path.LineTo(f32.Pt(x2+px, y2+py))
	path.LineTo(f32.Pt(x2-px, y2-py))
	path.LineTo(f32.Pt(x1-px, y1-py))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

// DrawRoute draws a planned route dimmed, with direction arrows on every
// leg long enough to hold one.
func DrawRoute(gtx layout.Context, positions []core.Pos, camera *interact.Camera, col color.NRGBA) {
	if len(positions) < 2 {
		return
	}

	dim := col
	dim.A = 90
	DrawPath(gtx, positions, camera, dim, 1.5)

	for i := 0; i < len(positions)-1; i++ {
		x1, y1 := camera.WorldToScreen(positions[i].X, positions[i].Y)
		x2, y2 := camera.WorldToScreen(positions[i+1].X, positions[i+1].Y)

		dx := x2 - x1
		dy := y2 - y1
		length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
		if length < 20 {
			continue
		}

		drawArrow(gtx, (x1+x2)/2, (y1+y2)/2, dx/length, dy/length, dim)
	}
}

// drawArrow draws an arrow head at a screen point pointing along (dirX, dirY).
func drawArrow(gtx layout.Context, screenX, screenY, dirX, dirY float32, col color.NRGBA) {
	size := float32(6)

	// Arrow head points
	tipX := screenX + dirX*size
	tipY := screenY + dirY*size

	// Perpendicular
	perpX := -dirY * size * 0.5
	perpY := dirX * size * 0.5

	baseX := screenX - dirX*size*0.3
	baseY := screenY - dirY*size*0.3

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(tipX, tipY))
	path.LineTo(f32.Pt(baseX+perpX, baseY+perpY))
	path.LineTo(f32.Pt(baseX-perpX, baseY-perpY))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}
