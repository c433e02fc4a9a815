package draw

import (
	"image/color"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/vis/interact"
)

// Zone colors
var (
	ColorZoneActive   = color.NRGBA{R: 255, G: 80, B: 80, A: 200}
	ColorZoneInactive = color.NRGBA{R: 150, G: 150, B: 150, A: 120}
)

// ZoneColor returns the outline colour for a zone; inactive zones are
// shown greyed out.
func ZoneColor(active bool) color.NRGBA {
	if active {
		return ColorZoneActive
	}
	return ColorZoneInactive
}

// DrawZone fills a no-fly zone polygon translucently and strokes its edges.
func DrawZone(gtx layout.Context, z *core.NoFlyZone, camera *interact.Camera, active bool) {
	if len(z.Shape) < 3 {
		return
	}
	col := ZoneColor(active)

	var path clip.Path
	path.Begin(gtx.Ops)
	x, y := camera.WorldToScreen(z.Shape[0].X, z.Shape[0].Y)
	path.MoveTo(f32.Pt(x, y))
	for _, p := range z.Shape[1:] {
		x, y := camera.WorldToScreen(p.X, p.Y)
		path.LineTo(f32.Pt(x, y))
	}
	path.Close()

	fill := col
	fill.A /= 4
	paint.FillShape(gtx.Ops, fill, clip.Outline{Path: path.End()}.Op())

	for i := range z.Shape {
		a, b := z.Shape.Edge(i)
		DrawEdge(gtx, a, b, camera, col, 2)
	}
}
