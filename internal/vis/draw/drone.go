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

// Drone colors cycle through the palette by id
var dronePalette = []color.NRGBA{
	{R: 100, G: 200, B: 255, A: 255}, // Cyan
	{R: 255, G: 150, B: 100, A: 255}, // Orange
	{R: 200, G: 100, B: 255, A: 255}, // Purple
	{R: 120, G: 220, B: 120, A: 255}, // Green
	{R: 255, G: 210, B: 90, A: 255},  // Amber
	{R: 240, G: 110, B: 170, A: 255}, // Pink
}

var (
	ColorDroneSelected  = color.NRGBA{R: 255, G: 255, B: 100, A: 255}
	ColorDeliveryOpen   = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
	ColorDeliveryServed = color.NRGBA{R: 80, G: 200, B: 120, A: 255}
	ColorBatteryLow     = color.NRGBA{R: 230, G: 70, B: 60, A: 255}
	ColorBatteryTrack   = color.NRGBA{R: 50, G: 55, B: 60, A: 255}
)

// DroneColor returns the color for a drone.
func DroneColor(id core.DroneID) color.NRGBA {
	i := int(id) % len(dronePalette)
	if i < 0 {
		i += len(dronePalette)
	}
	return dronePalette[i]
}

// BatteryColor shades the battery bar; below the critical level it turns red.
func BatteryColor(percent, critical float64, base color.NRGBA) color.NRGBA {
	if percent < critical {
		return ColorBatteryLow
	}
	return base
}

// DrawDrone draws a quadcopter with a battery bar underneath.
func DrawDrone(gtx layout.Context, pos core.Pos, d *core.Drone, camera *interact.Camera, batteryPercent float64, selected bool) {
	screenX, screenY := camera.WorldToScreen(pos.X, pos.Y)
	size := float32(14)

	col := DroneColor(d.ID)
	if selected {
		col = ColorDroneSelected
		DrawCircleOutline(gtx, screenX, screenY, size*1.2, col, 2)
	}

	drawQuadcopter(gtx, screenX, screenY, size, col)

	// Battery bar
	w := size * 1.6
	top := screenY + size
	drawRectangle(gtx, screenX, top, w, 3, ColorBatteryTrack)
	frac := float32(max(0, min(100, batteryPercent)) / 100)
	if frac > 0 {
		fill := BatteryColor(batteryPercent, d.CriticalPercent, col)
		drawRectangle(gtx, screenX-w/2+w*frac/2, top, w*frac, 3, fill)
	}
}

// DrawDelivery draws a delivery point as a square, filled once served.
func DrawDelivery(gtx layout.Context, dl *core.Delivery, camera *interact.Camera, served bool) {
	x, y := camera.WorldToScreen(dl.Location.X, dl.Location.Y)
	if served {
		drawSquare(gtx, x, y, 9, ColorDeliveryServed)
		return
	}
	drawSquare(gtx, x, y, 9, ColorDeliveryOpen)
	drawSquare(gtx, x, y, 5, ColorBatteryTrack)
}

func drawSquare(gtx layout.Context, cx, cy, size float32, col color.NRGBA) {
	drawRectangle(gtx, cx, cy, size, size, col)
}

func drawRectangle(gtx layout.Context, cx, cy, width, height float32, col color.NRGBA) {
	halfW := width / 2
	halfH := height / 2
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(cx-halfW, cy-halfH))
	path.LineTo(f32.Pt(cx+halfW, cy-halfH))
	path.LineTo(f32.Pt(cx+halfW, cy+halfH))
	path.LineTo(f32.Pt(cx-halfW, cy+halfH))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func drawQuadcopter(gtx layout.Context, cx, cy, size float32, col color.NRGBA) {
	armLen := size * 0.7
	rotorR := size * 0.3

	// Draw arms (X shape)
	for _, angle := range []float64{45, 135, 225, 315} {
		rad := angle * math.Pi / 180
		dx := float32(math.Cos(rad)) * armLen
		dy := float32(math.Sin(rad)) * armLen

		drawPathSegment(gtx, cx, cy, cx+dx, cy+dy, 2, col)
		drawFilledCircle(gtx, cx+dx, cy+dy, rotorR, col)
	}

	// Center body
	drawFilledCircle(gtx, cx, cy, size*0.25, col)
}

func drawFilledCircle(gtx layout.Context, cx, cy, radius float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.Move(f32.Pt(cx+radius, cy))

	segments := 12
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		x := cx + radius*float32(math.Cos(angle))
		y := cy + radius*float32(math.Sin(angle))
		path.Line(f32.Pt(x-path.Pos().X, y-path.Pos().Y))
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}
