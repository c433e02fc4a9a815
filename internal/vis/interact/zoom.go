// Package interact handles user interactions like pan, zoom, and selection.
package interact

import (
	"gioui.org/io/pointer"
	"gioui.org/layout"

	"github.com/elektrokombinacija/dronefleet/internal/geom"
)

const (
	minZoom = 0.01
	maxZoom = 20
)

// Camera manages view transformation (pan and zoom). World Y grows
// upward, so it is flipped on the way to the screen.
type Camera struct {
	// View transform
	OffsetX float32 // Pan offset in screen pixels
	OffsetY float32
	Zoom    float32 // Zoom level (1.0 = one pixel per metre)

	// Interaction state
	dragging bool
	lastX    float32
	lastY    float32
}

// NewCamera creates a new camera with default settings.
func NewCamera() *Camera {
	c := &Camera{}
	c.Reset()
	return c
}

// Reset resets camera to default view.
func (c *Camera) Reset() {
	c.OffsetX = 100
	c.OffsetY = 700
	c.Zoom = 0.6
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(worldX, worldY float64) (screenX, screenY float32) {
	screenX = float32(worldX)*c.Zoom + c.OffsetX
	screenY = c.OffsetY - float32(worldY)*c.Zoom
	return
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(screenX, screenY float32) (worldX, worldY float64) {
	worldX = float64((screenX - c.OffsetX) / c.Zoom)
	worldY = float64((c.OffsetY - screenY) / c.Zoom)
	return
}

// HandleEvent processes pointer events for pan and zoom.
func (c *Camera) HandleEvent(gtx layout.Context, ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		if ev.Buttons.Contain(pointer.ButtonSecondary) || ev.Buttons.Contain(pointer.ButtonTertiary) {
			c.dragging = true
		}
		c.lastX = ev.Position.X
		c.lastY = ev.Position.Y

	case pointer.Drag:
		if c.dragging {
			c.Pan(ev.Position.X-c.lastX, ev.Position.Y-c.lastY)
		}
		c.lastX = ev.Position.X
		c.lastY = ev.Position.Y

	case pointer.Release:
		c.dragging = false

	case pointer.Scroll:
		// Zoom centered on mouse position
		switch {
		case ev.Scroll.Y > 0:
			c.ZoomBy(1/1.1, ev.Position.X, ev.Position.Y)
		case ev.Scroll.Y < 0:
			c.ZoomBy(1.1, ev.Position.X, ev.Position.Y)
		}
	}
}

// Pan pans the camera by the given screen delta.
func (c *Camera) Pan(dx, dy float32) {
	c.OffsetX += dx
	c.OffsetY += dy
}

// ZoomBy zooms by a factor, centered on screen point.
func (c *Camera) ZoomBy(factor float32, centerX, centerY float32) {
	worldX, worldY := c.ScreenToWorld(centerX, centerY)

	c.Zoom = clampZoom(c.Zoom * factor)

	newScreenX, newScreenY := c.WorldToScreen(worldX, worldY)
	c.OffsetX += centerX - newScreenX
	c.OffsetY += centerY - newScreenY
}

// CenterOn centers the camera on a world position.
func (c *Camera) CenterOn(worldX, worldY float64, screenWidth, screenHeight float32) {
	c.OffsetX = screenWidth/2 - float32(worldX)*c.Zoom
	c.OffsetY = screenHeight/2 + float32(worldY)*c.Zoom
}

// FitBounds adjusts camera to fit the given world bounds.
func (c *Camera) FitBounds(r geom.Rect, screenWidth, screenHeight float32, margin float32) {
	worldW := r.Max.X - r.Min.X
	worldH := r.Max.Y - r.Min.Y

	if worldW <= 0 || worldH <= 0 {
		return
	}

	availW := screenWidth - 2*margin
	availH := screenHeight - 2*margin

	zoomX := availW / float32(worldW)
	zoomY := availH / float32(worldH)

	c.Zoom = clampZoom(min(zoomX, zoomY))

	c.CenterOn((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2, screenWidth, screenHeight)
}

func clampZoom(z float32) float32 {
	return max(minZoom, min(maxZoom, z))
}
