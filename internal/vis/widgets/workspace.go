// Package widgets provides Gio UI widgets for the visualizer.
package widgets

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/geom"
	"github.com/elektrokombinacija/dronefleet/internal/vis/draw"
	"github.com/elektrokombinacija/dronefleet/internal/vis/interact"
	"github.com/elektrokombinacija/dronefleet/internal/vis/state"
)

// Workspace is the main 2D map view.
type Workspace struct {
	state  *state.State
	camera *interact.Camera
	fitted bool
}

// NewWorkspace creates a new workspace widget.
func NewWorkspace(st *state.State, camera *interact.Camera) *Workspace {
	return &Workspace{
		state:  st,
		camera: camera,
	}
}

// Refit fits the map to the view on the next frame.
func (w *Workspace) Refit() {
	w.fitted = false
}

// Layout renders the workspace.
func (w *Workspace) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	// Clip to bounds
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()

	if !w.fitted && bounds.X > 0 && bounds.Y > 0 {
		w.camera.FitBounds(w.mapBounds(), float32(bounds.X), float32(bounds.Y), 30)
		w.fitted = true
	}

	// Fill background
	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	// Handle pointer events
	w.handlePointerEvents(gtx)

	draw.DrawGrid(gtx, w.camera, 100, color.NRGBA{R: 40, G: 45, B: 50, A: 255})

	st := w.state
	if st.Scenario == nil {
		return layout.Dimensions{Size: bounds}
	}

	for _, z := range st.Scenario.Zones {
		draw.DrawZone(gtx, z, w.camera, st.ZoneActive(z))
	}

	if st.ShowGraph && st.Graph != nil {
		draw.DrawGraph(gtx, st.Graph, w.camera, true)
	}

	// Planned routes, then flown trails on top
	for i := range st.Steps() {
		r := st.RouteAt(i)
		if st.Selected != 0 && r.Drone != st.Selected {
			continue
		}
		draw.DrawRoute(gtx, st.RoutePositions(r), w.camera, draw.DroneColor(r.Drone))
	}
	for _, d := range st.Scenario.Drones {
		if history := st.PathHistory(d.ID); len(history) > 1 {
			draw.DrawPathTrail(gtx, history, w.camera, draw.DroneColor(d.ID), 3)
		}
	}

	served := make(map[core.DeliveryID]bool)
	for _, id := range st.Served() {
		served[id] = true
	}
	for _, dl := range st.Scenario.Deliveries {
		draw.DrawDelivery(gtx, dl, w.camera, served[dl.ID])
	}

	positions := st.CurrentPositions()
	for _, d := range st.Scenario.Drones {
		draw.DrawDrone(gtx, positions[d.ID], d, w.camera, st.BatteryPercent(d.ID), d.ID == st.Selected)
	}

	return layout.Dimensions{Size: bounds}
}

// mapBounds covers the declared map and everything placed on it.
func (w *Workspace) mapBounds() geom.Rect {
	s := w.state.Scenario
	r := geom.Rect{Max: core.Pos{X: 1000, Y: 1000}}
	if s == nil {
		return r
	}
	if s.Width > 0 && s.Height > 0 {
		r.Max = core.Pos{X: s.Width, Y: s.Height}
	}
	for _, d := range s.Drones {
		r = r.Union(geom.Rect{Min: d.Home, Max: d.Home})
	}
	for _, dl := range s.Deliveries {
		r = r.Union(geom.Rect{Min: dl.Location, Max: dl.Location})
	}
	for _, z := range s.Zones {
		r = r.Union(geom.Bounds(z.Shape))
	}
	return r
}

func (w *Workspace) handlePointerEvents(gtx layout.Context) {
	// Register for pointer events
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  w,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll | pointer.Move,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			break
		}
		if pe, ok := ev.(pointer.Event); ok {
			w.camera.HandleEvent(gtx, pe)
			if pe.Kind == pointer.Press && pe.Buttons.Contain(pointer.ButtonPrimary) {
				w.handleClick(pe.Position.X, pe.Position.Y)
			}
		}
	}
}

// handleClick selects the drone under the pointer, or clears the
// selection on empty space.
func (w *Workspace) handleClick(screenX, screenY float32) {
	if w.state.Scenario == nil {
		return
	}

	positions := w.state.CurrentPositions()
	for _, d := range w.state.Scenario.Drones {
		if draw.HitTestVertex(screenX, screenY, positions[d.ID], w.camera, 15) {
			w.state.Selected = d.ID
			return
		}
	}
	w.state.Selected = 0
}
