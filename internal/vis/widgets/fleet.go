package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/vis/draw"
	"github.com/elektrokombinacija/dronefleet/internal/vis/state"
)

// Colors for log entries
var (
	ColorLogInfo  = color.NRGBA{R: 190, G: 190, B: 190, A: 255}
	ColorLogWarn  = color.NRGBA{R: 255, G: 200, B: 80, A: 255}
	ColorLogError = color.NRGBA{R: 255, G: 90, B: 80, A: 255}
)

// FleetPanel lists the drones with their battery and the planner log up
// to the current playback position.
type FleetPanel struct {
	state *state.State
	log   widget.List
}

// NewFleetPanel creates a new fleet panel.
func NewFleetPanel(st *state.State) *FleetPanel {
	p := &FleetPanel{state: st}
	p.log.Axis = layout.Vertical
	p.log.ScrollToEnd = true
	return p
}

// Layout renders the panel.
func (p *FleetPanel) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	width := gtx.Dp(unit.Dp(300))
	height := gtx.Constraints.Max.Y
	gtx.Constraints = layout.Exact(image.Point{X: width, Y: height})

	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255}, clip.Rect(image.Rect(0, 0, width, height)).Op())

	return layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return p.header(gtx, th, "Fleet")
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return p.layoutDrones(gtx, th)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return p.header(gtx, th, "Planner log")
			}),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return p.layoutLog(gtx, th)
			}),
		)
	})
}

func (p *FleetPanel) header(gtx layout.Context, th *material.Theme, title string) layout.Dimensions {
	return layout.Inset{Bottom: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		label := material.Label(th, 14, title)
		label.Color = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
		return label.Layout(gtx)
	})
}

func (p *FleetPanel) layoutDrones(gtx layout.Context, th *material.Theme) layout.Dimensions {
	st := p.state
	if st.Scenario == nil {
		return layout.Dimensions{}
	}

	served := make(map[core.DroneID]int)
	for _, id := range st.Served() {
		served[st.Result.Assignment[id]]++
	}

	rows := make([]layout.FlexChild, 0, len(st.Scenario.Drones))
	for _, d := range st.Scenario.Drones {
		rows = append(rows, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return p.droneRow(gtx, th, d, served[d.ID])
		}))
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, rows...)
}

func (p *FleetPanel) droneRow(gtx layout.Context, th *material.Theme, d *core.Drone, served int) layout.Dimensions {
	pct := p.state.BatteryPercent(d.ID)
	col := draw.DroneColor(d.ID)
	if d.ID == p.state.Selected {
		col = draw.ColorDroneSelected
	}

	return layout.Inset{Bottom: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				size := gtx.Dp(unit.Dp(10))
				paint.FillShape(gtx.Ops, col, clip.Rect(image.Rect(0, 0, size, size)).Op())
				return layout.Dimensions{Size: image.Point{X: size, Y: size}}
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(6)}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				label := material.Label(th, 12, fmt.Sprintf("D%d  %4.0f%%  %d served  %.1f kg", d.ID, pct, served, d.MaxPayload))
				label.Color = draw.BatteryColor(pct, d.CriticalPercent, ColorLogInfo)
				return label.Layout(gtx)
			}),
		)
	})
}

func (p *FleetPanel) layoutLog(gtx layout.Context, th *material.Theme) layout.Dimensions {
	events := p.state.Log.Until(p.state.Playback.Step())
	return material.List(th, &p.log).Layout(gtx, len(events), func(gtx layout.Context, i int) layout.Dimensions {
		ev := events[i]
		label := material.Label(th, 11, ev.Text)
		switch ev.Severity {
		case state.SeverityWarn:
			label.Color = ColorLogWarn
		case state.SeverityError:
			label.Color = ColorLogError
		default:
			label.Color = ColorLogInfo
		}
		return layout.Inset{Bottom: unit.Dp(2)}.Layout(gtx, label.Layout)
	})
}
