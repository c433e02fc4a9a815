package scenario

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/dronefleet/internal/core"
)

// Document is the on-disk YAML layout. Points are written as [x, y] and
// windows as ["HH:MM", "HH:MM"].
type Document struct {
	Name       string           `yaml:"name"`
	Seed       uint64           `yaml:"seed,omitempty"`
	Map        MapSize          `yaml:"map"`
	Drones     []DroneRecord    `yaml:"drones"`
	Deliveries []DeliveryRecord `yaml:"deliveries"`
	Zones      []ZoneRecord     `yaml:"zones,omitempty"`
}

type MapSize struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type DroneRecord struct {
	ID              int     `yaml:"id"`
	MaxPayload      float64 `yaml:"max_payload"`
	BatteryCapacity float64 `yaml:"battery_capacity"`
	Speed           float64 `yaml:"speed"`
	Start           Point   `yaml:"start"`
}

type DeliveryRecord struct {
	ID         int      `yaml:"id"`
	Location   Point    `yaml:"location"`
	Weight     float64  `yaml:"weight"`
	Priority   int      `yaml:"priority"`
	TimeWindow []string `yaml:"time_window,omitempty,flow"`
}

type ZoneRecord struct {
	ID       int      `yaml:"id"`
	Vertices []Point  `yaml:"vertices"`
	Active   []string `yaml:"active,omitempty,flow"`
}

// Point is a coordinate pair.
type Point core.Pos

func (p *Point) UnmarshalYAML(n *yaml.Node) error {
	var xy []float64
	if err := n.Decode(&xy); err != nil {
		return fmt.Errorf("line %d: point: %w", n.Line, err)
	}
	if len(xy) != 2 {
		return fmt.Errorf("line %d: point needs 2 coordinates, got %d", n.Line, len(xy))
	}
	*p = Point{X: xy[0], Y: xy[1]}
	return nil
}

func (p Point) MarshalYAML() (any, error) {
	n := &yaml.Node{}
	if err := n.Encode([]float64{p.X, p.Y}); err != nil {
		return nil, err
	}
	n.Style = yaml.FlowStyle
	return n, nil
}

func parseWindow(pair []string) (*core.Window, error) {
	if len(pair) == 0 {
		return nil, nil
	}
	if len(pair) != 2 {
		return nil, fmt.Errorf("%w: want [start, end], got %d values", core.ErrInvalidWindow, len(pair))
	}
	w, err := core.ParseWindow(pair[0], pair[1])
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func formatWindow(w *core.Window) []string {
	if w == nil {
		return nil
	}
	return []string{w.Start.String(), w.End.String()}
}

// Scenario converts the document into domain records with full batteries.
func (d Document) Scenario() (*Scenario, error) {
	s := &Scenario{Name: d.Name, Width: d.Map.Width, Height: d.Map.Height, Seed: d.Seed}

	for _, r := range d.Drones {
		s.Drones = append(s.Drones, core.NewDrone(core.DroneID(r.ID), r.MaxPayload, r.BatteryCapacity, r.Speed, core.Pos(r.Start)))
	}
	for _, r := range d.Deliveries {
		w, err := parseWindow(r.TimeWindow)
		if err != nil {
			return nil, fmt.Errorf("delivery %d: %w", r.ID, err)
		}
		s.Deliveries = append(s.Deliveries, &core.Delivery{
			ID:         core.DeliveryID(r.ID),
			Location:   core.Pos(r.Location),
			Weight:     r.Weight,
			Priority:   r.Priority,
			TimeWindow: w,
		})
	}
	for _, r := range d.Zones {
		w, err := parseWindow(r.Active)
		if err != nil {
			return nil, fmt.Errorf("zone %d: %w", r.ID, err)
		}
		shape := make(core.Polygon, len(r.Vertices))
		for i, v := range r.Vertices {
			shape[i] = core.Pos(v)
		}
		s.Zones = append(s.Zones, &core.NoFlyZone{ID: core.ZoneID(r.ID), Shape: shape, Active: w})
	}
	return s, nil
}

// FromScenario converts domain records back into the YAML layout. Battery
// state is not persisted; drones are written with their capacity.
func FromScenario(s *Scenario) Document {
	d := Document{Name: s.Name, Seed: s.Seed, Map: MapSize{Width: s.Width, Height: s.Height}}
	for _, dr := range s.Drones {
		d.Drones = append(d.Drones, DroneRecord{
			ID:              int(dr.ID),
			MaxPayload:      dr.MaxPayload,
			BatteryCapacity: dr.BatteryCapacity,
			Speed:           dr.Speed,
			Start:           Point(dr.Home),
		})
	}
	for _, dl := range s.Deliveries {
		d.Deliveries = append(d.Deliveries, DeliveryRecord{
			ID:         int(dl.ID),
			Location:   Point(dl.Location),
			Weight:     dl.Weight,
			Priority:   dl.Priority,
			TimeWindow: formatWindow(dl.TimeWindow),
		})
	}
	for _, z := range s.Zones {
		r := ZoneRecord{ID: int(z.ID), Active: formatWindow(z.Active)}
		for _, v := range z.Shape {
			r.Vertices = append(r.Vertices, Point(v))
		}
		d.Zones = append(d.Zones, r)
	}
	return d
}
