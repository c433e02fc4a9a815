package scenario

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/geom"
)

const sample = `
name: sample
map: {width: 200, height: 100}
drones:
  - {id: 1, max_payload: 5, battery_capacity: 1000, speed: 10, start: [0, 0]}
  - {id: 2, max_payload: 2, battery_capacity: 1000, speed: 12, start: [100, 0]}
deliveries:
  - {id: 101, location: [10, 0], weight: 3, priority: 1}
  - {id: 102, location: [50, 40], weight: 1, priority: 4, time_window: ["09:00", "10:30"]}
zones:
  - id: 1001
    vertices: [[3, -5], [7, -5], [7, 5], [3, 5]]
    active: ["09:30", "11:00"]
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "sample", s.Name)
	assert.Equal(t, 200.0, s.Width)
	require.Len(t, s.Drones, 2)
	assert.Equal(t, core.Pos{X: 100, Y: 0}, s.Drones[1].Home)
	assert.Equal(t, 1000.0, s.Drones[0].CurrentBattery, "drones start full")
	assert.Equal(t, core.NodeID("D1_START"), s.Drones[0].LastNode)

	require.Len(t, s.Deliveries, 2)
	assert.Nil(t, s.Deliveries[0].TimeWindow)
	require.NotNil(t, s.Deliveries[1].TimeWindow)
	assert.Equal(t, core.Window{Start: core.Clock(9, 0), End: core.Clock(10, 30)}, *s.Deliveries[1].TimeWindow)

	require.Len(t, s.Zones, 1)
	assert.Len(t, s.Zones[0].Shape, 4)
	assert.False(t, s.Zones[0].Permanent())
	assert.True(t, s.Zones[0].ActiveAt(core.Clock(10, 0)))
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad point", "name: x\ndrones:\n  - {id: 1, max_payload: 1, battery_capacity: 1, speed: 1, start: [1]}\n"},
		{"unknown field", "name: x\ncolour: red\n"},
		{"bad window", "name: x\ndeliveries:\n  - {id: 1, location: [0, 0], weight: 1, priority: 1, time_window: [\"9am\", \"10am\"]}\n"},
		{"one-sided window", "name: x\nzones:\n  - {id: 1, vertices: [[0, 0], [1, 0], [0, 1]], active: [\"09:00\"]}\n"},
		{"two-vertex zone", "name: x\nzones:\n  - {id: 1, vertices: [[0, 0], [1, 0]]}\n"},
		{"duplicate drone", "name: x\ndrones:\n  - {id: 1, max_payload: 1, battery_capacity: 1, speed: 1, start: [0, 0]}\n  - {id: 1, max_payload: 1, battery_capacity: 1, speed: 1, start: [0, 0]}\n"},
		{"no battery", "name: x\ndrones:\n  - {id: 1, max_payload: 1, battery_capacity: 0, speed: 1, start: [0, 0]}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestValidateReportsSentinels(t *testing.T) {
	s := Demo()
	s.Deliveries = append(s.Deliveries, &core.Delivery{ID: 101, Weight: 1, Priority: 1})
	s.Zones = append(s.Zones, &core.NoFlyZone{ID: 7, Shape: core.Polygon{{X: 0, Y: 0}}})

	err := s.Validate()
	assert.ErrorIs(t, err, core.ErrDuplicateID)
	assert.ErrorIs(t, err, core.ErrInvalidPolygon)
}

func TestEncodeRoundTrip(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Encode(&buf))
	assert.Contains(t, buf.String(), "start: [0, 0]")
	assert.Contains(t, buf.String(), "time_window: [")

	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, FromScenario(s), FromScenario(again))
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, Demo().Save(path))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FromScenario(Demo()), FromScenario(s))
}

func TestDemo(t *testing.T) {
	s := Demo()
	require.NoError(t, s.Validate())
	assert.Len(t, s.Drones, 5)
	assert.Len(t, s.Deliveries, 10)
	assert.Len(t, s.Zones, 2)
	assert.Equal(t, 7160.0, s.Drones[0].CurrentBattery)
	for _, z := range s.Zones {
		assert.True(t, z.Permanent())
	}
}

func TestClone(t *testing.T) {
	s := Demo()
	c := s.Clone()
	c.Drones[0].CurrentBattery = 1
	c.Deliveries[0].Delivered = true

	assert.Equal(t, 7160.0, s.Drones[0].CurrentBattery)
	assert.False(t, s.Deliveries[0].Delivered)
	assert.Same(t, s.Zones[0], c.Zones[0])
}

func TestGenerate(t *testing.T) {
	p := DefaultParams()
	p.Seed = 11
	p.Deliveries = 40
	p.Zones = 6
	p.DeliveryWindowRate = 0.5

	s := Generate(p)
	require.NoError(t, s.Validate())
	assert.Equal(t, uint64(11), s.Seed)
	assert.True(t, strings.HasPrefix(s.Name, "random_5d_40t_6z"))

	for i, d := range s.Drones {
		assert.Equal(t, core.DroneID(i+1), d.ID)
		assert.GreaterOrEqual(t, d.MaxPayload, 2.0)
		assert.LessOrEqual(t, d.MaxPayload, 10.0)
		assert.GreaterOrEqual(t, d.BatteryCapacity, 5000.0)
		assert.LessOrEqual(t, d.BatteryCapacity, 20000.0)
		assert.GreaterOrEqual(t, d.Speed, 5.0)
		assert.LessOrEqual(t, d.Speed, 20.0)
	}
	windows := 0
	for i, dl := range s.Deliveries {
		assert.Equal(t, core.DeliveryID(FirstDeliveryID+i), dl.ID)
		assert.GreaterOrEqual(t, dl.Weight, 1.0)
		assert.LessOrEqual(t, dl.Weight, 5.0)
		assert.GreaterOrEqual(t, dl.Priority, 1)
		assert.LessOrEqual(t, dl.Priority, 5)
		assert.GreaterOrEqual(t, dl.Location.X, 0.0)
		assert.LessOrEqual(t, dl.Location.X, 1000.0)
		if dl.TimeWindow != nil {
			windows++
		}
	}
	assert.Positive(t, windows)

	for i, z := range s.Zones {
		assert.Equal(t, core.ZoneID(FirstZoneID+i), z.ID)
		assert.GreaterOrEqual(t, len(z.Shape), 3)
		assert.LessOrEqual(t, len(z.Shape), 6)
		for _, v := range z.Shape {
			assert.GreaterOrEqual(t, v.X, 250.0)
			assert.LessOrEqual(t, v.X, 750.0)
		}
		assert.GreaterOrEqual(t, z.Shape.SignedArea(), 0.0, "angle order winds counter-clockwise")
		for _, v := range z.Shape {
			assert.True(t, geom.PointInPolygon(v, z.Shape))
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	p := DefaultParams()
	p.Seed = 3
	assert.Equal(t, FromScenario(Generate(p)), FromScenario(Generate(p)))

	p.Seed = 4
	other := Generate(p)
	p.Seed = 3
	assert.NotEqual(t, FromScenario(Generate(p)).Drones, FromScenario(other).Drones)
}

func TestGeneratePermanentZones(t *testing.T) {
	p := DefaultParams()
	p.Seed = 9
	p.Zones = 10
	p.ZoneWindows = false
	for _, z := range Generate(p).Zones {
		assert.True(t, z.Permanent())
	}
}
