package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elektrokombinacija/dronefleet/internal/core"
)

func square(x0, y0, x1, y1 float64) core.Polygon {
	return core.Polygon{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func TestPointInPolygonConvex(t *testing.T) {
	polys := map[string]core.Polygon{
		"ccw square": square(0, 0, 10, 10),
		"cw square":  {{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}},
		"triangle":   {{X: 0, Y: 0}, {X: 8, Y: 1}, {X: 3, Y: 7}},
	}

	for name, pg := range polys {
		for _, v := range pg {
			assert.True(t, PointInPolygon(v, pg), "%s vertex %v", name, v)
		}
		assert.True(t, PointInPolygon(pg.Centroid(), pg), "%s centroid", name)
		assert.False(t, PointInPolygon(core.Pos{X: 500, Y: 500}, pg), "%s far point", name)
		assert.False(t, PointInPolygon(core.Pos{X: -50, Y: 3}, pg), "%s far left", name)
	}
}

func TestPointInPolygonConcave(t *testing.T) {
	// U shape opening upwards.
	u := core.Polygon{
		{X: 0, Y: 0}, {X: 9, Y: 0}, {X: 9, Y: 9}, {X: 6, Y: 9},
		{X: 6, Y: 3}, {X: 3, Y: 3}, {X: 3, Y: 9}, {X: 0, Y: 9},
	}
	assert.True(t, PointInPolygon(core.Pos{X: 1, Y: 5}, u))
	assert.True(t, PointInPolygon(core.Pos{X: 7, Y: 5}, u))
	assert.False(t, PointInPolygon(core.Pos{X: 4.5, Y: 6}, u))
}

func TestPointInPolygonConsistentOnBoundary(t *testing.T) {
	pg := square(0, 0, 10, 10)
	p := core.Pos{X: 10, Y: 4}
	first := PointInPolygon(p, pg)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, PointInPolygon(p, pg))
	}
}

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name           string
		a1, a2, b1, b2 core.Pos
		want           bool
	}{
		{"proper crossing", core.Pos{X: 0, Y: 0}, core.Pos{X: 4, Y: 4}, core.Pos{X: 0, Y: 4}, core.Pos{X: 4, Y: 0}, true},
		{"endpoint touches", core.Pos{X: 0, Y: 0}, core.Pos{X: 2, Y: 2}, core.Pos{X: 2, Y: 2}, core.Pos{X: 5, Y: 0}, true},
		{"t junction", core.Pos{X: 0, Y: 0}, core.Pos{X: 4, Y: 0}, core.Pos{X: 2, Y: 0}, core.Pos{X: 2, Y: 3}, true},
		{"collinear overlap", core.Pos{X: 0, Y: 0}, core.Pos{X: 4, Y: 0}, core.Pos{X: 3, Y: 0}, core.Pos{X: 6, Y: 0}, true},
		{"collinear apart", core.Pos{X: 0, Y: 0}, core.Pos{X: 2, Y: 0}, core.Pos{X: 3, Y: 0}, core.Pos{X: 6, Y: 0}, false},
		{"parallel", core.Pos{X: 0, Y: 0}, core.Pos{X: 4, Y: 0}, core.Pos{X: 0, Y: 1}, core.Pos{X: 4, Y: 1}, false},
		{"disjoint", core.Pos{X: 0, Y: 0}, core.Pos{X: 1, Y: 1}, core.Pos{X: 3, Y: 0}, core.Pos{X: 5, Y: -2}, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SegmentsIntersect(tt.a1, tt.a2, tt.b1, tt.b2), tt.name)
		assert.Equal(t, tt.want, SegmentsIntersect(tt.b1, tt.b2, tt.a1, tt.a2), tt.name+" swapped")
	}
}

func TestSegmentCrossesPolygon(t *testing.T) {
	pg := square(3, -5, 7, 5)

	assert.True(t, SegmentCrossesPolygon(core.Pos{X: 0, Y: 0}, core.Pos{X: 10, Y: 0}, pg), "through")
	assert.True(t, SegmentCrossesPolygon(core.Pos{X: 5, Y: 0}, core.Pos{X: 20, Y: 20}, pg), "starts inside")
	assert.True(t, SegmentCrossesPolygon(core.Pos{X: 0, Y: 8}, core.Pos{X: 6, Y: 2}, pg), "clips corner")
	assert.True(t, SegmentCrossesPolygon(core.Pos{X: 0, Y: 5}, core.Pos{X: 10, Y: 5}, pg), "runs along edge")
	assert.False(t, SegmentCrossesPolygon(core.Pos{X: 0, Y: 6}, core.Pos{X: 10, Y: 6}, pg), "passes above")
	assert.False(t, SegmentCrossesPolygon(core.Pos{X: 0, Y: 0}, core.Pos{X: 2, Y: 0}, pg), "stops short")
}

func TestSegmentOutsideBoundsNeverCrosses(t *testing.T) {
	pg := core.Polygon{{X: 10, Y: 10}, {X: 20, Y: 12}, {X: 15, Y: 25}}
	b := Bounds(pg)
	segs := [][2]core.Pos{
		{{X: 0, Y: 0}, {X: 9, Y: 100}},
		{{X: 21, Y: 0}, {X: 40, Y: 40}},
		{{X: -5, Y: 26}, {X: 50, Y: 30}},
	}
	for _, s := range segs {
		assert.False(t, b.Overlaps(SegmentBounds(s[0], s[1])))
		assert.False(t, SegmentCrossesPolygon(s[0], s[1], pg))
	}
}

func TestWaypointsLieOutside(t *testing.T) {
	for _, pg := range []core.Polygon{
		square(0, 0, 10, 10),
		{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}},
	} {
		for i := range pg {
			w := EdgeWaypoint(pg, i, 2)
			c := CornerWaypoint(pg, i, 2)
			assert.False(t, PointInPolygon(w, pg), "edge waypoint %d %v", i, w)
			assert.False(t, PointInPolygon(c, pg), "corner waypoint %d %v", i, c)
		}
	}

	w := EdgeWaypoint(square(0, 0, 10, 10), 0, 2)
	assert.InDelta(t, 5, w.X, 1e-9)
	assert.InDelta(t, -2, w.Y, 1e-9)
}
