package draw

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elektrokombinacija/dronefleet/internal/core"
)

func TestNodeColor_ByKind(t *testing.T) {
	assert.Equal(t, ColorNodeStart, NodeColor(core.KindVehicleStart))
	assert.Equal(t, ColorNodeTask, NodeColor(core.KindTask))
	assert.Equal(t, ColorNodeCorner, NodeColor(core.KindZoneCorner))
	assert.Equal(t, ColorNodeWaypoint, NodeColor(core.KindWaypoint))
}

func TestDroneColor_Cycles(t *testing.T) {
	n := core.DroneID(len(dronePalette))
	assert.Equal(t, DroneColor(1), DroneColor(1+n))
	assert.NotEqual(t, DroneColor(1), DroneColor(2))
	assert.Equal(t, DroneColor(n-1), DroneColor(-1))
}

func TestBatteryColor_TurnsRedBelowCritical(t *testing.T) {
	base := DroneColor(3)
	assert.Equal(t, base, BatteryColor(20, 20, base))
	assert.Equal(t, ColorBatteryLow, BatteryColor(19.9, 20, base))
}

func TestZoneColor(t *testing.T) {
	assert.Equal(t, ColorZoneActive, ZoneColor(true))
	assert.Equal(t, ColorZoneInactive, ZoneColor(false))
}
