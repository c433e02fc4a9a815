package scenario

import "github.com/elektrokombinacija/dronefleet/internal/core"

// Demo returns the fixed five-drone, ten-delivery demonstration scenario
// on a 1000x1000 map.
func Demo() *Scenario {
	drone := func(id int, payload, battery, speed, x, y float64) *core.Drone {
		return core.NewDrone(core.DroneID(id), payload, battery, speed, core.Pos{X: x, Y: y})
	}
	delivery := func(id int, x, y, weight float64, priority int) *core.Delivery {
		return &core.Delivery{ID: core.DeliveryID(id), Location: core.Pos{X: x, Y: y}, Weight: weight, Priority: priority}
	}

	return &Scenario{
		Name:   "demo",
		Width:  1000,
		Height: 1000,
		Drones: []*core.Drone{
			drone(1, 10.0, 7160, 18.0, 59, 698),
			drone(2, 4.2, 15224, 16.7, 989, 424),
			drone(3, 3.6, 11172, 19.5, 417, 75),
			drone(4, 7.5, 18500, 20.5, 150, 800),
			drone(5, 6.0, 14000, 17.0, 750, 200),
		},
		Deliveries: []*core.Delivery{
			delivery(101, 592, 666, 3.6, 3),
			delivery(102, 120, 52, 4.2, 4),
			delivery(103, 224, 33, 1.0, 5),
			delivery(104, 412, 108, 1.3, 3),
			delivery(105, 292, 543, 3.9, 3),
			delivery(106, 424, 425, 1.2, 2),
			delivery(107, 81, 998, 3.2, 4),
			delivery(108, 905, 564, 2.4, 3),
			delivery(109, 944, 22, 3.3, 3),
			delivery(110, 685, 634, 1.8, 3),
		},
		Zones: []*core.NoFlyZone{
			{ID: 1001, Shape: core.Polygon{{X: 542, Y: 511}, {X: 365, Y: 272}, {X: 534, Y: 526}}},
			{ID: 1002, Shape: core.Polygon{{X: 526, Y: 686}, {X: 362, Y: 368}, {X: 486, Y: 303}, {X: 727, Y: 396}, {X: 670, Y: 271}}},
		},
	}
}
