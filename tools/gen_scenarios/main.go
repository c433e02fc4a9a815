// Package main generates random fleet scenarios as YAML files.
// Equal seeds give equal scenarios, so benchmark inputs can be regenerated.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/elektrokombinacija/dronefleet/internal/scenario"
)

// scalingSizes are the fleet sizes of the scaling suite.
var scalingSizes = []int{5, 10, 25, 50, 100}

// scalingParams grows the map with the square root of the fleet so the
// density of drones stays roughly constant.
func scalingParams(base scenario.Params, drones int) scenario.Params {
	p := base
	p.Drones = drones
	p.Deliveries = drones * 4 // 4 deliveries per drone
	p.Zones = max(2, drones/5)
	side := math.Max(1000, math.Ceil(math.Sqrt(float64(drones))*450))
	p.Width, p.Height = side, side
	return p
}

func main() {
	seed := flag.Uint64("seed", 42, "Random seed for deterministic generation (0 = random)")
	drones := flag.Int("drones", 5, "Number of drones")
	deliveries := flag.Int("deliveries", 20, "Number of deliveries")
	zones := flag.Int("zones", 2, "Number of no-fly zones")
	width := flag.Float64("width", 1000, "Map width")
	height := flag.Float64("height", 1000, "Map height")
	windowRate := flag.Float64("windows", 0, "Share of deliveries with a time window (0-1)")
	zoneWindows := flag.Bool("zone-windows", true, "Let zones draw an activity window")
	outputDir := flag.String("output", "testdata", "Output directory")
	scalingMode := flag.Bool("scaling", false, "Generate the scaling suite (5, 10, 25, 50, 100 drones)")

	flag.Parse()

	if *windowRate < 0 || *windowRate > 1 {
		fmt.Fprintf(os.Stderr, "Error: -windows must be within 0..1, got %g\n", *windowRate)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	base := scenario.Params{
		Drones:             *drones,
		Deliveries:         *deliveries,
		Zones:              *zones,
		Width:              *width,
		Height:             *height,
		DeliveryWindowRate: *windowRate,
		ZoneWindows:        *zoneWindows,
		Seed:               *seed,
	}

	var params []scenario.Params
	if *scalingMode {
		for _, size := range scalingSizes {
			params = append(params, scalingParams(base, size))
		}
	} else {
		params = append(params, base)
	}

	for _, p := range params {
		s := scenario.Generate(p)
		if err := s.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error validating %s: %v\n", s.Name, err)
			continue
		}

		filename := filepath.Join(*outputDir, s.Name+".yaml")
		if err := s.Save(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", filename, err)
			continue
		}

		fmt.Printf("Generated: %s (%d drones, %d deliveries, %d zones, %.0fx%.0f)\n",
			filename, len(s.Drones), len(s.Deliveries), len(s.Zones), s.Width, s.Height)
	}
}
