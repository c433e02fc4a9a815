package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/dronefleet/internal/core"
)

// WriteText prints the human-readable run summary.
func (r *Report) WriteText(w io.Writer) error {
	p := &printer{w: w}

	p.printf("=== RUN %s (%s @ %s) ===\n", r.RunID, r.Scenario, r.Now)

	p.printf("\n%-10s %-7s %-6s %10s %10s %9s %10s  %s\n",
		"Delivery", "Drone", "Round", "Distance", "Straight", "Extension", "Energy", "Path")
	p.printf("%s\n", strings.Repeat("-", 90))
	for _, row := range r.Routes {
		p.printf("%-10d %-7d %-6d %10.2f %10.2f %9.3f %10.2f  %s\n",
			row.Delivery, row.Drone, row.Round, row.Distance, row.Straight, row.Extension, row.Energy, joinNodes(row.Path))
	}

	p.printf("\n%-7s %12s %12s %9s %10s  %s\n", "Drone", "Battery", "Capacity", "Battery%", "Distance", "Deliveries")
	p.printf("%s\n", strings.Repeat("-", 72))
	for _, d := range r.DronesByID() {
		p.printf("%-7d %12.2f %12.2f %8.2f%% %10.2f  %s\n",
			d.Drone, d.Battery, d.Capacity, d.BatteryPercent, d.Distance, joinIDs(d.Deliveries))
	}

	if len(r.Alerts) > 0 {
		p.printf("\nFail-safe:\n")
		for _, a := range r.Alerts {
			p.printf("  drone %d %s at %.2f%% %s\n", a.Drone, a.Outcome, a.BatteryPercent, a.Reason)
		}
	}

	s := r.Summary
	p.printf("\nServed %d/%d (%.1f%%) in %d rounds\n", s.Served, s.Deliveries, s.ServedRate*100, s.Rounds)
	p.printf("Distance %.2f total, %.2f per delivery, mean extension %.3f, energy %.2f\n",
		s.TotalDistance, s.DistancePerServed, s.MeanExtension, s.TotalEnergy)
	if len(r.Unassigned) > 0 {
		p.printf("Unassigned: %s\n", joinIDs(r.Unassigned))
	}
	if len(r.Blocked) > 0 {
		p.printf("Inside active zones: %s\n", joinIDs(r.Blocked))
	}

	if g := r.Genetic; g != nil {
		p.printf("\nGenetic optimizer: fitness %.2f, %d infeasible, %.0f%% agrees with greedy\n",
			g.Fitness, len(g.Infeasible), g.Agreement*100)
	}

	if len(r.Phases) > 0 {
		p.printf("\n")
		for _, ph := range r.Phases {
			p.printf("%-12s %v\n", ph.Name, ph.Duration)
		}
	}
	return p.err
}

// WriteCSV writes one row per served delivery.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"run_id", "delivery", "drone", "round", "distance", "straight", "extension", "energy", "path"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range r.Routes {
		rec := []string{
			r.RunID.String(),
			strconv.Itoa(int(row.Delivery)),
			strconv.Itoa(int(row.Drone)),
			strconv.Itoa(row.Round),
			fmt.Sprintf("%.3f", row.Distance),
			fmt.Sprintf("%.3f", row.Straight),
			fmt.Sprintf("%.4f", row.Extension),
			fmt.Sprintf("%.3f", row.Energy),
			joinNodes(row.Path),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteYAML exports the full report.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

// printer keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func joinNodes(ids []core.NodeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, " -> ")
}

func joinIDs[T ~int](ids []T) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ", ")
}
