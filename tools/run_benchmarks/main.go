// Package main provides a benchmark runner for the fleet planners.
// Runs the greedy matcher and the genetic optimizer on scenario files and
// collects metrics.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/elektrokombinacija/dronefleet/internal/algo"
	"github.com/elektrokombinacija/dronefleet/internal/config"
	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/graph"
	"github.com/elektrokombinacija/dronefleet/internal/report"
	"github.com/elektrokombinacija/dronefleet/internal/scenario"
)

// BenchmarkResult stores results from a single planner run.
type BenchmarkResult struct {
	Timestamp     string
	CommitHash    string
	GoVersion     string
	OS            string
	Arch          string
	Scenario      string
	NumDrones     int
	NumDeliveries int
	NumZones      int
	GraphNodes    int
	GraphEdges    int
	Solver        string
	RuntimeMs     float64
	Served        int
	ServedRate    float64
	TotalDistance float64
	TotalEnergy   float64
	Rounds        int
	Alerts        int
	Fitness       float64
	Err           string
}

// SolverMetrics holds per-solver aggregated metrics.
type SolverMetrics struct {
	Name           string
	TotalRuns      int
	Failures       int
	TotalRuntimeMs float64
	TotalServed    float64
	TotalDistance  float64
	TotalAlerts    int
}

var solvers = []string{
	"greedy",
	"greedy-single",
	"genetic",
}

func getGitCommit() string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}

// runSolver plans one scenario with one planner. The scenario is cloned so
// every planner starts from the same fleet.
func runSolver(ctx context.Context, s *scenario.Scenario, g *core.Graph, cfg config.Config, now core.ClockTime, solverName string) *BenchmarkResult {
	result := &BenchmarkResult{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		CommitHash:    getGitCommit(),
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		Scenario:      s.Name,
		NumDrones:     len(s.Drones),
		NumDeliveries: len(s.Deliveries),
		NumZones:      len(s.Zones),
		GraphNodes:    g.Len(),
		GraphEdges:    g.EdgeCount(),
		Solver:        solverName,
	}

	work := s.Clone()
	searcher := algo.NewSearcher(g, work.Zones, nil)
	start := time.Now()

	switch solverName {
	case "greedy", "greedy-single":
		acfg, err := cfg.AssignConfig(now)
		if err != nil {
			result.Err = err.Error()
			return result
		}
		acfg.SingleAssignment = solverName == "greedy-single"

		res, err := algo.NewAssigner(searcher, acfg, nil).Solve(ctx, work.Drones, work.Deliveries)
		result.RuntimeMs = float64(time.Since(start).Microseconds()) / 1000.0
		if err != nil {
			result.Err = err.Error()
			return result
		}

		rep := report.Build(work, g, now, res)
		result.Served = rep.Summary.Served
		result.ServedRate = rep.Summary.ServedRate
		result.TotalDistance = rep.Summary.TotalDistance
		result.TotalEnergy = rep.Summary.TotalEnergy
		result.Rounds = rep.Summary.Rounds
		result.Alerts = len(rep.Alerts)

	case "genetic":
		res, err := algo.NewOptimizer(searcher, cfg.OptimizerConfig(now), nil).Run(ctx, work.Drones, work.Deliveries)
		result.RuntimeMs = float64(time.Since(start).Microseconds()) / 1000.0
		if err != nil {
			result.Err = err.Error()
			return result
		}
		result.Served = len(res.Assignment) - len(res.Infeasible)
		if n := len(s.Deliveries); n > 0 {
			result.ServedRate = float64(result.Served) / float64(n)
		}
		result.Rounds = res.Generations
		result.Fitness = res.Fitness

	default:
		result.Err = "unknown solver"
	}

	return result
}

func writeCSV(results []*BenchmarkResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{
		"timestamp", "commit_hash", "go_version", "os", "arch",
		"scenario", "num_drones", "num_deliveries", "num_zones", "graph_nodes", "graph_edges",
		"solver", "runtime_ms", "served", "served_rate", "total_distance", "total_energy",
		"rounds", "alerts", "fitness", "error",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }
	for _, r := range results {
		row := []string{
			r.Timestamp, r.CommitHash, r.GoVersion, r.OS, r.Arch,
			r.Scenario, strconv.Itoa(r.NumDrones), strconv.Itoa(r.NumDeliveries), strconv.Itoa(r.NumZones),
			strconv.Itoa(r.GraphNodes), strconv.Itoa(r.GraphEdges),
			r.Solver, f(r.RuntimeMs), strconv.Itoa(r.Served), f(r.ServedRate),
			f(r.TotalDistance), f(r.TotalEnergy),
			strconv.Itoa(r.Rounds), strconv.Itoa(r.Alerts), f(r.Fitness), r.Err,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func printSummary(results []*BenchmarkResult) {
	// Aggregate by solver
	metrics := make(map[string]*SolverMetrics)
	for _, r := range results {
		m, ok := metrics[r.Solver]
		if !ok {
			m = &SolverMetrics{Name: r.Solver}
			metrics[r.Solver] = m
		}
		m.TotalRuns++
		if r.Err != "" {
			m.Failures++
			continue
		}
		m.TotalRuntimeMs += r.RuntimeMs
		m.TotalServed += r.ServedRate
		m.TotalDistance += r.TotalDistance
		m.TotalAlerts += r.Alerts
	}

	fmt.Println("\n=== BENCHMARK SUMMARY ===")
	fmt.Printf("%-16s %6s %8s %12s %9s %12s %8s\n",
		"Solver", "Runs", "Failed", "Avg Time(ms)", "Served%", "AvgDistance", "Alerts")
	fmt.Println(strings.Repeat("-", 78))

	var names []string
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := metrics[name]
		avgTime, servedPct, avgDist := 0.0, 0.0, 0.0
		if ok := m.TotalRuns - m.Failures; ok > 0 {
			avgTime = m.TotalRuntimeMs / float64(ok)
			servedPct = m.TotalServed / float64(ok) * 100
			avgDist = m.TotalDistance / float64(ok)
		}
		fmt.Printf("%-16s %6d %8d %12.2f %8.1f%% %12.1f %8d\n",
			m.Name, m.TotalRuns, m.Failures, avgTime, servedPct, avgDist, m.TotalAlerts)
	}
}

func main() {
	inputDir := flag.String("input", "testdata", "Directory containing scenario YAML files")
	outputFile := flag.String("output", "evidence/benchmark_results.csv", "Output CSV file")
	configPath := flag.String("config", "", "Planner configuration file (empty = defaults)")
	nowFlag := flag.String("now", "10:00", "Planning instant HH:MM")
	timeout := flag.Duration("timeout", 5*time.Minute, "Timeout per solver run")
	solverFilter := flag.String("solver", "", "Run only specific solvers (comma-separated)")
	droneFilter := flag.Int("drones", 0, "Run only scenarios with this many drones (0 = all)")
	verbose := flag.Bool("verbose", false, "Verbose output")

	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	now, err := core.ParseClock(*nowFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -now: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*outputFile), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	files, err := filepath.Glob(filepath.Join(*inputDir, "*.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding scenario files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No scenario files found in %s\n", *inputDir)
		fmt.Fprintf(os.Stderr, "Run gen_scenarios first: go run ./tools/gen_scenarios -scaling -output %s\n", *inputDir)
		os.Exit(1)
	}

	activeSolvers := solvers
	if *solverFilter != "" {
		activeSolvers = strings.Split(*solverFilter, ",")
	}

	var results []*BenchmarkResult
	totalRuns := len(files) * len(activeSolvers)
	currentRun := 0

	fmt.Printf("Running benchmarks: %d scenarios x %d solvers = %d runs\n",
		len(files), len(activeSolvers), totalRuns)
	fmt.Printf("Planning at %s, timeout per run: %v\n", now, *timeout)
	fmt.Println()

	for _, file := range files {
		s, err := scenario.Load(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", file, err)
			continue
		}
		if *droneFilter > 0 && len(s.Drones) != *droneFilter {
			continue
		}
		cfg.ApplyCritical(s.Drones)

		g, err := graph.Build(s.Drones, s.Deliveries, s.Zones, cfg.GraphOptions())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building graph for %s: %v\n", s.Name, err)
			continue
		}

		for _, solver := range activeSolvers {
			currentRun++
			if *verbose {
				fmt.Printf("[%d/%d] %s / %s ... ", currentRun, totalRuns, s.Name, solver)
			} else {
				fmt.Printf("\r[%d/%d] Running...", currentRun, totalRuns)
			}

			ctx, cancel := context.WithTimeout(context.Background(), *timeout)
			result := runSolver(ctx, s, g, cfg, now, solver)
			cancel()
			results = append(results, result)

			if *verbose {
				if result.Err == "" {
					fmt.Printf("OK (%.2fms, served=%d/%d)\n", result.RuntimeMs, result.Served, result.NumDeliveries)
				} else {
					fmt.Printf("FAILED: %s\n", result.Err)
				}
			}
		}
	}

	fmt.Println()

	if err := writeCSV(results, *outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Results written to: %s\n", *outputFile)

	printSummary(results)
}
