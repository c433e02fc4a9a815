// Command dronefleet plans deliveries for a drone fleet: it builds the
// routing graph around the no-fly zones, assigns deliveries greedily,
// optionally runs the genetic optimizer and prints a report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/elektrokombinacija/dronefleet/internal/algo"
	"github.com/elektrokombinacija/dronefleet/internal/config"
	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/graph"
	"github.com/elektrokombinacija/dronefleet/internal/metrics"
	"github.com/elektrokombinacija/dronefleet/internal/report"
	"github.com/elektrokombinacija/dronefleet/internal/scenario"
	"github.com/elektrokombinacija/dronefleet/internal/sim"
)

type options struct {
	configPath   string
	scenarioPath string
	generate     uint64
	from, to     string
	now          string
	yamlOut      string
	csvOut       string
	metricsOut   string
	simulate     bool
	simOut       string
	quiet        bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Configuration YAML (empty = defaults plus DRONEFLEET_* environment)")
	flag.StringVar(&opts.scenarioPath, "scenario", "", "Scenario YAML (empty = built-in demo)")
	flag.Uint64Var(&opts.generate, "generate", 0, "Plan a random scenario with this seed instead")
	flag.StringVar(&opts.from, "from", "", "Start node of the example path query (default: first drone)")
	flag.StringVar(&opts.to, "to", "", "Goal node of the example path query (default: first delivery)")
	flag.StringVar(&opts.now, "now", "", "Planning instant HH:MM (overrides solver.now)")
	flag.StringVar(&opts.yamlOut, "yaml", "", "Write the report as YAML to this file")
	flag.StringVar(&opts.csvOut, "csv", "", "Write the route table as CSV to this file")
	flag.StringVar(&opts.metricsOut, "metrics", "", "Write Prometheus text metrics to this file (- = stdout)")
	flag.BoolVar(&opts.simulate, "simulate", false, "Fly the plan in simulated time and check windows and zones along the way")
	flag.StringVar(&opts.simOut, "sim-out", "", "Write simulation metrics as YAML to this file (- = stdout)")
	flag.BoolVar(&opts.quiet, "quiet", false, "Skip the scenario listing")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Fatalf("dronefleet: %v", err)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.now != "" {
		cfg.Solver.Now = opts.now
	}
	if opts.metricsOut != "" {
		cfg.Metrics.Enabled = true
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	now, err := cfg.Now(time.Now())
	if err != nil {
		return fmt.Errorf("planning instant: %w", err)
	}

	s, err := loadScenario(opts)
	if err != nil {
		return err
	}
	cfg.ApplyCritical(s.Drones)
	logger.Info("scenario loaded",
		slog.String("name", s.Name),
		slog.Int("drones", len(s.Drones)),
		slog.Int("deliveries", len(s.Deliveries)),
		slog.Int("zones", len(s.Zones)),
		slog.String("now", now.String()))

	fmt.Printf("=== DRONEFLEET: %s at %s ===\n", s.Name, now)
	if !opts.quiet {
		printScenario(s)
	}

	var phases []report.Phase
	timed := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		elapsed := time.Since(start)
		phases = append(phases, report.Phase{Name: name, Duration: elapsed})
		logger.Info("phase finished", slog.String("phase", name), slog.Duration("elapsed", elapsed))
		return err
	}

	var g *core.Graph
	if err := timed("build", func() error {
		g, err = graph.Build(s.Drones, s.Deliveries, s.Zones, cfg.GraphOptions())
		return err
	}); err != nil {
		return fmt.Errorf("build graph: %w", err)
	}
	fmt.Printf("\nGraph: %d nodes, %d edges\n", g.Len(), g.EdgeCount())

	observers := algo.MultiObserver{algo.NewLogObserver(logger)}
	var prom *metrics.Observer
	if cfg.Metrics.Enabled {
		prom = metrics.NewObserver()
		if cfg.Metrics.Runtime {
			prom.RegisterRuntime()
		}
		observers = append(observers, prom)
	}

	work := s.Clone()
	searcher := algo.NewSearcher(g, work.Zones, observers)

	if err := examplePath(searcher, s, opts.from, opts.to, now); err != nil {
		return err
	}

	acfg, err := cfg.AssignConfig(now)
	if err != nil {
		return err
	}
	var res *algo.AssignResult
	if err := timed("solve", func() error {
		res, err = algo.NewAssigner(searcher, acfg, observers).Solve(ctx, work.Drones, work.Deliveries)
		return err
	}); err != nil {
		return fmt.Errorf("assign: %w", err)
	}

	rep := report.Build(work, g, now, res)

	if cfg.Genetic.Enabled {
		var gres *algo.GeneticResult
		if err := timed("optimize", func() error {
			// The optimizer plans from the fleet as loaded, not as left by the matcher.
			fresh := s.Clone()
			gres, err = algo.NewOptimizer(algo.NewSearcher(g, fresh.Zones, observers), cfg.OptimizerConfig(now), observers).
				Run(ctx, fresh.Drones, fresh.Deliveries)
			return err
		}); err != nil {
			return fmt.Errorf("optimize: %w", err)
		}
		rep.AddGenetic(gres, res.Assignment)
	}
	for _, p := range phases {
		rep.AddPhase(p.Name, p.Duration)
	}

	fmt.Println()
	if err := rep.WriteText(os.Stdout); err != nil {
		return err
	}

	if opts.simulate || opts.simOut != "" {
		flight, err := sim.NewSimulator(s, g, res, sim.DefaultConfig(now))
		if err != nil {
			return fmt.Errorf("simulate: %w", err)
		}
		if err := timed("simulate", func() error {
			_, err := flight.Run(ctx)
			return err
		}); err != nil {
			return fmt.Errorf("simulate: %w", err)
		}
		if err := flight.WriteText(os.Stdout); err != nil {
			return err
		}
		if err := writeFile(opts.simOut, flight.WriteYAML); err != nil {
			return fmt.Errorf("write simulation metrics: %w", err)
		}
	}

	if err := writeFile(opts.yamlOut, rep.WriteYAML); err != nil {
		return fmt.Errorf("write yaml report: %w", err)
	}
	if err := writeFile(opts.csvOut, rep.WriteCSV); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}
	if prom != nil {
		if err := writeFile(opts.metricsOut, prom.WriteText); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func loadScenario(opts options) (*scenario.Scenario, error) {
	var (
		s   *scenario.Scenario
		err error
	)
	switch {
	case opts.scenarioPath != "":
		s, err = scenario.Load(opts.scenarioPath)
	case opts.generate != 0:
		p := scenario.DefaultParams()
		p.Seed = opts.generate
		s = scenario.Generate(p)
	default:
		s = scenario.Demo()
	}
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return s, nil
}

func printScenario(s *scenario.Scenario) {
	fmt.Println("\n--- Drones ---")
	for _, d := range s.Drones {
		fmt.Println(" ", d)
	}
	fmt.Println("--- Deliveries ---")
	for _, dl := range s.Deliveries {
		fmt.Println(" ", dl)
	}
	fmt.Println("--- No-fly zones ---")
	for _, z := range s.Zones {
		fmt.Println(" ", z)
	}
}

// examplePath runs one path query and prints it. Empty ends default to
// the first drone's start and the first delivery.
func examplePath(searcher *algo.Searcher, s *scenario.Scenario, from, to string, now core.ClockTime) error {
	start, goal := core.NodeID(from), core.NodeID(to)
	if start == "" && len(s.Drones) > 0 {
		start = s.Drones[0].StartNode()
	}
	if goal == "" && len(s.Deliveries) > 0 {
		goal = s.Deliveries[0].Node()
	}
	if start == "" || goal == "" {
		return nil
	}

	path, err := searcher.Search(start, goal, now)
	if err != nil {
		return fmt.Errorf("example path: %w", err)
	}

	fmt.Printf("\nPath %s -> %s at %s: ", start, goal, now)
	if !path.Found() {
		fmt.Println("no path")
		return nil
	}
	nodes := make([]string, len(path.Nodes))
	for i, id := range path.Nodes {
		nodes[i] = string(id)
	}
	fmt.Printf("%s (cost %.2f)\n", strings.Join(nodes, " -> "), path.Cost)
	return nil
}

// writeFile sends output to path; empty skips and "-" means stdout.
func writeFile(path string, write func(w io.Writer) error) error {
	switch path {
	case "":
		return nil
	case "-":
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
