// Command dronefleetvis plans a scenario and replays the plan in a Gio
// window.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"gioui.org/app"
	"gioui.org/unit"

	"github.com/elektrokombinacija/dronefleet/internal/algo"
	"github.com/elektrokombinacija/dronefleet/internal/config"
	"github.com/elektrokombinacija/dronefleet/internal/graph"
	"github.com/elektrokombinacija/dronefleet/internal/scenario"
	"github.com/elektrokombinacija/dronefleet/internal/vis"
	"github.com/elektrokombinacija/dronefleet/internal/vis/observer"
	"github.com/elektrokombinacija/dronefleet/internal/vis/state"
)

func main() {
	configPath := flag.String("config", "", "Configuration YAML (empty = defaults)")
	scenarioPath := flag.String("scenario", "", "Scenario YAML (empty = built-in demo)")
	seed := flag.Uint64("generate", 0, "Show a random scenario with this seed instead")
	nowFlag := flag.String("now", "", "Planning instant HH:MM (overrides solver.now)")
	flag.Parse()

	st, err := plan(*configPath, *scenarioPath, *seed, *nowFlag)
	if err != nil {
		log.Fatalf("dronefleetvis: %v", err)
	}

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("Drone Fleet: "+st.Scenario.Name),
			app.Size(unit.Dp(1400), unit.Dp(900)),
		)

		application := vis.NewApp(st)
		if err := application.Run(window); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

// plan loads the scenario and runs the matcher on a copy, recording its
// events for the replay log.
func plan(configPath, scenarioPath string, seed uint64, now string) (*state.State, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if now != "" {
		cfg.Solver.Now = now
	}
	at, err := cfg.Now(time.Now())
	if err != nil {
		return nil, err
	}

	var s *scenario.Scenario
	switch {
	case scenarioPath != "":
		if s, err = scenario.Load(scenarioPath); err != nil {
			return nil, err
		}
	case seed != 0:
		p := scenario.DefaultParams()
		p.Seed = seed
		s = scenario.Generate(p)
	default:
		s = scenario.Demo()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	cfg.ApplyCritical(s.Drones)

	g, err := graph.Build(s.Drones, s.Deliveries, s.Zones, cfg.GraphOptions())
	if err != nil {
		return nil, err
	}

	st := state.NewState(s, g, nil, at)
	rec := observer.NewRecorder(st.Log)

	acfg, err := cfg.AssignConfig(at)
	if err != nil {
		return nil, err
	}
	work := s.Clone()
	res, err := algo.NewAssigner(algo.NewSearcher(g, work.Zones, rec), acfg, rec).
		Solve(context.Background(), work.Drones, work.Deliveries)
	if err != nil {
		return nil, err
	}

	st.SetResult(res)
	return st, nil
}
