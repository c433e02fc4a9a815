// Package config loads run settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/dronefleet/internal/algo"
	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/graph"
)

// ErrInvalidConfig marks a setting outside its allowed range.
var ErrInvalidConfig = errors.New("invalid config")

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DRONEFLEET_"

type EnergyConfig struct {
	BaseRate   float64 `yaml:"base_rate"`
	LoadFactor float64 `yaml:"load_factor"`
}

type GraphConfig struct {
	ZoneCorners  bool    `yaml:"zone_corners"`
	Waypoints    bool    `yaml:"waypoints"`
	SafetyMargin float64 `yaml:"safety_margin"`
}

type SolverConfig struct {
	SingleAssignment bool    `yaml:"single_assignment"`
	TimeWindows      string  `yaml:"time_windows"` // fixed | disabled
	Now              string  `yaml:"now"`          // HH:MM, empty means wall clock
	Parallel         bool    `yaml:"parallel"`
	FailSafe         bool    `yaml:"failsafe"`
	PrefilterZones   bool    `yaml:"prefilter_zones"`
	CriticalPercent  float64 `yaml:"critical_percent"`
}

type GeneticConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Population   int     `yaml:"population"`
	Generations  int     `yaml:"generations"`
	MutationRate float64 `yaml:"mutation_rate"`
	RewardWeight float64 `yaml:"reward_weight"`
	CostWeight   float64 `yaml:"cost_weight"`
	Penalty      float64 `yaml:"penalty"`
	CheckEnergy  bool    `yaml:"check_energy"`
	Seed         uint64  `yaml:"seed"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Runtime bool `yaml:"runtime"` // include Go and process collectors
}

// Config is the full run configuration.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	Energy   EnergyConfig  `yaml:"energy"`
	Graph    GraphConfig   `yaml:"graph"`
	Solver   SolverConfig  `yaml:"solver"`
	Genetic  GeneticConfig `yaml:"genetic"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// Default returns the reference settings.
func Default() Config {
	return Config{
		LogLevel: "info",
		Energy: EnergyConfig{
			BaseRate:   algo.DefaultBaseRate,
			LoadFactor: algo.DefaultLoadFactor,
		},
		Graph: GraphConfig{
			Waypoints:    true,
			SafetyMargin: graph.DefaultMargin,
		},
		Solver: SolverConfig{
			TimeWindows:     "fixed",
			FailSafe:        true,
			PrefilterZones:  true,
			CriticalPercent: core.DefaultCriticalPercent,
		},
		Genetic: GeneticConfig{
			Enabled:      true,
			Population:   algo.DefaultPopulation,
			Generations:  algo.DefaultGenerations,
			MutationRate: algo.DefaultMutationRate,
			RewardWeight: algo.DefaultRewardWeight,
			CostWeight:   algo.DefaultCostWeight,
			Penalty:      algo.DefaultPenalty,
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from DRONEFLEET_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	float := func(name string, dst *float64) {
		if v, ok := lookup(EnvPrefix + name); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = f
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	str("LOG_LEVEL", &c.LogLevel)
	float("BASE_RATE", &c.Energy.BaseRate)
	float("LOAD_FACTOR", &c.Energy.LoadFactor)
	boolean("ZONE_CORNERS", &c.Graph.ZoneCorners)
	boolean("WAYPOINTS", &c.Graph.Waypoints)
	float("SAFETY_MARGIN", &c.Graph.SafetyMargin)
	boolean("SINGLE_ASSIGNMENT", &c.Solver.SingleAssignment)
	str("TIME_WINDOWS", &c.Solver.TimeWindows)
	str("NOW", &c.Solver.Now)
	boolean("PARALLEL", &c.Solver.Parallel)
	boolean("FAILSAFE", &c.Solver.FailSafe)
	boolean("PREFILTER_ZONES", &c.Solver.PrefilterZones)
	float("CRITICAL_PERCENT", &c.Solver.CriticalPercent)
	boolean("GA", &c.Genetic.Enabled)
	integer("GA_POPULATION", &c.Genetic.Population)
	integer("GA_GENERATIONS", &c.Genetic.Generations)
	float("GA_MUTATION_RATE", &c.Genetic.MutationRate)
	if v, ok := lookup(EnvPrefix + "GA_SEED"); ok {
		seed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sGA_SEED: %w", EnvPrefix, err))
		} else {
			c.Genetic.Seed = seed
		}
	}
	boolean("METRICS", &c.Metrics.Enabled)

	return errors.Join(errs...)
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Energy.BaseRate < 0 {
		bad("energy.base_rate %v is negative", c.Energy.BaseRate)
	}
	if c.Energy.LoadFactor < 0 {
		bad("energy.load_factor %v is negative", c.Energy.LoadFactor)
	}
	if c.Graph.SafetyMargin <= 0 {
		bad("graph.safety_margin %v must be positive", c.Graph.SafetyMargin)
	}
	if _, err := c.WindowPolicy(); err != nil {
		errs = append(errs, err)
	}
	if c.Solver.Now != "" {
		if _, err := core.ParseClock(c.Solver.Now); err != nil {
			bad("solver.now: %v", err)
		}
	}
	if c.Solver.CriticalPercent < 0 || c.Solver.CriticalPercent > 100 {
		bad("solver.critical_percent %v outside [0, 100]", c.Solver.CriticalPercent)
	}
	if c.Genetic.Population < 2 {
		bad("genetic.population %d below 2", c.Genetic.Population)
	}
	if c.Genetic.Generations < 0 {
		bad("genetic.generations %d is negative", c.Genetic.Generations)
	}
	if c.Genetic.MutationRate < 0 || c.Genetic.MutationRate > 1 {
		bad("genetic.mutation_rate %v outside [0, 1]", c.Genetic.MutationRate)
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// WindowPolicy maps solver.time_windows to the matcher policy.
func (c Config) WindowPolicy() (algo.WindowPolicy, error) {
	switch strings.ToLower(c.Solver.TimeWindows) {
	case "", "fixed":
		return algo.WindowsAtInstant, nil
	case "disabled":
		return algo.WindowsIgnored, nil
	}
	return 0, fmt.Errorf("%w: solver.time_windows %q (want fixed or disabled)", ErrInvalidConfig, c.Solver.TimeWindows)
}

// SlogLevel parses log_level.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return lvl, nil
}

// Now resolves the evaluation instant: solver.now when set, otherwise the
// time of day of wall.
func (c Config) Now(wall time.Time) (core.ClockTime, error) {
	if c.Solver.Now == "" {
		return core.ClockOf(wall), nil
	}
	return core.ParseClock(c.Solver.Now)
}

// EnergyModel returns the configured energy constants.
func (c Config) EnergyModel() algo.EnergyModel {
	return algo.EnergyModel{BaseRate: c.Energy.BaseRate, LoadFactor: c.Energy.LoadFactor}
}

// GraphOptions returns the builder options.
func (c Config) GraphOptions() graph.Options {
	return graph.Options{
		ZoneCorners: c.Graph.ZoneCorners,
		Waypoints:   c.Graph.Waypoints,
		Margin:      c.Graph.SafetyMargin,
	}
}

// AssignConfig returns matcher settings evaluated at now.
func (c Config) AssignConfig(now core.ClockTime) (algo.AssignConfig, error) {
	policy, err := c.WindowPolicy()
	if err != nil {
		return algo.AssignConfig{}, err
	}
	return algo.AssignConfig{
		Energy:           c.EnergyModel(),
		Now:              now,
		Windows:          policy,
		SingleAssignment: c.Solver.SingleAssignment,
		PrefilterZones:   c.Solver.PrefilterZones,
		Parallel:         c.Solver.Parallel,
		FailSafe:         c.Solver.FailSafe,
	}, nil
}

// OptimizerConfig returns optimizer settings evaluated at now.
func (c Config) OptimizerConfig(now core.ClockTime) algo.GeneticConfig {
	return algo.GeneticConfig{
		Population:   c.Genetic.Population,
		Generations:  c.Genetic.Generations,
		MutationRate: c.Genetic.MutationRate,
		RewardWeight: c.Genetic.RewardWeight,
		CostWeight:   c.Genetic.CostWeight,
		Penalty:      c.Genetic.Penalty,
		CheckEnergy:  c.Genetic.CheckEnergy,
		Seed:         c.Genetic.Seed,
		Now:          now,
		Energy:       c.EnergyModel(),
		Parallel:     c.Solver.Parallel,
	}
}

// ApplyCritical sets the fail-safe threshold on every drone.
func (c Config) ApplyCritical(drones []*core.Drone) {
	for _, d := range drones {
		d.CriticalPercent = c.Solver.CriticalPercent
	}
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
