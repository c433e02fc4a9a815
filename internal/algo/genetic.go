package algo

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/elektrokombinacija/dronefleet/internal/core"
)

// Reference optimizer constants.
const (
	DefaultPopulation   = 10
	DefaultGenerations  = 20
	DefaultMutationRate = 0.1
	DefaultRewardWeight = 10.0
	DefaultCostWeight   = 0.2
	DefaultPenalty      = 100.0
)

// GeneticConfig tunes the population optimizer.
type GeneticConfig struct {
	Population   int
	Generations  int
	MutationRate float64 // per-gene re-randomisation probability
	RewardWeight float64 // multiplied by delivery priority
	CostWeight   float64 // multiplied by path cost
	Penalty      float64 // subtracted per infeasible gene
	CheckEnergy  bool    // energy above current battery counts as infeasible
	Seed         uint64  // 0 picks a random seed
	Now          core.ClockTime
	Energy       EnergyModel
	Parallel     bool // build the cost table concurrently
}

// DefaultGeneticConfig returns the reference parameters.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		Population:   DefaultPopulation,
		Generations:  DefaultGenerations,
		MutationRate: DefaultMutationRate,
		RewardWeight: DefaultRewardWeight,
		CostWeight:   DefaultCostWeight,
		Penalty:      DefaultPenalty,
		Energy:       DefaultEnergyModel(),
	}
}

// Genome maps delivery index to drone index.
type Genome []int

type individual struct {
	genes   Genome
	fitness float64
}

// legCost is the precomputed outcome of sending one drone from its start
// node to one delivery.
type legCost struct {
	feasible bool
	cost     float64
}

// GeneticResult is the best mapping found.
type GeneticResult struct {
	RunID            uuid.UUID
	Assignment       core.Assignment
	Fitness          float64
	Infeasible       []core.DeliveryID // genes that drew the penalty
	BestByGeneration []float64
	Generations      int
}

// Optimizer explores total delivery->drone mappings with a generational
// genetic algorithm. It reads drones and deliveries but never changes them;
// every fitness evaluation assumes each drone flies from its start node.
type Optimizer struct {
	searcher *Searcher
	cfg      GeneticConfig
	observer Observer
}

// NewOptimizer creates an optimizer. A population below two is raised to
// two, the number of parents; a negative generation count falls back to
// the reference value. A nil observer is allowed.
func NewOptimizer(s *Searcher, cfg GeneticConfig, obs Observer) *Optimizer {
	if cfg.Population < 2 {
		cfg.Population = 2
	}
	if cfg.Generations < 0 {
		cfg.Generations = DefaultGenerations
	}
	if obs == nil {
		obs = NopObserver{}
	}
	return &Optimizer{searcher: s, cfg: cfg, observer: obs}
}

// Run evolves the population and returns its best individual.
func (o *Optimizer) Run(ctx context.Context, drones []*core.Drone, deliveries []*core.Delivery) (*GeneticResult, error) {
	res := &GeneticResult{RunID: uuid.New(), Assignment: make(core.Assignment)}
	if len(drones) == 0 || len(deliveries) == 0 {
		for _, dl := range deliveries {
			res.Infeasible = append(res.Infeasible, dl.ID)
		}
		res.Fitness = -o.cfg.Penalty * float64(len(deliveries))
		return res, nil
	}

	table, err := o.costTable(ctx, drones, deliveries)
	if err != nil {
		return nil, err
	}

	var rng *rand.Rand
	if o.cfg.Seed == 0 {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	} else {
		rng = rand.New(rand.NewPCG(o.cfg.Seed, o.cfg.Seed))
	}

	fitness := func(g Genome) float64 {
		score := 0.0
		for t, d := range g {
			leg := table[d][t]
			if !leg.feasible {
				score -= o.cfg.Penalty
				continue
			}
			score += float64(deliveries[t].Priority)*o.cfg.RewardWeight - leg.cost*o.cfg.CostWeight
		}
		return score
	}

	pop := make([]individual, o.cfg.Population)
	for i := range pop {
		g := make(Genome, len(deliveries))
		for t := range g {
			g[t] = rng.IntN(len(drones))
		}
		pop[i] = individual{genes: g, fitness: fitness(g)}
	}

	for gen := 1; gen <= o.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rank(pop)
		p1, p2 := pop[0], pop[1]

		next := make([]individual, 0, len(pop))
		next = append(next, p1, p2)
		for len(next) < len(pop) {
			child := make(Genome, len(deliveries))
			for t := range child {
				if rng.Float64() < 0.5 {
					child[t] = p1.genes[t]
				} else {
					child[t] = p2.genes[t]
				}
				if rng.Float64() < o.cfg.MutationRate {
					child[t] = rng.IntN(len(drones))
				}
			}
			next = append(next, individual{genes: child, fitness: fitness(child)})
		}
		pop = next

		best, mean := stats(pop)
		res.BestByGeneration = append(res.BestByGeneration, best)
		res.Generations = gen
		o.observer.OnGeneration(GenerationEvent{Generation: gen, Best: best, Mean: mean})
	}

	rank(pop)
	winner := pop[0]
	res.Fitness = winner.fitness
	for t, d := range winner.genes {
		res.Assignment[deliveries[t].ID] = drones[d].ID
		if !table[d][t].feasible {
			res.Infeasible = append(res.Infeasible, deliveries[t].ID)
		}
	}
	return res, nil
}

// costTable computes every drone/delivery leg once. Rows are written by
// separate goroutines, so no locking is needed.
func (o *Optimizer) costTable(ctx context.Context, drones []*core.Drone, deliveries []*core.Delivery) ([][]legCost, error) {
	table := make([][]legCost, len(drones))
	row := func(ctx context.Context, i int) error {
		d := drones[i]
		table[i] = make([]legCost, len(deliveries))
		for t, dl := range deliveries {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !d.CanCarry(dl.Weight) {
				continue
			}
			path, err := o.searcher.Search(d.StartNode(), dl.Node(), o.cfg.Now)
			if err != nil {
				return fmt.Errorf("drone %d to delivery %d: %w", d.ID, dl.ID, err)
			}
			if !path.Found() {
				continue
			}
			if o.cfg.CheckEnergy && o.cfg.Energy.Usage(path.Cost, d, dl.Weight) > d.CurrentBattery {
				continue
			}
			table[i][t] = legCost{feasible: true, cost: path.Cost}
		}
		return nil
	}

	if !o.cfg.Parallel {
		for i := range drones {
			if err := row(ctx, i); err != nil {
				return nil, err
			}
		}
		return table, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range drones {
		g.Go(func() error { return row(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return table, nil
}

// rank sorts by fitness, best first, keeping earlier individuals ahead on
// ties.
func rank(pop []individual) {
	sort.SliceStable(pop, func(i, j int) bool {
		return pop[i].fitness > pop[j].fitness
	})
}

func stats(pop []individual) (best, mean float64) {
	best = math.Inf(-1)
	sum := 0.0
	for _, ind := range pop {
		best = math.Max(best, ind.fitness)
		sum += ind.fitness
	}
	return best, sum / float64(len(pop))
}
