package algo

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/elektrokombinacija/dronefleet/internal/core"
	"github.com/elektrokombinacija/dronefleet/internal/graph"
)

// WindowPolicy selects how delivery time windows gate eligibility.
type WindowPolicy int

const (
	WindowsAtInstant WindowPolicy = iota // eligible only while Now is inside the window
	WindowsIgnored                       // windows are not checked
)

func (p WindowPolicy) String() string {
	return [...]string{"fixed", "disabled"}[p]
}

// AssignConfig tunes the greedy matcher.
type AssignConfig struct {
	Energy           EnergyModel
	Now              core.ClockTime // evaluation instant for windows and zones
	Windows          WindowPolicy
	SingleAssignment bool // a drone serves at most one delivery until freed
	PrefilterZones   bool // drop deliveries lying inside an active zone
	Parallel         bool // scan drones concurrently
	FailSafe         bool // run the fail-safe after every commit
}

// DefaultAssignConfig chains deliveries per drone and checks windows at
// midnight; callers normally set Now.
func DefaultAssignConfig() AssignConfig {
	return AssignConfig{
		Energy:         DefaultEnergyModel(),
		Windows:        WindowsAtInstant,
		PrefilterZones: true,
		FailSafe:       true,
	}
}

// Route is the committed flight for one delivery.
type Route struct {
	Drone    core.DroneID
	Delivery core.DeliveryID
	Round    int
	Path     core.Path
	Energy   float64
}

// AssignResult is the outcome of one Assigner run.
type AssignResult struct {
	RunID      uuid.UUID
	Assignment core.Assignment
	Routes     map[core.DeliveryID]Route
	Order      []core.DeliveryID // commit order
	Unassigned []core.DeliveryID // priority order
	Blocked    []core.DeliveryID // inside an active zone, subset of Unassigned
	Rounds     int
	Alerts     []FailSafeReport // fail-safe checks that did not come back nominal
}

// Assigner matches deliveries to drones in rounds. Each delivery goes to
// the feasible drone with the cheapest path; a round that commits anything
// is followed by another, since moved drones may now reach more.
type Assigner struct {
	searcher *Searcher
	failsafe *FailSafe
	cfg      AssignConfig
	observer Observer
}

// NewAssigner creates a matcher. A nil observer is allowed.
func NewAssigner(s *Searcher, cfg AssignConfig, obs Observer) *Assigner {
	if obs == nil {
		obs = NopObserver{}
	}
	return &Assigner{
		searcher: s,
		failsafe: NewFailSafe(s, cfg.Energy, obs),
		cfg:      cfg,
		observer: obs,
	}
}

// candidate is one drone's offer for a delivery.
type candidate struct {
	ok     bool
	path   core.Path
	energy float64
}

// Solve runs rounds until one commits nothing. Drones and deliveries are
// updated in place: battery, position, last node and history on drones,
// the Delivered flag on deliveries. Unserved deliveries are listed in the
// result, not reported as errors. On cancellation the partial result is
// returned with the context error.
func (a *Assigner) Solve(ctx context.Context, drones []*core.Drone, deliveries []*core.Delivery) (*AssignResult, error) {
	res := &AssignResult{
		RunID:      uuid.New(),
		Assignment: make(core.Assignment),
		Routes:     make(map[core.DeliveryID]Route),
	}

	pending := a.pending(deliveries, res)

	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			res.Unassigned = unserved(pending, res.Blocked)
			return res, err
		}
		res.Rounds = round
		commits := 0

		for _, dl := range pending {
			if dl.Delivered {
				continue
			}
			if a.cfg.Windows == WindowsAtInstant && !dl.EligibleAt(a.cfg.Now) {
				continue
			}

			offers, err := a.scan(ctx, drones, dl)
			if err != nil {
				res.Unassigned = unserved(pending, res.Blocked)
				return res, err
			}
			winner := pickCheapest(offers)
			if winner < 0 {
				continue
			}
			if err := a.commit(round, drones[winner], dl, offers[winner], res); err != nil {
				res.Unassigned = unserved(pending, res.Blocked)
				return res, err
			}
			commits++
		}

		remaining := 0
		for _, dl := range pending {
			if !dl.Delivered {
				remaining++
			}
		}
		a.observer.OnRound(RoundEvent{Round: round, Commits: commits, Remaining: remaining})
		if commits == 0 || remaining == 0 {
			break
		}
	}

	res.Unassigned = unserved(pending, res.Blocked)
	return res, nil
}

// pending returns undelivered deliveries sorted by priority, highest
// first, keeping input order on ties. Deliveries inside an active zone are
// set aside as blocked when prefiltering is on.
func (a *Assigner) pending(deliveries []*core.Delivery, res *AssignResult) []*core.Delivery {
	var active []*core.NoFlyZone
	for _, z := range a.searcher.Zones() {
		if z.ActiveAt(a.cfg.Now) {
			active = append(active, z)
		}
	}

	out := make([]*core.Delivery, 0, len(deliveries))
	for _, dl := range deliveries {
		if dl.Delivered {
			continue
		}
		if a.cfg.PrefilterZones && graph.InsideAny(dl.Location, active) {
			res.Blocked = append(res.Blocked, dl.ID)
			continue
		}
		out = append(out, dl)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// scan evaluates every drone against a consistent snapshot of the fleet.
// The returned slice is indexed like drones so that selection does not
// depend on evaluation order.
func (a *Assigner) scan(ctx context.Context, drones []*core.Drone, dl *core.Delivery) ([]candidate, error) {
	snaps := make([]core.Drone, len(drones))
	for i, d := range drones {
		snaps[i] = *d
	}
	offers := make([]candidate, len(drones))

	if !a.cfg.Parallel {
		for i := range snaps {
			c, err := a.evaluate(ctx, &snaps[i], dl)
			if err != nil {
				return nil, err
			}
			offers[i] = c
		}
		return offers, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range snaps {
		g.Go(func() error {
			c, err := a.evaluate(gctx, &snaps[i], dl)
			if err != nil {
				return err
			}
			offers[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return offers, nil
}

// evaluate checks capacity, reachability and energy for one drone.
func (a *Assigner) evaluate(ctx context.Context, d *core.Drone, dl *core.Delivery) (candidate, error) {
	if err := ctx.Err(); err != nil {
		return candidate{}, err
	}
	if a.cfg.SingleAssignment && d.Busy {
		return candidate{}, nil
	}
	if !d.CanCarry(dl.Weight) {
		return candidate{}, nil
	}
	path, err := a.searcher.Search(d.LastNode, dl.Node(), a.cfg.Now)
	if err != nil {
		return candidate{}, fmt.Errorf("drone %d to delivery %d: %w", d.ID, dl.ID, err)
	}
	if !path.Found() {
		return candidate{}, nil
	}
	energy := a.cfg.Energy.Usage(path.Cost, d, dl.Weight)
	if energy > d.CurrentBattery {
		return candidate{}, nil
	}
	return candidate{ok: true, path: path, energy: energy}, nil
}

// pickCheapest returns the index of the lowest-cost offer, the first one
// on ties, or -1.
func pickCheapest(offers []candidate) int {
	winner := -1
	bestCost := math.Inf(1)
	for i, c := range offers {
		if c.ok && c.path.Cost < bestCost {
			winner = i
			bestCost = c.path.Cost
		}
	}
	return winner
}

func (a *Assigner) commit(round int, d *core.Drone, dl *core.Delivery, c candidate, res *AssignResult) error {
	before := d.CurrentBattery
	if !d.Consume(c.energy) {
		return fmt.Errorf("drone %d cannot afford %.2f for delivery %d", d.ID, c.energy, dl.ID)
	}
	d.LastNode = dl.Node()
	d.CurrentPos = dl.Location
	if a.cfg.SingleAssignment {
		d.Busy = true
	}
	dl.Delivered = true

	res.Assignment[dl.ID] = d.ID
	res.Routes[dl.ID] = Route{Drone: d.ID, Delivery: dl.ID, Round: round, Path: c.path, Energy: c.energy}
	res.Order = append(res.Order, dl.ID)

	a.observer.OnCommit(CommitEvent{
		Round:          round,
		Delivery:       dl.ID,
		Drone:          d.ID,
		Cost:           c.path.Cost,
		Energy:         c.energy,
		BatteryBefore:  before,
		BatteryAfter:   d.CurrentBattery,
		BatteryPercent: d.BatteryPercentage(),
	})

	if !a.cfg.FailSafe {
		return nil
	}
	report, err := a.failsafe.Check(d, a.cfg.Now)
	if err != nil {
		return err
	}
	if report.Outcome != FailSafeNominal {
		res.Alerts = append(res.Alerts, report)
	}
	return nil
}

func unserved(pending []*core.Delivery, blocked []core.DeliveryID) []core.DeliveryID {
	out := make([]core.DeliveryID, 0)
	for _, dl := range pending {
		if !dl.Delivered {
			out = append(out, dl.ID)
		}
	}
	return append(out, blocked...)
}
