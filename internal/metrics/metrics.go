// Package metrics exposes planner events as Prometheus metrics.
package metrics

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/elektrokombinacija/dronefleet/internal/algo"
)

const namespace = "dronefleet"

// Observer implements algo.Observer on a dedicated registry.
type Observer struct {
	Registry *prometheus.Registry

	Searches     *prometheus.CounterVec
	Expanded     prometheus.Histogram
	Assignments  *prometheus.CounterVec
	EnergyUsed   *prometheus.CounterVec
	Battery      *prometheus.GaugeVec
	Rounds       prometheus.Counter
	RoundCommits prometheus.Histogram
	Remaining    prometheus.Gauge
	FailSafe     *prometheus.CounterVec
	Generations  prometheus.Counter
	BestFitness  prometheus.Gauge
	MeanFitness  prometheus.Gauge

	runtimeOnce sync.Once
}

var _ algo.Observer = (*Observer)(nil)

// NewObserver creates the collectors and registers them.
func NewObserver() *Observer {
	o := &Observer{
		Registry: prometheus.NewRegistry(),
		Searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "searches_total", Help: "Path searches by result."},
			[]string{"result"},
		),
		Expanded: prometheus.NewHistogram(
			prometheus.HistogramOpts{Namespace: namespace, Name: "search_expanded_nodes", Help: "Nodes expanded per path search.", Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500}},
		),
		Assignments: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "assignments_total", Help: "Committed deliveries by drone."},
			[]string{"drone"},
		),
		EnergyUsed: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "energy_consumed_total", Help: "Battery energy spent on deliveries by drone."},
			[]string{"drone"},
		),
		Battery: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: namespace, Name: "battery_percent", Help: "Last reported battery level by drone."},
			[]string{"drone"},
		),
		Rounds: prometheus.NewCounter(
			prometheus.CounterOpts{Namespace: namespace, Name: "rounds_total", Help: "Matching rounds run."},
		),
		RoundCommits: prometheus.NewHistogram(
			prometheus.HistogramOpts{Namespace: namespace, Name: "round_commits", Help: "Deliveries committed per round.", Buckets: []float64{0, 1, 2, 5, 10, 20, 50}},
		),
		Remaining: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "deliveries_remaining", Help: "Deliveries still unserved after the last round."},
		),
		FailSafe: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "failsafe_total", Help: "Critical battery checks by outcome."},
			[]string{"outcome"},
		),
		Generations: prometheus.NewCounter(
			prometheus.CounterOpts{Namespace: namespace, Name: "ga_generations_total", Help: "Optimizer generations evaluated."},
		),
		BestFitness: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "ga_best_fitness", Help: "Best fitness in the latest generation."},
		),
		MeanFitness: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "ga_mean_fitness", Help: "Mean fitness in the latest generation."},
		),
	}
	o.Registry.MustRegister(
		o.Searches, o.Expanded,
		o.Assignments, o.EnergyUsed, o.Battery,
		o.Rounds, o.RoundCommits, o.Remaining,
		o.FailSafe,
		o.Generations, o.BestFitness, o.MeanFitness,
	)
	return o
}

// RegisterRuntime adds Go and process collectors. Safe to call repeatedly.
func (o *Observer) RegisterRuntime() {
	o.runtimeOnce.Do(func() {
		o.Registry.MustRegister(collectors.NewGoCollector())
		o.Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

func (o *Observer) OnSearch(ev algo.SearchEvent) {
	result := "found"
	if !ev.Found {
		result = "no_path"
	}
	o.Searches.WithLabelValues(result).Inc()
	o.Expanded.Observe(float64(ev.Expanded))
}

func (o *Observer) OnCommit(ev algo.CommitEvent) {
	drone := strconv.Itoa(int(ev.Drone))
	o.Assignments.WithLabelValues(drone).Inc()
	o.EnergyUsed.WithLabelValues(drone).Add(ev.Energy)
	o.Battery.WithLabelValues(drone).Set(ev.BatteryPercent)
}

func (o *Observer) OnRound(ev algo.RoundEvent) {
	o.Rounds.Inc()
	o.RoundCommits.Observe(float64(ev.Commits))
	o.Remaining.Set(float64(ev.Remaining))
}

func (o *Observer) OnFailSafe(ev algo.FailSafeEvent) {
	o.FailSafe.WithLabelValues(ev.Outcome.String()).Inc()
	o.Battery.WithLabelValues(strconv.Itoa(int(ev.Drone))).Set(ev.BatteryPercent)
}

func (o *Observer) OnGeneration(ev algo.GenerationEvent) {
	o.Generations.Inc()
	o.BestFitness.Set(ev.Best)
	o.MeanFitness.Set(ev.Mean)
}

// WriteText writes every gathered family in the text exposition format.
func (o *Observer) WriteText(w io.Writer) error {
	families, err := o.Registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Totals sums every counter and gauge sample per family name. Histograms
// contribute their sample count.
func (o *Observer) Totals() (map[string]float64, error) {
	families, err := o.Registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	out := make(map[string]float64, len(families))
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			out[mf.GetName()] += sampleValue(mf.GetType(), m)
		}
	}
	return out, nil
}

func sampleValue(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(m.GetHistogram().GetSampleCount())
	}
	return 0
}
