// Package telemetry exposes run statistics as Prometheus metrics.
//
// A Registry is safe for concurrent use, so one instance can observe every
// trial of an experiment. All methods tolerate a nil receiver, which lets
// callers pass a nil *Registry when metrics are not requested.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/freight-sim/freight-sim/sim"
)

// Registry holds the market metrics and the Prometheus registry they live in.
type Registry struct {
	registry *prometheus.Registry

	RunsTotal            *prometheus.CounterVec
	OffersTotal          *prometheus.CounterVec
	AcceptedRevenue      prometheus.Counter
	BankruptciesTotal    prometheus.Counter
	EdgeExplosionsTotal  prometheus.Counter
	TruckExplosionsTotal prometheus.Counter
	TicksPerRun          prometheus.Histogram
	TrialDuration        prometheus.Histogram
}

// NewRegistry creates a Registry with every metric registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	factory := promauto.With(r.registry)

	r.RunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freightsim_runs_total",
			Help: "Total number of simulation runs by terminal status",
		},
		[]string{"status"},
	)
	r.OffersTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freightsim_offers_total",
			Help: "Total number of offers evaluated, by outcome",
		},
		[]string{"outcome"},
	)
	r.AcceptedRevenue = factory.NewCounter(prometheus.CounterOpts{
		Name: "freightsim_accepted_revenue_total",
		Help: "Sum of prices of accepted offers",
	})
	r.BankruptciesTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "freightsim_bankruptcies_total",
		Help: "Total number of companies declared bankrupt",
	})
	r.EdgeExplosionsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "freightsim_edge_explosions_total",
		Help: "Total number of edges removed by explosions",
	})
	r.TruckExplosionsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "freightsim_truck_explosions_total",
		Help: "Total number of trucks destroyed",
	})
	r.TicksPerRun = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "freightsim_run_ticks",
		Help:    "Number of ticks simulated per run",
		Buckets: []float64{1, 10, 25, 50, 100, 250, 500, 1000},
	})
	r.TrialDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "freightsim_trial_duration_seconds",
		Help:    "Wall-clock duration of one trial in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
	})
	return r
}

// Gatherer returns the underlying Prometheus gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes every metric in the text exposition format, suitable
// for the node exporter's textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

// ObserveTrialDuration records the wall-clock time of one trial.
func (r *Registry) ObserveTrialDuration(d time.Duration) {
	if r == nil {
		return
	}
	r.TrialDuration.Observe(d.Seconds())
}

// OnDecision counts the offer by outcome and adds accepted revenue.
func (r *Registry) OnDecision(_ int, d sim.Decision) {
	if r == nil {
		return
	}
	if d.Accepted {
		r.OffersTotal.WithLabelValues("accepted").Inc()
		r.AcceptedRevenue.Add(d.Offer.Price)
		return
	}
	r.OffersTotal.WithLabelValues(sim.RejectReason(d.Err)).Inc()
}

// OnBankruptcy counts a company removal.
func (r *Registry) OnBankruptcy(int, sim.Bankruptcy) {
	if r == nil {
		return
	}
	r.BankruptciesTotal.Inc()
}

// OnEdgeExplosion counts a removed edge.
func (r *Registry) OnEdgeExplosion(int, sim.Edge) {
	if r == nil {
		return
	}
	r.EdgeExplosionsTotal.Inc()
}

// OnTruckExplosion counts a destroyed truck.
func (r *Registry) OnTruckExplosion(int, sim.CompanyID, int) {
	if r == nil {
		return
	}
	r.TruckExplosionsTotal.Inc()
}

// OnRunEnd counts the run by status and records its tick count.
func (r *Registry) OnRunEnd(res *sim.RunResult) {
	if r == nil || res == nil {
		return
	}
	r.RunsTotal.WithLabelValues(string(res.Status)).Inc()
	r.TicksPerRun.Observe(float64(res.TicksRun))
}
