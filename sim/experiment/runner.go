// Package experiment repeats market runs over independent trials and sweeps
// parameters across experiments.
package experiment

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/freight-sim/freight-sim/sim"
	"github.com/freight-sim/freight-sim/sim/telemetry"
	"github.com/freight-sim/freight-sim/sim/topology"
	"github.com/freight-sim/freight-sim/sim/trace"
)

// DefaultTrials is the number of trials averaged per experiment.
const DefaultTrials = 30

// Runner executes independent trials of a scenario.
//
// Trial i runs against Key.Derive("trial_i"), so the aggregate depends only on
// Key and Trials, never on Workers or completion order.
type Runner struct {
	Trials     int
	Workers    int // ≤ 0 means GOMAXPROCS
	Key        sim.SimulationKey
	TraceLevel trace.TraceLevel
	Telemetry  *telemetry.Registry // optional
}

// NewRunner returns a Runner with default trial count and worker pool.
func NewRunner(seed int64) Runner {
	return Runner{Trials: DefaultTrials, Key: sim.NewSimulationKey(seed), TraceLevel: trace.TraceLevelNone}
}

// WithKey returns a copy of r that derives its trials from key.
func (r Runner) WithKey(key sim.SimulationKey) Runner {
	r.Key = key
	return r
}

func (r Runner) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Run executes r.Trials runs of sc for iterations ticks each and averages them.
// It returns ctx's error if the context is cancelled before every trial finished.
func (r Runner) Run(ctx context.Context, sc *sim.Scenario, iterations int) (*Aggregate, error) {
	if r.Trials < 1 {
		return nil, fmt.Errorf("trials must be ≥ 1, got %d", r.Trials)
	}
	if iterations < 1 {
		return nil, fmt.Errorf("iterations must be ≥ 1, got %d", iterations)
	}

	results := make([]*sim.RunResult, r.Trials)
	summaries := make([]*trace.TraceSummary, r.Trials)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i := 0; i < r.Trials; i++ {
		g.Go(func() error {
			res, summary := r.trial(gctx, sc, i, iterations)
			if res.Status == sim.StatusCancelled {
				return gctx.Err()
			}
			results[i], summaries[i] = res, summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("experiment cancelled: %w", err)
	}

	agg := Combine(results, iterations)
	for _, s := range summaries {
		agg.Trace.Merge(s)
	}
	return agg, nil
}

func (r Runner) trial(ctx context.Context, sc *sim.Scenario, i, iterations int) (*sim.RunResult, *trace.TraceSummary) {
	w := sc.NewWorld(r.Key.Derive(sim.SubsystemTrial(i)))

	var obs []sim.Observer
	if r.Telemetry != nil {
		obs = append(obs, r.Telemetry)
	}
	recorder := sim.NewTraceRecorder(trace.TraceConfig{Level: r.TraceLevel})
	if recorder != nil {
		obs = append(obs, recorder)
	}

	start := time.Now()
	res := sim.NewEngine(sc.Engine, obs...).Run(ctx, w, iterations)
	r.Telemetry.ObserveTrialDuration(time.Since(start))
	logrus.Debugf("trial %d finished: %s after %d ticks", i, res.Status, res.TicksRun)

	if recorder == nil {
		return res, nil
	}
	return res, trace.Summarize(recorder.Trace)
}

// NewScenario generates a network for p and places agents on it. Both draws use
// the setup subsystem of key.
func NewScenario(p sim.Params, key sim.SimulationKey) (*sim.Scenario, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rng := sim.NewPartitionedRNG(key).ForSubsystem(sim.SubsystemSetup)
	net, err := topology.Generate(topology.SpecFromParams(p), rng)
	if err != nil {
		return nil, fmt.Errorf("generating network: %w", err)
	}
	return sim.BuildScenario(p, net, rng)
}
