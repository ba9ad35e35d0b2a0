package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/freight-sim/freight-sim/sim/experiment"
	"github.com/freight-sim/freight-sim/sim/render"
	"github.com/freight-sim/freight-sim/sim/telemetry"
	"github.com/freight-sim/freight-sim/sim/trace"
)

// newRunner builds the trial runner for cfg.
func newRunner(cfg ExperimentConfig, reg *telemetry.Registry) experiment.Runner {
	r := experiment.NewRunner(cfg.Seed)
	r.Trials = cfg.Trials
	r.Workers = cfg.Workers
	r.TraceLevel = trace.TraceLevel(traceLevel)
	r.Telemetry = reg
	return r
}

// runExperiment averages cfg.Trials runs of one generated market.
func runExperiment(ctx context.Context, cfg ExperimentConfig, reg *telemetry.Registry) (*experiment.Aggregate, error) {
	r := newRunner(cfg, reg)
	sc, err := experiment.NewScenario(cfg.Params, r.Key)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Starting experiment: %d companies on %d nodes (%d edges), %d trials × %d ticks",
		len(sc.Companies), sc.Network.NumNodes(), sc.Network.NumEdges(), cfg.Trials, cfg.Iterations)
	return r.Run(ctx, sc, cfg.Iterations)
}

// runCmd runs one money-through-time experiment from flags and the optional experiment file
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the money-through-time experiment",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := resolveConfig(cmd)
		out := currentSinks()
		reg := out.registry()

		startTime := time.Now()
		agg, err := runExperiment(cmd.Context(), cfg, reg)
		if err != nil {
			logrus.Fatalf("Experiment failed: %v", err)
		}

		rc := render.NewRenderContext(cfg.Seed, nil)
		fmt.Fprint(cmd.OutOrStdout(), render.Report("Money through time", agg, rc))

		if err := out.writeAggregate(experiment.SweepMoneyTime, cfg, agg); err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := out.writeMetrics(reg); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Simulation complete in %s.", time.Since(startTime).Round(time.Millisecond))
	},
}
