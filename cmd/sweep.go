package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/freight-sim/freight-sim/sim/experiment"
	"github.com/freight-sim/freight-sim/sim/render"
	"github.com/freight-sim/freight-sim/sim/telemetry"
)

// runNamedSweep runs one sweep with the default swept ranges.
func runNamedSweep(ctx context.Context, name string, cfg ExperimentConfig, reg *telemetry.Registry) (*experiment.SweepResult, error) {
	if !experiment.IsValidSweep(name) {
		return nil, fmt.Errorf("unknown sweep %q; valid: %s", name, strings.Join(experiment.ValidSweeps, ", "))
	}
	return experiment.RunSweep(ctx, name, newRunner(cfg, reg), cfg.Params, cfg.Iterations, experiment.DefaultSweepOptions())
}

// reportSweep prints res and writes the selected sinks.
func reportSweep(cmd *cobra.Command, cfg ExperimentConfig, out sinks, reg *telemetry.Registry, res *experiment.SweepResult) error {
	rc := render.NewRenderContext(cfg.Seed, nil)
	fmt.Fprint(cmd.OutOrStdout(), render.SweepReport(res, rc))
	if res.Aggregate != nil {
		fmt.Fprint(cmd.OutOrStdout(), render.Report("Baseline", res.Aggregate, rc))
	}
	if err := out.writeSweep(cfg, res); err != nil {
		return err
	}
	return out.writeMetrics(reg)
}

// sweepCmd runs one of the parameter sweeps
var sweepCmd = &cobra.Command{
	Use:       "sweep <name>",
	Short:     "Run a parameter sweep (" + strings.Join(experiment.ValidSweeps, ", ") + ")",
	Args:      cobra.ExactArgs(1),
	ValidArgs: experiment.ValidSweeps,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := resolveConfig(cmd)
		out := currentSinks()
		reg := out.registry()

		res, err := runNamedSweep(cmd.Context(), args[0], cfg, reg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := reportSweep(cmd, cfg, out, reg, res); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}
