package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/freight-sim/freight-sim/sim"
	"github.com/freight-sim/freight-sim/sim/trace"
)

var (
	// run settings
	configPath string // Optional experiment YAML file
	logLevel   string // Log verbosity level
	traceLevel string // Decision trace level
	csvPath    string // CSV output file
	resultsDB  string // SQLite results database
	metricsOut string // Prometheus textfile output

	// flagCfg receives every parameter flag; values are copied into the
	// effective config only for flags the user set.
	flagCfg  = DefaultExperimentConfig()
	flagRisk float64 // Client risk; drawn per experiment unless set
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "freight-sim",
	Short: "Multi-agent simulation of a freight delivery market",
}

// overrides copies one flag's value from flagCfg into the effective config.
var overrides = map[string]func(dst *ExperimentConfig){
	"seed":                  func(d *ExperimentConfig) { d.Seed = flagCfg.Seed },
	"iterations":            func(d *ExperimentConfig) { d.Iterations = flagCfg.Iterations },
	"trials":                func(d *ExperimentConfig) { d.Trials = flagCfg.Trials },
	"workers":               func(d *ExperimentConfig) { d.Workers = flagCfg.Workers },
	"nodes":                 func(d *ExperimentConfig) { d.Nodes = flagCfg.Nodes },
	"graph-type":            func(d *ExperimentConfig) { d.GraphType = flagCfg.GraphType },
	"graph-param":           func(d *ExperimentConfig) { d.GraphParam = flagCfg.GraphParam },
	"min-weight":            func(d *ExperimentConfig) { d.MinWeight = flagCfg.MinWeight },
	"max-weight":            func(d *ExperimentConfig) { d.MaxWeight = flagCfg.MaxWeight },
	"companies":             func(d *ExperimentConfig) { d.Companies = flagCfg.Companies },
	"trucks":                func(d *ExperimentConfig) { d.Trucks = flagCfg.Trucks },
	"truck-threshold":       func(d *ExperimentConfig) { d.TruckThreshold = flagCfg.TruckThreshold },
	"init-capital":          func(d *ExperimentConfig) { d.InitCapital = flagCfg.InitCapital },
	"unit-cost":             func(d *ExperimentConfig) { d.UnitCost = flagCfg.UnitCost },
	"profit-margin":         func(d *ExperimentConfig) { d.ProfitMargin = flagCfg.ProfitMargin },
	"tax":                   func(d *ExperimentConfig) { d.TaxRate = flagCfg.TaxRate },
	"min-offer":             func(d *ExperimentConfig) { d.MinOfferValue = flagCfg.MinOfferValue },
	"max-offer":             func(d *ExperimentConfig) { d.MaxOfferValue = flagCfg.MaxOfferValue },
	"existence-tax":         func(d *ExperimentConfig) { d.ExistenceTax = flagCfg.ExistenceTax },
	"p-edge-explosion":      func(d *ExperimentConfig) { d.PEdgeExplosion = flagCfg.PEdgeExplosion },
	"p-truck-explosion":     func(d *ExperimentConfig) { d.PTruckExplosion = flagCfg.PTruckExplosion },
	"transit":               func(d *ExperimentConfig) { d.Transit = flagCfg.Transit },
	"stop-on-sole-survivor": func(d *ExperimentConfig) { d.StopOnSoleSurvivor = flagCfg.StopOnSoleSurvivor },
	"risk":                  func(d *ExperimentConfig) { d.Risk = float64Ptr(flagRisk) },
}

func float64Ptr(v float64) *float64 { return &v }

// changedFlags reports whether a flag was set on the command line.
type changedFlags interface {
	Changed(name string) bool
}

// applyOverrides copies every changed flag into cfg. File values survive
// wherever the flag was left at its default.
func applyOverrides(flags changedFlags, cfg *ExperimentConfig) {
	for name, set := range overrides {
		if flags.Changed(name) {
			set(cfg)
		}
	}
}

// resolveConfig sets up logging and builds the effective experiment config:
// defaults, then the experiment file, then explicit flags.
func resolveConfig(cmd *cobra.Command) ExperimentConfig {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)

	if !trace.IsValidTraceLevel(traceLevel) {
		logrus.Fatalf("Invalid trace level: %s; valid: none, decisions", traceLevel)
	}

	cfg := DefaultExperimentConfig()
	if configPath != "" {
		cfg, err = LoadExperimentConfig(configPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Loaded experiment file %s", configPath)
	}
	applyOverrides(cmd.Flags(), &cfg)

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("%v", err)
	}
	return cfg
}

// Execute runs the CLI root command. An interrupt cancels the running experiment.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	pf := rootCmd.PersistentFlags()
	d := DefaultExperimentConfig()

	pf.StringVar(&configPath, "config", "", "Experiment YAML file; flags override its values")
	pf.StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	pf.StringVar(&traceLevel, "trace-level", string(trace.TraceLevelNone), "Decision trace level (none, decisions)")
	pf.StringVar(&csvPath, "csv", "", "Write results as CSV to this file")
	pf.StringVar(&resultsDB, "results-db", "", "Append results to this SQLite database")
	pf.StringVar(&metricsOut, "metrics-file", "", "Write Prometheus metrics in text format to this file")

	// run settings
	pf.Int64Var(&flagCfg.Seed, "seed", d.Seed, "Master seed for every random draw")
	pf.IntVar(&flagCfg.Iterations, "iterations", d.Iterations, "Ticks per trial")
	pf.IntVar(&flagCfg.Trials, "trials", d.Trials, "Independent trials averaged per experiment")
	pf.IntVar(&flagCfg.Workers, "workers", d.Workers, "Trials run concurrently (0 = one per CPU)")

	// network
	pf.IntVar(&flagCfg.Nodes, "nodes", d.Nodes, "Number of network nodes")
	pf.StringVar(&flagCfg.GraphType, "graph-type", d.GraphType, fmt.Sprintf("Network topology (%s, %s)", sim.GraphRandom, sim.GraphScaleFree))
	pf.Float64Var(&flagCfg.GraphParam, "graph-param", d.GraphParam, "Edge probability (random) or attachment count (scale-free)")
	pf.IntVar(&flagCfg.MinWeight, "min-weight", d.MinWeight, "Minimum edge weight")
	pf.IntVar(&flagCfg.MaxWeight, "max-weight", d.MaxWeight, "Maximum edge weight")

	// agents
	pf.IntVar(&flagCfg.Companies, "companies", d.Companies, "Number of companies")
	pf.IntVar(&flagCfg.Trucks, "trucks", d.Trucks, "Trucks per company")
	pf.IntVar(&flagCfg.TruckThreshold, "truck-threshold", d.TruckThreshold, "Busy trucks at which a company stops accepting offers")
	pf.Float64Var(&flagCfg.InitCapital, "init-capital", d.InitCapital, "Initial capital per company")
	pf.Float64Var(&flagCfg.UnitCost, "unit-cost", d.UnitCost, "Delivery cost per unit of path weight")
	pf.Float64Var(&flagCfg.ProfitMargin, "profit-margin", d.ProfitMargin, "Ask as a multiple of delivery cost")
	pf.Float64Var(&flagCfg.TaxRate, "tax", d.TaxRate, "Transaction tax rate")
	pf.Float64Var(&flagRisk, "risk", 0, "Probability a client compares two companies (default: drawn per experiment)")
	pf.Float64Var(&flagCfg.MinOfferValue, "min-offer", d.MinOfferValue, "Minimum offer value")
	pf.Float64Var(&flagCfg.MaxOfferValue, "max-offer", d.MaxOfferValue, "Maximum offer value")

	// events
	pf.Float64Var(&flagCfg.ExistenceTax, "existence-tax", d.ExistenceTax, "Fraction of initial capital charged every tick")
	pf.Float64Var(&flagCfg.PEdgeExplosion, "p-edge-explosion", d.PEdgeExplosion, "Per-tick probability that an edge is removed")
	pf.Float64Var(&flagCfg.PTruckExplosion, "p-truck-explosion", d.PTruckExplosion, "Per-tick probability that a truck is destroyed")
	pf.StringVar((*string)(&flagCfg.Transit), "transit", string(d.Transit), "Truck occupancy model (instant, round-trip)")
	pf.BoolVar(&flagCfg.StopOnSoleSurvivor, "stop-on-sole-survivor", d.StopOnSoleSurvivor, "Stop a trial once one company is left")

	rootCmd.AddCommand(runCmd, sweepCmd, menuCmd)
}
