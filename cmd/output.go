package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/freight-sim/freight-sim/sim/experiment"
	"github.com/freight-sim/freight-sim/sim/render"
	"github.com/freight-sim/freight-sim/sim/store"
	"github.com/freight-sim/freight-sim/sim/telemetry"
)

// sinks are the optional outputs selected by --csv, --results-db and --metrics-file.
type sinks struct {
	CSVPath     string
	ResultsDB   string
	MetricsFile string
}

func currentSinks() sinks {
	return sinks{CSVPath: csvPath, ResultsDB: resultsDB, MetricsFile: metricsOut}
}

// registry returns a telemetry registry when metrics are requested, nil otherwise.
func (s sinks) registry() *telemetry.Registry {
	if s.MetricsFile == "" {
		return nil
	}
	return telemetry.NewRegistry()
}

func (s sinks) writeAggregate(name string, cfg ExperimentConfig, agg *experiment.Aggregate) error {
	if s.CSVPath != "" {
		if err := writeFile(s.CSVPath, func(f *os.File) error { return render.WriteAggregateCSV(f, agg) }); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		logrus.Infof("Results written to %s", s.CSVPath)
	}
	if s.ResultsDB == "" {
		return nil
	}
	db, err := store.Open(s.ResultsDB)
	if err != nil {
		return err
	}
	defer db.Close()
	id, err := db.SaveAggregate(name, cfg.Params, agg)
	if err != nil {
		return fmt.Errorf("saving results: %w", err)
	}
	logrus.Infof("Experiment %s saved to %s", id, s.ResultsDB)
	return nil
}

func (s sinks) writeSweep(cfg ExperimentConfig, res *experiment.SweepResult) error {
	if s.CSVPath != "" {
		if err := writeFile(s.CSVPath, func(f *os.File) error { return render.WriteSweepCSV(f, res) }); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		logrus.Infof("Results written to %s", s.CSVPath)
	}
	if s.ResultsDB == "" {
		return nil
	}
	db, err := store.Open(s.ResultsDB)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.SaveSweep(cfg.Params, cfg.Trials, cfg.Iterations, res); err != nil {
		return fmt.Errorf("saving sweep: %w", err)
	}
	logrus.Infof("Sweep %s saved to %s", res.ID, s.ResultsDB)
	return nil
}

func (s sinks) writeMetrics(reg *telemetry.Registry) error {
	if s.MetricsFile == "" {
		return nil
	}
	if err := reg.WriteTextfile(s.MetricsFile); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	logrus.Infof("Metrics written to %s", s.MetricsFile)
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
