package experiment

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/freight-sim/freight-sim/sim"
)

// Sweep names accepted by RunSweep.
const (
	SweepMoneyTime    = "money-time"
	SweepGraphTypes   = "graph-types"
	SweepNumCompanies = "num-companies"
	SweepNumNodes     = "num-nodes"
	SweepThreshold    = "threshold"
)

// ValidSweeps lists the sweeps in menu order.
var ValidSweeps = []string{SweepMoneyTime, SweepGraphTypes, SweepNumCompanies, SweepNumNodes, SweepThreshold}

// IsValidSweep returns true if name is a recognized sweep.
func IsValidSweep(name string) bool {
	return slices.Contains(ValidSweeps, name)
}

// Point is one measurement of a sweep.
type Point struct {
	X     float64
	Value float64
}

// Series is a named line of points.
type Series struct {
	Name   string
	Points []Point
}

// SweepResult is the outcome of one sweep.
type SweepResult struct {
	ID         uuid.UUID
	Name       string
	XLabel     string
	YLabel     string
	Series     []Series
	Aggregate  *Aggregate    // the baseline experiment, when the sweep has one
	Best       sim.CompanyID // company the threshold sweep varied
	StartedAt  time.Time
	FinishedAt time.Time
}

// SweepOptions are the swept ranges. The zero value is not useful; start from
// DefaultSweepOptions.
type SweepOptions struct {
	CompanyCounts    []int
	CompanyCountNets int // node count of the fixed network for num-companies
	NodeCounts       []int
	TruckCounts      []int
	Thresholds       []int
	ScaleFreeParam   float64
}

// DefaultSweepOptions reproduces the ranges of the interactive menu.
func DefaultSweepOptions() SweepOptions {
	return SweepOptions{
		CompanyCounts:    intRange(1, 10, 1),
		CompanyCountNets: 30,
		NodeCounts:       intRange(10, 200, 5),
		TruckCounts:      []int{8, 16},
		Thresholds:       intRange(0, 300, 25),
		ScaleFreeParam:   2,
	}
}

// intRange returns from, from+step, ... up to and including to.
func intRange(from, to, step int) []int {
	var out []int
	for v := from; v <= to; v += step {
		out = append(out, v)
	}
	return out
}

// RunSweep runs the named sweep with base as the starting parameters.
func RunSweep(ctx context.Context, name string, r Runner, base sim.Params, iterations int, opts SweepOptions) (*SweepResult, error) {
	res := &SweepResult{ID: uuid.New(), Name: name, YLabel: "Money", StartedAt: time.Now()}
	var err error
	switch name {
	case SweepMoneyTime:
		err = moneyTime(ctx, res, r, base, iterations)
	case SweepGraphTypes:
		err = graphTypes(ctx, res, r, base, iterations, opts)
	case SweepNumCompanies:
		err = numCompanies(ctx, res, r, base, iterations, opts)
	case SweepNumNodes:
		err = numNodes(ctx, res, r, base, iterations, opts)
	case SweepThreshold:
		err = threshold(ctx, res, r, base, iterations, opts)
	default:
		return nil, fmt.Errorf("unknown sweep %q; valid: %v", name, ValidSweeps)
	}
	if err != nil {
		return nil, fmt.Errorf("sweep %s: %w", name, err)
	}
	res.FinishedAt = time.Now()
	logrus.Infof("sweep %s finished in %s", name, res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond))
	return res, nil
}

// timeSeries converts a mean trajectory into points indexed by tick.
func timeSeries(name string, mean []float64) Series {
	s := Series{Name: name, Points: make([]Point, len(mean))}
	for i, v := range mean {
		s.Points[i] = Point{X: float64(i), Value: v}
	}
	return s
}

func moneyTime(ctx context.Context, res *SweepResult, r Runner, base sim.Params, iterations int) error {
	res.XLabel = "Time"
	sc, err := NewScenario(base, r.Key)
	if err != nil {
		return err
	}
	agg, err := r.Run(ctx, sc, iterations)
	if err != nil {
		return err
	}
	res.Aggregate = agg
	for _, s := range agg.Companies {
		res.Series = append(res.Series, timeSeries(fmt.Sprintf("%s pos:%d", s.Company, s.Node), s.Mean))
	}
	return nil
}

// graphTypes compares the best company's mean trajectory on a random and a
// scale-free network.
func graphTypes(ctx context.Context, res *SweepResult, r Runner, base sim.Params, iterations int, opts SweepOptions) error {
	res.XLabel = "Time"
	variants := []struct {
		name  string
		kind  string
		param float64
	}{
		{"Random Network", sim.GraphRandom, base.GraphParam},
		{"Scale-Free Network", sim.GraphScaleFree, opts.ScaleFreeParam},
	}
	if base.GraphType == sim.GraphScaleFree {
		variants[0].param = 0.2
	}
	for _, v := range variants {
		p := base
		p.GraphType, p.GraphParam = v.kind, v.param
		key := r.Key.Derive(v.kind)
		sc, err := NewScenario(p, key)
		if err != nil {
			return fmt.Errorf("%s: %w", v.kind, err)
		}
		agg, err := r.WithKey(key).Run(ctx, sc, iterations)
		if err != nil {
			return err
		}
		best, _ := agg.Best()
		res.Series = append(res.Series, timeSeries(v.name, best.Mean))
		logrus.Infof("sweep %s: %s best=%s final=%.2f", res.Name, v.kind, best.Company, best.Final())
	}
	return nil
}

// numCompanies varies the company count on one fixed network and reports the
// highest final mean capital.
func numCompanies(ctx context.Context, res *SweepResult, r Runner, base sim.Params, iterations int, opts SweepOptions) error {
	res.XLabel = "Number of Companies"
	p := base
	if opts.CompanyCountNets > 0 {
		p.Nodes = opts.CompanyCountNets
	}
	p.Companies = 1
	sc, err := NewScenario(p, r.Key)
	if err != nil {
		return err
	}
	net := sc.Network.Clone()
	for _, c := range sc.Companies {
		net.ClearDepot(c.Node)
	}

	series := Series{Name: "Company w/ most profit"}
	for _, n := range opts.CompanyCounts {
		p.Companies = n
		if err := p.Validate(); err != nil {
			return fmt.Errorf("companies=%d: %w", n, err)
		}
		key := r.Key.Derive(fmt.Sprintf("companies_%d", n))
		sc, err := sim.BuildScenario(p, net, sim.NewPartitionedRNG(key).ForSubsystem(sim.SubsystemSetup))
		if err != nil {
			return fmt.Errorf("companies=%d: %w", n, err)
		}
		agg, err := r.WithKey(key).Run(ctx, sc, iterations)
		if err != nil {
			return err
		}
		best, _ := agg.Best()
		series.Points = append(series.Points, Point{X: float64(n), Value: best.Final()})
		logrus.Infof("sweep %s: companies=%d value=%.2f", res.Name, n, best.Final())
	}
	res.Series = []Series{series}
	return nil
}

// numNodes varies the network size for each truck count and reports the highest
// final mean capital.
func numNodes(ctx context.Context, res *SweepResult, r Runner, base sim.Params, iterations int, opts SweepOptions) error {
	res.XLabel = "Number of Nodes"
	for _, trucks := range opts.TruckCounts {
		series := Series{Name: fmt.Sprintf("Number of Trucks: %d", trucks)}
		for _, nodes := range opts.NodeCounts {
			p := base
			p.Trucks, p.Nodes = trucks, nodes
			key := r.Key.Derive(fmt.Sprintf("trucks_%d_nodes_%d", trucks, nodes))
			sc, err := NewScenario(p, key)
			if err != nil {
				return fmt.Errorf("trucks=%d nodes=%d: %w", trucks, nodes, err)
			}
			agg, err := r.WithKey(key).Run(ctx, sc, iterations)
			if err != nil {
				return err
			}
			best, _ := agg.Best()
			series.Points = append(series.Points, Point{X: float64(nodes), Value: best.Final()})
			logrus.Infof("sweep %s: trucks=%d nodes=%d value=%.2f", res.Name, trucks, nodes, best.Final())
		}
		res.Series = append(res.Series, series)
	}
	return nil
}

// threshold finds the best company of a baseline experiment, then varies only
// that company's truck threshold and reports its final mean capital.
func threshold(ctx context.Context, res *SweepResult, r Runner, base sim.Params, iterations int, opts SweepOptions) error {
	res.XLabel = "Threshold"
	sc, err := NewScenario(base, r.Key)
	if err != nil {
		return err
	}
	baseline, err := r.Run(ctx, sc, iterations)
	if err != nil {
		return err
	}
	res.Aggregate = baseline
	best, ok := baseline.Best()
	if !ok {
		return fmt.Errorf("baseline has no companies")
	}
	res.Best = best.Company
	spec, _ := sc.Company(best.Company)

	series := Series{Name: fmt.Sprintf("Position: %d", best.Node)}
	for _, t := range opts.Thresholds {
		params := spec.Params
		params.TruckThreshold = t
		varied, err := sc.WithCompanyParams(best.Company, params)
		if err != nil {
			return err
		}
		agg, err := r.Run(ctx, varied, iterations)
		if err != nil {
			return err
		}
		s, _ := agg.Series(best.Company)
		series.Points = append(series.Points, Point{X: float64(t), Value: s.Final()})
		logrus.Infof("sweep %s: %s threshold=%d value=%.2f", res.Name, best.Company, t, s.Final())
	}
	res.Series = []Series{series}
	return nil
}
