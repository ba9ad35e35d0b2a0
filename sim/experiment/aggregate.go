package experiment

import (
	"golang.org/x/exp/constraints"

	"github.com/freight-sim/freight-sim/sim"
	"github.com/freight-sim/freight-sim/sim/trace"
)

// DisplayBand is the fixed relative band drawn around mean trajectories.
// It is a presentation aid, not a measured confidence interval.
const DisplayBand = 0.05

// CompanySeries is one company's trajectory averaged over every trial.
type CompanySeries struct {
	Company      sim.CompanyID
	Node         sim.NodeID
	Mean         []float64
	Low          []float64 // Mean shifted down by DisplayBand of |Mean|
	High         []float64 // Mean shifted up by DisplayBand of |Mean|
	Bankruptcies int       // trials in which the company went bankrupt
}

// Final returns the last mean value, or 0 for an empty series.
func (s CompanySeries) Final() float64 {
	if len(s.Mean) == 0 {
		return 0
	}
	return s.Mean[len(s.Mean)-1]
}

// Aggregate summarizes a multi-trial experiment.
type Aggregate struct {
	Trials          int
	Iterations      int
	Companies       []CompanySeries
	Statuses        map[sim.RunStatus]int
	CompletedOffers int     // summed over trials
	TaxesPaid       float64 // mean per trial
	EdgesRemoved    int     // summed over trials
	TrucksLost      int     // summed over trials
	Trace           *trace.TraceSummary
}

// Series returns the averaged series of the named company.
func (a *Aggregate) Series(id sim.CompanyID) (CompanySeries, bool) {
	for _, s := range a.Companies {
		if s.Company == id {
			return s, true
		}
	}
	return CompanySeries{}, false
}

// Best returns the company with the highest final mean capital. Ties go to the
// earlier company.
func (a *Aggregate) Best() (CompanySeries, bool) {
	if len(a.Companies) == 0 {
		return CompanySeries{}, false
	}
	finals := make([]float64, len(a.Companies))
	for i, s := range a.Companies {
		finals[i] = s.Final()
	}
	return a.Companies[argMax(finals)], true
}

// Combine folds per-trial results into an Aggregate. Results are summed in
// slice order; trajectories shorter than iterations contribute zeros past their
// end. Every result must come from the same scenario.
func Combine(results []*sim.RunResult, iterations int) *Aggregate {
	agg := &Aggregate{
		Trials:     len(results),
		Iterations: iterations,
		Statuses:   make(map[sim.RunStatus]int),
		Trace:      trace.NewTraceSummary(),
	}
	if len(results) == 0 {
		return agg
	}

	sums := make([][]float64, len(results[0].Trajectories))
	for i, tr := range results[0].Trajectories {
		sums[i] = make([]float64, iterations)
		agg.Companies = append(agg.Companies, CompanySeries{Company: tr.Company, Node: tr.Node})
	}
	var taxes float64
	for _, res := range results {
		agg.Statuses[res.Status]++
		agg.CompletedOffers += res.CompletedOffers
		agg.EdgesRemoved += len(res.EdgesRemoved)
		agg.TrucksLost += res.TrucksLost
		taxes += res.Taxes.Total()
		for i, tr := range res.Trajectories {
			addInto(sums[i], tr.Capital)
			if tr.BankruptAt >= 0 {
				agg.Companies[i].Bankruptcies++
			}
		}
	}

	n := float64(len(results))
	agg.TaxesPaid = taxes / n
	for i := range agg.Companies {
		mean := scaled(sums[i], 1/n)
		agg.Companies[i].Mean = mean
		agg.Companies[i].Low, agg.Companies[i].High = band(mean, DisplayBand)
	}
	return agg
}

// addInto adds src element-wise into dst, ignoring entries past len(dst).
func addInto[T constraints.Integer | constraints.Float](dst, src []T) {
	for i := 0; i < len(dst) && i < len(src); i++ {
		dst[i] += src[i]
	}
}

func scaled[T constraints.Float](xs []T, f T) []T {
	out := make([]T, len(xs))
	for i, x := range xs {
		out[i] = x * f
	}
	return out
}

// argMax returns the index of the first maximum of xs; xs must be non-empty.
func argMax[T constraints.Ordered](xs []T) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}

func band[T constraints.Float](mean []T, rel T) (low, high []T) {
	low = make([]T, len(mean))
	high = make([]T, len(mean))
	for i, m := range mean {
		d := m * rel
		if d < 0 {
			d = -d
		}
		low[i], high[i] = m-d, m+d
	}
	return low, high
}
