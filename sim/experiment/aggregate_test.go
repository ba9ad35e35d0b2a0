package experiment

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freight-sim/freight-sim/sim"
)

func runResult(status sim.RunStatus, capital ...[]float64) *sim.RunResult {
	res := &sim.RunResult{Status: status, Iterations: len(capital[0])}
	for i, c := range capital {
		res.Trajectories = append(res.Trajectories, sim.Trajectory{
			Company:    sim.CompanyName(i),
			Node:       sim.NodeID(i),
			Capital:    c,
			BankruptAt: -1,
		})
	}
	return res
}

func TestCombine_MeanAndBand(t *testing.T) {
	// GIVEN two trials of two companies
	results := []*sim.RunResult{
		runResult(sim.StatusCompleted, []float64{100, 200}, []float64{-10, 0}),
		runResult(sim.StatusCompleted, []float64{300, 400}, []float64{-30, 0}),
	}

	// WHEN combined
	agg := Combine(results, 2)

	// THEN means are element-wise and the band is ±5% of |mean|
	a, _ := agg.Series("A")
	assert.Equal(t, []float64{200, 300}, a.Mean)
	assert.InDeltaSlice(t, []float64{190, 285}, a.Low, 1e-9)
	assert.InDeltaSlice(t, []float64{210, 315}, a.High, 1e-9)

	b, _ := agg.Series("B")
	assert.Equal(t, []float64{-20, 0}, b.Mean)
	assert.InDeltaSlice(t, []float64{-21, 0}, b.Low, 1e-9)
	assert.InDeltaSlice(t, []float64{-19, 0}, b.High, 1e-9)
	assert.Equal(t, 2, agg.Statuses[sim.StatusCompleted])
}

func TestCombine_TruncatedTrialsContributeZeros(t *testing.T) {
	full := runResult(sim.StatusCompleted, []float64{10, 10, 10, 10})
	short := runResult(sim.StatusEdgesExhausted, []float64{10, 10})

	agg := Combine([]*sim.RunResult{full, short}, 4)

	a, _ := agg.Series("A")
	assert.Equal(t, []float64{10, 10, 5, 5}, a.Mean)
	assert.Equal(t, 1, agg.Statuses[sim.StatusEdgesExhausted])
}

func TestCombine_CountsBankruptcies(t *testing.T) {
	r1 := runResult(sim.StatusAllBankrupt, []float64{5, 0})
	r1.Trajectories[0].BankruptAt = 1
	r2 := runResult(sim.StatusCompleted, []float64{5, 3})

	agg := Combine([]*sim.RunResult{r1, r2}, 2)

	a, _ := agg.Series("A")
	assert.Equal(t, 1, a.Bankruptcies)
}

func TestCombine_Empty(t *testing.T) {
	agg := Combine(nil, 10)
	assert.Zero(t, agg.Trials)
	assert.Empty(t, agg.Companies)
	_, ok := agg.Best()
	assert.False(t, ok)
}

func TestAggregate_Best_HighestFinalMean(t *testing.T) {
	agg := Combine([]*sim.RunResult{
		runResult(sim.StatusCompleted, []float64{1, 50}, []float64{1, 80}, []float64{1, 80}),
	}, 2)

	best, ok := agg.Best()

	require.True(t, ok)
	assert.Equal(t, sim.CompanyID("B"), best.Company, "ties go to the earlier company")
	assert.Equal(t, 80.0, best.Final())
}

func TestCombine_OrderIndependentProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("averaging is commutative in trial order", prop.ForAll(
		func(seed uint64, trials, ticks int) bool {
			rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
			results := make([]*sim.RunResult, trials)
			for i := range results {
				a := make([]float64, ticks)
				b := make([]float64, ticks)
				for j := range a {
					a[j] = rng.Float64()*5000 - 1000
					b[j] = rng.Float64()*5000 - 1000
				}
				results[i] = runResult(sim.StatusCompleted, a, b)
			}
			shuffled := append([]*sim.RunResult(nil), results...)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

			x := Combine(results, ticks)
			y := Combine(shuffled, ticks)
			for c := range x.Companies {
				for k := range x.Companies[c].Mean {
					if math.Abs(x.Companies[c].Mean[k]-y.Companies[c].Mean[k]) > 1e-6 {
						return false
					}
				}
			}
			return true
		},
		gen.UInt64(),
		gen.IntRange(1, 30),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}

func TestArgMax_FirstMaximum(t *testing.T) {
	assert.Equal(t, 0, argMax([]int{3}))
	assert.Equal(t, 1, argMax([]int{1, 9, 9, 2}))
	assert.Equal(t, 2, argMax([]float64{-3, -2, -1}))
}
