// Package testutil provides shared test infrastructure for the market simulator.
// It holds the golden scenario types and assertion helpers used across
// sim/ sub-package tests, and does not import sim itself.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/golden_scenarios.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one deterministic market: a single company on node 0 of a
// complete network, with clients on nodes 1..Clients offering a fixed price.
type GoldenTestCase struct {
	Name           string        `json:"name"`
	Nodes          int           `json:"nodes"`
	EdgeWeight     int           `json:"edge_weight"`
	Capital        float64       `json:"capital"`
	Trucks         int           `json:"trucks"`
	TruckThreshold int           `json:"truck_threshold"`
	UnitCost       float64       `json:"unit_cost"`
	ProfitMargin   float64       `json:"profit_margin"`
	TaxRate        float64       `json:"tax_rate"`
	ExistenceTax   float64       `json:"existence_tax"`
	Clients        int           `json:"clients"`
	OfferValue     float64       `json:"offer_value"`
	Iterations     int           `json:"iterations"`
	Metrics        GoldenMetrics `json:"metrics"`
}

// GoldenMetrics represents the expected outcome of a golden test case.
type GoldenMetrics struct {
	Status          string    `json:"status"`
	TicksRun        int       `json:"ticks_run"`
	BankruptAt      int       `json:"bankrupt_at"`
	CompletedOffers int       `json:"completed_offers"`
	TaxesPaid       float64   `json:"taxes_paid"`
	Capital         []float64 `json:"capital"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "golden_scenarios.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertSeriesEqual compares two series element-wise with relative tolerance.
func AssertSeriesEqual(t *testing.T, name string, want, got []float64, relTol float64) {
	t.Helper()
	if len(want) != len(got) {
		t.Errorf("%s: length %d, want %d", name, len(got), len(want))
		return
	}
	for i := range want {
		AssertFloat64Equal(t, name, want[i], got[i], relTol)
	}
}
