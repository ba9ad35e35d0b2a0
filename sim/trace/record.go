// Package trace provides decision-trace recording for market runs.
// This package has no dependencies on sim/; it stores plain data types.
package trace

// OfferRecord captures one company's decision on one client offer.
type OfferRecord struct {
	Tick     int
	Client   int
	Company  string
	Price    float64
	Ask      float64
	Accepted bool
	Reason   string // empty when accepted
}

// BankruptcyRecord captures the removal of a company.
type BankruptcyRecord struct {
	Tick            int
	Company         string
	Capital         float64
	CompletedOffers int
}

// EdgeRecord captures an edge explosion.
type EdgeRecord struct {
	Tick   int
	U, V   int
	Weight int
}

// TruckLossRecord captures a truck explosion.
type TruckLossRecord struct {
	Tick    int
	Company string
	Truck   int
}
