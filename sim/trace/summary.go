package trace

// TraceSummary aggregates statistics from one or more SimulationTraces.
type TraceSummary struct {
	Runs              int
	TotalOffers       int
	AcceptedCount     int
	RejectedCount     int
	AcceptedRevenue   float64
	RejectReasons     map[string]int // reason → count of declined offers
	AcceptedByCompany map[string]int // company → count of accepted offers
	Bankruptcies      int
	EdgesRemoved      int
	TrucksLost        int
}

// NewTraceSummary returns an empty summary.
func NewTraceSummary() *TraceSummary {
	return &TraceSummary{
		RejectReasons:     make(map[string]int),
		AcceptedByCompany: make(map[string]int),
	}
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := NewTraceSummary()
	if st == nil {
		return summary
	}
	summary.Runs = 1

	summary.TotalOffers = len(st.Offers)
	for _, o := range st.Offers {
		if o.Accepted {
			summary.AcceptedCount++
			summary.AcceptedRevenue += o.Price
			summary.AcceptedByCompany[o.Company]++
		} else {
			summary.RejectedCount++
			summary.RejectReasons[o.Reason]++
		}
	}
	summary.Bankruptcies = len(st.Bankruptcies)
	summary.EdgesRemoved = len(st.Edges)
	summary.TrucksLost = len(st.TruckLosses)
	return summary
}

// AcceptanceRate returns accepted / total offers, or 0 without offers.
func (s *TraceSummary) AcceptanceRate() float64 {
	if s.TotalOffers == 0 {
		return 0
	}
	return float64(s.AcceptedCount) / float64(s.TotalOffers)
}

// Merge adds other into s. A nil other is ignored.
func (s *TraceSummary) Merge(other *TraceSummary) {
	if other == nil {
		return
	}
	s.Runs += other.Runs
	s.TotalOffers += other.TotalOffers
	s.AcceptedCount += other.AcceptedCount
	s.RejectedCount += other.RejectedCount
	s.AcceptedRevenue += other.AcceptedRevenue
	for k, v := range other.RejectReasons {
		s.RejectReasons[k] += v
	}
	for k, v := range other.AcceptedByCompany {
		s.AcceptedByCompany[k] += v
	}
	s.Bankruptcies += other.Bankruptcies
	s.EdgesRemoved += other.EdgesRemoved
	s.TrucksLost += other.TrucksLost
}
