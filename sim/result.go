package sim

// RunStatus describes how a run ended.
type RunStatus string

const (
	// StatusCompleted means every requested tick was simulated.
	StatusCompleted RunStatus = "completed"
	// StatusAllBankrupt is a normal terminal state: no company is left.
	StatusAllBankrupt RunStatus = "all-bankrupt"
	// StatusSoleSurvivor is only reported when EngineConfig.StopOnSoleSurvivor is set.
	StatusSoleSurvivor RunStatus = "sole-survivor"
	// StatusEdgesExhausted means an edge explosion found no edge left to remove.
	StatusEdgesExhausted RunStatus = "edges-exhausted"
	// StatusCancelled means the context was cancelled mid-run.
	StatusCancelled RunStatus = "cancelled"
)

// Trajectory is one company's capital after each simulated tick.
//
// Entries after BankruptAt stay 0: a removed company is no longer advanced.
// Survivors carry their real balance to the end.
type Trajectory struct {
	Company    CompanyID
	Node       NodeID
	Capital    []float64
	BankruptAt int // −1 when the company survived
}

// RunResult is the outcome of Engine.Run.
//
// Trajectories have length Iterations, except when the run stopped early for a
// reason other than total bankruptcy (edges exhausted, sole survivor,
// cancellation), in which case they are truncated to TicksRun.
type RunResult struct {
	Status          RunStatus
	Iterations      int
	TicksRun        int
	Trajectories    []Trajectory
	CompletedOffers int
	Survivors       []CompanyID
	Bankruptcies    []Bankruptcy
	EdgesRemoved    []Edge
	TrucksLost      int
	Taxes           TaxTotals
}

func newRunResult(companies []*Company, iterations int) *RunResult {
	r := &RunResult{
		Iterations:   iterations,
		Trajectories: make([]Trajectory, len(companies)),
	}
	for i, c := range companies {
		r.Trajectories[i] = Trajectory{
			Company:    c.ID,
			Node:       c.Node,
			Capital:    make([]float64, iterations),
			BankruptAt: -1,
		}
	}
	return r
}

// Trajectory returns the trajectory of the named company.
func (r *RunResult) Trajectory(id CompanyID) (Trajectory, bool) {
	for _, t := range r.Trajectories {
		if t.Company == id {
			return t, true
		}
	}
	return Trajectory{}, false
}

// Partial reports whether trajectories were truncated.
func (r *RunResult) Partial() bool {
	return len(r.Trajectories) > 0 && len(r.Trajectories[0].Capital) < r.Iterations
}

func (r *RunResult) truncate(ticks int) {
	for i := range r.Trajectories {
		r.Trajectories[i].Capital = r.Trajectories[i].Capital[:ticks]
	}
}
