package sim

// Observer receives the engine's per-tick events. Implementations live in
// sub-packages (trace, telemetry) so the engine stays dependency-free.
type Observer interface {
	OnDecision(tick int, d Decision)
	OnBankruptcy(tick int, b Bankruptcy)
	OnEdgeExplosion(tick int, e Edge)
	OnTruckExplosion(tick int, company CompanyID, truck int)
	OnRunEnd(r *RunResult)
}

// Bankruptcy records the removal of a company from the active roster.
type Bankruptcy struct {
	Company         CompanyID
	Tick            int
	Capital         float64 // the non-positive balance that triggered removal
	CompletedOffers int
}

type observers []Observer

func (os observers) decision(tick int, d Decision) {
	for _, o := range os {
		o.OnDecision(tick, d)
	}
}

func (os observers) bankruptcy(tick int, b Bankruptcy) {
	for _, o := range os {
		o.OnBankruptcy(tick, b)
	}
}

func (os observers) edgeExplosion(tick int, e Edge) {
	for _, o := range os {
		o.OnEdgeExplosion(tick, e)
	}
}

func (os observers) truckExplosion(tick int, c CompanyID, truck int) {
	for _, o := range os {
		o.OnTruckExplosion(tick, c, truck)
	}
}

func (os observers) runEnd(r *RunResult) {
	for _, o := range os {
		o.OnRunEnd(r)
	}
}
