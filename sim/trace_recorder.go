package sim

import "github.com/freight-sim/freight-sim/sim/trace"

// TraceRecorder is an Observer that copies engine events into a SimulationTrace.
// A recorder whose trace is nil or disabled records nothing.
type TraceRecorder struct {
	Trace *trace.SimulationTrace
}

// NewTraceRecorder returns a recorder backed by a fresh trace, or nil when the
// level disables tracing.
func NewTraceRecorder(cfg trace.TraceConfig) *TraceRecorder {
	if !cfg.Enabled() {
		return nil
	}
	return &TraceRecorder{Trace: trace.NewSimulationTrace(cfg)}
}

func (r *TraceRecorder) active() bool {
	return r != nil && r.Trace != nil
}

// OnDecision records one offer decision.
func (r *TraceRecorder) OnDecision(tick int, d Decision) {
	if !r.active() {
		return
	}
	r.Trace.RecordOffer(trace.OfferRecord{
		Tick:     tick,
		Client:   int(d.Offer.Client),
		Company:  string(d.Company),
		Price:    d.Offer.Price,
		Ask:      d.Ask,
		Accepted: d.Accepted,
		Reason:   RejectReason(d.Err),
	})
}

// OnBankruptcy records a company removal.
func (r *TraceRecorder) OnBankruptcy(tick int, b Bankruptcy) {
	if !r.active() {
		return
	}
	r.Trace.RecordBankruptcy(trace.BankruptcyRecord{
		Tick:            tick,
		Company:         string(b.Company),
		Capital:         b.Capital,
		CompletedOffers: b.CompletedOffers,
	})
}

// OnEdgeExplosion records a removed edge.
func (r *TraceRecorder) OnEdgeExplosion(tick int, e Edge) {
	if !r.active() {
		return
	}
	r.Trace.RecordEdge(trace.EdgeRecord{Tick: tick, U: int(e.U), V: int(e.V), Weight: e.Weight})
}

// OnTruckExplosion records a destroyed truck.
func (r *TraceRecorder) OnTruckExplosion(tick int, company CompanyID, truck int) {
	if !r.active() {
		return
	}
	r.Trace.RecordTruckLoss(trace.TruckLossRecord{Tick: tick, Company: string(company), Truck: truck})
}

// OnRunEnd is a no-op; the trace is complete once the last tick is recorded.
func (r *TraceRecorder) OnRunEnd(*RunResult) {}
