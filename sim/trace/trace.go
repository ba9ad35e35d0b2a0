package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every offer decision and market event.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether records should be collected.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelDecisions
}

// SimulationTrace collects decision records during one run.
type SimulationTrace struct {
	Config       TraceConfig
	Offers       []OfferRecord
	Bankruptcies []BankruptcyRecord
	Edges        []EdgeRecord
	TruckLosses  []TruckLossRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:       config,
		Offers:       make([]OfferRecord, 0),
		Bankruptcies: make([]BankruptcyRecord, 0),
		Edges:        make([]EdgeRecord, 0),
		TruckLosses:  make([]TruckLossRecord, 0),
	}
}

// RecordOffer appends an offer decision record.
func (st *SimulationTrace) RecordOffer(record OfferRecord) {
	st.Offers = append(st.Offers, record)
}

// RecordBankruptcy appends a bankruptcy record.
func (st *SimulationTrace) RecordBankruptcy(record BankruptcyRecord) {
	st.Bankruptcies = append(st.Bankruptcies, record)
}

// RecordEdge appends an edge explosion record.
func (st *SimulationTrace) RecordEdge(record EdgeRecord) {
	st.Edges = append(st.Edges, record)
}

// RecordTruckLoss appends a truck explosion record.
func (st *SimulationTrace) RecordTruckLoss(record TruckLossRecord) {
	st.TruckLosses = append(st.TruckLosses, record)
}
