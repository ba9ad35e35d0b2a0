// Package sim provides the market simulation engine for freight-sim.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - network.go: weighted undirected network, Dijkstra, edge explosions
//   - company.go / truck.go: fleet gate, quoting, offer settlement, taxes
//   - client.go: utility-weighted company choice, risk-driven quote comparison
//   - simulator.go: the per-tick protocol and bankruptcy handling
//
// # Architecture
//
// The sim package holds the agents and the engine; supporting concerns live in
// sub-packages:
//   - sim/topology/: random and scale-free network generators
//   - sim/experiment/: multi-trial runner, averaging, parameter sweeps
//   - sim/trace/: decision trace recording
//   - sim/telemetry/: prometheus counters for runs
//   - sim/store/: SQLite results store
//   - sim/render/: terminal and CSV output
//
// Sub-packages hook into a run through the Observer interface (event.go).
//
// # State per trial
//
// A Scenario is the immutable initial state of an experiment; Scenario.NewWorld
// builds fresh companies, trucks, clients and a private network copy for each
// trial, so trials share no mutable state.
package sim
