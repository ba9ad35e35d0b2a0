package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two runs with the same SimulationKey and identical Scenario MUST produce
// bit-for-bit identical trajectories.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// Derive returns a child key for the named scope (e.g. one trial of an experiment).
// Derivation is order-independent: Derive("trial_3") does not depend on whether
// trials 0..2 were derived first.
func (k SimulationKey) Derive(name string) SimulationKey {
	return SimulationKey(int64(k) ^ fnv1a64(name))
}

// === Subsystem Constants ===

const (
	// SubsystemSetup drives experiment construction: topology, weights,
	// company placement, client utilities and risk.
	SubsystemSetup = "setup"

	// SubsystemEvents drives per-tick edge and truck explosions.
	SubsystemEvents = "events"
)

// SubsystemClient returns the subsystem name for the client at node.
func SubsystemClient(node NodeID) string {
	return fmt.Sprintf("client_%d", node)
}

// SubsystemTrial returns the scope name for trial i of an experiment.
func SubsystemTrial(i int) string {
	return fmt.Sprintf("trial_%d", i)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName), fed to a PCG source.
// Adding a new client therefore never perturbs the event stream.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	derived := uint64(int64(p.key) ^ fnv1a64(name))
	rng := rand.New(rand.NewPCG(derived, uint64(fnv1a64("pcg:"+name))))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
