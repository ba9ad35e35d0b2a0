package sim

import (
	"fmt"
	"math/rand/v2"
)

var companyNames = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K"}

// CompanyName returns the display name of the i-th company.
func CompanyName(i int) CompanyID {
	if i < len(companyNames) {
		return CompanyID(companyNames[i])
	}
	return CompanyID(fmt.Sprintf("C%d", i+1))
}

// CompanySpec is the initial state of one company.
type CompanySpec struct {
	ID      CompanyID
	Node    NodeID
	Capital float64
	Trucks  int
	Params  CompanyParams
}

// ClientSpec is the initial state of one client.
type ClientSpec struct {
	Node      NodeID
	Utilities map[CompanyID]float64 // un-normalised base weights
	Params    ClientParams
}

// EngineConfig groups the engine's event and termination settings.
type EngineConfig struct {
	PEdgeExplosion     float64
	PTruckExplosion    float64
	StopOnSoleSurvivor bool
}

// Scenario is the initial state of an experiment. It is never mutated by a run;
// NewWorld builds fresh agents from it for every trial.
type Scenario struct {
	Network   *Network
	Companies []CompanySpec
	Clients   []ClientSpec
	Engine    EngineConfig
}

// World is the mutable state of one run.
type World struct {
	Network   *Network
	Companies []*Company
	Clients   []*Client
	Treasury  *Treasury
	RNG       *PartitionedRNG
}

// BuildScenario places companies on distinct nodes of net, puts a client on every
// other node, and draws client utilities and risk. net is cloned; the caller's
// network is left without depot markers.
func BuildScenario(p Params, net *Network, rng *rand.Rand) (*Scenario, error) {
	nodes := net.Nodes()
	if p.Companies > len(nodes) {
		return nil, fmt.Errorf("cannot place %d companies on %d nodes", p.Companies, len(nodes))
	}
	sc := &Scenario{
		Network: net.Clone(),
		Engine: EngineConfig{
			PEdgeExplosion:     p.PEdgeExplosion,
			PTruckExplosion:    p.PTruckExplosion,
			StopOnSoleSurvivor: p.StopOnSoleSurvivor,
		},
	}

	perm := rng.Perm(len(nodes))
	for i := 0; i < p.Companies; i++ {
		node := nodes[perm[i]]
		id := CompanyName(i)
		if err := sc.Network.SetDepot(node, id); err != nil {
			return nil, err
		}
		sc.Companies = append(sc.Companies, CompanySpec{
			ID:      id,
			Node:    node,
			Capital: p.InitCapital,
			Trucks:  p.Trucks,
			Params:  p.CompanyParams(),
		})
	}

	risk := percentDraw(rng)
	if p.Risk != nil {
		risk = *p.Risk
	}
	for _, node := range nodes {
		if _, taken := sc.Network.Depot(node); taken {
			continue
		}
		utilities := make(map[CompanyID]float64, len(sc.Companies))
		for _, c := range sc.Companies {
			utilities[c.ID] = percentDraw(rng)
		}
		sc.Clients = append(sc.Clients, ClientSpec{
			Node:      node,
			Utilities: utilities,
			Params: ClientParams{
				Risk:          risk,
				MinOfferValue: p.MinOfferValue,
				MaxOfferValue: p.MaxOfferValue,
			},
		})
	}
	return sc, nil
}

// percentDraw returns one of 0.01, 0.02, ... 0.99.
func percentDraw(rng *rand.Rand) float64 {
	return float64(rng.IntN(99)+1) / 100
}

// Company returns the spec of the named company.
func (s *Scenario) Company(id CompanyID) (*CompanySpec, bool) {
	for i := range s.Companies {
		if s.Companies[i].ID == id {
			return &s.Companies[i], true
		}
	}
	return nil, false
}

// WithCompanyParams returns a copy of s in which company id uses params.
// The network and client specs are shared; NewWorld never mutates them.
func (s *Scenario) WithCompanyParams(id CompanyID, params CompanyParams) (*Scenario, error) {
	out := *s
	out.Companies = append([]CompanySpec(nil), s.Companies...)
	for i := range out.Companies {
		if out.Companies[i].ID == id {
			out.Companies[i].Params = params
			return &out, nil
		}
	}
	return nil, fmt.Errorf("unknown company %q", id)
}

// NewWorld builds fresh companies, trucks and clients for one run, against a
// private copy of the network.
func (s *Scenario) NewWorld(key SimulationKey) *World {
	w := &World{
		Network:  s.Network.Clone(),
		Treasury: NewTreasury(),
		RNG:      NewPartitionedRNG(key),
	}
	for _, cs := range s.Companies {
		w.Companies = append(w.Companies, NewCompany(cs.ID, cs.Node, cs.Capital, cs.Trucks, cs.Params))
	}
	for _, cs := range s.Clients {
		rng := w.RNG.ForSubsystem(SubsystemClient(cs.Node))
		w.Clients = append(w.Clients, NewClient(cs.Node, w.Companies, cs.Utilities, cs.Params, rng))
	}
	return w
}
