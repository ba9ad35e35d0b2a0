// Package topology builds weighted transport networks for experiments.
//
// Graph structure comes from gonum's generators; edge weights are drawn
// afterwards, uniformly in [MinWeight, MaxWeight], in ascending (u, v) order so
// a seed fully determines the network.
package topology

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/graph/graphs/gen"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/freight-sim/freight-sim/sim"
)

// Spec describes a network to generate.
type Spec struct {
	Nodes     int
	Kind      string  // sim.GraphRandom or sim.GraphScaleFree
	Param     float64 // edge probability (random) or attachment count m (scale-free)
	MinWeight int
	MaxWeight int
}

// SpecFromParams extracts the network part of an experiment's parameters.
func SpecFromParams(p sim.Params) Spec {
	return Spec{
		Nodes:     p.Nodes,
		Kind:      p.GraphType,
		Param:     p.GraphParam,
		MinWeight: p.MinWeight,
		MaxWeight: p.MaxWeight,
	}
}

// Validate checks the spec independently of sim.Params validation.
func (s Spec) Validate() error {
	if s.Nodes < 1 {
		return fmt.Errorf("nodes must be positive, got %d", s.Nodes)
	}
	if s.MinWeight < 1 || s.MaxWeight < s.MinWeight {
		return fmt.Errorf("weights must satisfy 1 <= min <= max, got [%d, %d]", s.MinWeight, s.MaxWeight)
	}
	switch s.Kind {
	case sim.GraphRandom:
		if s.Param <= 0 || s.Param > 1 {
			return fmt.Errorf("edge probability must be in (0, 1], got %g", s.Param)
		}
	case sim.GraphScaleFree:
		if m := int(s.Param); float64(m) != s.Param || m < 1 || m >= s.Nodes {
			return fmt.Errorf("attachment count must be an integer in [1, %d), got %g", s.Nodes, s.Param)
		}
	default:
		return fmt.Errorf("unknown topology %q; valid: %s, %s", s.Kind, sim.GraphRandom, sim.GraphScaleFree)
	}
	return nil
}

// Generate builds a network from spec using rng for both structure and weights.
func Generate(spec Spec, rng *rand.Rand) (*sim.Network, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	g := simple.NewUndirectedGraph()
	src := rand.NewPCG(rng.Uint64(), rng.Uint64())

	var err error
	switch spec.Kind {
	case sim.GraphRandom:
		err = gen.Gnp(g, spec.Nodes, spec.Param, src)
	case sim.GraphScaleFree:
		err = gen.PreferentialAttachment(g, spec.Nodes, int(spec.Param), src)
	}
	if err != nil {
		return nil, fmt.Errorf("generating %s graph: %w", spec.Kind, err)
	}
	return weighted(g, spec, rng)
}

// weighted converts g into a sim.Network with nodes renumbered 0..n-1 in
// ascending gonum ID order.
func weighted(g *simple.UndirectedGraph, spec Spec, rng *rand.Rand) (*sim.Network, error) {
	var ids []int64
	nodes := g.Nodes()
	for nodes.Next() {
		ids = append(ids, nodes.Node().ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	renum := make(map[int64]sim.NodeID, len(ids))
	for i, id := range ids {
		renum[id] = sim.NodeID(i)
	}

	net := sim.NewNetwork()
	for i := 0; i < spec.Nodes; i++ {
		net.AddNode(sim.NodeID(i))
	}

	var edges []sim.Edge
	it := g.Edges()
	for it.Next() {
		e := it.Edge()
		u, v := renum[e.From().ID()], renum[e.To().ID()]
		if u > v {
			u, v = v, u
		}
		edges = append(edges, sim.Edge{U: u, V: v})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].U != edges[j].U {
			return edges[i].U < edges[j].U
		}
		return edges[i].V < edges[j].V
	})
	for i, e := range edges {
		if i > 0 && e == edges[i-1] {
			continue
		}
		w := spec.MinWeight + rng.IntN(spec.MaxWeight-spec.MinWeight+1)
		if err := net.AddEdge(e.U, e.V, w); err != nil {
			return nil, err
		}
	}
	return net, nil
}

// Complete builds a complete graph on n nodes with every edge at weight w.
// It panics if w < 1.
func Complete(n, w int) *sim.Network {
	if w < 1 {
		panic(fmt.Sprintf("topology: edge weight must be ≥ 1, got %d", w))
	}
	net := sim.NewNetwork()
	for i := 0; i < n; i++ {
		net.AddNode(sim.NodeID(i))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if err := net.AddEdge(sim.NodeID(i), sim.NodeID(j), w); err != nil {
				panic(err)
			}
		}
	}
	return net
}
