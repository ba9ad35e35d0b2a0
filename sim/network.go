package sim

import (
	"container/heap"
	"fmt"
	"math/rand/v2"
	"sort"
)

// NodeID identifies a network node.
type NodeID int

// Node is a network vertex. Depot is set when a company is based at the node.
type Node struct {
	ID    NodeID
	Depot *CompanyID
}

// Edge is an undirected weighted edge. U < V for edges returned by the Network.
type Edge struct {
	U, V   NodeID
	Weight int
}

// Path is a shortest path together with its summed edge weight.
type Path struct {
	Nodes []NodeID
	Cost  int
}

// Hops returns the number of edges on the path.
func (p Path) Hops() int {
	if len(p.Nodes) == 0 {
		return 0
	}
	return len(p.Nodes) - 1
}

// Network is a weighted undirected graph with positive integer weights and no
// self-loops. It may become disconnected as edges are removed.
//
// Thread-safety: NOT thread-safe. Each trial operates on its own Clone.
type Network struct {
	nodes map[NodeID]*Node
	adj   map[NodeID]map[NodeID]int
	edges int
}

// NewNetwork creates an empty network.
func NewNetwork() *Network {
	return &Network{
		nodes: make(map[NodeID]*Node),
		adj:   make(map[NodeID]map[NodeID]int),
	}
}

// AddNode adds a node; adding an existing node is a no-op.
func (n *Network) AddNode(id NodeID) {
	if _, ok := n.nodes[id]; ok {
		return
	}
	n.nodes[id] = &Node{ID: id}
	n.adj[id] = make(map[NodeID]int)
}

// HasNode reports whether id is part of the network.
func (n *Network) HasNode(id NodeID) bool {
	_, ok := n.nodes[id]
	return ok
}

// AddEdge connects u and v with the given weight, replacing any existing weight.
func (n *Network) AddEdge(u, v NodeID, weight int) error {
	if u == v {
		return fmt.Errorf("%w: self-loop on node %d", ErrInvalidEdge, u)
	}
	if weight <= 0 {
		return fmt.Errorf("%w: weight must be positive, got %d", ErrInvalidEdge, weight)
	}
	if !n.HasNode(u) {
		return fmt.Errorf("%w: %d", ErrUnknownNode, u)
	}
	if !n.HasNode(v) {
		return fmt.Errorf("%w: %d", ErrUnknownNode, v)
	}
	if _, exists := n.adj[u][v]; !exists {
		n.edges++
	}
	n.adj[u][v] = weight
	n.adj[v][u] = weight
	return nil
}

// RemoveEdge deletes the edge between u and v. It reports whether an edge existed.
func (n *Network) RemoveEdge(u, v NodeID) bool {
	if _, ok := n.adj[u][v]; !ok {
		return false
	}
	delete(n.adj[u], v)
	delete(n.adj[v], u)
	n.edges--
	return true
}

// Weight returns the weight of the edge between u and v.
func (n *Network) Weight(u, v NodeID) (int, bool) {
	w, ok := n.adj[u][v]
	return w, ok
}

// NumNodes returns the node count.
func (n *Network) NumNodes() int { return len(n.nodes) }

// NumEdges returns the edge count.
func (n *Network) NumEdges() int { return n.edges }

// Nodes returns all node IDs in ascending order.
func (n *Network) Nodes() []NodeID {
	ids := make([]NodeID, 0, len(n.nodes))
	for id := range n.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Neighbors returns the neighbors of id in ascending order.
func (n *Network) Neighbors(id NodeID) []NodeID {
	out := make([]NodeID, 0, len(n.adj[id]))
	for nb := range n.adj[id] {
		out = append(out, nb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Edges returns every edge once, ordered by (U, V). The order is stable so that
// seeded edge explosions are reproducible.
func (n *Network) Edges() []Edge {
	out := make([]Edge, 0, n.edges)
	for _, u := range n.Nodes() {
		for _, v := range n.Neighbors(u) {
			if u < v {
				out = append(out, Edge{U: u, V: v, Weight: n.adj[u][v]})
			}
		}
	}
	return out
}

// SetDepot marks node as the depot of company.
func (n *Network) SetDepot(node NodeID, company CompanyID) error {
	nd, ok := n.nodes[node]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, node)
	}
	id := company
	nd.Depot = &id
	return nil
}

// Depot returns the company based at node, if any.
func (n *Network) Depot(node NodeID) (CompanyID, bool) {
	nd, ok := n.nodes[node]
	if !ok || nd.Depot == nil {
		return "", false
	}
	return *nd.Depot, true
}

// ClearDepot removes any company marker from node.
func (n *Network) ClearDepot(node NodeID) {
	if nd, ok := n.nodes[node]; ok {
		nd.Depot = nil
	}
}

// Clone returns a deep copy, including depot markers.
func (n *Network) Clone() *Network {
	c := NewNetwork()
	for id, nd := range n.nodes {
		c.AddNode(id)
		if nd.Depot != nil {
			dep := *nd.Depot
			c.nodes[id].Depot = &dep
		}
	}
	for u, nbs := range n.adj {
		for v, w := range nbs {
			c.adj[u][v] = w
		}
	}
	c.edges = n.edges
	return c
}

// RemoveRandomEdge removes one edge chosen uniformly at random.
// Returns ErrNoEdgesRemain when the network has no edges.
func (n *Network) RemoveRandomEdge(rng *rand.Rand) (Edge, error) {
	if n.edges == 0 {
		return Edge{}, ErrNoEdgesRemain
	}
	edges := n.Edges()
	e := edges[rng.IntN(len(edges))]
	n.RemoveEdge(e.U, e.V)
	return e, nil
}

// ShortestPath returns the minimum-weight path from a to b using Dijkstra.
// Returns ErrUnreachable when b cannot be reached from a.
func (n *Network) ShortestPath(a, b NodeID) (Path, error) {
	if !n.HasNode(a) {
		return Path{}, fmt.Errorf("%w: %d", ErrUnknownNode, a)
	}
	if !n.HasNode(b) {
		return Path{}, fmt.Errorf("%w: %d", ErrUnknownNode, b)
	}
	if a == b {
		return Path{Nodes: []NodeID{a}}, nil
	}

	dist := map[NodeID]int{a: 0}
	prev := make(map[NodeID]NodeID)
	pq := &pathQueue{{node: a, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pathItem)
		if item.node == b {
			break
		}
		if d, ok := dist[item.node]; ok && item.dist > d {
			continue
		}
		for _, nb := range n.Neighbors(item.node) {
			nd := item.dist + n.adj[item.node][nb]
			if d, ok := dist[nb]; !ok || nd < d {
				dist[nb] = nd
				prev[nb] = item.node
				heap.Push(pq, pathItem{node: nb, dist: nd})
			}
		}
	}

	cost, ok := dist[b]
	if !ok {
		return Path{}, fmt.Errorf("%w: %d -> %d", ErrUnreachable, a, b)
	}
	nodes := []NodeID{b}
	for cur := b; cur != a; {
		cur = prev[cur]
		nodes = append(nodes, cur)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return Path{Nodes: nodes, Cost: cost}, nil
}

// Priority queue for Dijkstra. Ties break on node ID so paths are deterministic.
type pathItem struct {
	node NodeID
	dist int
}

type pathQueue []pathItem

func (pq pathQueue) Len() int { return len(pq) }
func (pq pathQueue) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].node < pq[j].node
}
func (pq pathQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *pathQueue) Push(x any)   { *pq = append(*pq, x.(pathItem)) }
func (pq *pathQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
