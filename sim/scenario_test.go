package sim

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyName(t *testing.T) {
	assert.Equal(t, CompanyID("A"), CompanyName(0))
	assert.Equal(t, CompanyID("K"), CompanyName(10))
	assert.Equal(t, CompanyID("C12"), CompanyName(11))
}

func TestBuildScenario_PlacesAgents(t *testing.T) {
	// GIVEN a 6-node network and 2 companies
	p := DefaultParams()
	p.Nodes, p.Companies = 6, 2
	net := completeNetwork(6, 1)

	// WHEN the scenario is built
	sc, err := BuildScenario(p, net, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	// THEN companies sit on distinct depots and every other node gets a client
	require.Len(t, sc.Companies, 2)
	assert.NotEqual(t, sc.Companies[0].Node, sc.Companies[1].Node)
	for _, c := range sc.Companies {
		id, ok := sc.Network.Depot(c.Node)
		assert.True(t, ok)
		assert.Equal(t, c.ID, id)
		assert.Equal(t, p.InitCapital, c.Capital)
		assert.Equal(t, p.Trucks, c.Trucks)
	}
	require.Len(t, sc.Clients, 4)
	for _, cl := range sc.Clients {
		_, taken := sc.Network.Depot(cl.Node)
		assert.False(t, taken)
		assert.Len(t, cl.Utilities, 2)
		for _, u := range cl.Utilities {
			assert.True(t, u >= 0.01 && u <= 0.99, "utility %v outside the percent draw", u)
		}
	}

	// AND the caller's network carries no depot markers
	for _, n := range net.Nodes() {
		_, ok := net.Depot(n)
		assert.False(t, ok)
	}
}

func TestBuildScenario_RiskSharedAcrossClients(t *testing.T) {
	p := DefaultParams()
	sc, err := BuildScenario(p, completeNetwork(15, 1), rand.New(rand.NewPCG(9, 9)))
	require.NoError(t, err)

	risk := sc.Clients[0].Params.Risk
	assert.True(t, risk >= 0.01 && risk <= 0.99)
	for _, cl := range sc.Clients {
		assert.Equal(t, risk, cl.Params.Risk)
	}
}

func TestBuildScenario_ExplicitRisk(t *testing.T) {
	p := DefaultParams()
	r := 0.3
	p.Risk = &r
	sc, err := BuildScenario(p, completeNetwork(15, 1), rand.New(rand.NewPCG(9, 9)))
	require.NoError(t, err)
	assert.Equal(t, 0.3, sc.Clients[0].Params.Risk)
}

func TestBuildScenario_TooManyCompanies(t *testing.T) {
	p := DefaultParams()
	p.Companies = 4
	_, err := BuildScenario(p, completeNetwork(3, 1), rand.New(rand.NewPCG(1, 1)))
	assert.Error(t, err)
}

func TestScenario_WithCompanyParams_LeavesReceiverUnchanged(t *testing.T) {
	p := DefaultParams()
	sc, err := BuildScenario(p, completeNetwork(15, 1), rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)

	cp := sc.Companies[1].Params
	cp.TruckThreshold = 0
	varied, err := sc.WithCompanyParams("B", cp)
	require.NoError(t, err)

	spec, ok := varied.Company("B")
	require.True(t, ok)
	assert.Zero(t, spec.Params.TruckThreshold)
	orig, _ := sc.Company("B")
	assert.Equal(t, p.TruckThreshold, orig.Params.TruckThreshold)

	_, err = sc.WithCompanyParams("Z", cp)
	assert.Error(t, err)
}

func TestScenario_NewWorld_FreshStatePerCall(t *testing.T) {
	// GIVEN a scenario
	p := DefaultParams()
	p.Nodes, p.Companies = 5, 2
	sc, err := BuildScenario(p, completeNetwork(5, 1), rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)

	// WHEN a world is built and mutated
	w1 := sc.NewWorld(NewSimulationKey(1))
	w1.Companies[0].Capital = -5
	w1.Clients[0].RemoveCompany(w1.Companies[0].ID)
	w1.Network.RemoveEdge(0, 1)

	// THEN the next world starts from the initial state
	w2 := sc.NewWorld(NewSimulationKey(1))
	assert.Equal(t, p.InitCapital, w2.Companies[0].Capital)
	assert.Len(t, w2.Clients[0].Companies(), 2)
	assert.Equal(t, 10, w2.Network.NumEdges())
	assert.Equal(t, 10, sc.Network.NumEdges())
	assert.Len(t, w2.Companies[0].Fleet, p.Trucks)
}
