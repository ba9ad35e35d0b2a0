package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCompanyParams() CompanyParams {
	return CompanyParams{
		UnitCost:         1,
		TruckThreshold:   100,
		ProfitMargin:     1.5,
		TaxRate:          0.05,
		ExistenceTaxRate: 0.01,
		Transit:          TransitInstant,
	}
}

func TestNewCompany_InitialState(t *testing.T) {
	c := NewCompany("A", 3, 500, 4, testCompanyParams())

	assert.Equal(t, "A@3", c.String())
	assert.Equal(t, CompanyActive, c.State())
	assert.Equal(t, 500.0, c.InitCapital)
	require.Len(t, c.Fleet, 4)
	for i, tr := range c.Fleet {
		assert.Equal(t, i, tr.ID)
		assert.Equal(t, CompanyID("A"), tr.Company)
		assert.Equal(t, NodeID(3), tr.Location)
		assert.True(t, tr.Idle(0))
	}
	assert.Equal(t, -1, c.BankruptAt())
}

func TestCompany_Quote_AskIsCostTimesMargin(t *testing.T) {
	// GIVEN a company at node 0 and a destination two hops away at total weight 5
	net := lineNetwork(2, 3)
	c := NewCompany("A", 0, 100, 1, testCompanyParams())

	// WHEN it quotes a delivery to node 2
	q, err := c.Quote(2, net, 0)

	// THEN delivery cost is unitCost × weight and ask applies the margin
	require.NoError(t, err)
	assert.Equal(t, 5.0, q.DeliveryCost)
	assert.Equal(t, 7.5, q.Ask)
	assert.Equal(t, 2, q.Path.Hops())
	assert.Zero(t, c.Pending(), "quoting has no side effects")
}

func TestCompany_Quote_Rejections(t *testing.T) {
	net := lineNetwork(1)

	t.Run("bankrupt", func(t *testing.T) {
		c := NewCompany("A", 0, 100, 1, testCompanyParams())
		c.Capital = 0
		_, err := c.Quote(1, net, 0)
		assert.ErrorIs(t, err, ErrBankrupt)
	})
	t.Run("threshold reached", func(t *testing.T) {
		p := testCompanyParams()
		p.TruckThreshold = 0
		c := NewCompany("A", 0, 100, 1, p)
		_, err := c.Quote(1, net, 0)
		assert.ErrorIs(t, err, ErrFleetSaturated)
	})
	t.Run("no idle truck", func(t *testing.T) {
		c := NewCompany("A", 0, 100, 0, testCompanyParams())
		_, err := c.Quote(1, net, 0)
		assert.ErrorIs(t, err, ErrNoIdleTruck)
	})
	t.Run("unreachable", func(t *testing.T) {
		cut := lineNetwork(1)
		cut.RemoveEdge(0, 1)
		c := NewCompany("A", 0, 100, 1, testCompanyParams())
		_, err := c.Quote(1, cut, 0)
		assert.ErrorIs(t, err, ErrUnreachable)
	})
}

func TestCompany_Advance_ExistenceTaxWithoutOffers(t *testing.T) {
	// GIVEN a company with no pending offers
	c := NewCompany("A", 0, 1000, 1, testCompanyParams())
	tr := NewTreasury()

	// WHEN it advances three ticks
	for tick := 0; tick < 3; tick++ {
		assert.Empty(t, c.Advance(tick, lineNetwork(1), tr))
	}

	// THEN it paid initCapital × rate each tick
	assert.InDelta(t, 970, c.Capital, 1e-9)
	assert.InDelta(t, 30, tr.PaidBy("A").Existence, 1e-9)
}

func TestCompany_Advance_AcceptsAndSettles(t *testing.T) {
	// GIVEN a company with one queued offer priced above its ask
	net := lineNetwork(4)
	c := NewCompany("A", 0, 1000, 1, testCompanyParams())
	tr := NewTreasury()
	c.Receive(Offer{Tick: 0, Client: 1, Destination: 1, Price: 40})

	// WHEN the tick is advanced
	decisions := c.Advance(0, net, tr)

	// THEN the offer is accepted and capital reflects price − cost − tax − existence tax
	require.Len(t, decisions, 1)
	d := decisions[0]
	assert.True(t, d.Accepted)
	assert.NoError(t, d.Err)
	require.NotNil(t, d.Receipt)
	assert.InDelta(t, 40-4-2, d.Net, 1e-9)
	assert.InDelta(t, 1000-10+34, c.Capital, 1e-9)
	assert.Equal(t, 1, c.CompletedOffers)
	assert.InDelta(t, 2, tr.PaidBy("A").Transaction, 1e-9)
	assert.False(t, c.Fleet[0].Idle(0))
	assert.True(t, c.Fleet[0].Idle(1))
}

func TestCompany_Advance_DeclinesPriceBelowCost(t *testing.T) {
	net := lineNetwork(10)
	c := NewCompany("A", 0, 1000, 1, testCompanyParams())
	c.Receive(Offer{Destination: 1, Price: 9.99})

	decisions := c.Advance(0, net, NewTreasury())

	require.Len(t, decisions, 1)
	assert.False(t, decisions[0].Accepted)
	assert.ErrorIs(t, decisions[0].Err, ErrPriceTooLow)
	assert.Equal(t, 10.0, decisions[0].DeliveryCost)
	assert.Zero(t, c.CompletedOffers)
}

func TestCompany_Advance_AcceptsPriceBetweenCostAndAsk(t *testing.T) {
	// GIVEN an offer that covers delivery cost but not the margin-inflated ask
	net := lineNetwork(10)
	c := NewCompany("A", 0, 1000, 1, testCompanyParams())
	c.Receive(Offer{Destination: 1, Price: 12})

	// WHEN the tick is advanced
	decisions := c.Advance(0, net, NewTreasury())

	// THEN the company still takes it: the ask only ranks quotes
	require.Len(t, decisions, 1)
	assert.True(t, decisions[0].Accepted)
	assert.Equal(t, 15.0, decisions[0].Ask)
	assert.InDelta(t, 12-10-12*0.05, decisions[0].Net, 1e-9)
	assert.Equal(t, 1, c.CompletedOffers)
}

func TestCompany_Advance_OneTruckServesOneOfferPerTick(t *testing.T) {
	net := lineNetwork(1, 1)
	c := NewCompany("A", 0, 1000, 1, testCompanyParams())
	c.Receive(Offer{Destination: 1, Price: 50})
	c.Receive(Offer{Destination: 2, Price: 50})

	decisions := c.Advance(0, net, nil)

	require.Len(t, decisions, 2)
	assert.True(t, decisions[0].Accepted)
	assert.ErrorIs(t, decisions[1].Err, ErrNoIdleTruck)
}

func TestCompany_Advance_ThresholdGatesBusyTrucks(t *testing.T) {
	// GIVEN three trucks but a threshold of two busy trucks
	p := testCompanyParams()
	p.TruckThreshold = 2
	net := lineNetwork(1)
	c := NewCompany("A", 0, 1000, 3, p)
	for i := 0; i < 3; i++ {
		c.Receive(Offer{Destination: 1, Price: 50})
	}

	// WHEN three offers are evaluated in one tick
	decisions := c.Advance(0, net, nil)

	// THEN the third is declined by the threshold, not by truck availability
	assert.True(t, decisions[0].Accepted)
	assert.True(t, decisions[1].Accepted)
	assert.ErrorIs(t, decisions[2].Err, ErrFleetSaturated)
	assert.Equal(t, 2, c.BusyTrucks(0))
}

func TestCompany_Advance_TaxDrivesCapitalToZero_DeclinesOffers(t *testing.T) {
	// GIVEN a company whose existence tax equals its whole capital
	p := testCompanyParams()
	p.ExistenceTaxRate = 1
	c := NewCompany("A", 0, 100, 1, p)
	c.Receive(Offer{Destination: 1, Price: 500})

	// WHEN advanced
	decisions := c.Advance(0, lineNetwork(1), nil)

	// THEN the offer is declined because the company is already insolvent
	require.Len(t, decisions, 1)
	assert.ErrorIs(t, decisions[0].Err, ErrBankrupt)
	assert.Zero(t, c.Capital)
	assert.Zero(t, c.CompletedOffers)
}

func TestCompany_Bankrupt_IgnoresOffers(t *testing.T) {
	c := NewCompany("A", 0, 100, 1, testCompanyParams())
	c.MarkBankrupt(4)
	c.MarkBankrupt(9)

	c.Receive(Offer{Destination: 1, Price: 50})

	assert.True(t, c.IsBankrupt())
	assert.Equal(t, 4, c.BankruptAt(), "first bankruptcy tick is kept")
	assert.Zero(t, c.Pending())
	assert.Empty(t, c.Advance(5, lineNetwork(1), nil))
	assert.Equal(t, 100.0, c.Capital, "bankrupt companies pay no further tax")
}

func TestCompany_RemoveTruck(t *testing.T) {
	c := NewCompany("A", 0, 100, 3, testCompanyParams())
	removed := c.RemoveTruck(1)
	assert.Equal(t, 1, removed.ID)
	require.Len(t, c.Fleet, 2)
	assert.Equal(t, 0, c.Fleet[0].ID)
	assert.Equal(t, 2, c.Fleet[1].ID)
}

func TestTruck_Dispatch_TransitModes(t *testing.T) {
	path := Path{Nodes: []NodeID{0, 1, 2}, Cost: 4}

	instant := &Truck{}
	r := instant.Dispatch(path, 4, 10, TransitInstant)
	assert.Equal(t, 11, r.ReturnTick)
	assert.False(t, instant.Idle(10))
	assert.True(t, instant.Idle(11))

	roundTrip := &Truck{}
	r = roundTrip.Dispatch(path, 4, 10, TransitRoundTrip)
	assert.Equal(t, 14, r.ReturnTick)
	assert.False(t, roundTrip.Idle(13))
	assert.True(t, roundTrip.Idle(14))
	assert.Equal(t, 1, roundTrip.Trips)

	local := &Truck{}
	r = local.Dispatch(Path{Nodes: []NodeID{0}}, 0, 0, TransitRoundTrip)
	assert.Equal(t, 1, r.ReturnTick, "zero-hop trips still occupy the tick")
}

func TestRejectReason(t *testing.T) {
	assert.Equal(t, "", RejectReason(nil))
	assert.Equal(t, "bankrupt", RejectReason(ErrBankrupt))
	assert.Equal(t, "threshold", RejectReason(ErrFleetSaturated))
	assert.Equal(t, "no-idle-truck", RejectReason(ErrNoIdleTruck))
	assert.Equal(t, "price", RejectReason(ErrPriceTooLow))
	assert.Equal(t, "unreachable", RejectReason(ErrUnreachable))
	assert.Equal(t, "other", RejectReason(ErrInvalidEdge))
}
