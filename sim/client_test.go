package sim

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCompanies(n int) []*Company {
	out := make([]*Company, n)
	for i := range out {
		out[i] = NewCompany(CompanyName(i), NodeID(i), 1000, 2, testCompanyParams())
	}
	return out
}

func sum(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s
}

func TestNewClient_NormalisesBaseWeights(t *testing.T) {
	companies := testCompanies(3)
	base := map[CompanyID]float64{"A": 0.2, "B": 0.6} // C defaults to 1

	cl := NewClient(9, companies, base, ClientParams{}, rand.New(rand.NewPCG(1, 1)))

	u := cl.Utilities()
	require.Len(t, u, 3)
	assert.InDelta(t, 1, sum(u), 1e-12)
	assert.InDelta(t, 0.2/1.8, u[0], 1e-12)
	assert.InDelta(t, 1/1.8, u[2], 1e-12)
}

func TestClient_RemoveCompany_PreservesRatios(t *testing.T) {
	// GIVEN weights 1:2:3
	companies := testCompanies(3)
	cl := NewClient(9, companies, map[CompanyID]float64{"A": 1, "B": 2, "C": 3}, ClientParams{}, rand.New(rand.NewPCG(1, 1)))

	// WHEN the middle company is removed
	cl.RemoveCompany("B")

	// THEN A:C stays 1:3 and the vector sums to 1
	u := cl.Utilities()
	require.Len(t, u, 2)
	assert.InDelta(t, 0.25, u[0], 1e-12)
	assert.InDelta(t, 0.75, u[1], 1e-12)
	assert.Equal(t, CompanyID("C"), cl.Companies()[1].ID)
}

func TestClient_RemoveCompany_UnknownIsNoOp(t *testing.T) {
	cl := NewClient(9, testCompanies(2), nil, ClientParams{}, rand.New(rand.NewPCG(1, 1)))
	before := append([]float64(nil), cl.Utilities()...)

	cl.RemoveCompany("Z")

	assert.Equal(t, before, cl.Utilities())
	assert.Len(t, cl.Companies(), 2)
}

func TestClient_SetCompanies_ResetsRoster(t *testing.T) {
	companies := testCompanies(3)
	cl := NewClient(9, companies, map[CompanyID]float64{"A": 1, "B": 1, "C": 2}, ClientParams{}, rand.New(rand.NewPCG(1, 1)))
	cl.RemoveCompany("A")
	cl.RemoveCompany("B")

	cl.SetCompanies(companies)

	assert.Len(t, cl.Companies(), 3)
	assert.InDelta(t, 0.5, cl.Utilities()[2], 1e-12)
}

func TestClient_AllZeroWeightsBecomeUniform(t *testing.T) {
	cl := NewClient(9, testCompanies(4), map[CompanyID]float64{"A": 0, "B": 0, "C": 0, "D": 0}, ClientParams{}, rand.New(rand.NewPCG(1, 1)))
	for _, u := range cl.Utilities() {
		assert.InDelta(t, 0.25, u, 1e-12)
	}
}

func TestClient_Go_SendsPricedOfferToCompany(t *testing.T) {
	// GIVEN one company and a client with a price range
	companies := testCompanies(1)
	cl := NewClient(1, companies, nil, ClientParams{MinOfferValue: 25, MaxOfferValue: 80}, rand.New(rand.NewPCG(3, 4)))

	// WHEN the client acts
	offer, target, ok := cl.Go(7, lineNetwork(1))

	// THEN the offer lands in the company's queue with a price in range
	require.True(t, ok)
	assert.Equal(t, CompanyID("A"), target)
	assert.Equal(t, 7, offer.Tick)
	assert.Equal(t, NodeID(1), offer.Destination)
	assert.GreaterOrEqual(t, offer.Price, 25.0)
	assert.LessOrEqual(t, offer.Price, 80.0)
	assert.Equal(t, 1, companies[0].Pending())
}

func TestClient_Go_NoCompanies(t *testing.T) {
	cl := NewClient(1, nil, nil, ClientParams{}, rand.New(rand.NewPCG(3, 4)))
	_, _, ok := cl.Go(0, lineNetwork(1))
	assert.False(t, ok)
}

func TestClient_Go_FixedPrice(t *testing.T) {
	cl := NewClient(1, testCompanies(1), nil, ClientParams{MinOfferValue: 40, MaxOfferValue: 40}, rand.New(rand.NewPCG(3, 4)))
	offer, _, _ := cl.Go(0, lineNetwork(1))
	assert.Equal(t, 40.0, offer.Price)
}

func TestClient_Go_RiskPrefersCheaperCompany(t *testing.T) {
	// GIVEN two companies on a line where B sits next to the client and A far away,
	// and a client that always compares
	net := lineNetwork(10, 1)
	a := NewCompany("A", 0, 1000, 1, testCompanyParams())
	b := NewCompany("B", 1, 1000, 1, testCompanyParams())
	cl := NewClient(2, []*Company{a, b}, map[CompanyID]float64{"A": 0.99, "B": 0.01}, ClientParams{Risk: 1, MinOfferValue: 50, MaxOfferValue: 50}, rand.New(rand.NewPCG(5, 6)))

	// WHEN the client acts many times
	for tick := 0; tick < 50; tick++ {
		_, target, ok := cl.Go(tick, net)
		require.True(t, ok)

		// THEN the nearer company always wins the comparison
		assert.Equal(t, CompanyID("B"), target)
	}
}

func TestClient_Go_NoRiskFollowsUtility(t *testing.T) {
	net := lineNetwork(10, 1)
	a := NewCompany("A", 0, 1000, 1, testCompanyParams())
	b := NewCompany("B", 1, 1000, 1, testCompanyParams())
	cl := NewClient(2, []*Company{a, b}, map[CompanyID]float64{"A": 1, "B": 0}, ClientParams{Risk: 0}, rand.New(rand.NewPCG(5, 6)))

	for tick := 0; tick < 20; tick++ {
		_, target, _ := cl.Go(tick, net)
		assert.Equal(t, CompanyID("A"), target)
	}
}

func TestCheaper_SkipsUnavailableCompany(t *testing.T) {
	net := lineNetwork(1, 1)
	a := NewCompany("A", 0, 1000, 0, testCompanyParams()) // no trucks
	b := NewCompany("B", 1, 1000, 1, testCompanyParams())

	assert.Same(t, b, cheaper(a, b, 2, net, 0))
	assert.Same(t, b, cheaper(b, a, 2, net, 0))
}

func TestCheaper_TieGoesToFirst(t *testing.T) {
	net := completeNetwork(3, 1)
	a := NewCompany("A", 0, 1000, 1, testCompanyParams())
	b := NewCompany("B", 1, 1000, 1, testCompanyParams())

	assert.Same(t, a, cheaper(a, b, 2, net, 0))
}

func TestClient_UtilitiesSumToOneProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("utilities sum to 1 after any removal sequence", prop.ForAll(
		func(weights []float64, removals []int) bool {
			companies := testCompanies(len(weights))
			base := make(map[CompanyID]float64, len(weights))
			for i, w := range weights {
				base[companies[i].ID] = w
			}
			cl := NewClient(99, companies, base, ClientParams{}, rand.New(rand.NewPCG(1, 2)))
			if math.Abs(sum(cl.Utilities())-1) > 1e-9 {
				return false
			}
			for _, r := range removals {
				cl.RemoveCompany(CompanyName(r % len(weights)))
				if len(cl.Utilities()) > 0 && math.Abs(sum(cl.Utilities())-1) > 1e-9 {
					return false
				}
			}
			cl.SetCompanies(companies)
			return math.Abs(sum(cl.Utilities())-1) <= 1e-9
		},
		gen.SliceOfN(6, gen.Float64Range(0.01, 0.99)),
		gen.SliceOf(gen.IntRange(0, 20)),
	))

	properties.TestingRun(t)
}
