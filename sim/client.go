package sim

import (
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

// ClientParams groups a client's pricing and comparison behavior.
type ClientParams struct {
	Risk          float64 // probability of comparing a second company's quote
	MinOfferValue float64
	MaxOfferValue float64
}

// Client sits at a network node and requests one delivery per tick from a
// utility-weighted choice of companies.
type Client struct {
	Node   NodeID
	Params ClientParams

	companies []*Company
	utilities []float64
	base      map[CompanyID]float64
	rng       *rand.Rand
}

// NewClient creates a client. base holds the un-normalised preference weight of
// each company; companies missing from base get weight 1.
func NewClient(node NodeID, companies []*Company, base map[CompanyID]float64, params ClientParams, rng *rand.Rand) *Client {
	cl := &Client{
		Node:   node,
		Params: params,
		base:   make(map[CompanyID]float64, len(base)),
		rng:    rng,
	}
	for id, w := range base {
		cl.base[id] = w
	}
	cl.SetCompanies(companies)
	return cl
}

// Companies returns the current candidate roster.
func (cl *Client) Companies() []*Company { return cl.companies }

// Utilities returns the normalised preference vector, aligned with Companies.
func (cl *Client) Utilities() []float64 { return cl.utilities }

// SetCompanies replaces the roster and rebuilds utilities from the base weights.
func (cl *Client) SetCompanies(companies []*Company) {
	cl.companies = append([]*Company(nil), companies...)
	cl.utilities = make([]float64, len(companies))
	for i, c := range cl.companies {
		w, ok := cl.base[c.ID]
		if !ok {
			w = 1
		}
		cl.utilities[i] = w
	}
	cl.normalize()
}

// RemoveCompany drops a company from the roster and renormalises the remaining
// utilities, preserving their ratios. Unknown companies are ignored.
func (cl *Client) RemoveCompany(id CompanyID) {
	for i, c := range cl.companies {
		if c.ID != id {
			continue
		}
		cl.companies = append(cl.companies[:i], cl.companies[i+1:]...)
		cl.utilities = append(cl.utilities[:i], cl.utilities[i+1:]...)
		cl.normalize()
		return
	}
}

// normalize rescales utilities to sum to 1. An all-zero vector becomes uniform.
func (cl *Client) normalize() {
	if len(cl.utilities) == 0 {
		return
	}
	sum := 0.0
	for _, u := range cl.utilities {
		sum += u
	}
	for i := range cl.utilities {
		if sum > 0 {
			cl.utilities[i] /= sum
		} else {
			cl.utilities[i] = 1 / float64(len(cl.utilities))
		}
	}
}

// Go issues this tick's request. The chosen company receives the offer in its
// queue; Go returns the offer and target, or ok=false when no company is known.
func (cl *Client) Go(tick int, net *Network) (Offer, CompanyID, bool) {
	if len(cl.companies) == 0 {
		return Offer{}, "", false
	}
	first := cl.pick(-1)
	target := cl.companies[first]

	if len(cl.companies) > 1 && cl.rng.Float64() < cl.Params.Risk {
		second := cl.companies[cl.pick(first)]
		target = cheaper(target, second, cl.Node, net, tick)
	}

	offer := Offer{
		Tick:        tick,
		Client:      cl.Node,
		Destination: cl.Node,
		Price:       cl.drawPrice(),
	}
	target.Receive(offer)
	logrus.Debugf("[tick %07d] client %d offered %.2f to %s", tick, cl.Node, offer.Price, target.ID)
	return offer, target.ID, true
}

// pick draws a roster index by utility, excluding index skip (−1 for none).
func (cl *Client) pick(skip int) int {
	total := 0.0
	for i, u := range cl.utilities {
		if i != skip {
			total += u
		}
	}
	if total <= 0 {
		for i := range cl.companies {
			if i != skip {
				return i
			}
		}
		return 0
	}
	r := cl.rng.Float64() * total
	last := 0
	for i, u := range cl.utilities {
		if i == skip {
			continue
		}
		last = i
		if r < u {
			return i
		}
		r -= u
	}
	return last
}

func (cl *Client) drawPrice() float64 {
	lo, hi := cl.Params.MinOfferValue, cl.Params.MaxOfferValue
	if hi <= lo {
		return lo
	}
	return lo + cl.rng.Float64()*(hi-lo)
}

// cheaper returns whichever company quotes the lower available ask. Ties and
// double failures go to a.
func cheaper(a, b *Company, dest NodeID, net *Network, tick int) *Company {
	qa, errA := a.Quote(dest, net, tick)
	qb, errB := b.Quote(dest, net, tick)
	switch {
	case errA != nil && errB == nil:
		return b
	case errA == nil && errB == nil && qb.Ask < qa.Ask:
		return b
	default:
		return a
	}
}
