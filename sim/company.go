package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// CompanyID names a company ("A", "B", ...).
type CompanyID string

// CompanyState is the company lifecycle: Active → Bankrupt, one way.
type CompanyState int

const (
	CompanyActive CompanyState = iota
	CompanyBankrupt
)

func (s CompanyState) String() string {
	if s == CompanyBankrupt {
		return "bankrupt"
	}
	return "active"
}

// CompanyParams groups the cost model of a company.
type CompanyParams struct {
	UnitCost         float64     // cost per unit of path weight
	TruckThreshold   int         // offers are declined once this many trucks are busy
	ProfitMargin     float64     // ask = delivery cost × margin
	TaxRate          float64     // fraction of each price paid to the treasury
	ExistenceTaxRate float64     // fraction of initial capital paid every tick
	Transit          TransitMode // truck occupancy model
}

// Company owns a fleet and a capital balance and services client offers.
type Company struct {
	ID              CompanyID
	Node            NodeID
	Capital         float64
	InitCapital     float64
	Fleet           []*Truck
	Params          CompanyParams
	CompletedOffers int

	state      CompanyState
	bankruptAt int
	pending    []Offer
}

// NewCompany creates an active company at node with numTrucks idle trucks.
func NewCompany(id CompanyID, node NodeID, capital float64, numTrucks int, params CompanyParams) *Company {
	c := &Company{
		ID:          id,
		Node:        node,
		Capital:     capital,
		InitCapital: capital,
		Params:      params,
		bankruptAt:  -1,
	}
	c.Fleet = make([]*Truck, numTrucks)
	for i := range c.Fleet {
		c.Fleet[i] = &Truck{ID: i, Company: id, Location: node}
	}
	return c
}

func (c *Company) String() string {
	return fmt.Sprintf("%s@%d", c.ID, c.Node)
}

// State returns the lifecycle state.
func (c *Company) State() CompanyState { return c.state }

// IsBankrupt reports whether the company has reached its terminal state.
func (c *Company) IsBankrupt() bool { return c.state == CompanyBankrupt }

// BankruptAt returns the tick of bankruptcy, or -1 while active.
func (c *Company) BankruptAt() int { return c.bankruptAt }

// MarkBankrupt moves the company to its terminal state. Later calls are no-ops.
func (c *Company) MarkBankrupt(tick int) {
	if c.state == CompanyBankrupt {
		return
	}
	c.state = CompanyBankrupt
	c.bankruptAt = tick
	c.pending = nil
}

// BusyTrucks returns the number of trucks occupied at tick.
func (c *Company) BusyTrucks(tick int) int {
	busy := 0
	for _, t := range c.Fleet {
		if !t.Idle(tick) {
			busy++
		}
	}
	return busy
}

func (c *Company) idleTruck(tick int) *Truck {
	for _, t := range c.Fleet {
		if t.Idle(tick) {
			return t
		}
	}
	return nil
}

// RemoveTruck destroys the truck at fleet index i.
func (c *Company) RemoveTruck(i int) *Truck {
	if i < 0 || i >= len(c.Fleet) {
		return nil
	}
	t := c.Fleet[i]
	c.Fleet = append(c.Fleet[:i], c.Fleet[i+1:]...)
	return t
}

// Quote evaluates an offer to dest without side effects.
func (c *Company) Quote(dest NodeID, net *Network, tick int) (Quote, error) {
	if c.IsBankrupt() || c.Capital <= 0 {
		return Quote{}, ErrBankrupt
	}
	if c.BusyTrucks(tick) >= c.Params.TruckThreshold {
		return Quote{}, ErrFleetSaturated
	}
	if c.idleTruck(tick) == nil {
		return Quote{}, ErrNoIdleTruck
	}
	path, err := net.ShortestPath(c.Node, dest)
	if err != nil {
		return Quote{}, fmt.Errorf("company %s: %w", c.ID, err)
	}
	cost := c.Params.UnitCost * float64(path.Cost)
	return Quote{
		Company:      c.ID,
		Path:         path,
		DeliveryCost: cost,
		Ask:          cost * c.Params.ProfitMargin,
	}, nil
}

// Receive queues an offer for evaluation on the company's next Advance.
func (c *Company) Receive(o Offer) {
	if c.IsBankrupt() {
		return
	}
	c.pending = append(c.pending, o)
}

// Pending returns the number of offers waiting for Advance.
func (c *Company) Pending() int { return len(c.pending) }

// Advance runs one tick: the existence tax is charged first, then queued offers are
// evaluated in arrival order. Offers are declined once capital is non-positive.
// Bankruptcy itself is declared by the engine.
func (c *Company) Advance(tick int, net *Network, treasury *Treasury) []Decision {
	pending := c.pending
	c.pending = nil
	decisions := make([]Decision, 0, len(pending))

	if c.IsBankrupt() || c.Capital <= 0 {
		for _, o := range pending {
			decisions = append(decisions, Decision{Offer: o, Company: c.ID, Err: ErrBankrupt})
		}
		return decisions
	}

	tax := c.InitCapital * c.Params.ExistenceTaxRate
	c.Capital -= tax
	treasury.CollectExistenceTax(c.ID, tax)

	for _, o := range pending {
		decisions = append(decisions, c.evaluate(o, tick, net, treasury))
	}
	return decisions
}

func (c *Company) evaluate(o Offer, tick int, net *Network, treasury *Treasury) Decision {
	d := Decision{Offer: o, Company: c.ID}
	q, err := c.Quote(o.Destination, net, tick)
	if err != nil {
		d.Err = err
		logrus.Debugf("[tick %07d] %s declined offer from %d: %v", tick, c.ID, o.Client, err)
		return d
	}
	d.Ask, d.DeliveryCost = q.Ask, q.DeliveryCost
	if o.Price < q.DeliveryCost {
		d.Err = fmt.Errorf("%w: %.2f < %.2f", ErrPriceTooLow, o.Price, q.DeliveryCost)
		logrus.Debugf("[tick %07d] %s declined offer from %d: %v", tick, c.ID, o.Client, d.Err)
		return d
	}

	receipt := c.idleTruck(tick).Dispatch(q.Path, q.DeliveryCost, tick, c.Params.Transit)
	tax := o.Price * c.Params.TaxRate
	c.Capital += o.Price - q.DeliveryCost - tax
	treasury.CollectTransactionTax(c.ID, tax)
	c.CompletedOffers++

	d.Accepted = true
	d.Receipt = &receipt
	d.Net = o.Price - q.DeliveryCost - tax
	logrus.Debugf("[tick %07d] %s delivered to %d via truck %d, net %.2f", tick, c.ID, o.Destination, receipt.Truck, d.Net)
	return d
}
