// sim/simulator.go
package sim

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

// Engine drives the per-tick market protocol over a World.
//
// Each tick, in order:
//  1. with probability PEdgeExplosion one random edge is removed
//  2. with probability PTruckExplosion one random truck is destroyed
//  3. every client issues its offer (client list order)
//  4. every active company pays existence tax, evaluates its offers, and its
//     capital is recorded (company list order)
//  5. companies with capital ≤ 0 are declared bankrupt and removed from every client
//
// Deliveries are settled at the cost level within the tick that accepts them;
// multi-tick travel is modelled only as truck occupancy (see TransitMode).
type Engine struct {
	Config    EngineConfig
	observers observers
}

// NewEngine creates an engine. Observers are notified synchronously in order.
func NewEngine(cfg EngineConfig, obs ...Observer) *Engine {
	return &Engine{Config: cfg, observers: obs}
}

// Run simulates up to iterations ticks. It never panics on network exhaustion;
// the returned RunResult carries the terminal status and partial trajectories.
func (e *Engine) Run(ctx context.Context, w *World, iterations int) *RunResult {
	res := newRunResult(w.Companies, iterations)
	index := make(map[CompanyID]int, len(w.Companies))
	for i, c := range w.Companies {
		index[c.ID] = i
	}
	active := append([]*Company(nil), w.Companies...)
	events := w.RNG.ForSubsystem(SubsystemEvents)

loop:
	for tick := 0; tick < iterations; tick++ {
		switch {
		case ctx.Err() != nil:
			res.Status = StatusCancelled
			res.truncate(tick)
			break loop
		case len(active) == 0:
			res.Status = StatusAllBankrupt
			break loop
		case e.Config.StopOnSoleSurvivor && len(active) == 1 && len(w.Companies) > 1:
			logrus.Infof("[tick %07d] sole survivor %s, stopping early", tick, active[0].ID)
			res.Status = StatusSoleSurvivor
			res.truncate(tick)
			break loop
		}

		if e.Config.PEdgeExplosion > 0 && events.Float64() < e.Config.PEdgeExplosion {
			edge, err := w.Network.RemoveRandomEdge(events)
			if errors.Is(err, ErrNoEdgesRemain) {
				logrus.Warnf("[tick %07d] all edges removed, stopping run", tick)
				res.Status = StatusEdgesExhausted
				res.truncate(tick)
				break loop
			}
			res.EdgesRemoved = append(res.EdgesRemoved, edge)
			e.observers.edgeExplosion(tick, edge)
			logrus.Infof("[tick %07d] edge removed: %d -- %d", tick, edge.U, edge.V)
		}

		if e.Config.PTruckExplosion > 0 && events.Float64() < e.Config.PTruckExplosion {
			e.explodeTruck(tick, active, events, res)
		}

		for _, cl := range w.Clients {
			cl.Go(tick, w.Network)
		}

		for _, c := range active {
			for _, d := range c.Advance(tick, w.Network, w.Treasury) {
				e.observers.decision(tick, d)
			}
			res.Trajectories[index[c.ID]].Capital[tick] = c.Capital
		}

		active = e.removeBankrupt(tick, active, w, res, index)
		res.TicksRun = tick + 1
	}

	if res.Status == "" {
		if len(active) == 0 {
			res.Status = StatusAllBankrupt
		} else {
			res.Status = StatusCompleted
		}
	}
	for _, c := range active {
		res.Survivors = append(res.Survivors, c.ID)
		res.CompletedOffers += c.CompletedOffers
		logrus.Infof("[tick %07d] survivor %s (offers=%d, capital=%.2f)", res.TicksRun, c, c.CompletedOffers, c.Capital)
	}
	res.Taxes = w.Treasury.Totals()
	logrus.Infof("[tick %07d] run ended: %s, offers completed=%d", res.TicksRun, res.Status, res.CompletedOffers)
	e.observers.runEnd(res)
	return res
}

// removeBankrupt declares every active company with non-positive capital bankrupt,
// notifies clients, and folds its completed-offer count into the run total.
func (e *Engine) removeBankrupt(tick int, active []*Company, w *World, res *RunResult, index map[CompanyID]int) []*Company {
	survivors := active[:0]
	for _, c := range active {
		if c.Capital > 0 {
			survivors = append(survivors, c)
			continue
		}
		c.MarkBankrupt(tick)
		for _, cl := range w.Clients {
			cl.RemoveCompany(c.ID)
		}
		b := Bankruptcy{Company: c.ID, Tick: tick, Capital: c.Capital, CompletedOffers: c.CompletedOffers}
		res.Bankruptcies = append(res.Bankruptcies, b)
		res.Trajectories[index[c.ID]].BankruptAt = tick
		res.CompletedOffers += c.CompletedOffers
		e.observers.bankruptcy(tick, b)
		logrus.Infof("[tick %07d] GAME OVER for %s (offers=%d)", tick, c, c.CompletedOffers)
	}
	return survivors
}

// explodeTruck destroys one truck of a random active company that still has one.
func (e *Engine) explodeTruck(tick int, active []*Company, rng *rand.Rand, res *RunResult) {
	candidates := make([]*Company, 0, len(active))
	for _, c := range active {
		if len(c.Fleet) > 0 {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return
	}
	c := candidates[rng.IntN(len(candidates))]
	t := c.RemoveTruck(rng.IntN(len(c.Fleet)))
	res.TrucksLost++
	e.observers.truckExplosion(tick, c.ID, t.ID)
	logrus.Infof("[tick %07d] truck %d of %s destroyed", tick, t.ID, c.ID)
}
