package sim

// TransitMode decides how long a dispatched truck stays occupied.
type TransitMode string

const (
	// TransitInstant resolves every delivery within the tick it is accepted:
	// the truck is reserved for the rest of that tick and idle again on the next.
	TransitInstant TransitMode = "instant"

	// TransitRoundTrip keeps the truck busy for 2 × hop count ticks, out to the
	// client and back to the depot.
	TransitRoundTrip TransitMode = "round-trip"
)

// ValidTransitModes is the set of recognized transit mode names.
var ValidTransitModes = map[TransitMode]bool{"": true, TransitInstant: true, TransitRoundTrip: true}

// Truck is a delivery vehicle owned by one company.
type Truck struct {
	ID        int
	Company   CompanyID
	Location  NodeID
	BusyUntil int // first tick at which the truck is idle again
	Trips     int
}

// DeliveryReceipt describes one dispatch.
type DeliveryReceipt struct {
	Truck      int
	Path       Path
	Cost       float64
	ReturnTick int
}

// Idle reports whether the truck can be dispatched at tick.
func (t *Truck) Idle(tick int) bool {
	return t.BusyUntil <= tick
}

// Dispatch sends the truck along path at tick. Costs are settled by the company;
// the truck only tracks occupancy. Location stays at the depot since every trip
// ends there.
func (t *Truck) Dispatch(path Path, cost float64, tick int, mode TransitMode) DeliveryReceipt {
	busy := 1
	if mode == TransitRoundTrip {
		busy = max(1, 2*path.Hops())
	}
	t.BusyUntil = tick + busy
	t.Trips++
	return DeliveryReceipt{
		Truck:      t.ID,
		Path:       path,
		Cost:       cost,
		ReturnTick: t.BusyUntil,
	}
}
