package sim

import "errors"

// Network errors.
var (
	// ErrUnreachable is returned by ShortestPath when no path joins the two nodes,
	// typically after edge explosions have disconnected the network.
	ErrUnreachable = errors.New("destination unreachable")

	// ErrNoEdgesRemain is returned by RemoveRandomEdge when the edge set is empty.
	// The engine maps it to StatusEdgesExhausted instead of aborting the process.
	ErrNoEdgesRemain = errors.New("no edges remain")

	ErrUnknownNode = errors.New("unknown node")
	ErrInvalidEdge = errors.New("invalid edge")
)

// Offer rejection reasons. A rejected offer lapses for the tick; it is never fatal.
var (
	ErrBankrupt       = errors.New("company bankrupt")
	ErrFleetSaturated = errors.New("busy trucks at threshold")
	ErrNoIdleTruck    = errors.New("no idle truck")
	ErrPriceTooLow    = errors.New("offer below delivery cost")
)

// RejectReason maps an offer error to the short label used in traces and metrics.
func RejectReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBankrupt):
		return "bankrupt"
	case errors.Is(err, ErrFleetSaturated):
		return "threshold"
	case errors.Is(err, ErrNoIdleTruck):
		return "no-idle-truck"
	case errors.Is(err, ErrPriceTooLow):
		return "price"
	case errors.Is(err, ErrUnreachable):
		return "unreachable"
	default:
		return "other"
	}
}
