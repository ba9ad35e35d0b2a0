package sim

// Offer is a client's delivery request for one tick. The client sets the price;
// the receiving company either accepts it or lets it lapse.
type Offer struct {
	Tick        int
	Client      NodeID
	Destination NodeID
	Price       float64
}

// Quote is a company's non-binding assessment of an offer.
type Quote struct {
	Company      CompanyID
	Path         Path
	DeliveryCost float64
	Ask          float64 // quote compared by clients; offers covering DeliveryCost are accepted
}

// Decision records how a company handled one offer.
type Decision struct {
	Offer        Offer
	Company      CompanyID
	Ask          float64
	DeliveryCost float64
	Accepted     bool
	Err          error // rejection cause; nil when accepted
	Receipt      *DeliveryReceipt
	Net          float64 // price − delivery cost − transaction tax, 0 when rejected
}
