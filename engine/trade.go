package engine

// Trade is one execution on the tape. Volume is an unsigned magnitude;
// AggressorSide is +1 when the newer side of the cross was the buyer and -1
// when it was the seller. The tape is append-only.
type Trade struct {
	Price         float64
	Volume        int64
	AggressorSide int
	Time          int64
}

// Fill is a participant's view of one of its executions. Volume is signed
// from the participant's perspective: positive when it bought, negative when
// it sold.
type Fill struct {
	Price         float64
	Volume        int64
	AggressorSide int
	Time          int64
}

// PriceLevel aggregates resting volume at one price. Bid levels carry
// positive volume, ask levels negative.
type PriceLevel struct {
	Price  float64
	Volume int64
}

// BookSnapshot captures the book by price level at one submission timestamp.
// Bid levels are sorted best (highest) first, ask levels best (lowest) first.
type BookSnapshot struct {
	Bid  []PriceLevel
	Ask  []PriceLevel
	Time int64
}

// MidPoint is one entry of the midprice series.
type MidPoint struct {
	Time  int64
	Price float64
}

// MsgKind labels entries of the market message log.
type MsgKind string

const (
	MsgAdd    MsgKind = "ADD"
	MsgReject MsgKind = "REJECT"
	MsgTrade  MsgKind = "TRADE"
	MsgCancel MsgKind = "CANCEL"
)

// Message is one entry of the append-only market message log.
type Message struct {
	Time   int64
	Kind   MsgKind
	Detail string
}
