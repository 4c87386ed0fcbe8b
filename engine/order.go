package engine

import (
	"errors"
	"fmt"
	"math"
)

// Status tracks an order through its lifecycle. Filled, canceled and
// rejected are terminal.
type Status string

const (
	StatusCreated  Status = "created"
	StatusActive   Status = "active"
	StatusPartial  Status = "partial"
	StatusFilled   Status = "filled"
	StatusCanceled Status = "canceled"
	StatusRejected Status = "rejected"
)

// OrderType represents the execution style for an order.
type OrderType int

const (
	// TypeLimit orders rest on the book at their price until filled or
	// canceled.
	TypeLimit OrderType = iota
	// TypeMarket orders consume available liquidity immediately or are
	// rejected.
	TypeMarket
)

// ErrZeroVolume is returned when constructing an order with zero volume.
var ErrZeroVolume = errors.New("order volume must be non-zero")

// Order describes a single trading intent. Volume is signed: positive for a
// bid, negative for an ask. ID and Time are stamped by the market at
// submission; constructing an order touches no market state.
type Order struct {
	ID       int64
	TraderID int
	Type     OrderType
	Volume   int64
	Price    float64
	Time     int64
	Filled   int64
	Status   Status
}

// NewLimitOrder builds a limit order resting at the given price.
func NewLimitOrder(traderID int, volume int64, price float64) (*Order, error) {
	if volume == 0 {
		return nil, ErrZeroVolume
	}
	return &Order{
		TraderID: traderID,
		Type:     TypeLimit,
		Volume:   volume,
		Price:    price,
		Status:   StatusCreated,
	}, nil
}

// NewMarketOrder builds a market order. Its price is derived from the volume
// sign (+Inf for a buy, -Inf for a sell) so that it crosses any resting
// opposite-side order; a market order never rests in the book.
func NewMarketOrder(traderID int, volume int64) (*Order, error) {
	if volume == 0 {
		return nil, ErrZeroVolume
	}
	price := math.Inf(1)
	if volume < 0 {
		price = math.Inf(-1)
	}
	return &Order{
		TraderID: traderID,
		Type:     TypeMarket,
		Volume:   volume,
		Price:    price,
		Status:   StatusCreated,
	}, nil
}

// ActiveVolume is the signed volume still open for matching. It is always
// computed, never stored, so it cannot drift from Volume and Filled.
func (o *Order) ActiveVolume() int64 {
	return o.Volume - o.Filled
}

// IsBid reports whether the order belongs on the bid side.
func (o *Order) IsBid() bool {
	return o.Volume > 0
}

// Open reports whether the order may still rest in a book side.
func (o *Order) Open() bool {
	return o.Status == StatusActive || o.Status == StatusPartial
}

func (o *Order) String() string {
	if o.Type == TypeMarket {
		return fmt.Sprintf("MKT V: %+d FROM: %d", o.Volume, o.TraderID)
	}
	return fmt.Sprintf("LMT P: %g V: %+d FROM: %d", o.Price, o.Volume, o.TraderID)
}
