package traders

import (
	"microstruct/engine"
)

// MarketMaker quotes both sides of the book every tick. Its behaviour is
// fully described by the three strategies it composes: a fair-price
// estimate, signed quote volumes and price offsets around the estimate.
type MarketMaker struct {
	Trader
	FairPriceStrategy FairPriceStrategy
	VolumeStrategy    VolumeStrategy
	SpreadStrategy    SpreadStrategy
}

// NewMarketMaker registers a market maker with the given strategies on m.
func NewMarketMaker(m *engine.Market, name string, fair FairPriceStrategy, volume VolumeStrategy, spread SpreadStrategy, maxInventory int64) *MarketMaker {
	mm := &MarketMaker{
		Trader: Trader{
			Market:       m,
			FairPrice:    m.InitialFairPrice,
			MaxInventory: maxInventory,
		},
		FairPriceStrategy: fair,
		VolumeStrategy:    volume,
		SpreadStrategy:    spread,
	}
	mm.Participant = m.Register(mm, name)
	return mm
}

// Update refreshes the quotes: the old ones are pulled and a new bid/ask
// pair is priced off the current fair-price estimate. A side with no
// remaining inventory capacity is simply not quoted.
func (mm *MarketMaker) Update() error {
	mm.FairPrice = mm.FairPriceStrategy.FairPrice(&mm.Trader)
	bidOffset, askOffset := mm.SpreadStrategy.Offsets(&mm.Trader)
	bidVolume, askVolume := mm.VolumeStrategy.Volumes(&mm.Trader)

	if err := mm.CancelAllOrders(); err != nil {
		return err
	}

	var orders []*engine.Order
	if bidVolume > 0 {
		bid, err := engine.NewLimitOrder(mm.Participant.TraderID, bidVolume, mm.FairPrice+float64(bidOffset))
		if err != nil {
			return err
		}
		orders = append(orders, bid)
	}
	if askVolume < 0 {
		ask, err := engine.NewLimitOrder(mm.Participant.TraderID, askVolume, mm.FairPrice+float64(askOffset))
		if err != nil {
			return err
		}
		orders = append(orders, ask)
	}
	if len(orders) == 0 {
		return nil
	}
	return mm.Market.Submit(orders...)
}

// NewDummyMarketMaker quotes a fixed 100 lots five ticks either side of a
// constant fair price of 1000. Useful as a baseline liquidity source.
func NewDummyMarketMaker(m *engine.Market, name string) *MarketMaker {
	return NewMarketMaker(m, name,
		ConstantFairPrice{Price: 1000},
		ConstantVolume{Volume: 100},
		ConstantSpread{Halfspread: 5},
		1000)
}

// NewKyleMarketMaker moves its fair price with the sign of recent order
// flow, in the spirit of Kyle's model, keeping volume and spread fixed.
func NewKyleMarketMaker(m *engine.Market, name string) *MarketMaker {
	return NewMarketMaker(m, name,
		OrderFlowSignFairPrice{Window: 5, Aggressiveness: 2},
		ConstantVolume{Volume: 100},
		ConstantSpread{Halfspread: 5},
		1000)
}

// NewAdaptiveMarketMaker scales its quotes and skews its spread with the
// imbalance of recent order flow.
func NewAdaptiveMarketMaker(m *engine.Market, name string) *MarketMaker {
	return NewMarketMaker(m, name,
		OrderFlowMagnitudeFairPrice{Window: 10, Aggressiveness: 1},
		MaxFractionVolume{Fraction: 0.1},
		OrderFlowImbalanceSpread{Window: 10, Aggressiveness: 5, MinHalfspread: 5},
		1000)
}
