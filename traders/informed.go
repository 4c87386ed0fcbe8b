package traders

import (
	"microstruct/engine"
)

// InformedTrader holds an opinion on where the price should be and hits the
// book with market orders whenever the touch strays to the wrong side of
// that opinion.
type InformedTrader struct {
	Trader
	FairPriceStrategy FairPriceStrategy
	VolumeStrategy    VolumeStrategy
}

// NewInformedTrader registers an informed trader on m.
func NewInformedTrader(m *engine.Market, name string, fair FairPriceStrategy, volume VolumeStrategy, maxInventory int64) *InformedTrader {
	it := &InformedTrader{
		Trader: Trader{
			Market:       m,
			FairPrice:    m.InitialFairPrice,
			MaxInventory: maxInventory,
		},
		FairPriceStrategy: fair,
		VolumeStrategy:    volume,
	}
	it.Participant = m.Register(it, name)
	return it
}

// Update sells into a best bid above the fair price and lifts a best ask
// below it, sized by the volume strategy.
func (it *InformedTrader) Update() error {
	it.FairPrice = it.FairPriceStrategy.FairPrice(&it.Trader)
	bidVolume, askVolume := it.VolumeStrategy.Volumes(&it.Trader)

	if bb, ok := it.Market.BestBid(); ok && bb > it.FairPrice && askVolume != 0 {
		if err := it.CancelAllOrders(); err != nil {
			return err
		}
		order, err := engine.NewMarketOrder(it.Participant.TraderID, askVolume)
		if err != nil {
			return err
		}
		if err := it.Market.Submit(order); err != nil {
			return err
		}
	}

	if ba, ok := it.Market.BestAsk(); ok && ba < it.FairPrice && bidVolume != 0 {
		if err := it.CancelAllOrders(); err != nil {
			return err
		}
		order, err := engine.NewMarketOrder(it.Participant.TraderID, bidVolume)
		if err != nil {
			return err
		}
		if err := it.Market.Submit(order); err != nil {
			return err
		}
	}
	return nil
}

// NewDummyInformedTrader believes the price belongs at 1050 and trades its
// full inventory capacity toward that view.
func NewDummyInformedTrader(m *engine.Market) *InformedTrader {
	return NewInformedTrader(m, "Dummy Informed Trader",
		ConstantFairPrice{Price: 1050},
		MaxAllowedVolume{},
		1000)
}

// NewTWAPInformedTrader spreads the same 1050 view evenly over the
// remaining ticks of the run.
func NewTWAPInformedTrader(m *engine.Market) *InformedTrader {
	return NewInformedTrader(m, "TWAP Informed Trader",
		ConstantFairPrice{Price: 1050},
		TimeWeightedVolume{},
		1000)
}

// NewNewsInformedTrader derives its view from the recent news flow and
// works it into the market TWAP-style.
func NewNewsInformedTrader(m *engine.Market) *InformedTrader {
	return NewInformedTrader(m, "News Informed Trader",
		NewsImpactExponentialFairPrice{Window: 10, Aggressiveness: 5},
		TimeWeightedVolume{},
		1000)
}
