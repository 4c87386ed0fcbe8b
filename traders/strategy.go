package traders

import (
	"math"
)

// FairPriceStrategy produces a trader's next fair-price estimate.
type FairPriceStrategy interface {
	FairPrice(t *Trader) float64
}

// VolumeStrategy produces the signed bid and ask volumes a market maker
// should quote (bid positive, ask negative).
type VolumeStrategy interface {
	Volumes(t *Trader) (bid, ask int64)
}

// SpreadStrategy produces the bid and ask offsets around the fair price
// (bid offset negative, ask offset positive).
type SpreadStrategy interface {
	Offsets(t *Trader) (bid, ask int64)
}

// ConstantFairPrice always returns the same fair price.
type ConstantFairPrice struct {
	Price float64
}

func (s ConstantFairPrice) FairPrice(*Trader) float64 { return s.Price }

// OrderFlowSignFairPrice nudges the fair price by Aggressiveness in the
// direction of recent signed order flow.
type OrderFlowSignFairPrice struct {
	Window         int
	Aggressiveness int64
}

func (s OrderFlowSignFairPrice) FairPrice(t *Trader) float64 {
	var flow int64
	for _, trade := range t.Market.RecentTrades(s.Window) {
		flow += trade.Volume * int64(trade.AggressorSide)
	}
	return t.FairPrice + float64(s.Aggressiveness)*signum(flow)
}

// OrderFlowMagnitudeFairPrice scales the adjustment by the imbalance of
// recent order flow relative to total traded volume.
type OrderFlowMagnitudeFairPrice struct {
	Window         int
	Aggressiveness int64
}

func (s OrderFlowMagnitudeFairPrice) FairPrice(t *Trader) float64 {
	var flow, total int64
	for _, trade := range t.Market.RecentTrades(s.Window) {
		flow += trade.Volume * int64(trade.AggressorSide)
		total += trade.Volume
	}
	var indicator float64
	if total != 0 {
		indicator = float64(flow) / float64(total)
	}
	return t.FairPrice + math.Trunc(indicator*float64(s.Aggressiveness)*3)
}

// NewsImpactFairPrice shifts the fair price by the latest news value scaled
// by Aggressiveness. Zero news leaves the estimate alone.
type NewsImpactFairPrice struct {
	Aggressiveness int64
}

func (s NewsImpactFairPrice) FairPrice(t *Trader) float64 {
	news := t.Market.NewsHistory[len(t.Market.NewsHistory)-1]
	if news == 0 {
		return t.FairPrice
	}
	return t.FairPrice + math.Trunc(float64(news)*float64(s.Aggressiveness))
}

// NewsImpactExponentialFairPrice reacts to the mean of the last Window news
// values through an exponential, so sustained one-sided news moves the
// estimate sharply. Before Window ticks have elapsed it returns the estimate
// unchanged.
type NewsImpactExponentialFairPrice struct {
	Window         int
	Aggressiveness int64
}

func (s NewsImpactExponentialFairPrice) FairPrice(t *Trader) float64 {
	if t.Market.CurrentTick < s.Window {
		return t.FairPrice
	}
	hist := t.Market.NewsHistory
	var sum int64
	for _, n := range hist[len(hist)-s.Window:] {
		sum += int64(n)
	}
	mean := float64(sum) / float64(s.Window)
	return t.FairPrice + math.Trunc(math.Exp(mean*float64(s.Aggressiveness)))
}

// MaxAllowedVolume quotes the full remaining inventory capacity on each
// side.
type MaxAllowedVolume struct{}

func (MaxAllowedVolume) Volumes(t *Trader) (int64, int64) {
	bid := t.MaxInventory - t.Position()
	ask := t.MaxInventory + t.Position()
	return bid, -ask
}

// ConstantVolume quotes a fixed volume per side, capped by remaining
// inventory capacity.
type ConstantVolume struct {
	Volume int64
}

func (s ConstantVolume) Volumes(t *Trader) (int64, int64) {
	maxBid := t.MaxInventory - t.Position()
	maxAsk := t.MaxInventory + t.Position()
	return min(s.Volume, maxBid), -min(s.Volume, maxAsk)
}

// MaxFractionVolume quotes a fraction of the remaining inventory capacity on
// each side.
type MaxFractionVolume struct {
	Fraction float64
}

func (s MaxFractionVolume) Volumes(t *Trader) (int64, int64) {
	bid := int64(math.Trunc(float64(t.MaxInventory-t.Position()) * s.Fraction))
	ask := int64(math.Trunc(float64(t.MaxInventory+t.Position()) * s.Fraction))
	return bid, -ask
}

// TimeWeightedVolume spreads the remaining desired position evenly over the
// ticks left in the run, trading only when the book prices the instrument on
// the wrong side of the trader's fair price.
type TimeWeightedVolume struct{}

func (TimeWeightedVolume) Volumes(t *Trader) (int64, int64) {
	fair := t.FairPrice
	if bb, ok := t.Market.BestBid(); ok && fair < bb {
		left := -t.MaxInventory - t.Position()
		ticksLeft := t.Market.Duration - t.Market.CurrentTick
		return 0, int64(math.Trunc(float64(left) / float64(ticksLeft)))
	}
	if ba, ok := t.Market.BestAsk(); ok && fair > ba {
		left := t.MaxInventory - t.Position()
		ticksLeft := t.Market.Duration - t.Market.CurrentTick
		return int64(math.Trunc(float64(left) / float64(ticksLeft))), 0
	}
	return 0, 0
}

// ConstantSpread quotes a symmetric halfspread around the fair price.
type ConstantSpread struct {
	Halfspread int64
}

func (s ConstantSpread) Offsets(*Trader) (int64, int64) {
	return -s.Halfspread, s.Halfspread
}

// OrderFlowImbalanceSpread skews both quotes toward recent order flow while
// never quoting tighter than MinHalfspread on either side.
type OrderFlowImbalanceSpread struct {
	Window         int
	Aggressiveness int64
	MinHalfspread  int64
}

func (s OrderFlowImbalanceSpread) Offsets(t *Trader) (int64, int64) {
	var flow, total int64
	for _, trade := range t.Market.RecentTrades(s.Window) {
		flow += trade.Volume * int64(trade.AggressorSide)
		total += trade.Volume
	}
	var indicator float64
	if total != 0 {
		indicator = float64(flow) / float64(total)
	}
	skew := int64(math.Trunc(indicator * float64(s.Aggressiveness)))
	return min(skew, -s.MinHalfspread), max(skew, s.MinHalfspread)
}

func signum(v int64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
