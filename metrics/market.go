// Package metrics computes liquidity, order-flow and price-dynamics
// measures from a finished (or running) market, plus per-trader performance
// reports. All rolling measures emit their first point once a full window of
// observations exists.
package metrics

import (
	"math"
	"slices"

	"microstruct/engine"
)

// Point is one observation of a time-indexed series.
type Point struct {
	Time  int64
	Value float64
}

// SpreadPoint is one effective-spread observation: the round-trip cost of a
// buy and of a sell of the probed size.
type SpreadPoint struct {
	Time int64
	Buy  float64
	Sell float64
}

// DepthPoint is one order-book depth observation. Bid is positive, Ask
// negative per the book's signed-volume convention, and Total is their sum.
type DepthPoint struct {
	Time  int64
	Bid   float64
	Ask   float64
	Total float64
}

// QuotedSpread returns best ask minus best bid per snapshot. One-sided
// snapshots are skipped.
func QuotedSpread(m *engine.Market) []Point {
	var out []Point
	for _, snap := range m.OBSnapshots {
		if len(snap.Bid) == 0 || len(snap.Ask) == 0 {
			continue
		}
		out = append(out, Point{
			Time:  snap.Time,
			Value: snap.Ask[0].Price - snap.Bid[0].Price,
		})
	}
	return out
}

// EffectiveSpread simulates a market order of the given size against each
// snapshot and reports twice the distance between the volume-weighted
// execution price and the midprice. Sell spreads come out negative. With
// relative set, both are divided by the midprice. Snapshots that are
// one-sided or too shallow to fill the probe are skipped.
func EffectiveSpread(m *engine.Market, volume int64, relative bool) []SpreadPoint {
	var out []SpreadPoint
	for _, snap := range m.OBSnapshots {
		if len(snap.Bid) == 0 || len(snap.Ask) == 0 {
			continue
		}
		mid := (snap.Bid[0].Price + snap.Ask[0].Price) / 2

		buyPx, okBuy := walkLevels(snap.Ask, volume)
		sellPx, okSell := walkLevels(snap.Bid, volume)
		if !okBuy || !okSell {
			continue
		}

		buy := 2 * math.Abs(buyPx-mid)
		sell := -2 * math.Abs(mid-sellPx)
		if relative {
			buy /= mid
			sell /= mid
		}
		out = append(out, SpreadPoint{Time: snap.Time, Buy: buy, Sell: sell})
	}
	return out
}

// walkLevels sweeps the side best-first and returns the volume-weighted
// execution price of a marketable order of the given size.
func walkLevels(side []engine.PriceLevel, volume int64) (float64, bool) {
	remaining := volume
	var notional float64
	for _, level := range side {
		size := level.Volume
		if size < 0 {
			size = -size
		}
		if remaining <= size {
			notional += level.Price * float64(remaining)
			return notional / float64(volume), true
		}
		notional += level.Price * float64(size)
		remaining -= size
	}
	return 0, false
}

// OrderBookDepth returns the rolling mean of total resting volume per side.
func OrderBookDepth(m *engine.Market, window int) []DepthPoint {
	n := len(m.OBSnapshots)
	times := make([]int64, n)
	bids := make([]float64, n)
	asks := make([]float64, n)
	for i, snap := range m.OBSnapshots {
		times[i] = snap.Time
		for _, level := range snap.Bid {
			bids[i] += float64(level.Volume)
		}
		for _, level := range snap.Ask {
			asks[i] += float64(level.Volume)
		}
	}

	var out []DepthPoint
	for i := window - 1; i < n; i++ {
		b := mean(bids[i+1-window : i+1])
		a := mean(asks[i+1-window : i+1])
		out = append(out, DepthPoint{Time: times[i], Bid: b, Ask: a, Total: b + a})
	}
	return out
}

// CancellationVolume aggregates canceled volume by submission timestamp.
// Orders can be canceled in any sequence, so the result is re-sorted by
// time.
func CancellationVolume(m *engine.Market) []Point {
	byTime := make(map[int64]float64)
	for _, order := range m.Cancellations {
		v := order.Volume
		if v < 0 {
			v = -v
		}
		byTime[order.Time] += float64(v)
	}
	times := make([]int64, 0, len(byTime))
	for t := range byTime {
		times = append(times, t)
	}
	slices.Sort(times)

	out := make([]Point, len(times))
	for i, t := range times {
		out[i] = Point{Time: t, Value: byTime[t]}
	}
	return out
}

// OrderFlowImbalance returns the rolling mean of signed trade volume.
func OrderFlowImbalance(m *engine.Market, window int) []Point {
	flow := make([]float64, len(m.TradeHistory))
	for i, trade := range m.TradeHistory {
		flow[i] = float64(trade.Volume * int64(trade.AggressorSide))
	}
	return rollSeries(tradeTimes(m), flow, window, mean)
}

// TradeSignAutocorrelation returns the rolling first-order autocorrelation
// of trade aggressor signs.
func TradeSignAutocorrelation(m *engine.Market, window int) []Point {
	signs := make([]float64, len(m.TradeHistory))
	for i, trade := range m.TradeHistory {
		signs[i] = float64(trade.AggressorSide)
	}
	return rollingLagCorr(tradeTimes(m), signs, window)
}

// VWAP returns the rolling volume-weighted average trade price.
func VWAP(m *engine.Market, window int) []Point {
	n := len(m.TradeHistory)
	var out []Point
	for i := window - 1; i < n; i++ {
		var notional, volume float64
		for _, trade := range m.TradeHistory[i+1-window : i+1] {
			notional += trade.Price * float64(trade.Volume)
			volume += float64(trade.Volume)
		}
		if volume == 0 {
			continue
		}
		out = append(out, Point{Time: m.TradeHistory[i].Time, Value: notional / volume})
	}
	return out
}

// RealizedVolatility returns the rolling standard deviation of log returns
// of trade prices.
func RealizedVolatility(m *engine.Market, window int) []Point {
	times, returns := logReturns(m)
	return rollSeries(times, returns, window, stddev)
}

// ReturnsAutocorrelation returns the rolling first-order autocorrelation of
// trade-price returns.
func ReturnsAutocorrelation(m *engine.Market, window int) []Point {
	n := len(m.TradeHistory)
	if n < 2 {
		return nil
	}
	times := make([]int64, n-1)
	returns := make([]float64, n-1)
	for i := 1; i < n; i++ {
		times[i-1] = m.TradeHistory[i].Time
		returns[i-1] = m.TradeHistory[i].Price/m.TradeHistory[i-1].Price - 1
	}
	return rollingLagCorr(times, returns, window)
}

// RollSpread estimates the effective spread from the serial covariance of
// price changes, after Roll (1984): 2*sqrt(-cov) with positive covariances
// clipped to zero. With relative set, price changes are fractional and the
// result is scaled to percent.
func RollSpread(m *engine.Market, window int, relative bool) []Point {
	n := len(m.TradeHistory)
	if n < 2 {
		return nil
	}
	times := make([]int64, n-1)
	deltas := make([]float64, n-1)
	for i := 1; i < n; i++ {
		times[i-1] = m.TradeHistory[i].Time
		if relative {
			deltas[i-1] = m.TradeHistory[i].Price/m.TradeHistory[i-1].Price - 1
		} else {
			deltas[i-1] = m.TradeHistory[i].Price - m.TradeHistory[i-1].Price
		}
	}

	mult := 2.0
	if relative {
		mult = 200.0
	}

	var out []Point
	// Each covariance pairs a delta with its predecessor, so the first
	// estimate needs window+1 deltas.
	for i := window; i < len(deltas); i++ {
		cov := covariance(deltas[i+1-window:i+1], deltas[i-window:i])
		if cov > 0 {
			cov = 0
		}
		out = append(out, Point{Time: times[i], Value: mult * math.Sqrt(-cov)})
	}
	return out
}

func tradeTimes(m *engine.Market) []int64 {
	times := make([]int64, len(m.TradeHistory))
	for i, trade := range m.TradeHistory {
		times[i] = trade.Time
	}
	return times
}

func logReturns(m *engine.Market) ([]int64, []float64) {
	n := len(m.TradeHistory)
	if n < 2 {
		return nil, nil
	}
	times := make([]int64, n-1)
	returns := make([]float64, n-1)
	for i := 1; i < n; i++ {
		times[i-1] = m.TradeHistory[i].Time
		returns[i-1] = math.Log(m.TradeHistory[i].Price / m.TradeHistory[i-1].Price)
	}
	return times, returns
}

func rollSeries(times []int64, values []float64, window int, f func([]float64) float64) []Point {
	var out []Point
	for i := window - 1; i < len(values); i++ {
		out = append(out, Point{Time: times[i], Value: f(values[i+1-window : i+1])})
	}
	return out
}

// rollingLagCorr computes the rolling Pearson correlation of a series with
// its own one-step lag.
func rollingLagCorr(times []int64, values []float64, window int) []Point {
	var out []Point
	for i := window; i < len(values); i++ {
		cur := values[i+1-window : i+1]
		lag := values[i-window : i]
		sc, sl := stddev(cur), stddev(lag)
		if sc == 0 || sl == 0 {
			continue
		}
		out = append(out, Point{Time: times[i], Value: covariance(cur, lag) / (sc * sl)})
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the sample standard deviation (n-1 denominator).
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mu := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - mu
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// covariance is the sample covariance of two equal-length series.
func covariance(xs, ys []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mx, my := mean(xs), mean(ys)
	var sum float64
	for i := range xs {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	return sum / float64(len(xs)-1)
}
