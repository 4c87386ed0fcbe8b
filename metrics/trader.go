package metrics

import (
	"math"

	"microstruct/engine"
)

// TraderMetrics is the performance summary of one participant over a run.
type TraderMetrics struct {
	Name             string
	TraderID         int
	FinalProfit      float64
	FinalPosition    int64
	ProfitPerState   float64
	InformationRatio float64
	TotalTrades      int
	VolumeTraded     int64
	ProfitPerVolume  float64
	AverageTradeSize float64
	FillRate         float64
	TimeInMarket     float64
	MeanPosition     float64
	MeanAbsPosition  float64
	AggressorVolume  int64
	PassiveVolume    int64
	AggressorRatio   float64
}

// PositionHistory reconstructs a participant's position at every submission
// timestamp of the run, starting from (0, 0).
func PositionHistory(m *engine.Market, p *engine.Participant) []Point {
	out := []Point{{Time: 0, Value: 0}}
	var position int64
	idx := 0
	for ts := int64(1); ts <= m.LastSubmissionTime; ts++ {
		for idx < len(p.Fills) && p.Fills[idx].Time == ts {
			position += p.Fills[idx].Volume
			idx++
		}
		out = append(out, Point{Time: ts, Value: float64(position)})
	}
	return out
}

// ProfitHistory reconstructs a participant's cumulative profit at every
// submission timestamp, marking the open position to the midprice. A
// timestamp without its own midprice point inherits the previous one.
func ProfitHistory(m *engine.Market, p *engine.Participant) []Point {
	mids := make(map[int64]float64, len(m.Midprices))
	for _, mp := range m.Midprices {
		mids[mp.Time] = mp.Price
	}

	out := []Point{{Time: 0, Value: 0}}
	var realized float64
	var position int64
	idx := 0
	mid := mids[0]
	for ts := int64(1); ts <= m.LastSubmissionTime; ts++ {
		for idx < len(p.Fills) && p.Fills[idx].Time == ts {
			fill := p.Fills[idx]
			realized -= float64(fill.Volume) * fill.Price
			position += fill.Volume
			idx++
		}
		if v, ok := mids[ts]; ok {
			mid = v
		}
		out = append(out, Point{Time: ts, Value: realized + float64(position)*mid})
	}
	return out
}

// Report computes the performance summary of one participant.
func Report(m *engine.Market, p *engine.Participant) TraderMetrics {
	positions := PositionHistory(m, p)
	profits := ProfitHistory(m, p)

	diffs := make([]float64, 0, len(profits)-1)
	for i := 1; i < len(profits); i++ {
		diffs = append(diffs, profits[i].Value-profits[i-1].Value)
	}

	var totalVolume, aggressorVolume int64
	for _, fill := range p.Fills {
		v := fill.Volume
		if v < 0 {
			v = -v
		}
		totalVolume += v
		if fill.Volume*int64(fill.AggressorSide) > 0 {
			aggressorVolume += v
		}
	}

	var submitted int64
	for _, orders := range [][]*engine.Order{p.Orders, p.InactiveOrders} {
		for _, order := range orders {
			if order.Volume < 0 {
				submitted -= order.Volume
			} else {
				submitted += order.Volume
			}
		}
	}

	var inMarket int
	var meanPos, meanAbsPos float64
	for _, pt := range positions {
		if pt.Value != 0 {
			inMarket++
		}
		meanPos += pt.Value
		meanAbsPos += math.Abs(pt.Value)
	}
	meanPos /= float64(len(positions))
	meanAbsPos /= float64(len(positions))

	tm := TraderMetrics{
		Name:            p.Name,
		TraderID:        p.TraderID,
		FinalProfit:     profits[len(profits)-1].Value,
		FinalPosition:   p.Position,
		ProfitPerState:  mean(diffs),
		TotalTrades:     len(p.Fills),
		VolumeTraded:    totalVolume,
		TimeInMarket:    float64(inMarket) / float64(len(positions)),
		MeanPosition:    meanPos,
		MeanAbsPosition: meanAbsPos,
		AggressorVolume: aggressorVolume,
		PassiveVolume:   totalVolume - aggressorVolume,
	}
	if sd := stddev(diffs); sd != 0 {
		tm.InformationRatio = tm.ProfitPerState / sd
	}
	if totalVolume != 0 {
		tm.ProfitPerVolume = tm.FinalProfit / float64(totalVolume)
		tm.AggressorRatio = float64(aggressorVolume) / float64(totalVolume)
	}
	if len(p.Fills) > 0 {
		tm.AverageTradeSize = float64(totalVolume) / float64(len(p.Fills))
	}
	if submitted != 0 {
		tm.FillRate = float64(totalVolume) / float64(submitted)
	}
	return tm
}

// MarketReport computes summaries for every participant flagged for
// inclusion in results.
func MarketReport(m *engine.Market) []TraderMetrics {
	var out []TraderMetrics
	for _, p := range m.Participants {
		if !p.IncludeInResults {
			continue
		}
		out = append(out, Report(m, p))
	}
	return out
}
