package metrics

import (
	"math"
	"testing"

	"microstruct/engine"
)

func almost(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func mustSubmit(t *testing.T, m *engine.Market, traderID int, volume int64, price float64) {
	t.Helper()
	order, err := engine.NewLimitOrder(traderID, volume, price)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Submit(order); err != nil {
		t.Fatal(err)
	}
}

func TestQuotedSpreadSkipsOneSidedBooks(t *testing.T) {
	m := engine.NewMarket(engine.Config{})
	p := m.Register(nil, "quoter")

	mustSubmit(t, m, p.TraderID, 5, 99)   // one-sided, skipped
	mustSubmit(t, m, p.TraderID, -5, 101) // two-sided now

	got := QuotedSpread(m)
	if len(got) != 1 {
		t.Fatalf("points = %d, want 1", len(got))
	}
	if got[0].Time != 2 {
		t.Fatalf("time = %d, want 2", got[0].Time)
	}
	almost(t, got[0].Value, 2)
}

func TestEffectiveSpread(t *testing.T) {
	m := engine.NewMarket(engine.Config{})
	p := m.Register(nil, "quoter")
	bid1, _ := engine.NewLimitOrder(p.TraderID, 5, 99)
	bid2, _ := engine.NewLimitOrder(p.TraderID, 5, 98)
	ask1, _ := engine.NewLimitOrder(p.TraderID, -5, 101)
	ask2, _ := engine.NewLimitOrder(p.TraderID, -5, 102)
	if err := m.Submit(bid1, bid2, ask1, ask2); err != nil {
		t.Fatal(err)
	}

	got := EffectiveSpread(m, 8, false)
	if len(got) != 1 {
		t.Fatalf("points = %d, want 1", len(got))
	}
	// Buy sweeps 5@101 + 3@102 against a mid of 100.
	almost(t, got[0].Buy, 2.75)
	almost(t, got[0].Sell, -2.75)

	if rel := EffectiveSpread(m, 8, true); len(rel) != 1 {
		t.Fatal("relative variant should emit the same points")
	} else {
		almost(t, rel[0].Buy, 2.75/100)
	}

	// Probe deeper than the book: no estimate.
	if got := EffectiveSpread(m, 20, false); len(got) != 0 {
		t.Fatalf("too-deep probe produced %d points", len(got))
	}
}

func TestOrderBookDepth(t *testing.T) {
	m := engine.NewMarket(engine.Config{})
	p := m.Register(nil, "quoter")
	bid, _ := engine.NewLimitOrder(p.TraderID, 5, 99)
	ask1, _ := engine.NewLimitOrder(p.TraderID, -5, 101)
	ask2, _ := engine.NewLimitOrder(p.TraderID, -3, 102)
	if err := m.Submit(bid, ask1, ask2); err != nil {
		t.Fatal(err)
	}

	got := OrderBookDepth(m, 1)
	if len(got) != 1 {
		t.Fatalf("points = %d, want 1", len(got))
	}
	almost(t, got[0].Bid, 5)
	almost(t, got[0].Ask, -8)
	almost(t, got[0].Total, -3)
}

func TestCancellationVolumeAggregatesByTime(t *testing.T) {
	m := engine.NewMarket(engine.Config{})
	p := m.Register(nil, "quoter")

	mustSubmit(t, m, p.TraderID, 5, 99)   // time 1
	mustSubmit(t, m, p.TraderID, -3, 101) // time 2
	if err := m.CancelAllOrders(p.TraderID); err != nil {
		t.Fatal(err)
	}

	got := CancellationVolume(m)
	if len(got) != 2 {
		t.Fatalf("points = %d, want 2", len(got))
	}
	if got[0].Time != 1 || got[0].Value != 5 {
		t.Fatalf("first point = %+v, want {1 5}", got[0])
	}
	if got[1].Time != 2 || got[1].Value != 3 {
		t.Fatalf("second point = %+v, want {2 3}", got[1])
	}
}

func TestOrderFlowImbalance(t *testing.T) {
	m := engine.NewMarket(engine.Config{})
	m.TradeHistory = []engine.Trade{
		{Volume: 10, AggressorSide: 1, Time: 1},
		{Volume: 5, AggressorSide: -1, Time: 2},
		{Volume: 7, AggressorSide: 1, Time: 3},
	}

	got := OrderFlowImbalance(m, 3)
	if len(got) != 1 {
		t.Fatalf("points = %d, want 1", len(got))
	}
	almost(t, got[0].Value, 4) // (10 - 5 + 7) / 3
}

func TestVWAP(t *testing.T) {
	m := engine.NewMarket(engine.Config{})
	m.TradeHistory = []engine.Trade{
		{Price: 10, Volume: 1, Time: 1},
		{Price: 20, Volume: 2, Time: 2},
		{Price: 30, Volume: 3, Time: 3},
	}

	got := VWAP(m, 2)
	if len(got) != 2 {
		t.Fatalf("points = %d, want 2", len(got))
	}
	almost(t, got[0].Value, 50.0/3)
	almost(t, got[1].Value, 130.0/5)
}

func TestRealizedVolatilityConstantReturns(t *testing.T) {
	m := engine.NewMarket(engine.Config{})
	m.TradeHistory = []engine.Trade{
		{Price: 100, Volume: 1, Time: 1},
		{Price: 110, Volume: 1, Time: 2},
		{Price: 121, Volume: 1, Time: 3},
	}

	got := RealizedVolatility(m, 2)
	if len(got) != 1 {
		t.Fatalf("points = %d, want 1", len(got))
	}
	almost(t, got[0].Value, 0) // identical log returns, no dispersion
}

func TestTradeSignAutocorrelationAlternating(t *testing.T) {
	m := engine.NewMarket(engine.Config{})
	for i := 0; i < 5; i++ {
		side := 1
		if i%2 == 1 {
			side = -1
		}
		m.TradeHistory = append(m.TradeHistory, engine.Trade{
			Price: 100, Volume: 1, AggressorSide: side, Time: int64(i + 1),
		})
	}

	got := TradeSignAutocorrelation(m, 4)
	if len(got) != 1 {
		t.Fatalf("points = %d, want 1", len(got))
	}
	almost(t, got[0].Value, -1)
}

func TestRollSpreadBidAskBounce(t *testing.T) {
	// Prices bouncing between 100 and 101 are the textbook Roll setup.
	m := engine.NewMarket(engine.Config{})
	for i := 0; i < 6; i++ {
		price := 100.0
		if i%2 == 1 {
			price = 101
		}
		m.TradeHistory = append(m.TradeHistory, engine.Trade{
			Price: price, Volume: 1, Time: int64(i + 1),
		})
	}

	got := RollSpread(m, 4, false)
	if len(got) != 1 {
		t.Fatalf("points = %d, want 1", len(got))
	}
	almost(t, got[0].Value, 2*math.Sqrt(4.0/3.0))
}

func TestRollSpreadClipsPositiveCovariance(t *testing.T) {
	// A trending tape has positively correlated deltas; the estimator
	// reports zero rather than an imaginary spread.
	m := engine.NewMarket(engine.Config{})
	for i := 0; i < 6; i++ {
		m.TradeHistory = append(m.TradeHistory, engine.Trade{
			Price: 100 + float64(i*i), Volume: 1, Time: int64(i + 1),
		})
	}

	got := RollSpread(m, 4, false)
	if len(got) != 1 {
		t.Fatalf("points = %d, want 1", len(got))
	}
	almost(t, got[0].Value, 0)
}
