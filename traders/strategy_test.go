package traders

import (
	"testing"

	"microstruct/engine"
)

// fixtureTrader builds a trader at fair price 100 holding 20 of a max
// inventory of 100, the setup most strategy cases assume.
func fixtureTrader(t *testing.T) *Trader {
	t.Helper()
	m := engine.NewMarket(engine.Config{InitialFairPrice: 100})
	p := m.Register(nil, "fixture")
	p.Position = 20
	return &Trader{Market: m, Participant: p, FairPrice: 100, MaxInventory: 100}
}

func seedTape(tr *Trader, trades ...engine.Trade) {
	tr.Market.TradeHistory = append(tr.Market.TradeHistory, trades...)
}

func TestConstantFairPrice(t *testing.T) {
	tr := fixtureTrader(t)
	if got := (ConstantFairPrice{Price: 150}).FairPrice(tr); got != 150 {
		t.Fatalf("fair price = %v, want 150", got)
	}
}

func TestOrderFlowSignFairPrice(t *testing.T) {
	tr := fixtureTrader(t)
	seedTape(tr,
		engine.Trade{Volume: 10, AggressorSide: 1},
		engine.Trade{Volume: 5, AggressorSide: -1},
		engine.Trade{Volume: 7, AggressorSide: 1},
	)
	s := OrderFlowSignFairPrice{Window: 3, Aggressiveness: 2}
	if got := s.FairPrice(tr); got != 102 {
		t.Fatalf("fair price = %v, want 102", got)
	}
}

func TestOrderFlowSignFairPriceNoTrades(t *testing.T) {
	tr := fixtureTrader(t)
	s := OrderFlowSignFairPrice{Window: 3, Aggressiveness: 2}
	if got := s.FairPrice(tr); got != 100 {
		t.Fatalf("fair price = %v, want unchanged 100", got)
	}
}

func TestOrderFlowMagnitudeFairPrice(t *testing.T) {
	tr := fixtureTrader(t)
	seedTape(tr,
		engine.Trade{Volume: 10, AggressorSide: 1},
		engine.Trade{Volume: 5, AggressorSide: -1},
		engine.Trade{Volume: 7, AggressorSide: 1},
	)
	s := OrderFlowMagnitudeFairPrice{Window: 3, Aggressiveness: 2}
	// flow 12 over volume 22, times 2*3, truncated: 100 + 3.
	if got := s.FairPrice(tr); got != 103 {
		t.Fatalf("fair price = %v, want 103", got)
	}
}

func TestNewsImpactFairPrice(t *testing.T) {
	tr := fixtureTrader(t)
	s := NewsImpactFairPrice{Aggressiveness: 5}

	if got := s.FairPrice(tr); got != 100 {
		t.Fatalf("no news: fair price = %v, want 100", got)
	}
	tr.Market.NewsHistory = append(tr.Market.NewsHistory, 1)
	if got := s.FairPrice(tr); got != 105 {
		t.Fatalf("good news: fair price = %v, want 105", got)
	}
	tr.Market.NewsHistory = append(tr.Market.NewsHistory, -1)
	if got := s.FairPrice(tr); got != 95 {
		t.Fatalf("bad news: fair price = %v, want 95", got)
	}
}

func TestNewsImpactExponentialFairPrice(t *testing.T) {
	tr := fixtureTrader(t)
	s := NewsImpactExponentialFairPrice{Window: 3, Aggressiveness: 1}

	tr.Market.CurrentTick = 2
	if got := s.FairPrice(tr); got != 100 {
		t.Fatalf("warmup: fair price = %v, want 100", got)
	}

	tr.Market.NewsHistory = []int{1, 1, 1}
	tr.Market.CurrentTick = 3
	// trunc(exp(1)) = 2.
	if got := s.FairPrice(tr); got != 102 {
		t.Fatalf("fair price = %v, want 102", got)
	}
}

func TestMaxAllowedVolume(t *testing.T) {
	tr := fixtureTrader(t)
	bid, ask := MaxAllowedVolume{}.Volumes(tr)
	if bid != 80 || ask != -120 {
		t.Fatalf("volumes = (%d, %d), want (80, -120)", bid, ask)
	}

	tr.Participant.Position = 100
	bid, ask = MaxAllowedVolume{}.Volumes(tr)
	if bid != 0 || ask != -200 {
		t.Fatalf("at max inventory: volumes = (%d, %d), want (0, -200)", bid, ask)
	}
}

func TestConstantVolumeCapped(t *testing.T) {
	tr := fixtureTrader(t)
	bid, ask := ConstantVolume{Volume: 50}.Volumes(tr)
	if bid != 50 || ask != -50 {
		t.Fatalf("volumes = (%d, %d), want (50, -50)", bid, ask)
	}

	bid, ask = ConstantVolume{Volume: 200}.Volumes(tr)
	if bid != 80 || ask != -120 {
		t.Fatalf("capped volumes = (%d, %d), want (80, -120)", bid, ask)
	}
}

func TestMaxFractionVolume(t *testing.T) {
	tr := fixtureTrader(t)
	bid, ask := MaxFractionVolume{Fraction: 0.5}.Volumes(tr)
	if bid != 40 || ask != -60 {
		t.Fatalf("volumes = (%d, %d), want (40, -60)", bid, ask)
	}
}

func TestTimeWeightedVolume(t *testing.T) {
	m := engine.NewMarket(engine.Config{InitialFairPrice: 100})
	quoter := m.Register(nil, "quoter")
	bid, err := engine.NewLimitOrder(quoter.TraderID, 10, 90)
	if err != nil {
		t.Fatal(err)
	}
	ask, err := engine.NewLimitOrder(quoter.TraderID, -10, 110)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Submit(bid, ask); err != nil {
		t.Fatal(err)
	}
	m.Duration = 100
	m.CurrentTick = 50

	p := m.Register(nil, "twap")
	p.Position = 20
	tr := &Trader{Market: m, Participant: p, FairPrice: 100, MaxInventory: 100}

	if b, a := (TimeWeightedVolume{}).Volumes(tr); b != 0 || a != 0 {
		t.Fatalf("fair inside touch: volumes = (%d, %d), want (0, 0)", b, a)
	}

	tr.FairPrice = 120
	if b, a := (TimeWeightedVolume{}).Volumes(tr); b != 1 || a != 0 {
		t.Fatalf("fair above ask: volumes = (%d, %d), want (1, 0)", b, a)
	}

	m.CurrentTick = 99
	if b, a := (TimeWeightedVolume{}).Volumes(tr); b != 80 || a != 0 {
		t.Fatalf("last tick: volumes = (%d, %d), want (80, 0)", b, a)
	}
}

func TestConstantSpread(t *testing.T) {
	tr := fixtureTrader(t)
	bid, ask := ConstantSpread{Halfspread: 5}.Offsets(tr)
	if bid != -5 || ask != 5 {
		t.Fatalf("offsets = (%d, %d), want (-5, 5)", bid, ask)
	}
}

func TestOrderFlowImbalanceSpread(t *testing.T) {
	tr := fixtureTrader(t)
	seedTape(tr,
		engine.Trade{Volume: 10, AggressorSide: 1},
		engine.Trade{Volume: 5, AggressorSide: -1},
		engine.Trade{Volume: 7, AggressorSide: 1},
	)
	s := OrderFlowImbalanceSpread{Window: 3, Aggressiveness: 2, MinHalfspread: 1}
	bid, ask := s.Offsets(tr)
	if bid != -1 || ask != 1 {
		t.Fatalf("offsets = (%d, %d), want (-1, 1)", bid, ask)
	}
}
