package traders

import (
	"testing"

	"microstruct/engine"
)

func TestInformedTraderLiftsCheapAsk(t *testing.T) {
	m := engine.NewMarket(engine.Config{InitialFairPrice: 1000})
	mm := NewDummyMarketMaker(m, "mm")
	it := NewInformedTrader(m, "informed",
		ConstantFairPrice{Price: 1050},
		MaxAllowedVolume{},
		1000)

	if err := mm.Update(); err != nil {
		t.Fatal(err)
	}
	if err := it.Update(); err != nil {
		t.Fatal(err)
	}

	// The maker quoted 100 lots at 1005, well below the informed view of
	// 1050, so the informed buys everything on offer.
	if it.Position() != 100 {
		t.Fatalf("informed position = %d, want 100", it.Position())
	}
	if mm.Position() != -100 {
		t.Fatalf("maker position = %d, want -100", mm.Position())
	}
	if len(m.TradeHistory) != 1 || m.TradeHistory[0].Price != 1005 {
		t.Fatalf("tape = %+v, want one trade at 1005", m.TradeHistory)
	}
}

func TestInformedTraderHitsRichBid(t *testing.T) {
	m := engine.NewMarket(engine.Config{InitialFairPrice: 1000})
	mm := NewDummyMarketMaker(m, "mm")
	it := NewInformedTrader(m, "informed",
		ConstantFairPrice{Price: 950},
		MaxAllowedVolume{},
		1000)

	if err := mm.Update(); err != nil {
		t.Fatal(err)
	}
	if err := it.Update(); err != nil {
		t.Fatal(err)
	}

	if it.Position() != -100 {
		t.Fatalf("informed position = %d, want -100", it.Position())
	}
	if len(m.TradeHistory) != 1 || m.TradeHistory[0].Price != 995 {
		t.Fatalf("tape = %+v, want one trade at 995", m.TradeHistory)
	}
}

func TestInformedTraderIdleInsideTouch(t *testing.T) {
	m := engine.NewMarket(engine.Config{InitialFairPrice: 1000})
	mm := NewDummyMarketMaker(m, "mm")
	it := NewInformedTrader(m, "informed",
		ConstantFairPrice{Price: 1000},
		MaxAllowedVolume{},
		1000)

	if err := mm.Update(); err != nil {
		t.Fatal(err)
	}
	if err := it.Update(); err != nil {
		t.Fatal(err)
	}

	if it.Position() != 0 || len(m.TradeHistory) != 0 {
		t.Fatalf("expected no trading, got position %d, %d trades",
			it.Position(), len(m.TradeHistory))
	}
}

func TestInformedPresets(t *testing.T) {
	m := engine.NewMarket(engine.Config{InitialFairPrice: 1000})
	dummy := NewDummyInformedTrader(m)
	twap := NewTWAPInformedTrader(m)
	news := NewNewsInformedTrader(m)

	if dummy.Participant.Name != "Dummy Informed Trader" {
		t.Fatalf("name = %q", dummy.Participant.Name)
	}
	if twap.FairPrice != 1000 || news.FairPrice != 1000 {
		t.Fatal("presets should start at the market's initial fair price")
	}

	// Empty book: no side to trade against, updates are no-ops.
	for _, tr := range []*InformedTrader{dummy, twap, news} {
		if err := tr.Update(); err != nil {
			t.Fatal(err)
		}
	}
	if len(m.TradeHistory) != 0 {
		t.Fatal("no trades expected on an empty book")
	}
}
