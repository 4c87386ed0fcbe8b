package traders

import (
	"testing"

	"microstruct/engine"
)

func TestMarketMakerQuotesBothSides(t *testing.T) {
	m := engine.NewMarket(engine.Config{InitialFairPrice: 100})
	mm := NewMarketMaker(m, "mm",
		ConstantFairPrice{Price: 100},
		ConstantVolume{Volume: 50},
		ConstantSpread{Halfspread: 1},
		1000)

	if err := mm.Update(); err != nil {
		t.Fatal(err)
	}

	if len(m.Bids) != 1 || len(m.Asks) != 1 {
		t.Fatalf("book = %d bids, %d asks, want 1 and 1", len(m.Bids), len(m.Asks))
	}
	if m.Bids[0].Price != 99 || m.Bids[0].Volume != 50 {
		t.Fatalf("bid = %v @ %v, want 50 @ 99", m.Bids[0].Volume, m.Bids[0].Price)
	}
	if m.Asks[0].Price != 101 || m.Asks[0].Volume != -50 {
		t.Fatalf("ask = %v @ %v, want -50 @ 101", m.Asks[0].Volume, m.Asks[0].Price)
	}
}

func TestMarketMakerReplacesQuotesEachUpdate(t *testing.T) {
	m := engine.NewMarket(engine.Config{InitialFairPrice: 100})
	mm := NewMarketMaker(m, "mm",
		ConstantFairPrice{Price: 100},
		ConstantVolume{Volume: 50},
		ConstantSpread{Halfspread: 1},
		1000)

	for i := 0; i < 3; i++ {
		if err := mm.Update(); err != nil {
			t.Fatal(err)
		}
	}

	if len(m.Bids) != 1 || len(m.Asks) != 1 {
		t.Fatalf("stale quotes left behind: %d bids, %d asks", len(m.Bids), len(m.Asks))
	}
	if len(m.Cancellations) != 4 {
		t.Fatalf("cancellations = %d, want 4", len(m.Cancellations))
	}
}

func TestMarketMakerSkipsExhaustedSide(t *testing.T) {
	m := engine.NewMarket(engine.Config{InitialFairPrice: 100})
	mm := NewMarketMaker(m, "mm",
		ConstantFairPrice{Price: 100},
		MaxAllowedVolume{},
		ConstantSpread{Halfspread: 1},
		100)
	mm.Participant.Position = 100

	if err := mm.Update(); err != nil {
		t.Fatal(err)
	}
	if len(m.Bids) != 0 {
		t.Fatalf("bid quoted with no capacity left: %v", m.Bids)
	}
	if len(m.Asks) != 1 || m.Asks[0].Volume != -200 {
		t.Fatalf("ask = %v, want single -200 quote", m.Asks)
	}
}

func TestMarketMakerPresets(t *testing.T) {
	m := engine.NewMarket(engine.Config{InitialFairPrice: 1000})

	dummy := NewDummyMarketMaker(m, "dummy")
	kyle := NewKyleMarketMaker(m, "kyle")
	adaptive := NewAdaptiveMarketMaker(m, "adaptive")

	if dummy.MaxInventory != 1000 || kyle.MaxInventory != 1000 || adaptive.MaxInventory != 1000 {
		t.Fatal("preset max inventory should be 1000")
	}
	if err := dummy.Update(); err != nil {
		t.Fatal(err)
	}
	if bb, ok := m.BestBid(); !ok || bb != 995 {
		t.Fatalf("best bid = %v, want 995", bb)
	}
	if ba, ok := m.BestAsk(); !ok || ba != 1005 {
		t.Fatalf("best ask = %v, want 1005", ba)
	}
	if err := kyle.Update(); err != nil {
		t.Fatal(err)
	}
	if err := adaptive.Update(); err != nil {
		t.Fatal(err)
	}
}
