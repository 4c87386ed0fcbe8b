package traders

import (
	"math/rand"

	"microstruct/engine"
)

// NoiseTrader fires random-direction market orders at a fixed rate,
// supplying the uninformed flow the rest of the agents trade against. Each
// instance owns its rng so runs stay reproducible per trader.
type NoiseTrader struct {
	Trader
	SubmissionRate float64
	Volume         func() int64
	rng            *rand.Rand
}

// NewNoiseTrader registers a noise trader on m. volume is sampled on every
// submission; its absolute value is used, and a zero sample skips the tick.
func NewNoiseTrader(m *engine.Market, name string, rate float64, volume func() int64, seed int64) *NoiseTrader {
	nt := &NoiseTrader{
		Trader: Trader{
			Market:    m,
			FairPrice: m.InitialFairPrice,
		},
		SubmissionRate: rate,
		Volume:         volume,
		rng:            rand.New(rand.NewSource(seed)),
	}
	nt.Participant = m.Register(nt, name)
	return nt
}

// FixedVolume is a volume sampler that always returns v.
func FixedVolume(v int64) func() int64 {
	return func() int64 { return v }
}

// UniformVolume samples uniformly from [1, max].
func UniformVolume(max int64, seed int64) func() int64 {
	rng := rand.New(rand.NewSource(seed))
	return func() int64 { return 1 + rng.Int63n(max) }
}

// Update submits one random-sign market order with probability
// SubmissionRate.
func (nt *NoiseTrader) Update() error {
	volume := nt.Volume()
	if volume < 0 {
		volume = -volume
	}
	if volume == 0 || nt.rng.Float64() >= nt.SubmissionRate {
		return nil
	}
	if nt.rng.Intn(2) == 0 {
		volume = -volume
	}
	order, err := engine.NewMarketOrder(nt.Participant.TraderID, volume)
	if err != nil {
		return err
	}
	return nt.Market.Submit(order)
}
