package engine

import (
	"encoding/gob"
	"fmt"
	"io"
	"math/rand"
	"os"

	"go.uber.org/zap"
)

// marketState is the serialized form of a Market: the full object graph of
// books, histories and participants. gob is used because market-order prices
// are infinite sentinels, which JSON encoders reject. Agent callbacks are
// not part of the state; a restored market answers every read-only query and
// accepts further submissions, but carries no strategies.
type marketState struct {
	InitialFairPrice   float64
	Seed               int64
	Bids               []*Order
	Asks               []*Order
	TradeHistory       []Trade
	OBSnapshots        []BookSnapshot
	Midprices          []MidPoint
	Cancellations      []*Order
	MsgHistory         []Message
	Participants       []*Participant
	LastSubmissionTime int64
	NextOrderID        int64
	CurrentTick        int
	Duration           int
	Completed          bool
	NewsArrivalRate    float64
	GoodNewsProb       float64
	NewsHistory        []int
}

// SaveState writes the market's full state as an opaque blob.
func (m *Market) SaveState(w io.Writer) error {
	state := marketState{
		InitialFairPrice:   m.InitialFairPrice,
		Seed:               m.Seed,
		Bids:               m.Bids,
		Asks:               m.Asks,
		TradeHistory:       m.TradeHistory,
		OBSnapshots:        m.OBSnapshots,
		Midprices:          m.Midprices,
		Cancellations:      m.Cancellations,
		MsgHistory:         m.MsgHistory,
		Participants:       m.Participants,
		LastSubmissionTime: m.LastSubmissionTime,
		NextOrderID:        m.NextOrderID,
		CurrentTick:        m.CurrentTick,
		Duration:           m.Duration,
		Completed:          m.Completed,
		NewsArrivalRate:    m.NewsArrivalRate,
		GoodNewsProb:       m.GoodNewsProb,
		NewsHistory:        m.NewsHistory,
	}
	if err := gob.NewEncoder(w).Encode(state); err != nil {
		return fmt.Errorf("encode market state: %w", err)
	}
	return nil
}

// relinkOrders restores pointer identity after decoding. gob flattens shared
// pointers into distinct copies, so the decoded book and cancellation lists
// hold duplicates of the orders the participants own; without re-linking, a
// cancel on a restored market would flip the participant's copy while the
// book copy stayed open.
func (s *marketState) relinkOrders() {
	owned := make(map[int64]*Order)
	for _, p := range s.Participants {
		for _, list := range [][]*Order{p.Orders, p.InactiveOrders} {
			for _, o := range list {
				owned[o.ID] = o
			}
		}
	}
	for _, side := range [][]*Order{s.Bids, s.Asks, s.Cancellations} {
		for i, o := range side {
			if canonical, ok := owned[o.ID]; ok {
				side[i] = canonical
			}
		}
	}
}

// LoadState restores a market from a blob written by SaveState. The logger
// may be nil.
func LoadState(r io.Reader, logger *zap.Logger) (*Market, error) {
	var state marketState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return nil, fmt.Errorf("decode market state: %w", err)
	}
	state.relinkOrders()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Market{
		InitialFairPrice:   state.InitialFairPrice,
		Seed:               state.Seed,
		Bids:               state.Bids,
		Asks:               state.Asks,
		TradeHistory:       state.TradeHistory,
		OBSnapshots:        state.OBSnapshots,
		Midprices:          state.Midprices,
		Cancellations:      state.Cancellations,
		MsgHistory:         state.MsgHistory,
		Participants:       state.Participants,
		LastSubmissionTime: state.LastSubmissionTime,
		NextOrderID:        state.NextOrderID,
		CurrentTick:        state.CurrentTick,
		Duration:           state.Duration,
		Completed:          state.Completed,
		NewsArrivalRate:    state.NewsArrivalRate,
		GoodNewsProb:       state.GoodNewsProb,
		NewsHistory:        state.NewsHistory,
		rng:                rand.New(rand.NewSource(state.Seed)),
		logger:             logger,
		eventBuffer:        256,
	}, nil
}

// SaveFile writes the state blob to a file.
func (m *Market) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.SaveState(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile restores a market from a file written by SaveFile.
func LoadFile(path string, logger *zap.Logger) (*Market, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadState(f, logger)
}
