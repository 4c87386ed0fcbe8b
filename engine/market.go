package engine

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"
)

// Config controls a Market instance. Zero values take the defaults noted on
// each field.
type Config struct {
	// InitialFairPrice seeds every trader's fair-price estimate.
	InitialFairPrice float64
	// Seed drives all randomness owned by the market (participant shuffling
	// and the news process). Runs with equal seeds and agents reproduce.
	Seed int64
	// NewsArrivalRate is the per-tick probability of a news event
	// (default 0.1).
	NewsArrivalRate float64
	// GoodNewsProb is the probability that an arriving news event is
	// positive (default 0.5).
	GoodNewsProb float64
	// EventBuffer sizes the observer feed channel (default 256).
	EventBuffer int
	// Logger receives engine diagnostics; nil means no logging.
	Logger *zap.Logger
}

// Market is a continuous double auction for a single instrument. It owns the
// two book sides, the participant registry and every append-only history the
// analytics layer reads. A Market is single-owner: all methods must be
// called from one goroutine.
type Market struct {
	InitialFairPrice float64
	Seed             int64

	Bids []*Order
	Asks []*Order

	TradeHistory  []Trade
	OBSnapshots   []BookSnapshot
	Midprices     []MidPoint
	Cancellations []*Order
	MsgHistory    []Message

	Participants []*Participant

	LastSubmissionTime int64
	NextOrderID        int64
	CurrentTick        int
	Duration           int
	Completed          bool

	NewsArrivalRate float64
	GoodNewsProb    float64
	NewsHistory     []int

	rng         *rand.Rand
	logger      *zap.Logger
	events      chan Event
	eventBuffer int
}

// NewMarket builds an empty market.
func NewMarket(cfg Config) *Market {
	if cfg.NewsArrivalRate == 0 {
		cfg.NewsArrivalRate = 0.1
	}
	if cfg.GoodNewsProb == 0 {
		cfg.GoodNewsProb = 0.5
	}
	if cfg.EventBuffer == 0 {
		cfg.EventBuffer = 256
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Market{
		InitialFairPrice: cfg.InitialFairPrice,
		Seed:             cfg.Seed,
		Midprices:        []MidPoint{{Time: 0, Price: 0}},
		NewsArrivalRate:  cfg.NewsArrivalRate,
		GoodNewsProb:     cfg.GoodNewsProb,
		NewsHistory:      []int{0},
		rng:              rand.New(rand.NewSource(cfg.Seed)),
		logger:           logger,
		eventBuffer:      cfg.EventBuffer,
	}
}

// Submit processes one atomic submission event: a single order or an ordered
// batch from one or more traders. The submission counter advances once per
// call; every order in the batch carries that timestamp, and intra-batch
// priority follows the argument order.
//
// A market order arriving while the side it must cross is empty is marked
// rejected and aborts the remainder of the batch. The hard reject mirrors an
// exchange-session abort and is deliberate: later orders of the batch are
// discarded, not retried. A matching pass and a book snapshot still run, so
// downstream consumers see one snapshot per submission event.
//
// An unknown trader id is a fatal lookup failure for the whole submission.
func (m *Market) Submit(orders ...*Order) error {
	m.LastSubmissionTime++

	for _, order := range orders {
		trader, err := m.Participant(order.TraderID)
		if err != nil {
			return err
		}
		order.ID = m.allocateID()

		if order.Type == TypeMarket && m.unmarketable(order) {
			order.Status = StatusRejected
			trader.InactiveOrders = append(trader.InactiveOrders, order)
			m.logMsg(MsgReject, order.String())
			m.publishOrder(EventOrderRejected, order)
			break
		}

		order.Time = m.LastSubmissionTime
		order.Status = StatusActive
		if order.IsBid() {
			m.Bids = append(m.Bids, order)
		} else {
			m.Asks = append(m.Asks, order)
		}
		trader.Orders = append(trader.Orders, order)
		m.logMsg(MsgAdd, order.String())
		m.publishOrder(EventOrderAccepted, order)
	}

	m.matchOrders()
	m.saveBookState()
	return nil
}

// unmarketable reports whether a market order has no liquidity to cross.
func (m *Market) unmarketable(order *Order) bool {
	if order.IsBid() {
		return len(m.Asks) == 0
	}
	return len(m.Bids) == 0
}

// matchOrders runs one matching pass. Both sides are re-sorted to price-time
// priority, then crossing pairs execute top-of-book against top-of-book:
// the earlier-timestamped order sets the fill price (price improvement for
// the aggressing side; the ask's price on a timestamp tie) and the aggressor
// sign records which side arrived later. Any market order still resting when
// the loop ends is force-canceled: market orders must never rest.
func (m *Market) matchOrders() {
	sortSide(m.Bids, true)
	sortSide(m.Asks, false)

	for len(m.Bids) > 0 && len(m.Asks) > 0 && m.Bids[0].Price >= m.Asks[0].Price {
		bid, ask := m.Bids[0], m.Asks[0]

		fillPrice := ask.Price
		aggressor := 1
		if bid.Time < ask.Time {
			fillPrice = bid.Price
			aggressor = -1
		}
		fillVolume := min(bid.ActiveVolume(), -ask.ActiveVolume())

		buyer, err := m.Participant(bid.TraderID)
		if err != nil {
			panic(fmt.Sprintf("engine: resting bid %d owned by unregistered trader: %v", bid.ID, err))
		}
		seller, err := m.Participant(ask.TraderID)
		if err != nil {
			panic(fmt.Sprintf("engine: resting ask %d owned by unregistered trader: %v", ask.ID, err))
		}

		m.executeTrade(buyer, seller, fillPrice, fillVolume, aggressor)

		bid.Filled += fillVolume
		ask.Filled -= fillVolume
		updateStatus(bid)
		updateStatus(ask)

		if bid.Status == StatusFilled {
			m.Bids = m.Bids[1:]
		}
		if ask.Status == StatusFilled {
			m.Asks = m.Asks[1:]
		}
	}

	m.cancelRestingMarketOrders(m.Bids)
	m.cancelRestingMarketOrders(m.Asks)
	m.dropCanceledOrders()
}

// cancelRestingMarketOrders force-cancels market orders left in a side. This
// only happens when a partially filled market order outlives the opposite
// side mid-pass.
func (m *Market) cancelRestingMarketOrders(side []*Order) {
	for _, o := range side {
		if o.Type == TypeMarket {
			o.Status = StatusCanceled
			m.Cancellations = append(m.Cancellations, o)
			m.logMsg(MsgCancel, o.String())
			m.publishOrder(EventOrderCanceled, o)
		}
	}
}

// executeTrade settles one fill: both positions move by the traded volume,
// each participant books a fill record signed from its own perspective, and
// the trade joins the tape.
func (m *Market) executeTrade(buyer, seller *Participant, price float64, volume int64, aggressor int) {
	buyer.Position += volume
	seller.Position -= volume

	trade := Trade{
		Price:         price,
		Volume:        volume,
		AggressorSide: aggressor,
		Time:          m.LastSubmissionTime,
	}
	buyer.Fills = append(buyer.Fills, Fill{Price: price, Volume: volume, AggressorSide: aggressor, Time: trade.Time})
	seller.Fills = append(seller.Fills, Fill{Price: price, Volume: -volume, AggressorSide: aggressor, Time: trade.Time})

	m.TradeHistory = append(m.TradeHistory, trade)
	m.logMsg(MsgTrade, fmt.Sprintf("%+d @ %g, AGG: %+d", volume, price, aggressor))
	m.publish(Event{Kind: EventTrade, Trade: &trade})
}

// updateStatus recomputes an order's status after a fill.
func updateStatus(o *Order) {
	if o.Filled == o.Volume {
		o.Status = StatusFilled
	} else {
		o.Status = StatusPartial
	}
}

// CancelOrders cancels the trader's open orders on one side (+1 bids, -1
// asks). Cancellation is exposed only here, on the market: strategy code
// never flips order statuses directly.
func (m *Market) CancelOrders(traderID int, side int) error {
	return m.cancel(traderID, func(o *Order) bool {
		return sign(o.Volume) == side
	})
}

// CancelAllOrders cancels every open order belonging to the trader.
func (m *Market) CancelAllOrders(traderID int) error {
	return m.cancel(traderID, func(o *Order) bool { return true })
}

func (m *Market) cancel(traderID int, match func(*Order) bool) error {
	trader, err := m.Participant(traderID)
	if err != nil {
		return err
	}
	for _, o := range trader.Orders {
		if o.Open() && match(o) {
			o.Status = StatusCanceled
			m.Cancellations = append(m.Cancellations, o)
			m.logMsg(MsgCancel, o.String())
			m.publishOrder(EventOrderCanceled, o)
		}
	}
	m.dropCanceledOrders()
	return nil
}

// dropCanceledOrders purges closed orders from both sides.
func (m *Market) dropCanceledOrders() {
	m.Bids = dropClosed(m.Bids)
	m.Asks = dropClosed(m.Asks)
}

// Run advances the simulation by the given number of ticks. Each tick draws
// the news process, shuffles participant activation order (breaking any
// systematic first-mover advantage) and calls every agent's Update in that
// order, one at a time. The first agent error halts the run; agents are
// trusted collaborators, not sandboxed.
func (m *Market) Run(ticks int) error {
	m.Duration = ticks
	m.logger.Info("simulation starting",
		zap.Int("ticks", ticks),
		zap.Int("participants", len(m.Participants)),
	)

	for tick := 0; tick < ticks; tick++ {
		m.CurrentTick = tick
		m.drawNews()

		m.rng.Shuffle(len(m.Participants), func(i, j int) {
			m.Participants[i], m.Participants[j] = m.Participants[j], m.Participants[i]
		})
		for _, p := range m.Participants {
			if p.agent == nil {
				continue
			}
			if err := p.agent.Update(); err != nil {
				return fmt.Errorf("tick %d: trader %d update: %w", tick, p.TraderID, err)
			}
		}
		m.logger.Debug("tick complete",
			zap.Int("tick", tick),
			zap.Int("trades", len(m.TradeHistory)),
		)
	}

	m.Completed = true
	m.logger.Info("simulation complete",
		zap.Int("trades", len(m.TradeHistory)),
		zap.Int("cancellations", len(m.Cancellations)),
	)
	return nil
}

// drawNews appends one step of the exogenous news process: +1 good news, -1
// bad news, 0 no news.
func (m *Market) drawNews() {
	news := 0
	if m.rng.Float64() < m.NewsArrivalRate {
		news = -1
		if m.rng.Float64() < m.GoodNewsProb {
			news = 1
		}
	}
	m.NewsHistory = append(m.NewsHistory, news)
}

// BestBid returns the highest resting bid price, if any.
func (m *Market) BestBid() (float64, bool) {
	if len(m.Bids) == 0 {
		return 0, false
	}
	return m.Bids[0].Price, true
}

// BestAsk returns the lowest resting ask price, if any.
func (m *Market) BestAsk() (float64, bool) {
	if len(m.Asks) == 0 {
		return 0, false
	}
	return m.Asks[0].Price, true
}

// Midprice returns the current top-of-book midpoint when both sides quote.
func (m *Market) Midprice() (float64, bool) {
	bid, okBid := m.BestBid()
	ask, okAsk := m.BestAsk()
	if !okBid || !okAsk {
		return 0, false
	}
	return (bid + ask) / 2, true
}

// Spread returns the current quoted spread when both sides quote.
func (m *Market) Spread() (float64, bool) {
	bid, okBid := m.BestBid()
	ask, okAsk := m.BestAsk()
	if !okBid || !okAsk {
		return 0, false
	}
	return ask - bid, true
}

// RecentTrades returns the last n entries of the tape, oldest first. A
// non-positive n yields an empty tail. The returned slice aliases the tape
// and must not be mutated.
func (m *Market) RecentTrades(n int) []Trade {
	if n <= 0 {
		return nil
	}
	if n >= len(m.TradeHistory) {
		return m.TradeHistory
	}
	return m.TradeHistory[len(m.TradeHistory)-n:]
}

func (m *Market) allocateID() int64 {
	id := m.NextOrderID
	m.NextOrderID++
	return id
}

func (m *Market) logMsg(kind MsgKind, detail string) {
	m.MsgHistory = append(m.MsgHistory, Message{
		Time:   m.LastSubmissionTime,
		Kind:   kind,
		Detail: detail,
	})
}

func sign(v int64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
