// Package server exposes a running simulation over HTTP: REST endpoints for
// the book, tape and midprice series, Prometheus metrics and a websocket
// stream of engine events. The engine itself is single-owner, so the server
// never touches it; it builds its own read model from the event feed.
package server

import (
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"microstruct/engine"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Server is the HTTP face of one market. Populate it by running Consume on
// the market's event feed and mount Routes on a listener.
type Server struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader
	stream   *feed[streamMessage]

	mu        sync.RWMutex
	book      wireBook
	snapshots []wireBook
	midprices []engine.MidPoint
	trades    []wireTrade
}

type wireLevel struct {
	Price  float64 `json:"price"`
	Volume int64   `json:"volume"`
}

type wireBook struct {
	Time int64       `json:"time"`
	Bid  []wireLevel `json:"bid"`
	Ask  []wireLevel `json:"ask"`
}

type wireTrade struct {
	Time          int64   `json:"time"`
	Price         float64 `json:"price"`
	Volume        int64   `json:"volume"`
	AggressorSide int     `json:"aggressorSide"`
}

// wireOrder carries no price for market orders: their sentinel prices are
// infinite and have no JSON encoding.
type wireOrder struct {
	ID       int64    `json:"id"`
	TraderID int      `json:"traderId"`
	Type     string   `json:"type"`
	Volume   int64    `json:"volume"`
	Price    *float64 `json:"price,omitempty"`
	Status   string   `json:"status"`
	Time     int64    `json:"time"`
}

type streamMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// New builds an empty server. A nil logger disables logging.
func New(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger:   logger,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		stream:   newFeed[streamMessage](),
	}
}

// Consume drains the market's event feed into the server's read model and
// fans events out to websocket subscribers. It returns when the feed closes;
// run it on its own goroutine.
func (s *Server) Consume(events <-chan engine.Event) {
	s.logger.Info("event consumer started")
	for ev := range events {
		switch ev.Kind {
		case engine.EventOrderAccepted:
			ordersAccepted.Inc()
			s.stream.broadcast(streamMessage{Type: "order_accepted", Data: toWireOrder(ev.Order)})
		case engine.EventOrderRejected:
			ordersRejected.Inc()
			s.stream.broadcast(streamMessage{Type: "order_rejected", Data: toWireOrder(ev.Order)})
		case engine.EventOrderCanceled:
			ordersCanceled.Inc()
			s.stream.broadcast(streamMessage{Type: "order_canceled", Data: toWireOrder(ev.Order)})
		case engine.EventTrade:
			tradesTotal.Inc()
			tradedVolume.Add(float64(ev.Trade.Volume))
			trade := wireTrade{
				Time:          ev.Trade.Time,
				Price:         ev.Trade.Price,
				Volume:        ev.Trade.Volume,
				AggressorSide: ev.Trade.AggressorSide,
			}
			s.mu.Lock()
			s.trades = append(s.trades, trade)
			s.mu.Unlock()
			s.stream.broadcast(streamMessage{Type: "trade", Data: trade})
		case engine.EventSnapshot:
			book := toWireBook(*ev.Snapshot)
			s.mu.Lock()
			s.book = book
			s.snapshots = append(s.snapshots, book)
			s.midprices = append(s.midprices, *ev.Mid)
			s.mu.Unlock()
			updateBookGauges(book, ev.Mid.Price)
			s.stream.broadcast(streamMessage{Type: "book", Data: book})
		}
	}
	s.logger.Info("event consumer stopped")
}

func updateBookGauges(book wireBook, mid float64) {
	var bb, ba float64
	if len(book.Bid) > 0 {
		bb = book.Bid[0].Price
	}
	if len(book.Ask) > 0 {
		ba = book.Ask[0].Price
	}
	bestBidGauge.Set(bb)
	bestAskGauge.Set(ba)
	midpriceGauge.Set(mid)
}

// Routes returns the HTTP handler tree.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/book", s.handleBook).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/trades", s.handleTrades).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/snapshots", s.handleSnapshots).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/midprices", s.handleMidprices).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleStream)
	return r
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	book := s.book
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	n := 100
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "n must be a positive integer"})
			return
		}
		n = parsed
	}

	s.mu.RLock()
	trades := s.trades
	if len(trades) > n {
		trades = trades[len(trades)-n:]
	}
	out := make([]wireTrade, len(trades))
	copy(out, trades)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]wireBook, len(s.snapshots))
	copy(out, s.snapshots)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMidprices(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]engine.MidPoint, len(s.midprices))
	copy(out, s.midprices)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := s.stream.subscribe(64)
	defer s.stream.unsubscribe(ch)
	wsClients.Set(float64(s.stream.len()))
	defer func() { wsClients.Set(float64(s.stream.len() - 1)) }()
	s.logger.Debug("ws client connected", zap.String("remote", r.RemoteAddr))

	for msg := range ch {
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func toWireBook(snap engine.BookSnapshot) wireBook {
	book := wireBook{
		Time: snap.Time,
		Bid:  make([]wireLevel, len(snap.Bid)),
		Ask:  make([]wireLevel, len(snap.Ask)),
	}
	for i, level := range snap.Bid {
		book.Bid[i] = wireLevel{Price: level.Price, Volume: level.Volume}
	}
	for i, level := range snap.Ask {
		book.Ask[i] = wireLevel{Price: level.Price, Volume: level.Volume}
	}
	return book
}

func toWireOrder(order *engine.Order) wireOrder {
	out := wireOrder{
		ID:       order.ID,
		TraderID: order.TraderID,
		Type:     "limit",
		Volume:   order.Volume,
		Status:   string(order.Status),
		Time:     order.Time,
	}
	if order.Type == engine.TypeMarket {
		out.Type = "market"
	} else if !math.IsInf(order.Price, 0) {
		price := order.Price
		out.Price = &price
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = jsonAPI.NewEncoder(w).Encode(payload)
}
