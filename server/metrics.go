package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "microstruct",
		Name:      "orders_accepted_total",
		Help:      "Orders accepted into the book.",
	})
	ordersRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "microstruct",
		Name:      "orders_rejected_total",
		Help:      "Market orders rejected against an empty opposite side.",
	})
	ordersCanceled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "microstruct",
		Name:      "orders_canceled_total",
		Help:      "Orders canceled, including force-canceled market orders.",
	})
	tradesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "microstruct",
		Name:      "trades_total",
		Help:      "Executions on the tape.",
	})
	tradedVolume = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "microstruct",
		Name:      "traded_volume_total",
		Help:      "Total lots traded.",
	})
	bestBidGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "microstruct",
		Name:      "best_bid",
		Help:      "Best bid price, 0 when the side is empty.",
	})
	bestAskGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "microstruct",
		Name:      "best_ask",
		Help:      "Best ask price, 0 when the side is empty.",
	})
	midpriceGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "microstruct",
		Name:      "midprice",
		Help:      "Latest midprice series value.",
	})
	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "microstruct",
		Name:      "ws_clients",
		Help:      "Connected websocket stream clients.",
	})
)
