// Package traders provides simulated trading agents that act against an
// engine.Market: market makers quoting both sides, informed traders with an
// opinion on the future price, and noise traders supplying random flow.
// Agents consume only the engine's public surface; all book and position
// bookkeeping stays inside the engine.
package traders

import (
	"microstruct/engine"
)

// Trader is the shared core every agent embeds: the market it acts on, its
// registry entry and its running fair-price estimate.
type Trader struct {
	Market       *engine.Market
	Participant  *engine.Participant
	FairPrice    float64
	MaxInventory int64
}

// Core exposes the embedded Trader; it lets helpers operate on any agent
// type.
func (t *Trader) Core() *Trader { return t }

// Position is the trader's current signed position.
func (t *Trader) Position() int64 { return t.Participant.Position }

// ExcludeFromResults drops this trader from performance reports; useful for
// background liquidity that would otherwise drown the interesting rows.
func (t *Trader) ExcludeFromResults() {
	t.Participant.IncludeInResults = false
}

// CancelAllOrders cancels every open order this trader has in the book.
func (t *Trader) CancelAllOrders() error {
	return t.Market.CancelAllOrders(t.Participant.TraderID)
}

// CancelOrders cancels this trader's open orders on one side (+1 bids, -1
// asks).
func (t *Trader) CancelOrders(side int) error {
	return t.Market.CancelOrders(t.Participant.TraderID, side)
}
