package engine

// EventKind labels entries of the observer feed.
type EventKind int

const (
	EventOrderAccepted EventKind = iota
	EventOrderRejected
	EventOrderCanceled
	EventTrade
	EventSnapshot
)

// Event is one entry of the observer feed. Exactly one of Trade, Snapshot
// and Order is set, depending on Kind; Mid accompanies snapshot events.
// Every payload is a copy taken at publish time, so consumers on other
// goroutines never observe the engine mutating an order after its event.
type Event struct {
	Kind     EventKind
	Trade    *Trade
	Snapshot *BookSnapshot
	Order    *Order
	Mid      *MidPoint
}

// Events returns the observer feed. The channel is created on first call;
// publishes never block the engine, so a slow consumer drops events rather
// than stalling the simulation. Intended for read-only observers such as the
// market-data server, not for correctness-critical consumers: the
// authoritative record is the market's append-only histories.
func (m *Market) Events() <-chan Event {
	if m.events == nil {
		m.events = make(chan Event, m.eventBuffer)
	}
	return m.events
}

// CloseEvents closes the observer feed once the simulation is done.
func (m *Market) CloseEvents() {
	if m.events != nil {
		close(m.events)
		m.events = nil
	}
}

// publishOrder detaches the order from the book before publishing. The
// engine keeps rewriting Status and Filled on the live order during the
// matching pass, so the feed must never alias it.
func (m *Market) publishOrder(kind EventKind, o *Order) {
	frozen := *o
	m.publish(Event{Kind: kind, Order: &frozen})
}

func (m *Market) publish(ev Event) {
	if m.events == nil {
		return
	}
	select {
	case m.events <- ev:
	default:
	}
}
