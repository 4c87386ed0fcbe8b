package engine

import (
	"errors"
	"fmt"
)

// ErrUnknownTrader is returned when a submission or lookup references a
// trader id that was never registered.
var ErrUnknownTrader = errors.New("no trader found")

// Agent is the decision callback attached to a participant. The simulation
// loop calls Update once per tick, synchronously; a returned error halts the
// run.
type Agent interface {
	Update() error
}

// Participant is the market-side state of one trader: identity, running
// position and the orders and fills booked against it. Position is mutated
// only by trade execution, never by strategy code.
type Participant struct {
	TraderID         int
	Name             string
	Position         int64
	Orders           []*Order
	InactiveOrders   []*Order
	Fills            []Fill
	IncludeInResults bool

	agent Agent
}

// Register appends a new participant to the market. The trader id is the
// participant's index in registration order; ids are never reused or
// reassigned. The agent may be nil for passive participants driven directly
// through Submit.
func (m *Market) Register(agent Agent, name string) *Participant {
	p := &Participant{
		TraderID:         len(m.Participants),
		Name:             name,
		IncludeInResults: true,
		agent:            agent,
	}
	m.Participants = append(m.Participants, p)
	return p
}

// Participant looks up a registered trader by id. The registry is shuffled
// during simulation, so the lookup scans rather than indexes.
func (m *Market) Participant(traderID int) (*Participant, error) {
	for _, p := range m.Participants {
		if p.TraderID == traderID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w with ID %d", ErrUnknownTrader, traderID)
}
