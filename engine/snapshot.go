package engine

// saveBookState appends one depth snapshot keyed to the current submission
// timestamp and extends the midprice series. The midprice rule: the
// top-of-book midpoint when both sides quote, zero on the very first tick,
// otherwise the previous value carried forward so every recorded time has a
// value.
func (m *Market) saveBookState() {
	snap := BookSnapshot{
		Bid:  aggregateLevels(m.Bids, true),
		Ask:  aggregateLevels(m.Asks, false),
		Time: m.LastSubmissionTime,
	}
	m.OBSnapshots = append(m.OBSnapshots, snap)

	var mid float64
	switch {
	case len(snap.Bid) > 0 && len(snap.Ask) > 0:
		mid = (snap.Bid[0].Price + snap.Ask[0].Price) / 2
	case m.CurrentTick == 0:
		mid = 0
	default:
		mid = m.Midprices[len(m.Midprices)-1].Price
	}
	point := MidPoint{Time: m.LastSubmissionTime, Price: mid}
	m.Midprices = append(m.Midprices, point)

	m.publish(Event{Kind: EventSnapshot, Snapshot: &snap, Mid: &point})
}
