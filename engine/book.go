package engine

import "sort"

// sortSide restores price-time priority on one side of the book: bids by
// descending price, asks by ascending price, ties by earlier timestamp. The
// sort is stable so orders sharing a batch timestamp keep their submission
// sequence.
func sortSide(side []*Order, isBid bool) {
	sort.SliceStable(side, func(i, j int) bool {
		a, b := side[i], side[j]
		if a.Price != b.Price {
			if isBid {
				return a.Price > b.Price
			}
			return a.Price < b.Price
		}
		return a.Time < b.Time
	})
}

// dropClosed removes every order no longer eligible to rest, preserving the
// remaining order of the side.
func dropClosed(side []*Order) []*Order {
	kept := side[:0]
	for _, o := range side {
		if o.Open() {
			kept = append(kept, o)
		}
	}
	return kept
}

// aggregateLevels sums resting volume by exact price and returns the levels
// sorted best-first for the given side.
func aggregateLevels(side []*Order, isBid bool) []PriceLevel {
	if len(side) == 0 {
		return nil
	}
	volumes := make(map[float64]int64, len(side))
	for _, o := range side {
		volumes[o.Price] += o.Volume
	}
	levels := make([]PriceLevel, 0, len(volumes))
	for price, volume := range volumes {
		levels = append(levels, PriceLevel{Price: price, Volume: volume})
	}
	sort.Slice(levels, func(i, j int) bool {
		if isBid {
			return levels[i].Price > levels[j].Price
		}
		return levels[i].Price < levels[j].Price
	})
	return levels
}
