package game

import "sort"

// SidePot is one slice of the pot, partitioned by contribution level.
// Index 0 is the main pot. Eligible lists the seats still contesting the
// slice; folded contributors pay in but cannot win.
type SidePot struct {
	Amount   int64
	Eligible []int

	// paid records what each seat put into this slice, so a slice whose
	// eligible players all folded out can be refunded exactly.
	paid map[int]int64
}

// BuildPots partitions the committed chips of the current hand into a main
// pot and side pots. A side pot appears only when some player is all-in
// below the highest contribution level. Adjacent slices with identical
// eligibility are merged.
func BuildPots(players []*Player) []SidePot {
	levels := contributionLevels(players)
	if len(levels) == 0 {
		return nil
	}
	pots := make([]SidePot, 0, len(levels))
	prev := int64(0)
	for _, level := range levels {
		var amount int64
		eligible := make([]int, 0, len(players))
		paid := make(map[int]int64, len(players))
		for _, p := range players {
			if p == nil || p.TotalContrib < level {
				continue
			}
			amount += level - prev
			paid[p.Seat] += level - prev
			if p.InHand() {
				eligible = append(eligible, p.Seat)
			}
		}
		prev = level
		if amount == 0 {
			continue
		}
		sort.Ints(eligible)
		if n := len(pots); n > 0 && equalSeats(pots[n-1].Eligible, eligible) {
			pots[n-1].Amount += amount
			for seat, amt := range paid {
				pots[n-1].paid[seat] += amt
			}
			continue
		}
		pots = append(pots, SidePot{Amount: amount, Eligible: eligible, paid: paid})
	}
	return pots
}

func contributionLevels(players []*Player) []int64 {
	seen := map[int64]struct{}{}
	levels := make([]int64, 0, len(players))
	for _, p := range players {
		if p == nil || p.TotalContrib == 0 {
			continue
		}
		if _, ok := seen[p.TotalContrib]; ok {
			continue
		}
		seen[p.TotalContrib] = struct{}{}
		levels = append(levels, p.TotalContrib)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	return levels
}

func equalSeats(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// orderForOddChip returns the winner seats ordered clockwise starting from
// the first seat after the button; remainder chips go to the earliest.
func orderForOddChip(button int, seats []int) []int {
	ordered := append([]int(nil), seats...)
	sort.Ints(ordered)
	start := 0
	for i, seat := range ordered {
		if seat > button {
			start = i
			break
		}
		if i == len(ordered)-1 {
			start = 0
		}
	}
	out := make([]int, 0, len(ordered))
	for i := 0; i < len(ordered); i++ {
		out = append(out, ordered[(start+i)%len(ordered)])
	}
	return out
}
