package game

import (
	"sort"
)

// Hand categories, strongest last.
const (
	CategoryHighCard = iota
	CategoryPair
	CategoryTwoPair
	CategoryTrips
	CategoryStraight
	CategoryFlush
	CategoryFullHouse
	CategoryQuads
	CategoryStraightFlush
)

// HandRank orders hands by category first, then by the category-specific
// tiebreak ranks in descending significance.
type HandRank struct {
	Category int
	Ranks    []int
}

// Compare returns >0 when h beats o, <0 when o beats h and 0 on an exact tie.
func (h HandRank) Compare(o HandRank) int {
	if h.Category != o.Category {
		return h.Category - o.Category
	}
	for i := 0; i < len(h.Ranks) && i < len(o.Ranks); i++ {
		if h.Ranks[i] != o.Ranks[i] {
			return h.Ranks[i] - o.Ranks[i]
		}
	}
	return 0
}

func (h HandRank) BetterThan(o HandRank) bool {
	return h.Compare(o) > 0
}

// Evaluate7 returns the best 5-card rank among all 21 subsets of 7 cards.
func Evaluate7(cards []Card) HandRank {
	best := HandRank{Category: -1}
	for a := 0; a < 7; a++ {
		for b := a + 1; b < 7; b++ {
			for c := b + 1; c < 7; c++ {
				for d := c + 1; d < 7; d++ {
					for e := d + 1; e < 7; e++ {
						h := eval5(cards[a], cards[b], cards[c], cards[d], cards[e])
						if h.BetterThan(best) {
							best = h
						}
					}
				}
			}
		}
	}
	return best
}

// BestHand ranks two hole cards against five community cards.
func BestHand(hole []Card, community []Card) HandRank {
	cards := make([]Card, 0, 7)
	cards = append(cards, hole...)
	cards = append(cards, community...)
	return Evaluate7(cards)
}

func eval5(c1, c2, c3, c4, c5 Card) HandRank {
	cards := []Card{c1, c2, c3, c4, c5}
	counts := map[int]int{}
	suits := map[Suit]int{}
	ranks := make([]int, 0, 5)
	for _, c := range cards {
		r := int(c.Rank)
		counts[r]++
		suits[c.Suit]++
		ranks = append(ranks, r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))
	isFlush := false
	for _, v := range suits {
		if v == 5 {
			isFlush = true
			break
		}
	}
	isStraight, highStraight := straightHigh(ranks)
	if isFlush && isStraight {
		return HandRank{Category: CategoryStraightFlush, Ranks: []int{highStraight}}
	}

	type rankCount struct {
		rank  int
		count int
	}
	groups := make([]rankCount, 0, len(counts))
	for r, c := range counts {
		groups = append(groups, rankCount{rank: r, count: c})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	switch {
	case groups[0].count == 4:
		kicker := highestExcluding(ranks, groups[0].rank)
		return HandRank{Category: CategoryQuads, Ranks: []int{groups[0].rank, kicker}}
	case groups[0].count == 3 && groups[1].count == 2:
		return HandRank{Category: CategoryFullHouse, Ranks: []int{groups[0].rank, groups[1].rank}}
	case isFlush:
		return HandRank{Category: CategoryFlush, Ranks: ranks}
	case isStraight:
		return HandRank{Category: CategoryStraight, Ranks: []int{highStraight}}
	case groups[0].count == 3:
		kickers := topKickers(ranks, []int{groups[0].rank}, 2)
		return HandRank{Category: CategoryTrips, Ranks: append([]int{groups[0].rank}, kickers...)}
	case groups[0].count == 2 && groups[1].count == 2:
		kicker := highestExcluding(ranks, groups[0].rank, groups[1].rank)
		return HandRank{Category: CategoryTwoPair, Ranks: []int{groups[0].rank, groups[1].rank, kicker}}
	case groups[0].count == 2:
		kickers := topKickers(ranks, []int{groups[0].rank}, 3)
		return HandRank{Category: CategoryPair, Ranks: append([]int{groups[0].rank}, kickers...)}
	default:
		return HandRank{Category: CategoryHighCard, Ranks: ranks}
	}
}

func straightHigh(ranks []int) (bool, int) {
	unique := uniqueRanks(ranks)
	sort.Sort(sort.Reverse(sort.IntSlice(unique)))
	if len(unique) < 5 {
		return false, 0
	}
	for i := 0; i <= len(unique)-5; i++ {
		if unique[i]-unique[i+4] == 4 {
			return true, unique[i]
		}
	}
	// Wheel A-5
	if containsRank(unique, 14) && containsRank(unique, 5) && containsRank(unique, 4) && containsRank(unique, 3) && containsRank(unique, 2) {
		return true, 5
	}
	return false, 0
}

func uniqueRanks(ranks []int) []int {
	m := map[int]bool{}
	out := make([]int, 0, len(ranks))
	for _, r := range ranks {
		if !m[r] {
			m[r] = true
			out = append(out, r)
		}
	}
	return out
}

func containsRank(arr []int, v int) bool {
	for _, x := range arr {
		if x == v {
			return true
		}
	}
	return false
}

func highestExcluding(ranks []int, exclude ...int) int {
	for _, r := range ranks {
		ok := true
		for _, e := range exclude {
			if r == e {
				ok = false
			}
		}
		if ok {
			return r
		}
	}
	return 0
}

func topKickers(ranks []int, exclude []int, n int) []int {
	out := []int{}
	for _, r := range ranks {
		skip := false
		for _, e := range exclude {
			if r == e {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		out = append(out, r)
		if len(out) == n {
			break
		}
	}
	return out
}
