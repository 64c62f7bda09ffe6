package game

import (
	"fmt"
	"sort"
)

// Advance runs automatic transitions until the machine needs external
// input (TakeAction with a live actor), parks in the Lobby, or a fatal
// invariant breach is detected. It is safe to call after any mutation.
func (s *PokerState) Advance() error {
	for {
		switch s.Phase {
		case PhaseLobby:
			if !s.shouldStart() {
				return nil
			}
			s.Phase = PhaseSeatPlayers

		case PhaseSeatPlayers:
			s.seatPlayers()
			s.Phase = PhaseMoveButton

		case PhaseMoveButton:
			if s.playableCount() < 2 {
				s.toLobby()
				return nil
			}
			s.beginHand()
			s.Phase = PhaseCollectBlinds

		case PhaseCollectBlinds:
			s.collectBlinds()
			s.Phase = PhaseDeal

		case PhaseDeal:
			s.dealHoleCards()
			s.Phase = PhaseTakeAction

		case PhaseTakeAction:
			if s.inHandCount() <= 1 {
				s.Actor = -1
				s.Phase = PhaseShowHands
				continue
			}
			if !s.roundClosed() {
				return nil
			}
			s.Actor = -1
			switch s.Street {
			case StreetPreFlop:
				s.Phase = PhaseFlop
			case StreetFlop:
				s.Phase = PhaseTurn
			case StreetTurn:
				s.Phase = PhaseRiver
			case StreetRiver:
				s.Phase = PhaseShowHands
			}

		case PhaseFlop:
			s.dealCommunity(3)
			s.beginRound(StreetFlop)
			s.Phase = PhaseTakeAction

		case PhaseTurn:
			s.dealCommunity(1)
			s.beginRound(StreetTurn)
			s.Phase = PhaseTakeAction

		case PhaseRiver:
			s.dealCommunity(1)
			s.beginRound(StreetRiver)
			s.Phase = PhaseTakeAction

		case PhaseShowHands:
			s.showHands()
			s.Phase = PhaseDistributePot

		case PhaseDistributePot:
			if err := s.distributePots(); err != nil {
				return err
			}
			s.Phase = PhaseRemovePlayers

		case PhaseRemovePlayers:
			s.removeLeavers()
			s.Phase = PhaseUpdateBlinds

		case PhaseUpdateBlinds:
			s.applyBlindChanges()
			s.Phase = PhaseBootPlayers

		case PhaseBootPlayers:
			s.bootShortStacks()
			s.Phase = PhaseSeatPlayers

		default:
			return fmt.Errorf("%w: unknown phase %q", ErrWrongPhase, s.Phase)
		}
	}
}

// ApplyAction validates and applies one betting action for the given user.
// Rejections leave state unchanged; callers run Advance afterwards to move
// through whatever automatic transitions the action unlocked.
func (s *PokerState) ApplyAction(userID string, a Action) error {
	if s.Phase != PhaseTakeAction || s.Actor < 0 {
		return ErrWrongPhase
	}
	p := s.playerByID(userID)
	if p == nil {
		return ErrNotSeated
	}
	if p.Seat != s.Actor {
		return ErrNotYourTurn
	}
	ch := s.Choices()

	switch a.Type {
	case ActionFold:
		if !ch.CanFold {
			return ErrInvalidAction
		}
		p.Status = StatusFolded
	case ActionCheck:
		if !ch.CanCheck {
			return ErrInvalidAction
		}
	case ActionCall:
		if !ch.CanCall {
			return ErrInvalidAction
		}
		s.commit(p, ch.CallAmount)
	case ActionBet, ActionRaise:
		if !ch.CanRaise {
			return ErrInvalidAction
		}
		if a.Amount < ch.MinRaiseTo || a.Amount > ch.MaxRaiseTo {
			return ErrBetOutOfRange
		}
		if a.Amount >= s.CurrentBet+s.LastRaise {
			// A full raise reopens the action for everyone else.
			s.LastRaise = a.Amount - s.CurrentBet
			if s.CurrentBet == 0 {
				s.LastRaise = a.Amount
			}
			for _, o := range s.Seats {
				if o != nil && o != p && o.Status == StatusActive {
					o.Acted = false
				}
			}
		}
		s.commit(p, a.Amount-p.RoundBet)
		if a.Amount > s.CurrentBet {
			s.CurrentBet = a.Amount
			s.LastAggressor = p.Seat
		}
	default:
		return ErrInvalidAction
	}

	p.Acted = true
	p.LastAction = a.Type
	if s.roundClosed() {
		s.Actor = -1
	} else {
		s.advanceActor(p.Seat)
	}
	return nil
}

func (s *PokerState) shouldStart() bool {
	candidates := s.playableCount() + len(s.Waitlist)
	if candidates < 2 {
		return false
	}
	if s.startRequested {
		return true
	}
	return s.Settings.AutoStart > 0 && candidates >= s.Settings.AutoStart
}

func (s *PokerState) toLobby() {
	s.Phase = PhaseLobby
	s.startRequested = false
	s.Actor = -1
}

// seatPlayers assigns waitlisted players to open seats. Arrivals beyond
// capacity stay on the waitlist.
func (s *PokerState) seatPlayers() {
	for seat := 0; seat < len(s.Seats) && len(s.Waitlist) > 0; seat++ {
		if s.Seats[seat] != nil {
			continue
		}
		p := s.Waitlist[0]
		s.Waitlist = s.Waitlist[1:]
		p.Seat = seat
		p.Status = StatusActive
		s.Seats[seat] = p
	}
}

// beginHand advances the button, resets per-hand player state and records
// the conservation baseline for the new hand.
func (s *PokerState) beginHand() {
	s.HandNo++
	s.HandID = fmt.Sprintf("%s-h%06d", s.TableID, s.HandNo)
	s.Community = nil
	s.CurrentBet = 0
	s.LastRaise = s.Settings.BigBlind
	s.LastAggressor = -1
	s.showdownRanks = nil
	s.Street = StreetPreFlop

	s.handStartChips = 0
	for _, p := range s.Seats {
		if p == nil {
			continue
		}
		if p.Stack > 0 && p.Status != StatusSittingOut {
			p.resetForHand()
		}
		s.handStartChips += p.Stack
	}
	s.Button = s.nextSeat(s.Button, func(p *Player) bool { return p.Status == StatusActive })
}

// collectBlinds deducts the blinds into the pot. A short stack posts all-in
// for whatever remains, which is what later forces a side pot. Heads-up the
// button posts the small blind.
func (s *PokerState) collectBlinds() {
	active := func(p *Player) bool { return p.Status == StatusActive }
	if s.playableCount() == 2 {
		s.sbSeat = s.Button
	} else {
		s.sbSeat = s.nextSeat(s.Button, active)
	}
	s.bbSeat = s.nextSeat(s.sbSeat, active)
	s.postBlind(s.sbSeat, s.Settings.SmallBlind)
	s.postBlind(s.bbSeat, s.Settings.BigBlind)
	s.CurrentBet = s.Settings.BigBlind
	s.LastRaise = s.Settings.BigBlind
	s.LastAggressor = -1
}

func (s *PokerState) postBlind(seat int, amount int64) {
	if seat < 0 {
		return
	}
	s.commit(s.Seats[seat], amount)
}

// commit moves chips from a player's stack into their committed totals,
// capping at the stack and flagging the all-in.
func (s *PokerState) commit(p *Player, amount int64) {
	if amount >= p.Stack {
		amount = p.Stack
		p.Status = StatusAllIn
	}
	p.Stack -= amount
	p.RoundBet += amount
	p.TotalContrib += amount
}

// dealHoleCards shuffles a fresh deck and gives two cards to every player
// dealt into the hand. Preflop action starts left of the big blind.
func (s *PokerState) dealHoleCards() {
	s.deck = NewDeck(s.rnd)
	for round := 0; round < 2; round++ {
		seat := s.Button
		for i := 0; i < len(s.Seats); i++ {
			seat = s.nextSeat(seat, (*Player).InHand)
			if seat < 0 {
				break
			}
			p := s.Seats[seat]
			if len(p.Hole) == round {
				p.Hole = append(p.Hole, s.deck.Deal())
			}
		}
	}
	s.Street = StreetPreFlop
	s.Actor = s.nextSeat(s.bbSeat, (*Player).CanAct)
}

func (s *PokerState) dealCommunity(n int) {
	for i := 0; i < n; i++ {
		s.Community = append(s.Community, s.deck.Deal())
	}
}

// beginRound resets the betting state for a post-flop street. First to act
// is the first live player left of the button.
func (s *PokerState) beginRound(street Street) {
	s.Street = street
	s.CurrentBet = 0
	s.LastRaise = s.Settings.BigBlind
	s.LastAggressor = -1
	for _, p := range s.Seats {
		if p == nil {
			continue
		}
		p.RoundBet = 0
		p.Acted = false
	}
	s.Actor = s.nextSeat(s.Button, (*Player).CanAct)
}

// roundClosed reports whether the betting round is settled: nobody owes
// chips, and everyone who could still bet has had their say (or there is
// nobody left to bet against).
func (s *PokerState) roundClosed() bool {
	actors := 0
	notActed := 0
	for _, p := range s.Seats {
		if p == nil || !p.CanAct() {
			continue
		}
		if p.RoundBet < s.CurrentBet {
			return false
		}
		actors++
		if !p.Acted {
			notActed++
		}
	}
	if notActed == 0 {
		return true
	}
	return actors <= 1
}

// advanceActor moves the turn to the next player still owed an action.
func (s *PokerState) advanceActor(from int) {
	s.Actor = s.nextSeat(from, func(p *Player) bool {
		return p.CanAct() && (!p.Acted || p.RoundBet < s.CurrentBet)
	})
}

// showHands determines the ranked showdown order. Contested showdowns
// reveal every live hand; an uncontested pot is taken down face down.
func (s *PokerState) showHands() {
	contenders := make([]*Player, 0, len(s.Seats))
	for _, p := range s.Seats {
		if p != nil && p.InHand() {
			contenders = append(contenders, p)
		}
	}
	if len(contenders) < 2 || len(s.Community) < 5 {
		return
	}
	s.showdownRanks = make(map[int]HandRank, len(contenders))
	for _, p := range contenders {
		p.Revealed = true
		s.showdownRanks[p.Seat] = BestHand(p.Hole, s.Community)
	}
}

// distributePots awards every pot to the best eligible hand, splitting ties
// as evenly as integer chips allow with remainders going to the earliest
// seat clockwise from the button. A slice nobody can win (every eligible
// player folded out) is refunded to each contributor exactly what they paid
// into it. Ends with the conservation check.
func (s *PokerState) distributePots() error {
	pots := BuildPots(s.Seats)
	awards := make([]PotAward, 0, len(pots))
	for i, pot := range pots {
		winners := s.potWinners(pot)
		if len(winners) == 0 {
			awards = append(awards, s.refundPot(pot))
			continue
		}
		reason := "main_pot"
		switch {
		case i > 0:
			reason = fmt.Sprintf("side_pot_%d", i)
		case s.showdownRanks == nil:
			reason = "uncontested"
		}
		share := pot.Amount / int64(len(winners))
		odd := pot.Amount % int64(len(winners))
		for _, seat := range winners {
			s.Seats[seat].Stack += share
		}
		for _, seat := range orderForOddChip(s.Button, winners) {
			if odd == 0 {
				break
			}
			s.Seats[seat].Stack++
			odd--
		}
		awards = append(awards, s.awardFor(pot.Amount, winners, reason))
	}

	board := make([]string, 0, len(s.Community))
	for _, c := range s.Community {
		board = append(board, c.String())
	}
	result := &HandResult{
		TableID: s.TableID,
		HandID:  s.HandID,
		HandNo:  s.HandNo,
		Street:  s.Street,
		Board:   board,
		Awards:  awards,
	}
	if s.showdownRanks != nil {
		result.Showdown = s.showdownOrder()
	}
	s.LastResult = result
	s.pendingResults = append(s.pendingResults, result)

	var total int64
	for _, p := range s.Seats {
		if p != nil {
			p.TotalContrib = 0
			p.RoundBet = 0
			total += p.Stack
		}
	}
	if total != s.handStartChips {
		return fmt.Errorf("%w: stacks %d, hand started with %d", ErrConservation, total, s.handStartChips)
	}
	return nil
}

// potWinners returns the eligible seats holding the best hand for one pot.
// With no showdown the single live player wins outright.
func (s *PokerState) potWinners(pot SidePot) []int {
	if s.showdownRanks == nil {
		winners := make([]int, 0, 1)
		for _, seat := range pot.Eligible {
			if s.Seats[seat] != nil && s.Seats[seat].InHand() {
				winners = append(winners, seat)
			}
		}
		return winners
	}
	var winners []int
	var best HandRank
	for _, seat := range pot.Eligible {
		rank, ok := s.showdownRanks[seat]
		if !ok {
			continue
		}
		if len(winners) == 0 || rank.Compare(best) > 0 {
			winners = []int{seat}
			best = rank
			continue
		}
		if rank.Compare(best) == 0 {
			winners = append(winners, seat)
		}
	}
	return winners
}

// refundPot hands a dead slice back, pro rata per contributor.
func (s *PokerState) refundPot(pot SidePot) PotAward {
	seats := make([]int, 0, len(pot.paid))
	for seat := range pot.paid {
		seats = append(seats, seat)
	}
	sort.Ints(seats)
	for _, seat := range seats {
		s.Seats[seat].Stack += pot.paid[seat]
	}
	return s.awardFor(pot.Amount, seats, "returned")
}

func (s *PokerState) awardFor(amount int64, seats []int, reason string) PotAward {
	ids := make([]string, 0, len(seats))
	for _, seat := range seats {
		ids = append(ids, s.Seats[seat].UserID)
	}
	return PotAward{Amount: amount, Seats: seats, UserIDs: ids, Reason: reason}
}

func (s *PokerState) showdownOrder() []ShowdownEntry {
	entries := make([]ShowdownEntry, 0, len(s.showdownRanks))
	for seat, rank := range s.showdownRanks {
		p := s.Seats[seat]
		if p == nil {
			continue
		}
		hole := make([]string, 0, len(p.Hole))
		for _, c := range p.Hole {
			hole = append(hole, c.String())
		}
		entries = append(entries, ShowdownEntry{Seat: seat, UserID: p.UserID, Hole: hole, Rank: rank})
	}
	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].Rank.Compare(entries[j].Rank); c != 0 {
			return c > 0
		}
		return entries[i].Seat < entries[j].Seat
	})
	return entries
}

// removeLeavers clears seats whose players left or disconnected during the
// hand and queues their remaining chips for escrow release.
func (s *PokerState) removeLeavers() {
	for seat, p := range s.Seats {
		if p == nil || !p.Leaving {
			continue
		}
		if p.Stack > 0 {
			s.pendingReleases = append(s.pendingReleases, EscrowRelease{UserID: p.UserID, Amount: p.Stack})
		}
		s.Seats[seat] = nil
	}
}

// applyBlindChanges applies a queued manual blind change, then the blind
// schedule for tournament tables.
func (s *PokerState) applyBlindChanges() {
	if s.pendingBlinds != nil {
		s.Settings.SmallBlind = s.pendingBlinds.SmallBlind
		s.Settings.BigBlind = s.pendingBlinds.BigBlind
		s.pendingBlinds = nil
	}
	for _, level := range s.Settings.BlindSchedule {
		if s.HandNo >= level.AfterHands {
			s.Settings.SmallBlind = level.SmallBlind
			s.Settings.BigBlind = level.BigBlind
		}
	}
}

// bootShortStacks removes players who can no longer post the big blind.
func (s *PokerState) bootShortStacks() {
	for seat, p := range s.Seats {
		if p == nil || p.Stack >= s.Settings.BigBlind {
			continue
		}
		if p.Stack > 0 {
			s.pendingReleases = append(s.pendingReleases, EscrowRelease{UserID: p.UserID, Amount: p.Stack})
		}
		s.Seats[seat] = nil
	}
}
