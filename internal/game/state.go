package game

import (
	"math/rand"
)

// Phase is the FSM tag. Transitions fire automatically inside Advance
// except for TakeAction, which waits on external input, and Lobby, which
// waits for a start signal.
type Phase string

const (
	PhaseLobby         Phase = "lobby"
	PhaseSeatPlayers   Phase = "seat_players"
	PhaseMoveButton    Phase = "move_button"
	PhaseCollectBlinds Phase = "collect_blinds"
	PhaseDeal          Phase = "deal"
	PhaseTakeAction    Phase = "take_action"
	PhaseFlop          Phase = "flop"
	PhaseTurn          Phase = "turn"
	PhaseRiver         Phase = "river"
	PhaseShowHands     Phase = "show_hands"
	PhaseDistributePot Phase = "distribute_pot"
	PhaseRemovePlayers Phase = "remove_players"
	PhaseUpdateBlinds  Phase = "update_blinds"
	PhaseBootPlayers   Phase = "boot_players"
)

type Street string

const (
	StreetPreFlop Street = "preflop"
	StreetFlop    Street = "flop"
	StreetTurn    Street = "turn"
	StreetRiver   Street = "river"
)

// PokerState is the aggregate for one table: phase tag, entities and
// settings. Exactly one live instance exists per table, owned exclusively
// by that table's actor and never shared by reference.
type PokerState struct {
	TableID  string
	HandID   string
	HandNo   uint64
	Phase    Phase
	Street   Street
	Settings GameSettings

	Seats     []*Player
	Waitlist  []*Player
	Button    int
	Community []Card

	CurrentBet    int64
	LastRaise     int64
	Actor         int
	LastAggressor int

	LastResult *HandResult

	deck            *Deck
	rnd             *rand.Rand
	startRequested  bool
	sbSeat, bbSeat  int
	handStartChips  int64
	showdownRanks   map[int]HandRank
	pendingBlinds   *BlindLevel
	pendingReleases []EscrowRelease
	pendingResults  []*HandResult
}

// EscrowRelease instructs the actor to return chips to a departed player's
// wallet. Drained after every Advance call.
type EscrowRelease struct {
	UserID string
	Amount int64
}

// ShowdownEntry is one revealed hand, best first in HandResult.Showdown.
type ShowdownEntry struct {
	Seat   int      `json:"seat"`
	UserID string   `json:"user_id"`
	Hole   []string `json:"hole_cards"`
	Rank   HandRank `json:"rank"`
}

// PotAward records one pot's payout at the end of a hand.
type PotAward struct {
	Amount  int64    `json:"amount"`
	Seats   []int    `json:"seats"`
	UserIDs []string `json:"user_ids"`
	Reason  string   `json:"reason"`
}

// HandResult is the completed-hand summary handed to observers and the
// persistence sink.
type HandResult struct {
	TableID  string          `json:"table_id"`
	HandID   string          `json:"hand_id"`
	HandNo   uint64          `json:"hand_no"`
	Street   Street          `json:"street"`
	Board    []string        `json:"board"`
	Awards   []PotAward      `json:"awards"`
	Showdown []ShowdownEntry `json:"showdown,omitempty"`
}

func NewPokerState(tableID string, settings GameSettings, rnd *rand.Rand) *PokerState {
	if settings.MaxSeats <= 0 {
		settings.MaxSeats = DefaultSettings().MaxSeats
	}
	return &PokerState{
		TableID:       tableID,
		Phase:         PhaseLobby,
		Settings:      settings,
		Seats:         make([]*Player, settings.MaxSeats),
		Button:        -1,
		Actor:         -1,
		LastAggressor: -1,
		sbSeat:        -1,
		bbSeat:        -1,
		rnd:           rnd,
	}
}

// AddPlayer places a buy-in on the waitlist. Seating happens at the next
// SeatPlayers transition; the chips are already escrowed by the caller.
func (s *PokerState) AddPlayer(userID string, buyIn int64) error {
	if buyIn < s.Settings.MinBuyIn {
		return ErrBuyInTooSmall
	}
	if s.playerByID(userID) != nil {
		return ErrAlreadySeated
	}
	for _, w := range s.Waitlist {
		if w.UserID == userID {
			return ErrAlreadySeated
		}
	}
	s.Waitlist = append(s.Waitlist, &Player{
		UserID: userID,
		Seat:   -1,
		Stack:  buyIn,
		Status: StatusWaiting,
	})
	return nil
}

// RequestStart sets the explicit start signal consumed by the Lobby phase.
func (s *PokerState) RequestStart() {
	s.startRequested = true
}

// SetBlinds queues a blind change applied at the next UpdateBlinds phase,
// or immediately when no hand is live.
func (s *PokerState) SetBlinds(smallBlind, bigBlind int64) {
	level := &BlindLevel{SmallBlind: smallBlind, BigBlind: bigBlind}
	if s.Phase == PhaseLobby {
		s.Settings.SmallBlind = smallBlind
		s.Settings.BigBlind = bigBlind
		return
	}
	s.pendingBlinds = level
}

// MarkLeaving removes the player at the next safe point. Players outside a
// live hand are removed immediately; players in a hand are folded (all-ins
// stay live) and removed at the RemovePlayers phase. The returned releases
// carry chips the caller must hand back through the wallet.
func (s *PokerState) MarkLeaving(userID string) ([]EscrowRelease, error) {
	for i, w := range s.Waitlist {
		if w.UserID == userID {
			s.Waitlist = append(s.Waitlist[:i], s.Waitlist[i+1:]...)
			return []EscrowRelease{{UserID: userID, Amount: w.Stack}}, nil
		}
	}
	p := s.playerByID(userID)
	if p == nil {
		return nil, ErrNotSeated
	}
	if s.Phase == PhaseLobby {
		s.Seats[p.Seat] = nil
		return []EscrowRelease{{UserID: userID, Amount: p.Stack}}, nil
	}
	p.Leaving = true
	if p.Status == StatusActive {
		p.Status = StatusFolded
		if s.Actor == p.Seat {
			p.Acted = true
			s.advanceActor(p.Seat)
		}
	}
	return nil, nil
}

// DrainReleases hands back the escrow releases produced by the last
// transition batch.
func (s *PokerState) DrainReleases() []EscrowRelease {
	out := s.pendingReleases
	s.pendingReleases = nil
	return out
}

// DrainResults hands back every hand completed since the last drain. One
// Advance call can finish a hand and deal the next, so results queue up
// rather than living only in LastResult.
func (s *PokerState) DrainResults() []*HandResult {
	out := s.pendingResults
	s.pendingResults = nil
	return out
}

func (s *PokerState) playerByID(userID string) *Player {
	for _, p := range s.Seats {
		if p != nil && p.UserID == userID {
			return p
		}
	}
	return nil
}

// PotTotal is the number of chips committed to the current hand and not
// yet distributed.
func (s *PokerState) PotTotal() int64 {
	var total int64
	for _, p := range s.Seats {
		if p != nil {
			total += p.TotalContrib
		}
	}
	return total
}

// EscrowTotal is every chip the table currently holds: stacks, pot and
// waitlisted buy-ins. Used by the actor at shutdown to release everything.
func (s *PokerState) EscrowTotal() int64 {
	total := s.PotTotal()
	for _, p := range s.Seats {
		if p != nil {
			total += p.Stack
		}
	}
	for _, w := range s.Waitlist {
		total += w.Stack
	}
	return total
}

func (s *PokerState) playableCount() int {
	n := 0
	for _, p := range s.Seats {
		if p != nil && p.Stack > 0 && p.Status != StatusSittingOut {
			n++
		}
	}
	return n
}

func (s *PokerState) inHandCount() int {
	n := 0
	for _, p := range s.Seats {
		if p != nil && p.InHand() {
			n++
		}
	}
	return n
}

// nextSeat walks clockwise from seat `from`, returning the first seat whose
// player satisfies the filter, or -1.
func (s *PokerState) nextSeat(from int, filter func(*Player) bool) int {
	n := len(s.Seats)
	for i := 1; i <= n; i++ {
		seat := ((from+i)%n + n) % n
		if p := s.Seats[seat]; p != nil && filter(p) {
			return seat
		}
	}
	return -1
}
