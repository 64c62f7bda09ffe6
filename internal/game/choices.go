package game

type ActionType string

const (
	ActionFold  ActionType = "fold"
	ActionCheck ActionType = "check"
	ActionCall  ActionType = "call"
	ActionBet   ActionType = "bet"
	ActionRaise ActionType = "raise"
)

// Action is a player's betting decision. Amount is the raise-to total for
// the round (for an opening bet the two are the same number).
type Action struct {
	Type   ActionType
	Amount int64
}

// ActionChoices is the exact legal action set for the seat to act, computed
// fresh every time control enters the TakeAction phase.
type ActionChoices struct {
	Seat       int   `json:"seat"`
	CanFold    bool  `json:"can_fold"`
	CanCheck   bool  `json:"can_check"`
	CanCall    bool  `json:"can_call"`
	CallAmount int64 `json:"call_amount,omitempty"`
	CanRaise   bool  `json:"can_raise"`
	MinRaiseTo int64 `json:"min_raise_to,omitempty"`
	MaxRaiseTo int64 `json:"max_raise_to,omitempty"`
}

// Choices returns the legal action set for the current actor. Call amounts
// are capped at the player's stack; a raise below the full minimum is legal
// only as an all-in (MinRaiseTo collapses onto MaxRaiseTo).
func (s *PokerState) Choices() ActionChoices {
	ch := ActionChoices{Seat: s.Actor, CanFold: true}
	if s.Phase != PhaseTakeAction || s.Actor < 0 {
		ch.CanFold = false
		return ch
	}
	p := s.Seats[s.Actor]
	toCall := s.CurrentBet - p.RoundBet
	if toCall <= 0 {
		ch.CanCheck = true
	} else {
		ch.CanCall = true
		ch.CallAmount = toCall
		if ch.CallAmount > p.Stack {
			ch.CallAmount = p.Stack
		}
	}
	if p.Stack > toCall && s.raiseOpenFor(p) {
		minTo := s.CurrentBet + s.LastRaise
		if s.CurrentBet == 0 {
			minTo = s.Settings.BigBlind
		}
		maxTo := p.RoundBet + p.Stack
		if minTo > maxTo {
			minTo = maxTo
		}
		ch.CanRaise = true
		ch.MinRaiseTo = minTo
		ch.MaxRaiseTo = maxTo
	}
	return ch
}

// raiseOpenFor reports whether betting is still open against at least one
// opponent who could respond. Raising with only all-in opponents left is
// pointless and therefore not offered.
func (s *PokerState) raiseOpenFor(p *Player) bool {
	for _, o := range s.Seats {
		if o == nil || o == p {
			continue
		}
		if o.CanAct() {
			return true
		}
	}
	return false
}

// DefaultAction is the action applied on behalf of a player who times out:
// check when it is free, fold otherwise.
func (s *PokerState) DefaultAction() Action {
	if s.Choices().CanCheck {
		return Action{Type: ActionCheck}
	}
	return Action{Type: ActionFold}
}
