package game

import "time"

type PlayerView struct {
	Seat       int      `json:"seat"`
	UserID     string   `json:"user_id"`
	Stack      int64    `json:"stack"`
	Status     string   `json:"status"`
	RoundBet   int64    `json:"round_bet,omitempty"`
	LastAction string   `json:"last_action,omitempty"`
	Hole       []string `json:"hole_cards,omitempty"`
	IsButton   bool     `json:"is_button,omitempty"`
}

type PotView struct {
	Amount   int64 `json:"amount"`
	Eligible []int `json:"eligible_seats"`
}

// GameView is a read-only projection of PokerState safe to hand to any
// observer. Hole cards are included only for the observer's own seat or
// for hands revealed at showdown; it never aliases live state.
type GameView struct {
	TableID         string          `json:"table_id"`
	HandID          string          `json:"hand_id,omitempty"`
	HandNo          uint64          `json:"hand_no,omitempty"`
	Phase           string          `json:"phase"`
	Street          string          `json:"street,omitempty"`
	Community       []string        `json:"community_cards"`
	Pots            []PotView       `json:"pots,omitempty"`
	PotTotal        int64           `json:"pot_total"`
	Players         []PlayerView    `json:"players"`
	WaitingCount    int             `json:"waiting_count,omitempty"`
	Button          int             `json:"button"`
	ActorSeat       int             `json:"actor_seat"`
	CurrentBet      int64           `json:"current_bet,omitempty"`
	SmallBlind      int64           `json:"small_blind"`
	BigBlind        int64           `json:"big_blind"`
	ActionTimeoutMS int64           `json:"action_timeout_ms"`
	Choices         *ActionChoices  `json:"choices,omitempty"`
	LastResult      *HandResult     `json:"last_result,omitempty"`
	FrozenReason    string          `json:"frozen_reason,omitempty"`
}

// View builds the observer's snapshot of the table.
func (s *PokerState) View(observerID string) GameView {
	community := make([]string, 0, len(s.Community))
	for _, c := range s.Community {
		community = append(community, c.String())
	}
	players := make([]PlayerView, 0, len(s.Seats))
	for _, p := range s.Seats {
		if p == nil {
			continue
		}
		pv := PlayerView{
			Seat:       p.Seat,
			UserID:     p.UserID,
			Stack:      p.Stack,
			Status:     string(p.Status),
			RoundBet:   p.RoundBet,
			LastAction: string(p.LastAction),
			IsButton:   p.Seat == s.Button,
		}
		if p.UserID == observerID || p.Revealed {
			for _, c := range p.Hole {
				pv.Hole = append(pv.Hole, c.String())
			}
		}
		players = append(players, pv)
	}
	var pots []PotView
	for _, pot := range BuildPots(s.Seats) {
		pots = append(pots, PotView{Amount: pot.Amount, Eligible: append([]int(nil), pot.Eligible...)})
	}
	view := GameView{
		TableID:         s.TableID,
		HandID:          s.HandID,
		HandNo:          s.HandNo,
		Phase:           string(s.Phase),
		Street:          string(s.Street),
		Community:       community,
		Pots:            pots,
		PotTotal:        s.PotTotal(),
		Players:         players,
		WaitingCount:    len(s.Waitlist),
		Button:          s.Button,
		ActorSeat:       s.Actor,
		CurrentBet:      s.CurrentBet,
		SmallBlind:      s.Settings.SmallBlind,
		BigBlind:        s.Settings.BigBlind,
		ActionTimeoutMS: int64(s.Settings.ActionTimeout / time.Millisecond),
		LastResult:      s.LastResult,
	}
	if s.Phase == PhaseTakeAction && s.Actor >= 0 && s.Seats[s.Actor] != nil && s.Seats[s.Actor].UserID == observerID {
		ch := s.Choices()
		view.Choices = &ch
	}
	return view
}
