package game

type PlayerStatus string

const (
	StatusWaiting    PlayerStatus = "waiting"
	StatusActive     PlayerStatus = "active"
	StatusFolded     PlayerStatus = "folded"
	StatusAllIn      PlayerStatus = "all_in"
	StatusSittingOut PlayerStatus = "sitting_out"
)

// Player is one seat's state. Owned by the table's PokerState and mutated
// only by FSM transitions running inside the owning actor.
type Player struct {
	UserID string
	Seat   int
	Stack  int64
	Hole   []Card
	Status PlayerStatus

	RoundBet     int64
	TotalContrib int64
	Acted        bool
	LastAction   ActionType
	Leaving      bool
	Revealed     bool
}

// InHand reports whether the player still contests the current pot.
func (p *Player) InHand() bool {
	return p.Status == StatusActive || p.Status == StatusAllIn
}

// CanAct reports whether the player may still take betting actions.
func (p *Player) CanAct() bool {
	return p.Status == StatusActive && p.Stack > 0
}

func (p *Player) resetForHand() {
	p.Status = StatusActive
	p.Hole = nil
	p.RoundBet = 0
	p.TotalContrib = 0
	p.Acted = false
	p.LastAction = ""
	p.Revealed = false
}
