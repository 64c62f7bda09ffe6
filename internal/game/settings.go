package game

import "time"

// BlindLevel raises blinds once HandNo passes AfterHands. Levels apply in
// order during the UpdateBlinds phase; an empty schedule means cash-game
// blinds that only change via SetBlinds.
type BlindLevel struct {
	AfterHands uint64
	SmallBlind int64
	BigBlind   int64
}

type GameSettings struct {
	SmallBlind    int64
	BigBlind      int64
	MinBuyIn      int64
	MaxSeats      int
	ActionTimeout time.Duration
	AutoStart     int
	BlindSchedule []BlindLevel
}

func DefaultSettings() GameSettings {
	return GameSettings{
		SmallBlind:    50,
		BigBlind:      100,
		MinBuyIn:      2000,
		MaxSeats:      9,
		ActionTimeout: 30 * time.Second,
		AutoStart:     2,
	}
}
