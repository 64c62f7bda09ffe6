package game

import "errors"

// Rule violations are reported to the caller and leave state unchanged;
// ErrConservation is the one fatal defect and freezes the owning table.
var (
	ErrNotYourTurn   = errors.New("not_your_turn")
	ErrInvalidAction = errors.New("invalid_action")
	ErrBetOutOfRange = errors.New("bet_out_of_range")
	ErrNotSeated     = errors.New("not_seated")
	ErrWrongPhase    = errors.New("wrong_phase")
	ErrAlreadySeated = errors.New("already_seated")
	ErrBuyInTooSmall = errors.New("buyin_too_small")
	ErrConservation  = errors.New("chip_conservation_violated")
)
