package table

import (
	"context"
	"errors"

	"github.com/samansohani78/private-poker/internal/game"
)

var ErrTableClosed = errors.New("table_closed")

type joinMsg struct {
	ctx    context.Context
	userID string
	buyIn  int64
	reply  chan error
}

type leaveMsg struct {
	userID string
	reply  chan error
}

type actionMsg struct {
	userID string
	action game.Action
	reply  chan error
}

type startMsg struct {
	reply chan error
}

type blindsMsg struct {
	smallBlind int64
	bigBlind   int64
	reply      chan error
}

type viewMsg struct {
	observerID string
	reply      chan game.GameView
}

type timeoutMsg struct {
	gen uint64
}

// Watch is a state-change subscription. C carries at most one pending
// signal; subscribers fetch a fresh view when it fires.
type Watch struct {
	ID uint64
	C  chan struct{}
}

type watchMsg struct {
	reply chan *Watch
}

type unwatchMsg struct {
	id uint64
}

type shutdownMsg struct {
	reply chan struct{}
}
