package table

import (
	"context"

	"github.com/samansohani78/private-poker/internal/game"
)

// Handle is the only way to reach a running table. It is safe to copy and
// to share between goroutines; every method is a synchronous round trip
// through the table's inbox.
type Handle struct {
	t *Table
}

func (h *Handle) ID() string { return h.t.id }

// Join escrows the buy-in and places the user on the waitlist.
func (h *Handle) Join(ctx context.Context, userID string, buyIn int64) error {
	reply := make(chan error, 1)
	return h.call(ctx, joinMsg{ctx: ctx, userID: userID, buyIn: buyIn, reply: reply}, reply)
}

// Leave removes the user at the next safe point and returns their chips.
func (h *Handle) Leave(ctx context.Context, userID string) error {
	reply := make(chan error, 1)
	return h.call(ctx, leaveMsg{userID: userID, reply: reply}, reply)
}

// Act submits a betting action for the user.
func (h *Handle) Act(ctx context.Context, userID string, action game.Action) error {
	reply := make(chan error, 1)
	return h.call(ctx, actionMsg{userID: userID, action: action, reply: reply}, reply)
}

// Start requests dealing the first hand.
func (h *Handle) Start(ctx context.Context) error {
	reply := make(chan error, 1)
	return h.call(ctx, startMsg{reply: reply}, reply)
}

// SetBlinds changes the blinds, between hands if one is live.
func (h *Handle) SetBlinds(ctx context.Context, smallBlind, bigBlind int64) error {
	reply := make(chan error, 1)
	return h.call(ctx, blindsMsg{smallBlind: smallBlind, bigBlind: bigBlind, reply: reply}, reply)
}

// View returns the observer's snapshot of the table.
func (h *Handle) View(ctx context.Context, observerID string) (game.GameView, error) {
	reply := make(chan game.GameView, 1)
	if err := h.send(ctx, viewMsg{observerID: observerID, reply: reply}); err != nil {
		return game.GameView{}, err
	}
	select {
	case view := <-reply:
		return view, nil
	case <-h.t.stopped:
		return game.GameView{}, ErrTableClosed
	case <-ctx.Done():
		return game.GameView{}, ctx.Err()
	}
}

// Watch subscribes to state-change signals. Pair with View to stream
// snapshots; drop the subscription with Unwatch.
func (h *Handle) Watch(ctx context.Context) (*Watch, error) {
	reply := make(chan *Watch, 1)
	if err := h.send(ctx, watchMsg{reply: reply}); err != nil {
		return nil, err
	}
	select {
	case w := <-reply:
		return w, nil
	case <-h.t.stopped:
		return nil, ErrTableClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Unwatch removes a subscription. Best effort: a closed table has no
// watchers left to remove.
func (h *Handle) Unwatch(ctx context.Context, id uint64) {
	_ = h.send(ctx, unwatchMsg{id: id})
}

// Done closes when the table goroutine has exited.
func (h *Handle) Done() <-chan struct{} { return h.t.stopped }

// Shutdown releases all escrowed chips and stops the table goroutine.
// Idempotent: a second call returns once the table is gone.
func (h *Handle) Shutdown(ctx context.Context) error {
	reply := make(chan struct{}, 1)
	if err := h.send(ctx, shutdownMsg{reply: reply}); err != nil {
		if err == ErrTableClosed {
			return nil
		}
		return err
	}
	select {
	case <-reply:
		return nil
	case <-h.t.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handle) call(ctx context.Context, msg any, reply chan error) error {
	if err := h.send(ctx, msg); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-h.t.stopped:
		return ErrTableClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handle) send(ctx context.Context, msg any) error {
	select {
	case <-h.t.stopped:
		return ErrTableClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case h.t.inbox <- msg:
		return nil
	case <-h.t.stopped:
		return ErrTableClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
