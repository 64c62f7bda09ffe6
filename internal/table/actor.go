package table

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/samansohani78/private-poker/internal/game"
	"github.com/samansohani78/private-poker/internal/wallet"
)

const inboxSize = 64

// HistorySink receives completed hand results. Implementations must not
// block; the table actor calls Record on its own goroutine.
type HistorySink interface {
	Record(res *game.HandResult)
}

type Config struct {
	ID       string
	Settings game.GameSettings
	Wallet   wallet.Wallet
	History  HistorySink
	Clock    quartz.Clock
	Logger   zerolog.Logger
	Seed     int64
}

// Table is the single owner of one PokerState. All access goes through the
// inbox and is handled by one goroutine, so the state needs no locks and
// messages from any one client are applied in arrival order.
type Table struct {
	id      string
	log     zerolog.Logger
	clock   quartz.Clock
	wallet  wallet.Wallet
	history HistorySink
	state   *game.PokerState

	inbox   chan any
	stopped chan struct{}

	frozen    error
	timer     *quartz.Timer
	timerGen  uint64
	armed     timerTarget
	escrowSeq uint64
	watchers  map[uint64]chan struct{}
	watchSeq  uint64
}

// timerTarget identifies one acting turn: the countdown belongs to this
// seat on this street of this hand, and survives unrelated mutations.
type timerTarget struct {
	hand   uint64
	street game.Street
	seat   int
}

// New builds the table and starts its goroutine.
func New(cfg Config) *Handle {
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	t := &Table{
		id:       cfg.ID,
		log:      cfg.Logger.With().Str("table_id", cfg.ID).Logger(),
		clock:    cfg.Clock,
		wallet:   cfg.Wallet,
		history:  cfg.History,
		state:    game.NewPokerState(cfg.ID, cfg.Settings, rand.New(rand.NewSource(seed))),
		inbox:    make(chan any, inboxSize),
		stopped:  make(chan struct{}),
		watchers: make(map[uint64]chan struct{}),
	}
	go t.run()
	return &Handle{t: t}
}

func (t *Table) run() {
	defer close(t.stopped)
	for raw := range t.inbox {
		switch m := raw.(type) {
		case joinMsg:
			t.handleJoin(m)
		case leaveMsg:
			t.handleLeave(m)
		case actionMsg:
			t.handleAction(m)
		case startMsg:
			if t.frozen != nil {
				m.reply <- t.frozen
				break
			}
			t.state.RequestStart()
			m.reply <- nil
			t.postAdvance()
		case blindsMsg:
			if t.frozen != nil {
				m.reply <- t.frozen
				break
			}
			t.state.SetBlinds(m.smallBlind, m.bigBlind)
			m.reply <- nil
			t.notify()
		case viewMsg:
			view := t.state.View(m.observerID)
			if t.frozen != nil {
				view.FrozenReason = t.frozen.Error()
			}
			m.reply <- view
		case timeoutMsg:
			t.handleTimeout(m)
		case watchMsg:
			t.watchSeq++
			ch := make(chan struct{}, 1)
			t.watchers[t.watchSeq] = ch
			m.reply <- &Watch{ID: t.watchSeq, C: ch}
		case unwatchMsg:
			delete(t.watchers, m.id)
		case shutdownMsg:
			t.handleShutdown()
			m.reply <- struct{}{}
			return
		}
	}
}

func (t *Table) handleJoin(m joinMsg) {
	if t.frozen != nil {
		m.reply <- t.frozen
		return
	}
	key := t.escrowKey("join", m.userID)
	if err := t.wallet.MoveToEscrow(m.ctx, m.userID, t.id, key, m.buyIn); err != nil {
		m.reply <- err
		return
	}
	if err := t.state.AddPlayer(m.userID, m.buyIn); err != nil {
		t.release(m.userID, m.buyIn, t.escrowKey("join_refund", m.userID))
		m.reply <- err
		return
	}
	t.log.Info().Str("user_id", m.userID).Int64("buy_in", m.buyIn).Msg("player joined")
	m.reply <- nil
	t.postAdvance()
}

func (t *Table) handleLeave(m leaveMsg) {
	if t.frozen != nil {
		m.reply <- t.frozen
		return
	}
	releases, err := t.state.MarkLeaving(m.userID)
	m.reply <- err
	if err != nil {
		return
	}
	t.log.Info().Str("user_id", m.userID).Msg("player leaving")
	for _, rel := range releases {
		t.release(rel.UserID, rel.Amount, t.escrowKey("leave", rel.UserID))
	}
	t.postAdvance()
}

func (t *Table) handleAction(m actionMsg) {
	if t.frozen != nil {
		m.reply <- t.frozen
		return
	}
	err := t.state.ApplyAction(m.userID, m.action)
	m.reply <- err
	if err != nil {
		t.log.Debug().Str("user_id", m.userID).Str("action", string(m.action.Type)).
			Err(err).Msg("action rejected")
		return
	}
	t.postAdvance()
}

// handleTimeout folds or checks for a player whose action clock expired.
// A stale generation means the player acted before the timer message was
// consumed, so it is ignored.
func (t *Table) handleTimeout(m timeoutMsg) {
	if t.frozen != nil || m.gen != t.timerGen {
		return
	}
	if t.state.Phase != game.PhaseTakeAction || t.state.Actor < 0 {
		return
	}
	p := t.state.Seats[t.state.Actor]
	act := t.state.DefaultAction()
	if err := t.state.ApplyAction(p.UserID, act); err != nil {
		t.log.Error().Str("user_id", p.UserID).Err(err).Msg("timeout action failed")
		return
	}
	t.log.Info().Str("user_id", p.UserID).Str("action", string(act.Type)).
		Msg("action timed out, default applied")
	t.postAdvance()
}

// handleShutdown returns every escrowed chip and stops the actor. A frozen
// table keeps its escrow: the books are wrong and paying anything out could
// compound the damage, so the chips wait for operator intervention.
func (t *Table) handleShutdown() {
	t.cancelTimer()
	if t.frozen != nil {
		t.log.Warn().Err(t.frozen).Msg("shutting down frozen, escrow retained")
		return
	}
	for _, p := range t.state.Seats {
		if p == nil {
			continue
		}
		if amount := p.Stack + p.TotalContrib; amount > 0 {
			t.release(p.UserID, amount, t.escrowKey("shutdown", p.UserID))
		}
	}
	for _, w := range t.state.Waitlist {
		if w.Stack > 0 {
			t.release(w.UserID, w.Stack, t.escrowKey("shutdown", w.UserID))
		}
	}
	t.log.Info().Msg("table shut down")
}

// postAdvance runs the state machine after a mutation, then flushes hand
// results and escrow releases and rearms the action timer. A conservation
// failure freezes the table permanently.
func (t *Table) postAdvance() {
	if err := t.state.Advance(); err != nil {
		t.frozen = err
		t.cancelTimer()
		t.log.Error().Err(err).Msg("table frozen")
		t.notify()
		return
	}
	for _, res := range t.state.DrainResults() {
		t.log.Info().Str("hand_id", res.HandID).Str("street", string(res.Street)).
			Int("awards", len(res.Awards)).Msg("hand complete")
		if t.history != nil {
			t.history.Record(res)
		}
	}
	for _, rel := range t.state.DrainReleases() {
		t.release(rel.UserID, rel.Amount, t.escrowKey("release", rel.UserID))
	}
	t.rearmTimer()
	t.notify()
}

// notify wakes every watcher without blocking. A watcher with a signal
// already pending needs no second one.
func (t *Table) notify() {
	for _, ch := range t.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (t *Table) release(userID string, amount int64, key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.wallet.ReleaseFromEscrow(ctx, userID, t.id, key, amount); err != nil {
		// Chips stay escrowed under the idempotency key for manual replay.
		t.log.Error().Str("user_id", userID).Int64("amount", amount).
			Str("key", key).Err(err).Msg("escrow release failed")
	}
}

// rearmTimer keeps one countdown running for the seat to act. Mutations
// that leave the same turn on the clock, like a join landing on the
// waitlist mid-hand, must not shrink or stretch the acting player's window.
func (t *Table) rearmTimer() {
	if t.state.Phase != game.PhaseTakeAction || t.state.Actor < 0 {
		t.cancelTimer()
		return
	}
	target := timerTarget{hand: t.state.HandNo, street: t.state.Street, seat: t.state.Actor}
	if t.timer != nil && target == t.armed {
		return
	}
	t.cancelTimer()
	timeout := t.state.Settings.ActionTimeout
	if timeout <= 0 {
		return
	}
	t.armed = target
	t.timerGen++
	gen := t.timerGen
	t.timer = t.clock.AfterFunc(timeout, func() {
		select {
		case t.inbox <- timeoutMsg{gen: gen}:
		case <-t.stopped:
		}
	})
}

func (t *Table) cancelTimer() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Table) escrowKey(kind, userID string) string {
	t.escrowSeq++
	return fmt.Sprintf("%s:%s:%s:%d", t.id, kind, userID, t.escrowSeq)
}
