package table

import (
	"context"
	"errors"
	"sync"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/samansohani78/private-poker/internal/game"
	"github.com/samansohani78/private-poker/internal/store"
	"github.com/samansohani78/private-poker/internal/wallet"
)

var ErrTableNotFound = errors.New("table_not_found")

// Manager owns the table registry. Creating and closing tables goes
// through here; gameplay goes through the handles it returns.
type Manager struct {
	wallet  wallet.Wallet
	history HistorySink
	clock   quartz.Clock
	log     zerolog.Logger

	mu     sync.Mutex
	tables map[string]*Handle
}

func NewManager(w wallet.Wallet, history HistorySink, clock quartz.Clock, log zerolog.Logger) *Manager {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Manager{
		wallet:  w,
		history: history,
		clock:   clock,
		log:     log,
		tables:  make(map[string]*Handle),
	}
}

// Create spins up a new table and registers it.
func (m *Manager) Create(settings game.GameSettings) *Handle {
	id := "tbl_" + store.NewID()
	h := New(Config{
		ID:       id,
		Settings: settings,
		Wallet:   m.wallet,
		History:  m.history,
		Clock:    m.clock,
		Logger:   m.log,
	})
	m.mu.Lock()
	m.tables[id] = h
	m.mu.Unlock()
	m.log.Info().Str("table_id", id).Msg("table created")
	return h
}

func (m *Manager) Get(id string) (*Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.tables[id]
	return h, ok
}

// List snapshots every registered table for the given observer.
func (m *Manager) List(ctx context.Context, observerID string) []game.GameView {
	m.mu.Lock()
	handles := make([]*Handle, 0, len(m.tables))
	for _, h := range m.tables {
		handles = append(handles, h)
	}
	m.mu.Unlock()

	views := make([]game.GameView, 0, len(handles))
	for _, h := range handles {
		view, err := h.View(ctx, observerID)
		if err != nil {
			continue
		}
		views = append(views, view)
	}
	return views
}

// Close shuts one table down and removes it from the registry.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	h, ok := m.tables[id]
	delete(m.tables, id)
	m.mu.Unlock()
	if !ok {
		return ErrTableNotFound
	}
	return h.Shutdown(ctx)
}

// Shutdown closes every table. Used at server exit.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	handles := make([]*Handle, 0, len(m.tables))
	for _, h := range m.tables {
		handles = append(handles, h)
	}
	m.tables = make(map[string]*Handle)
	m.mu.Unlock()

	var firstErr error
	for _, h := range handles {
		if err := h.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
