package wallet

import (
	"context"
	"errors"
	"sync"
)

// Memory is an in-process wallet used by tests and by servers running
// without a database. Escrow balances are tracked per table so a release
// can never exceed what the table actually holds.
type Memory struct {
	mu         sync.Mutex
	balances   map[string]int64
	escrow     map[string]int64
	applied    map[string]struct{}
	autoCredit int64
}

func NewMemory() *Memory {
	return &Memory{
		balances: make(map[string]int64),
		escrow:   make(map[string]int64),
		applied:  make(map[string]struct{}),
	}
}

// NewDevMemory auto-credits unknown users with starting chips on first
// touch, so a fresh local server is playable without a topup step.
func NewDevMemory(starting int64) *Memory {
	m := NewMemory()
	m.autoCredit = starting
	return m
}

func (m *Memory) ensureLocked(userID string) (int64, bool) {
	bal, ok := m.balances[userID]
	if !ok && m.autoCredit > 0 {
		m.balances[userID] = m.autoCredit
		return m.autoCredit, true
	}
	return bal, ok
}

// Deposit credits a user account directly. Test and dev-mode seeding only.
func (m *Memory) Deposit(userID string, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] += amount
}

func (m *Memory) Balance(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal, ok := m.ensureLocked(userID)
	if !ok {
		return 0, ErrNoAccount
	}
	return bal, nil
}

func (m *Memory) MoveToEscrow(_ context.Context, userID, tableID, key string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, done := m.applied[key]; done {
		return nil
	}
	m.ensureLocked(userID)
	if m.balances[userID] < amount {
		return ErrInsufficientBalance
	}
	m.balances[userID] -= amount
	m.escrow[tableID] += amount
	m.applied[key] = struct{}{}
	return nil
}

func (m *Memory) ReleaseFromEscrow(_ context.Context, userID, tableID, key string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, done := m.applied[key]; done {
		return nil
	}
	if m.escrow[tableID] < amount {
		return errors.New("escrow_underflow")
	}
	m.escrow[tableID] -= amount
	m.balances[userID] += amount
	m.applied[key] = struct{}{}
	return nil
}

// EscrowHeld reports the chips a table currently holds in escrow.
func (m *Memory) EscrowHeld(tableID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.escrow[tableID]
}
