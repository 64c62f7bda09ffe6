package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// Account is one user's chip balance.
type Account struct {
	UserID    string
	BalanceCC int64
	UpdatedAt time.Time
}

func (s *Store) EnsureAccount(ctx context.Context, userID string, initial int64) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO accounts (user_id, balance_cc)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`, userID, initial)
	return err
}

func (s *Store) GetBalance(ctx context.Context, userID string) (int64, error) {
	var bal int64
	err := s.Pool.QueryRow(ctx,
		`SELECT balance_cc FROM accounts WHERE user_id = $1`, userID).Scan(&bal)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return bal, nil
}

// Debit removes chips from an account and writes the ledger entry, all in
// one transaction. The idempotency key makes replays no-ops: a key that
// already has a ledger entry returns the current balance without moving
// chips again.
func (s *Store) Debit(ctx context.Context, userID string, amount int64, entryType, refType, refID, key string) (int64, error) {
	return s.apply(ctx, userID, -amount, entryType, refType, refID, key)
}

// Credit adds chips to an account under the same idempotency contract as
// Debit.
func (s *Store) Credit(ctx context.Context, userID string, amount int64, entryType, refType, refID, key string) (int64, error) {
	return s.apply(ctx, userID, amount, entryType, refType, refID, key)
}

func (s *Store) apply(ctx context.Context, userID string, delta int64, entryType, refType, refID, key string) (int64, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var bal int64
	err = tx.QueryRow(ctx,
		`SELECT balance_cc FROM accounts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&bal)
	if err != nil {
		return 0, mapNotFound(err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO ledger_entries (id, user_id, type, amount_cc, ref_type, ref_id, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (idempotency_key) DO NOTHING`,
		NewID(), userID, entryType, delta, refType, refID, key)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		// Key already applied, report the balance as it stands.
		if err := tx.Commit(ctx); err != nil {
			return 0, err
		}
		return bal, nil
	}

	newBal := bal + delta
	if newBal < 0 {
		return 0, ErrInsufficientBalance
	}
	if _, err := tx.Exec(ctx, `
		UPDATE accounts SET balance_cc = $1, updated_at = now() WHERE user_id = $2`,
		newBal, userID); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBal, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
