package wallet

import (
	"context"
	"errors"

	"github.com/samansohani78/private-poker/internal/store"
)

// Postgres backs the wallet with the ledgered accounts table. Every escrow
// move is one Debit or Credit transaction keyed for idempotent replay.
type Postgres struct {
	store *store.Store
}

func NewPostgres(s *store.Store) *Postgres {
	return &Postgres{store: s}
}

func (p *Postgres) MoveToEscrow(ctx context.Context, userID, tableID, key string, amount int64) error {
	_, err := p.store.Debit(ctx, userID, amount, "escrow_in", "table", tableID, key)
	return mapStoreErr(err)
}

func (p *Postgres) ReleaseFromEscrow(ctx context.Context, userID, tableID, key string, amount int64) error {
	_, err := p.store.Credit(ctx, userID, amount, "escrow_out", "table", tableID, key)
	return mapStoreErr(err)
}

func (p *Postgres) Balance(ctx context.Context, userID string) (int64, error) {
	bal, err := p.store.GetBalance(ctx, userID)
	return bal, mapStoreErr(err)
}

func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrInsufficientBalance):
		return ErrInsufficientBalance
	case errors.Is(err, store.ErrNotFound):
		return ErrNoAccount
	default:
		return err
	}
}
