package wallet

import (
	"context"
	"errors"
)

var (
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrNoAccount           = errors.New("account_not_found")
)

// Wallet moves chips between a user's account and a table's escrow. Both
// operations are idempotent on the key: replaying a key that already
// applied is a no-op success, so tables can retry transfers safely.
type Wallet interface {
	MoveToEscrow(ctx context.Context, userID, tableID, key string, amount int64) error
	ReleaseFromEscrow(ctx context.Context, userID, tableID, key string, amount int64) error
	Balance(ctx context.Context, userID string) (int64, error)
}
