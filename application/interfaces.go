package application

import (
	"context"

	"skinvault/domain/entities"
)

// BalanceCache holds display copies of balances. Implementations must never be
// consulted by an operation that moves funds.
type BalanceCache interface {
	Get(ctx context.Context, accountID int64) (*entities.Balances, error)
	// Set reports false when a newer version was committed since balances
	// were read
	Set(ctx context.Context, balances *entities.Balances) (bool, error)
}
