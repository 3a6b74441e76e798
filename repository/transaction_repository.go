package repository

import (
	"context"
	"fmt"

	"skinvault/database"
	"skinvault/domain/entities"
	"skinvault/domain/interfaces"
)

type transactionRepository struct {
	q Queryable
}

// NewTransactionRepository creates a new ledger repository
func NewTransactionRepository(db *database.DB) interfaces.TransactionRepository {
	return &transactionRepository{q: db.Pool}
}

func newTransactionRepository(tx Queryable) interfaces.TransactionRepository {
	return &transactionRepository{q: tx}
}

// Append inserts a ledger row
func (r *transactionRepository) Append(ctx context.Context, tx *entities.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid ledger row: %w", err)
	}

	metadata := tx.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	query := `
		INSERT INTO transactions (
			account_id, delta, currency, reason, balance_after,
			related_draw_id, related_listing_id, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		tx.AccountID,
		tx.Delta,
		string(tx.Currency),
		string(tx.Reason),
		tx.BalanceAfter,
		tx.RelatedDrawID,
		tx.RelatedListingID,
		metadata,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append ledger row for account %d: %w", tx.AccountID, err)
	}

	return nil
}

// ListByAccount returns the most recent ledger rows for an account
func (r *transactionRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*entities.Transaction, error) {
	query := `
		SELECT id, account_id, delta, currency, reason, balance_after,
		       related_draw_id, related_listing_id, metadata, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger rows for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var txs []*entities.Transaction
	for rows.Next() {
		var tx entities.Transaction
		var currency, reason string
		err := rows.Scan(
			&tx.ID,
			&tx.AccountID,
			&tx.Delta,
			&currency,
			&reason,
			&tx.BalanceAfter,
			&tx.RelatedDrawID,
			&tx.RelatedListingID,
			&tx.Metadata,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		tx.Currency = entities.Currency(currency)
		tx.Reason = entities.TransactionReason(reason)
		txs = append(txs, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger rows: %w", err)
	}

	return txs, nil
}

// SumDeltas returns the sum of all deltas for an account and currency
func (r *transactionRepository) SumDeltas(ctx context.Context, accountID int64, currency entities.Currency) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(delta), 0)::BIGINT
		FROM transactions
		WHERE account_id = $1 AND currency = $2
	`, accountID, string(currency)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger rows for account %d: %w", accountID, err)
	}
	return sum, nil
}

// SumByReason returns the sum of deltas an account received for one reason
func (r *transactionRepository) SumByReason(ctx context.Context, accountID int64, currency entities.Currency, reason entities.TransactionReason) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(delta), 0)::BIGINT
		FROM transactions
		WHERE account_id = $1 AND currency = $2 AND reason = $3
	`, accountID, string(currency), string(reason)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum %s rows for account %d: %w", reason, accountID, err)
	}
	return sum, nil
}
