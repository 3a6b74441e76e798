package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"skinvault/database"
	"skinvault/domain/entities"
	"skinvault/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type idempotencyRepository struct {
	q Queryable
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *database.DB) interfaces.IdempotencyRepository {
	return &idempotencyRepository{q: db.Pool}
}

func newIdempotencyRepository(tx Queryable) interfaces.IdempotencyRepository {
	return &idempotencyRepository{q: tx}
}

// Reserve inserts the key as the first write of the unit of work. A concurrent
// insert of the same key waits on the primary key until the other transaction
// ends; if it committed, the stored record is returned instead.
func (r *idempotencyRepository) Reserve(ctx context.Context, accountID int64, key, operation, requestHash string) (*entities.IdempotencyRecord, bool, error) {
	record := &entities.IdempotencyRecord{
		AccountID:   accountID,
		Key:         key,
		Operation:   operation,
		RequestHash: requestHash,
	}

	err := r.q.QueryRow(ctx, `
		INSERT INTO idempotency_keys (account_id, idempotency_key, operation, request_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id, idempotency_key) DO NOTHING
		RETURNING created_at
	`, accountID, key, operation, requestHash).Scan(&record.CreatedAt)
	if err == nil {
		return record, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to reserve idempotency key for account %d: %w", accountID, err)
	}

	existing := &entities.IdempotencyRecord{}
	err = r.q.QueryRow(ctx, `
		SELECT account_id, idempotency_key, operation, request_hash, response, created_at
		FROM idempotency_keys
		WHERE account_id = $1 AND idempotency_key = $2
	`, accountID, key).Scan(
		&existing.AccountID,
		&existing.Key,
		&existing.Operation,
		&existing.RequestHash,
		&existing.Response,
		&existing.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load idempotency key for account %d: %w", accountID, err)
	}

	return existing, false, nil
}

// Complete stores the response for a reserved key
func (r *idempotencyRepository) Complete(ctx context.Context, accountID int64, key string, response json.RawMessage) error {
	result, err := r.q.Exec(ctx, `
		UPDATE idempotency_keys
		SET response = $1
		WHERE account_id = $2 AND idempotency_key = $3
	`, string(response), accountID, key)
	if err != nil {
		return fmt.Errorf("failed to store idempotent response for account %d: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("idempotency key %q for account %d: %w", key, accountID, entities.ErrNotFound)
	}
	return nil
}
