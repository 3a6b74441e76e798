package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skinvault/database"
	"skinvault/domain/entities"
	"skinvault/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `
	id, standard_balance, premium_balance, version, disabled,
	referred_by, daily_streak, last_daily_at, created_at, updated_at`

type accountRepository struct {
	q Queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) interfaces.AccountRepository {
	return &accountRepository{q: db.Pool}
}

// newAccountRepository creates an account repository bound to a transaction
func newAccountRepository(tx Queryable) interfaces.AccountRepository {
	return &accountRepository{q: tx}
}

// GetByID retrieves an account with its fragment counts
func (r *accountRepository) GetByID(ctx context.Context, id int64) (*entities.Account, error) {
	return r.get(ctx, `SELECT`+accountColumns+` FROM accounts WHERE id = $1`, id)
}

// GetForUpdate retrieves an account and locks its row. Fragment rows are only
// written by the holder of this lock.
func (r *accountRepository) GetForUpdate(ctx context.Context, id int64) (*entities.Account, error) {
	return r.get(ctx, `SELECT`+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
}

func (r *accountRepository) get(ctx context.Context, query string, id int64) (*entities.Account, error) {
	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}

	fragments, err := r.getFragments(ctx, id)
	if err != nil {
		return nil, err
	}
	account.FragmentCounts = fragments

	return account, nil
}

func (r *accountRepository) getFragments(ctx context.Context, accountID int64) (map[int64]int64, error) {
	rows, err := r.q.Query(ctx, `
		SELECT template_id, count
		FROM account_fragments
		WHERE account_id = $1 AND count > 0
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fragments for account %d: %w", accountID, err)
	}
	defer rows.Close()

	fragments := make(map[int64]int64)
	for rows.Next() {
		var templateID, count int64
		if err := rows.Scan(&templateID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan fragment count: %w", err)
		}
		fragments[templateID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fragments: %w", err)
	}
	return fragments, nil
}

// Create inserts a new account with zero balances
func (r *accountRepository) Create(ctx context.Context, account *entities.Account) (bool, error) {
	query := `
		INSERT INTO accounts (id, referred_by)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
		RETURNING` + accountColumns

	created, err := scanAccount(r.q.QueryRow(ctx, query, account.ID, account.ReferredBy))
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create account %d: %w", account.ID, err)
	}

	*account = *created
	account.FragmentCounts = make(map[int64]int64)
	return true, nil
}

// UpdateProjection writes the in-memory balance for currency and bumps the
// version, guarded by expectedVersion.
func (r *accountRepository) UpdateProjection(ctx context.Context, account *entities.Account, currency entities.Currency, expectedVersion int64) error {
	if templateID, ok := currency.FragmentTemplateID(); ok {
		_, err := r.q.Exec(ctx, `
			INSERT INTO account_fragments (account_id, template_id, count, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (account_id, template_id)
			DO UPDATE SET count = EXCLUDED.count, updated_at = NOW()
		`, account.ID, templateID, account.FragmentCounts[templateID])
		if err != nil {
			return fmt.Errorf("failed to update fragments for account %d: %w", account.ID, err)
		}
	}

	query := `
		UPDATE accounts
		SET standard_balance = $1,
		    premium_balance = $2,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $3 AND version = $4
		RETURNING version, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		account.StandardBalance,
		account.PremiumBalance,
		account.ID,
		expectedVersion,
	).Scan(&account.Version, &account.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("account %d at version %d: %w", account.ID, expectedVersion, entities.ErrVersionConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to update projection for account %d: %w", account.ID, err)
	}

	return nil
}

// UpdateDailyStreak records a daily reward claim
func (r *accountRepository) UpdateDailyStreak(ctx context.Context, accountID int64, streak int, claimedAt time.Time) error {
	result, err := r.q.Exec(ctx, `
		UPDATE accounts
		SET daily_streak = $1, last_daily_at = $2, updated_at = NOW()
		WHERE id = $3
	`, streak, claimedAt, accountID)
	if err != nil {
		return fmt.Errorf("failed to update daily streak for account %d: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", accountID, entities.ErrAccountNotFound)
	}
	return nil
}

// ListReferrals returns the accounts referred by referrerID, newest first
func (r *accountRepository) ListReferrals(ctx context.Context, referrerID int64) ([]*entities.Referral, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, created_at
		FROM accounts
		WHERE referred_by = $1
		ORDER BY created_at DESC, id DESC
	`, referrerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals of account %d: %w", referrerID, err)
	}
	defer rows.Close()

	var referrals []*entities.Referral
	for rows.Next() {
		var referral entities.Referral
		if err := rows.Scan(&referral.AccountID, &referral.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
		referrals = append(referrals, &referral)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate referrals: %w", err)
	}
	return referrals, nil
}

func scanAccount(row pgx.Row) (*entities.Account, error) {
	var account entities.Account
	err := row.Scan(
		&account.ID,
		&account.StandardBalance,
		&account.PremiumBalance,
		&account.Version,
		&account.Disabled,
		&account.ReferredBy,
		&account.DailyStreak,
		&account.LastDailyAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
