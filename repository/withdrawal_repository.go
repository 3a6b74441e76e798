package repository

import (
	"context"
	"errors"
	"fmt"

	"skinvault/database"
	"skinvault/domain/entities"
	"skinvault/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const withdrawalColumns = `id, account_id, template_id, trade_link, status, fragments_used, premium_fee, note, created_at, resolved_at`

type withdrawalRepository struct {
	q Queryable
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *database.DB) interfaces.WithdrawalRepository {
	return &withdrawalRepository{q: db.Pool}
}

func newWithdrawalRepository(tx Queryable) interfaces.WithdrawalRepository {
	return &withdrawalRepository{q: tx}
}

// Create records a pending withdrawal request
func (r *withdrawalRepository) Create(ctx context.Context, request *entities.WithdrawalRequest) error {
	request.Status = entities.WithdrawalPending

	err := r.q.QueryRow(ctx, `
		INSERT INTO withdrawal_requests (account_id, template_id, trade_link, status, fragments_used, premium_fee)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`,
		request.AccountID,
		request.TemplateID,
		request.TradeLink,
		string(request.Status),
		request.FragmentsUsed,
		request.PremiumFee,
	).Scan(&request.ID, &request.CreatedAt)
	if database.IsUniqueViolation(err, "withdrawal_requests_one_pending") {
		return fmt.Errorf("template %d: %w", request.TemplateID, entities.ErrWithdrawalPending)
	}
	if err != nil {
		return fmt.Errorf("failed to create withdrawal for account %d: %w", request.AccountID, err)
	}

	return nil
}

// GetForUpdate retrieves and locks a withdrawal request
func (r *withdrawalRepository) GetForUpdate(ctx context.Context, id int64) (*entities.WithdrawalRequest, error) {
	request, err := scanWithdrawal(r.q.QueryRow(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal %d: %w", id, err)
	}
	return request, nil
}

// Update writes the resolution of a pending request
func (r *withdrawalRepository) Update(ctx context.Context, request *entities.WithdrawalRequest) error {
	result, err := r.q.Exec(ctx, `
		UPDATE withdrawal_requests
		SET status = $1, note = $2, resolved_at = $3
		WHERE id = $4 AND status = 'pending'
	`, string(request.Status), request.Note, request.ResolvedAt, request.ID)
	if err != nil {
		return fmt.Errorf("failed to update withdrawal %d: %w", request.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("withdrawal %d: %w", request.ID, entities.ErrWithdrawalNotPending)
	}
	return nil
}

// HasPending reports whether an account already has a pending request for a template
func (r *withdrawalRepository) HasPending(ctx context.Context, accountID, templateID int64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM withdrawal_requests
			WHERE account_id = $1 AND template_id = $2 AND status = 'pending'
		)
	`, accountID, templateID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending withdrawals for account %d: %w", accountID, err)
	}
	return exists, nil
}

// ListByAccount returns the withdrawal requests of an account, newest first
func (r *withdrawalRepository) ListByAccount(ctx context.Context, accountID int64) ([]*entities.WithdrawalRequest, error) {
	rows, err := r.q.Query(ctx, `SELECT `+withdrawalColumns+`
		FROM withdrawal_requests
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var requests []*entities.WithdrawalRequest
	for rows.Next() {
		request, err := scanWithdrawal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdrawals: %w", err)
	}
	return requests, nil
}

func scanWithdrawal(row pgx.Row) (*entities.WithdrawalRequest, error) {
	var w entities.WithdrawalRequest
	var status string
	err := row.Scan(
		&w.ID,
		&w.AccountID,
		&w.TemplateID,
		&w.TradeLink,
		&status,
		&w.FragmentsUsed,
		&w.PremiumFee,
		&w.Note,
		&w.CreatedAt,
		&w.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	w.Status = entities.WithdrawalStatus(status)
	return &w, nil
}
