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

type drawRecordRepository struct {
	q Queryable
}

// NewDrawRecordRepository creates a new draw record repository
func NewDrawRecordRepository(db *database.DB) interfaces.DrawRecordRepository {
	return &drawRecordRepository{q: db.Pool}
}

func newDrawRecordRepository(tx Queryable) interfaces.DrawRecordRepository {
	return &drawRecordRepository{q: tx}
}

// Create persists a draw record
func (r *drawRecordRepository) Create(ctx context.Context, record *entities.DrawRecord) error {
	query := `
		INSERT INTO draw_records (
			account_id, table_id, table_key, table_version, kind, seed,
			total_weight, raw_draw_value, resolved_index, resolved_outcome_id, win_threshold
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		record.AccountID,
		record.TableID,
		record.TableKey,
		record.TableVersion,
		string(record.Kind),
		record.Seed,
		record.TotalWeight,
		record.RawDrawValue,
		record.ResolvedIndex,
		record.ResolvedOutcomeID,
		record.WinThreshold,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to persist draw record for account %d: %w", record.AccountID, err)
	}

	return nil
}

const drawRecordColumns = `id, account_id, table_id, table_key, table_version, kind, seed,
	total_weight, raw_draw_value, resolved_index, resolved_outcome_id, win_threshold, created_at`

// GetByID retrieves a draw record
func (r *drawRecordRepository) GetByID(ctx context.Context, id int64) (*entities.DrawRecord, error) {
	query := `SELECT ` + drawRecordColumns + ` FROM draw_records WHERE id = $1`

	record, err := scanDrawRecord(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draw record %d: %w", id, err)
	}
	return record, nil
}

// ListByAccount returns an account's table draws against any of tableKeys
func (r *drawRecordRepository) ListByAccount(ctx context.Context, accountID int64, tableKeys []string, limit int) ([]*entities.DrawRecord, error) {
	if len(tableKeys) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + drawRecordColumns + `
		FROM draw_records
		WHERE account_id = $1 AND kind = 'table' AND table_key = ANY($2)
		ORDER BY id DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, accountID, tableKeys, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list draws for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var records []*entities.DrawRecord
	for rows.Next() {
		record, err := scanDrawRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draw record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate draw records: %w", err)
	}
	return records, nil
}

func scanDrawRecord(row pgx.Row) (*entities.DrawRecord, error) {
	var record entities.DrawRecord
	var kind string
	err := row.Scan(
		&record.ID,
		&record.AccountID,
		&record.TableID,
		&record.TableKey,
		&record.TableVersion,
		&kind,
		&record.Seed,
		&record.TotalWeight,
		&record.RawDrawValue,
		&record.ResolvedIndex,
		&record.ResolvedOutcomeID,
		&record.WinThreshold,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.Kind = entities.DrawKind(kind)
	return &record, nil
}
