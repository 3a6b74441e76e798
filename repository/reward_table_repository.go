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

type rewardTableRepository struct {
	q Queryable
}

// NewRewardTableRepository creates a new reward table repository
func NewRewardTableRepository(db *database.DB) interfaces.RewardTableRepository {
	return &rewardTableRepository{q: db.Pool}
}

func newRewardTableRepository(tx Queryable) interfaces.RewardTableRepository {
	return &rewardTableRepository{q: tx}
}

// Publish stores the table as the next version of its key. Published rows are
// never updated.
func (r *rewardTableRepository) Publish(ctx context.Context, table *entities.RewardTable) error {
	if err := table.Validate(); err != nil {
		return err
	}

	entries, err := json.Marshal(table.Entries)
	if err != nil {
		return fmt.Errorf("failed to encode reward table %s: %w", table.Key, err)
	}

	query := `
		INSERT INTO reward_tables (table_key, version, entries, total_weight)
		SELECT $1, COALESCE(MAX(version), 0) + 1, $2, $3
		FROM reward_tables
		WHERE table_key = $1
		RETURNING id, version, published_at
	`

	err = r.q.QueryRow(ctx, query, table.Key, string(entries), int64(table.TotalWeight)).
		Scan(&table.ID, &table.Version, &table.PublishedAt)
	if database.IsUniqueViolation(err, "reward_tables_key_version") {
		return fmt.Errorf("reward table %s published concurrently: %w", table.Key, entities.ErrTryAgain)
	}
	if err != nil {
		return fmt.Errorf("failed to publish reward table %s: %w", table.Key, err)
	}

	return nil
}

// GetLatest returns the highest published version for key
func (r *rewardTableRepository) GetLatest(ctx context.Context, key string) (*entities.RewardTable, error) {
	query := `
		SELECT id, table_key, version, entries, total_weight, published_at
		FROM reward_tables
		WHERE table_key = $1
		ORDER BY version DESC
		LIMIT 1
	`
	return r.get(ctx, query, key)
}

// GetByVersion returns a specific published version
func (r *rewardTableRepository) GetByVersion(ctx context.Context, key string, version int) (*entities.RewardTable, error) {
	query := `
		SELECT id, table_key, version, entries, total_weight, published_at
		FROM reward_tables
		WHERE table_key = $1 AND version = $2
	`
	return r.get(ctx, query, key, version)
}

func (r *rewardTableRepository) get(ctx context.Context, query string, args ...any) (*entities.RewardTable, error) {
	var table entities.RewardTable
	var entries []byte
	var total int64

	err := r.q.QueryRow(ctx, query, args...).Scan(
		&table.ID,
		&table.Key,
		&table.Version,
		&entries,
		&total,
		&table.PublishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reward table: %w", err)
	}

	if err := json.Unmarshal(entries, &table.Entries); err != nil {
		return nil, fmt.Errorf("failed to decode reward table %s v%d: %w", table.Key, table.Version, err)
	}
	table.TotalWeight = entities.Weight(total)

	// A stored table that no longer validates must never be drawn from
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("stored reward table %s v%d: %w", table.Key, table.Version, err)
	}

	return &table, nil
}
