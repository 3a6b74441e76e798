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

const inventoryColumns = `id, account_id, template_id, state, source_draw_id, acquired_at, updated_at`

type inventoryRepository struct {
	q Queryable
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *database.DB) interfaces.InventoryRepository {
	return &inventoryRepository{q: db.Pool}
}

func newInventoryRepository(tx Queryable) interfaces.InventoryRepository {
	return &inventoryRepository{q: tx}
}

// Create inserts an item
func (r *inventoryRepository) Create(ctx context.Context, item *entities.InventoryItem) error {
	if item.State == "" {
		item.State = entities.ItemStateAvailable
	}

	query := `
		INSERT INTO inventory_items (account_id, template_id, state, source_draw_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, acquired_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		item.AccountID,
		item.TemplateID,
		string(item.State),
		item.SourceDrawID,
	).Scan(&item.ID, &item.AcquiredAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create item for account %d: %w", item.AccountID, err)
	}

	return nil
}

// GetByID retrieves an item
func (r *inventoryRepository) GetByID(ctx context.Context, id int64) (*entities.InventoryItem, error) {
	return r.get(ctx, `SELECT `+inventoryColumns+` FROM inventory_items WHERE id = $1`, id)
}

// GetForUpdate retrieves and locks an item row
func (r *inventoryRepository) GetForUpdate(ctx context.Context, id int64) (*entities.InventoryItem, error) {
	return r.get(ctx, `SELECT `+inventoryColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id)
}

func (r *inventoryRepository) get(ctx context.Context, query string, id int64) (*entities.InventoryItem, error) {
	item, err := scanInventoryItem(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item %d: %w", id, err)
	}
	return item, nil
}

// Update writes the owner and state of an item
func (r *inventoryRepository) Update(ctx context.Context, item *entities.InventoryItem) error {
	err := r.q.QueryRow(ctx, `
		UPDATE inventory_items
		SET account_id = $1, state = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`, item.AccountID, string(item.State), item.ID).Scan(&item.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("item %d: %w", item.ID, entities.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update item %d: %w", item.ID, err)
	}
	return nil
}

// ListByAccount returns the available and listed items of an account
func (r *inventoryRepository) ListByAccount(ctx context.Context, accountID int64) ([]*entities.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + `
		FROM inventory_items
		WHERE account_id = $1 AND state IN ('available', 'listed')
		ORDER BY acquired_at DESC, id DESC
	`

	rows, err := r.q.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var items []*entities.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func scanInventoryItem(row pgx.Row) (*entities.InventoryItem, error) {
	var item entities.InventoryItem
	var state string
	err := row.Scan(
		&item.ID,
		&item.AccountID,
		&item.TemplateID,
		&state,
		&item.SourceDrawID,
		&item.AcquiredAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.State = entities.ItemState(state)
	return &item, nil
}
