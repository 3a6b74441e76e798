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

const listingColumns = `id, seller_id, item_id, ask_price, currency, state, buyer_id, created_at, expires_at, closed_at`

type listingRepository struct {
	q Queryable
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *database.DB) interfaces.ListingRepository {
	return &listingRepository{q: db.Pool}
}

func newListingRepository(tx Queryable) interfaces.ListingRepository {
	return &listingRepository{q: tx}
}

// Create inserts an active listing. The partial unique index on item_id
// rejects a second active listing for the same item.
func (r *listingRepository) Create(ctx context.Context, listing *entities.Listing) error {
	if listing.Currency == "" {
		listing.Currency = entities.CurrencyStandard
	}
	listing.State = entities.ListingStateActive

	query := `
		INSERT INTO listings (seller_id, item_id, ask_price, currency, state, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		listing.SellerID,
		listing.ItemID,
		listing.AskPrice,
		string(listing.Currency),
		string(listing.State),
		listing.CreatedAt,
		listing.ExpiresAt,
	).Scan(&listing.ID)
	if database.IsUniqueViolation(err, "listings_one_active_per_item") {
		return fmt.Errorf("item %d: %w", listing.ItemID, entities.ErrItemLocked)
	}
	if err != nil {
		return fmt.Errorf("failed to create listing for item %d: %w", listing.ItemID, err)
	}

	return nil
}

// GetByID retrieves a listing
func (r *listingRepository) GetByID(ctx context.Context, id int64) (*entities.Listing, error) {
	return r.get(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
}

// GetForUpdate retrieves and locks a listing row
func (r *listingRepository) GetForUpdate(ctx context.Context, id int64) (*entities.Listing, error) {
	return r.get(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1 FOR UPDATE`, id)
}

func (r *listingRepository) get(ctx context.Context, query string, id int64) (*entities.Listing, error) {
	listing, err := scanListing(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing %d: %w", id, err)
	}
	return listing, nil
}

// Update writes the state, buyer and closed timestamp of a listing. Only an
// active row can be updated, so terminal listings never change.
func (r *listingRepository) Update(ctx context.Context, listing *entities.Listing) error {
	result, err := r.q.Exec(ctx, `
		UPDATE listings
		SET state = $1, buyer_id = $2, closed_at = $3
		WHERE id = $4 AND state = 'active'
	`, string(listing.State), listing.BuyerID, listing.ClosedAt, listing.ID)
	if err != nil {
		return fmt.Errorf("failed to update listing %d: %w", listing.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("listing %d: %w", listing.ID, entities.ErrListingNotActive)
	}
	return nil
}

// ListActive returns purchasable listings, newest first
func (r *listingRepository) ListActive(ctx context.Context, now time.Time, limit, offset int) ([]*entities.Listing, error) {
	query := `SELECT ` + listingColumns + `
		FROM listings
		WHERE state = 'active' AND expires_at > $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	listings, err := r.list(ctx, query, now, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list active listings: %w", err)
	}
	return listings, nil
}

// ListClosedByAccount returns sold, cancelled and expired listings the
// account was a party to
func (r *listingRepository) ListClosedByAccount(ctx context.Context, accountID int64, limit int) ([]*entities.Listing, error) {
	query := `SELECT ` + listingColumns + `
		FROM listings
		WHERE state <> 'active' AND (seller_id = $1 OR buyer_id = $1)
		ORDER BY closed_at DESC NULLS LAST, id DESC
		LIMIT $2
	`

	listings, err := r.list(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list market history for account %d: %w", accountID, err)
	}
	return listings, nil
}

func (r *listingRepository) list(ctx context.Context, query string, args ...any) ([]*entities.Listing, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*entities.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}
	return listings, nil
}

// ListExpiredIDs returns active listings whose expiry is at or before now
func (r *listingRepository) ListExpiredIDs(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id
		FROM listings
		WHERE state = 'active' AND expires_at <= $1
		ORDER BY expires_at, id
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired listings: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan listing id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expired listings: %w", err)
	}
	return ids, nil
}

func scanListing(row pgx.Row) (*entities.Listing, error) {
	var l entities.Listing
	var currency, state string
	err := row.Scan(
		&l.ID,
		&l.SellerID,
		&l.ItemID,
		&l.AskPrice,
		&currency,
		&state,
		&l.BuyerID,
		&l.CreatedAt,
		&l.ExpiresAt,
		&l.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Currency = entities.Currency(currency)
	l.State = entities.ListingState(state)
	return &l, nil
}
