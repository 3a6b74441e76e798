package interfaces

import (
	"context"
	"encoding/json"
	"time"

	"skinvault/domain/entities"
	"skinvault/domain/events"
)

// AccountRepository defines the interface for account projection access
type AccountRepository interface {
	// GetByID retrieves an account with its fragment counts, nil if missing
	GetByID(ctx context.Context, id int64) (*entities.Account, error)

	// GetForUpdate retrieves an account and locks its row until the transaction ends
	GetForUpdate(ctx context.Context, id int64) (*entities.Account, error)

	// Create inserts a new account with zero balances. Returns false if it already existed.
	Create(ctx context.Context, account *entities.Account) (bool, error)

	// UpdateProjection writes the balance for currency and bumps the version.
	// Returns ErrVersionConflict if the stored version differs from expectedVersion.
	UpdateProjection(ctx context.Context, account *entities.Account, currency entities.Currency, expectedVersion int64) error

	// UpdateDailyStreak records a daily reward claim
	UpdateDailyStreak(ctx context.Context, accountID int64, streak int, claimedAt time.Time) error

	// ListReferrals returns the accounts referred by referrerID, newest first
	ListReferrals(ctx context.Context, referrerID int64) ([]*entities.Referral, error)
}

// TransactionRepository defines the interface for the append-only ledger
type TransactionRepository interface {
	// Append inserts a ledger row and sets its ID and CreatedAt
	Append(ctx context.Context, tx *entities.Transaction) error

	// ListByAccount returns the most recent ledger rows for an account
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]*entities.Transaction, error)

	// SumDeltas returns the sum of all deltas for an account and currency
	SumDeltas(ctx context.Context, accountID int64, currency entities.Currency) (int64, error)

	// SumByReason returns the sum of deltas an account received for one reason
	SumByReason(ctx context.Context, accountID int64, currency entities.Currency, reason entities.TransactionReason) (int64, error)
}

// RewardTableRepository defines the interface for versioned reward tables
type RewardTableRepository interface {
	// Publish stores the table as the next version of its key and sets ID, Version and PublishedAt
	Publish(ctx context.Context, table *entities.RewardTable) error

	// GetLatest returns the highest published version for key, nil if none
	GetLatest(ctx context.Context, key string) (*entities.RewardTable, error)

	// GetByVersion returns a specific published version, nil if missing
	GetByVersion(ctx context.Context, key string, version int) (*entities.RewardTable, error)
}

// DrawRecordRepository defines the interface for draw evidence
type DrawRecordRepository interface {
	// Create persists a draw record and sets its ID and CreatedAt
	Create(ctx context.Context, record *entities.DrawRecord) error

	// GetByID retrieves a draw record, nil if missing
	GetByID(ctx context.Context, id int64) (*entities.DrawRecord, error)

	// ListByAccount returns an account's table draws against any of tableKeys, newest first
	ListByAccount(ctx context.Context, accountID int64, tableKeys []string, limit int) ([]*entities.DrawRecord, error)
}

// CatalogRepository defines read access to cases, games and item templates
type CatalogRepository interface {
	GetCase(ctx context.Context, key string) (*entities.Case, error)
	ListActiveCases(ctx context.Context) ([]*entities.Case, error)
	// ListCases includes retired cases, for history lookups
	ListCases(ctx context.Context) ([]*entities.Case, error)
	GetGame(ctx context.Context, key string) (*entities.Game, error)
	ListActiveGames(ctx context.Context) ([]*entities.Game, error)
	GetItemTemplate(ctx context.Context, id int64) (*entities.ItemTemplate, error)
}

// InventoryRepository defines the interface for owned items
type InventoryRepository interface {
	// Create inserts an item and sets its ID and timestamps
	Create(ctx context.Context, item *entities.InventoryItem) error

	// GetByID retrieves an item, nil if missing
	GetByID(ctx context.Context, id int64) (*entities.InventoryItem, error)

	// GetForUpdate retrieves and locks an item row
	GetForUpdate(ctx context.Context, id int64) (*entities.InventoryItem, error)

	// Update writes the owner and state of an item
	Update(ctx context.Context, item *entities.InventoryItem) error

	// ListByAccount returns the available and listed items of an account
	ListByAccount(ctx context.Context, accountID int64) ([]*entities.InventoryItem, error)
}

// ListingRepository defines the interface for market listings
type ListingRepository interface {
	// Create inserts an active listing. Returns ErrItemLocked if the item already has one.
	Create(ctx context.Context, listing *entities.Listing) error

	// GetByID retrieves a listing, nil if missing
	GetByID(ctx context.Context, id int64) (*entities.Listing, error)

	// GetForUpdate retrieves and locks a listing row
	GetForUpdate(ctx context.Context, id int64) (*entities.Listing, error)

	// Update writes the state, buyer and closed timestamp of a listing
	Update(ctx context.Context, listing *entities.Listing) error

	// ListActive returns purchasable listings, newest first
	ListActive(ctx context.Context, now time.Time, limit, offset int) ([]*entities.Listing, error)

	// ListExpiredIDs returns active listings whose expiry is at or before now
	ListExpiredIDs(ctx context.Context, now time.Time, limit int) ([]int64, error)

	// ListClosedByAccount returns closed listings the account sold or bought,
	// most recently closed first
	ListClosedByAccount(ctx context.Context, accountID int64, limit int) ([]*entities.Listing, error)
}

// IdempotencyRepository defines the interface for stored request outcomes
type IdempotencyRepository interface {
	// Reserve inserts the key inside the current transaction. If the key already
	// exists the stored record is returned with reserved == false. A concurrent
	// reservation of the same key blocks until the other transaction finishes.
	Reserve(ctx context.Context, accountID int64, key, operation, requestHash string) (record *entities.IdempotencyRecord, reserved bool, err error)

	// Complete stores the response for a reserved key
	Complete(ctx context.Context, accountID int64, key string, response json.RawMessage) error
}

// WithdrawalRepository defines the interface for withdrawal requests
type WithdrawalRepository interface {
	Create(ctx context.Context, request *entities.WithdrawalRequest) error
	GetForUpdate(ctx context.Context, id int64) (*entities.WithdrawalRequest, error)
	Update(ctx context.Context, request *entities.WithdrawalRequest) error

	// HasPending reports whether an account already has a pending request for a template
	HasPending(ctx context.Context, accountID, templateID int64) (bool, error)

	ListByAccount(ctx context.Context, accountID int64) ([]*entities.WithdrawalRequest, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher holds events until the unit of work commits
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes pending events; called after commit
	Flush(ctx context.Context) error

	// Discard drops pending events; called on rollback
	Discard()
}

// RandomSource supplies seed bytes from a cryptographically secure generator
type RandomSource interface {
	// Seed returns entities.SeedSize random bytes or an error; it never falls back
	Seed(ctx context.Context) ([]byte, error)
}
