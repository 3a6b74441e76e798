package application

import (
	"context"

	"skinvault/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations.
// Every repository returned by a started unit of work shares one transaction.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	AccountRepository() interfaces.AccountRepository
	TransactionRepository() interfaces.TransactionRepository
	RewardTableRepository() interfaces.RewardTableRepository
	DrawRecordRepository() interfaces.DrawRecordRepository
	CatalogRepository() interfaces.CatalogRepository
	InventoryRepository() interfaces.InventoryRepository
	ListingRepository() interfaces.ListingRepository
	IdempotencyRepository() interfaces.IdempotencyRepository
	WithdrawalRepository() interfaces.WithdrawalRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
