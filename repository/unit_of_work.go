package repository

import (
	"context"
	"errors"
	"fmt"

	"skinvault/application"
	"skinvault/database"
	"skinvault/domain/interfaces"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// unitOfWork implements the application.UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	transactionalPublisher interfaces.TransactionalEventPublisher
	accountRepo            interfaces.AccountRepository
	transactionRepo        interfaces.TransactionRepository
	rewardTableRepo        interfaces.RewardTableRepository
	drawRecordRepo         interfaces.DrawRecordRepository
	catalogRepo            interfaces.CatalogRepository
	inventoryRepo          interfaces.InventoryRepository
	listingRepo            interfaces.ListingRepository
	idempotencyRepo        interfaces.IdempotencyRepository
	withdrawalRepo         interfaces.WithdrawalRepository
}

// UnitOfWorkFactory creates database units of work
type UnitOfWorkFactory struct {
	db *database.DB
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{db: db}
}

// CreateWithPublisher creates a new UnitOfWork whose events are held by the
// given transactional publisher until commit
func (f *UnitOfWorkFactory) CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.accountRepo = newAccountRepository(tx)
	u.transactionRepo = newTransactionRepository(tx)
	u.rewardTableRepo = newRewardTableRepository(tx)
	u.drawRecordRepo = newDrawRecordRepository(tx)
	u.catalogRepo = newCatalogRepository(tx)
	u.inventoryRepo = newInventoryRepository(tx)
	u.listingRepo = newListingRepository(tx)
	u.idempotencyRepo = newIdempotencyRepository(tx)
	u.withdrawalRepo = newWithdrawalRepository(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit. The commit already
	// happened, so publish failures are logged rather than returned.
	if u.transactionalPublisher != nil {
		if err := u.transactionalPublisher.Flush(u.ctx); err != nil {
			log.WithError(err).Error("Failed to flush events after commit")
		}
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	// Discard pending events on rollback
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	// The request context may already be done; rollback must still reach the server
	err := u.tx.Rollback(context.WithoutCancel(u.ctx))
	u.tx = nil
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

func (u *unitOfWork) AccountRepository() interfaces.AccountRepository {
	if u.accountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.accountRepo
}

func (u *unitOfWork) TransactionRepository() interfaces.TransactionRepository {
	if u.transactionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionRepo
}

func (u *unitOfWork) RewardTableRepository() interfaces.RewardTableRepository {
	if u.rewardTableRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.rewardTableRepo
}

func (u *unitOfWork) DrawRecordRepository() interfaces.DrawRecordRepository {
	if u.drawRecordRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.drawRecordRepo
}

func (u *unitOfWork) CatalogRepository() interfaces.CatalogRepository {
	if u.catalogRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.catalogRepo
}

func (u *unitOfWork) InventoryRepository() interfaces.InventoryRepository {
	if u.inventoryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.inventoryRepo
}

func (u *unitOfWork) ListingRepository() interfaces.ListingRepository {
	if u.listingRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.listingRepo
}

func (u *unitOfWork) IdempotencyRepository() interfaces.IdempotencyRepository {
	if u.idempotencyRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.idempotencyRepo
}

func (u *unitOfWork) WithdrawalRepository() interfaces.WithdrawalRepository {
	if u.withdrawalRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.withdrawalRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work has no event publisher")
	}
	return u.transactionalPublisher
}
