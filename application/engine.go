package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"skinvault/config"
	"skinvault/domain/entities"
	"skinvault/domain/interfaces"
	"skinvault/domain/services"
	"skinvault/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// Engine is the entry point for every caller. Each mutating operation runs as
// one atomic unit: a single database transaction holding the idempotency
// reservation, the ledger rows, the draw record and every state change.
type Engine struct {
	uowFactory     UnitOfWorkFactory
	random         interfaces.RandomSource
	balanceCache   BalanceCache
	requestTimeout time.Duration
	maxRetries     uint64
}

// NewEngine creates an engine. balanceCache may be nil.
func NewEngine(uowFactory UnitOfWorkFactory, random interfaces.RandomSource, balanceCache BalanceCache) *Engine {
	cfg := config.Get()
	return &Engine{
		uowFactory:     uowFactory,
		random:         random,
		balanceCache:   balanceCache,
		requestTimeout: cfg.RequestTimeout,
		maxRetries:     cfg.MaxRetries,
	}
}

// domainServices are the services bound to one unit of work
type domainServices struct {
	ledger      interfaces.LedgerService
	draws       interfaces.DrawEngine
	cases       interfaces.CaseOpeningService
	games       interfaces.WagerGameService
	market      interfaces.MarketEscrowService
	inventory   interfaces.InventoryService
	withdrawals interfaces.WithdrawalService
	rewards     interfaces.RewardProgramService
}

func (e *Engine) newServices(uow UnitOfWork) *domainServices {
	ledger := services.NewLedgerService(uow.AccountRepository(), uow.TransactionRepository(), uow.EventBus())
	draws := services.NewDrawEngine(uow.DrawRecordRepository(), uow.RewardTableRepository(), e.random, uow.EventBus())

	return &domainServices{
		ledger: ledger,
		draws:  draws,
		cases: services.NewCaseOpeningService(
			uow.CatalogRepository(),
			uow.RewardTableRepository(),
			uow.InventoryRepository(),
			uow.DrawRecordRepository(),
			ledger,
			draws,
			uow.EventBus(),
		),
		games: services.NewWagerGameService(
			uow.CatalogRepository(),
			uow.RewardTableRepository(),
			ledger,
			draws,
			uow.EventBus(),
		),
		market: services.NewMarketEscrowService(
			uow.ListingRepository(),
			uow.InventoryRepository(),
			uow.AccountRepository(),
			ledger,
			uow.EventBus(),
		),
		inventory: services.NewInventoryService(
			uow.InventoryRepository(),
			uow.CatalogRepository(),
			uow.AccountRepository(),
			ledger,
		),
		withdrawals: services.NewWithdrawalService(
			uow.WithdrawalRepository(),
			uow.CatalogRepository(),
			uow.AccountRepository(),
			ledger,
			uow.EventBus(),
		),
		rewards: services.NewRewardProgramService(uow.AccountRepository(), uow.TransactionRepository(), ledger),
	}
}

// command describes one mutating request
type command struct {
	operation string
	accountID int64

	// idempotencyKey is optional; empty keys skip the reservation
	idempotencyKey string
	params         any

	// ensureAccount creates the caller's account on first use
	ensureAccount bool
}

type unitFunc[T any] func(ctx context.Context, uow UnitOfWork, svc *domainServices) (T, error)

// runCommand executes fn as an atomic unit with timeout, idempotency and
// bounded retries on conflicts
func runCommand[T any](ctx context.Context, e *Engine, cmd command, fn unitFunc[T]) (T, error) {
	var zero T

	ctx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	var requestHash string
	if cmd.idempotencyKey != "" {
		hash, err := entities.HashRequest(cmd.operation, cmd.params)
		if err != nil {
			return zero, err
		}
		requestHash = hash
	}

	metrics := observability.GetMetrics()
	start := time.Now()

	var (
		result   T
		replayed bool
	)
	err := retryOnConflict(ctx, cmd.operation, e.maxRetries, func() { metrics.RecordRetry(cmd.operation) }, func() error {
		var attemptErr error
		result, replayed, attemptErr = runAttempt(ctx, e, cmd, requestHash, fn)
		return attemptErr
	})

	e.observe(cmd.operation, cmd.accountID, time.Since(start), replayed, err)
	if err != nil {
		return zero, err
	}
	return result, nil
}

// runAttempt runs a single transaction. Anything short of a successful commit
// rolls back, which also discards the pending events.
func runAttempt[T any](ctx context.Context, e *Engine, cmd command, requestHash string, fn unitFunc[T]) (result T, replayed bool, err error) {
	uow := e.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return result, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = uow.Rollback()
			panic(r)
		}
		if rbErr := uow.Rollback(); rbErr != nil {
			log.WithFields(log.Fields{
				"operation": cmd.operation,
				"error":     rbErr,
			}).Warn("Rollback failed")
		}
	}()

	if cmd.idempotencyKey != "" {
		record, reserved, err := uow.IdempotencyRepository().Reserve(ctx, cmd.accountID, cmd.idempotencyKey, cmd.operation, requestHash)
		if err != nil {
			return result, false, err
		}
		if !reserved {
			result, err = replay[T](cmd, record, requestHash)
			return result, err == nil, err
		}
	}

	svc := e.newServices(uow)
	if cmd.ensureAccount {
		if _, _, err := svc.ledger.EnsureAccount(ctx, cmd.accountID, nil); err != nil {
			return result, false, err
		}
	}

	result, err = fn(ctx, uow, svc)
	if err != nil {
		return result, false, err
	}

	if cmd.idempotencyKey != "" {
		response, err := json.Marshal(result)
		if err != nil {
			return result, false, fmt.Errorf("failed to encode response: %w", err)
		}
		if err := uow.IdempotencyRepository().Complete(ctx, cmd.accountID, cmd.idempotencyKey, response); err != nil {
			return result, false, err
		}
	}

	if err := uow.Commit(); err != nil {
		return result, false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, false, nil
}

// replay returns the stored response of an already completed request
func replay[T any](cmd command, record *entities.IdempotencyRecord, requestHash string) (T, error) {
	var result T
	if record.Operation != cmd.operation || record.RequestHash != requestHash {
		return result, entities.ErrIdempotencyKeyReused
	}
	if !record.IsComplete() {
		// The reservation committed without a response; only a crash between
		// the two statements can cause this and the caller should retry.
		return result, fmt.Errorf("idempotency key %q has no stored response: %w", cmd.idempotencyKey, entities.ErrTryAgain)
	}
	if err := json.Unmarshal(record.Response, &result); err != nil {
		return result, fmt.Errorf("failed to decode stored response: %w", err)
	}
	return result, nil
}

// runQuery executes a read-only unit. Nothing is committed.
func runQuery[T any](ctx context.Context, e *Engine, operation string, fn unitFunc[T]) (T, error) {
	var result T

	ctx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	start := time.Now()
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	result, err := fn(ctx, uow, e.newServices(uow))
	e.observe(operation, 0, time.Since(start), false, err)
	return result, err
}

// observe records the outcome of an operation and logs integrity failures
func (e *Engine) observe(operation string, accountID int64, elapsed time.Duration, replayed bool, err error) {
	metrics := observability.GetMetrics()

	outcome := observability.OutcomeSuccess
	switch entities.Classify(err) {
	case entities.KindNone:
		if replayed {
			outcome = observability.OutcomeReplayed
		}
	case entities.KindUserRecoverable:
		outcome = observability.OutcomeRejected
	case entities.KindConflict:
		outcome = observability.OutcomeConflict
		log.WithFields(log.Fields{
			"operation":  operation,
			"account_id": accountID,
			"error":      err,
		}).Warn("Operation gave up after repeated conflicts")
	case entities.KindIntegrity:
		outcome = observability.OutcomeFailed
		if entities.IsTimeout(err) {
			log.WithFields(log.Fields{
				"operation":  operation,
				"account_id": accountID,
				"elapsed":    elapsed,
			}).Warn("Operation timed out and was rolled back")
			break
		}
		metrics.RecordIntegrityFailure(operation)
		log.WithFields(log.Fields{
			"operation":  operation,
			"account_id": accountID,
			"error":      err,
		}).Error("Integrity failure, operation rolled back")
	}

	metrics.RecordOperation(operation, outcome, elapsed)
}
