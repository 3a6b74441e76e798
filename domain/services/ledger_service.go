package services

import (
	"context"
	"fmt"

	"skinvault/config"
	"skinvault/domain/entities"
	"skinvault/domain/events"
	"skinvault/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// ledgerService is the only writer of balances
type ledgerService struct {
	accountRepo     interfaces.AccountRepository
	transactionRepo interfaces.TransactionRepository
	eventPublisher  interfaces.EventPublisher
}

// NewLedgerService creates a new ledger service bound to the repositories of one unit of work
func NewLedgerService(
	accountRepo interfaces.AccountRepository,
	transactionRepo interfaces.TransactionRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.LedgerService {
	return &ledgerService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		eventPublisher:  eventPublisher,
	}
}

// Debit removes amount from an account
func (s *ledgerService) Debit(ctx context.Context, accountID int64, currency entities.Currency, amount int64, reason entities.TransactionReason, ref entities.TransactionRef) (*entities.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit of %d: %w", amount, entities.ErrInvalidAmount)
	}
	return s.apply(ctx, accountID, currency, -amount, reason, ref)
}

// Credit adds amount to an account
func (s *ledgerService) Credit(ctx context.Context, accountID int64, currency entities.Currency, amount int64, reason entities.TransactionReason, ref entities.TransactionRef) (*entities.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit of %d: %w", amount, entities.ErrInvalidAmount)
	}
	return s.apply(ctx, accountID, currency, amount, reason, ref)
}

// apply locks the account, writes the projection under its version and
// appends the ledger row. Both writes share the caller's transaction.
func (s *ledgerService) apply(ctx context.Context, accountID int64, currency entities.Currency, delta int64, reason entities.TransactionReason, ref entities.TransactionRef) (*entities.Transaction, error) {
	if err := currency.Validate(); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetForUpdate(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %d: %w", accountID, entities.ErrAccountNotFound)
	}
	if account.Disabled {
		return nil, fmt.Errorf("account %d: %w", accountID, entities.ErrAccountDisabled)
	}

	expectedVersion := account.Version
	balanceAfter, err := account.ApplyDelta(currency, delta)
	if err != nil {
		return nil, fmt.Errorf("%w: have %d %s, need %d", err, account.Balance(currency), currency, -delta)
	}

	if err := s.accountRepo.UpdateProjection(ctx, account, currency, expectedVersion); err != nil {
		return nil, err
	}

	tx := &entities.Transaction{
		AccountID:        accountID,
		Delta:            delta,
		Currency:         currency,
		Reason:           reason,
		BalanceAfter:     balanceAfter,
		RelatedDrawID:    ref.DrawID,
		RelatedListingID: ref.ListingID,
		Metadata:         ref.Metadata,
	}
	if err := s.transactionRepo.Append(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to append ledger row: %w", err)
	}

	if err := s.eventPublisher.Publish(events.TransactionRecordedEvent{
		TransactionID: tx.ID,
		AccountID:     accountID,
		Delta:         delta,
		Currency:      currency,
		Reason:        reason,
		BalanceAfter:  balanceAfter,
		Version:       account.Version,
		DrawID:        ref.DrawID,
		ListingID:     ref.ListingID,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish ledger event: %w", err)
	}

	log.WithFields(log.Fields{
		"account_id":    accountID,
		"delta":         delta,
		"currency":      currency,
		"reason":        reason,
		"balance_after": balanceAfter,
	}).Debug("Ledger row appended")

	return tx, nil
}

// GetBalance returns the balance for one currency as seen by the current transaction
func (s *ledgerService) GetBalance(ctx context.Context, accountID int64, currency entities.Currency) (int64, error) {
	if err := currency.Validate(); err != nil {
		return 0, err
	}
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return account.Balance(currency), nil
}

// GetBalances returns all balances of an account
func (s *ledgerService) GetBalances(ctx context.Context, accountID int64) (*entities.Balances, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account.Snapshot(), nil
}

func (s *ledgerService) getAccount(ctx context.Context, accountID int64) (*entities.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %d: %w", accountID, entities.ErrAccountNotFound)
	}
	return account, nil
}

// EnsureAccount creates the account on first use. A valid referrer other than
// the account itself is recorded and credited the referral bonus once.
func (s *ledgerService) EnsureAccount(ctx context.Context, accountID int64, referrerID *int64) (*entities.Account, bool, error) {
	account := &entities.Account{ID: accountID}

	if referrerID != nil && *referrerID != accountID {
		referrer, err := s.accountRepo.GetByID(ctx, *referrerID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to get referrer: %w", err)
		}
		if referrer != nil && !referrer.Disabled {
			account.ReferredBy = referrerID
		}
	}

	created, err := s.accountRepo.Create(ctx, account)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create account: %w", err)
	}
	if !created {
		existing, err := s.getAccount(ctx, accountID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	if err := s.eventPublisher.Publish(events.AccountCreatedEvent{
		AccountID:  accountID,
		ReferredBy: account.ReferredBy,
	}); err != nil {
		return nil, false, fmt.Errorf("failed to publish account event: %w", err)
	}

	bonus := config.Get().ReferralBonus
	if account.ReferredBy != nil && bonus > 0 {
		_, err := s.Credit(ctx, *account.ReferredBy, entities.CurrencyStandard, bonus, entities.ReasonReferralBonus,
			entities.TransactionRef{Metadata: map[string]any{"referred_account_id": accountID}})
		if err != nil {
			return nil, false, fmt.Errorf("failed to pay referral bonus: %w", err)
		}
		log.WithFields(log.Fields{
			"account_id":  accountID,
			"referrer_id": *account.ReferredBy,
			"bonus":       bonus,
		}).Info("Referral bonus paid")
	}

	return account, true, nil
}
