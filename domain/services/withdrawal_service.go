package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skinvault/domain/entities"
	"skinvault/domain/events"
	"skinvault/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// withdrawalService records withdrawal requests and settles them when the
// fulfillment collaborator confirms delivery
type withdrawalService struct {
	withdrawalRepo interfaces.WithdrawalRepository
	catalogRepo    interfaces.CatalogRepository
	accountRepo    interfaces.AccountRepository
	ledger         interfaces.LedgerService
	eventPublisher interfaces.EventPublisher
	now            func() time.Time
}

// NewWithdrawalService creates a new withdrawal service
func NewWithdrawalService(
	withdrawalRepo interfaces.WithdrawalRepository,
	catalogRepo interfaces.CatalogRepository,
	accountRepo interfaces.AccountRepository,
	ledger interfaces.LedgerService,
	eventPublisher interfaces.EventPublisher,
) interfaces.WithdrawalService {
	return &withdrawalService{
		withdrawalRepo: withdrawalRepo,
		catalogRepo:    catalogRepo,
		accountRepo:    accountRepo,
		ledger:         ledger,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// RequestWithdrawal records a pending request and debits its fragments and fee
// as a hold, so nothing else can spend them while fulfillment is in flight.
func (s *withdrawalService) RequestWithdrawal(ctx context.Context, accountID, templateID int64, tradeLink string) (*entities.WithdrawalRequest, error) {
	tradeLink = strings.TrimSpace(tradeLink)
	if tradeLink == "" {
		return nil, entities.ErrInvalidTradeLink
	}

	template, err := s.catalogRepo.GetItemTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item template: %w", err)
	}
	if template == nil {
		return nil, fmt.Errorf("item template %d: %w", templateID, entities.ErrNotFound)
	}

	account, err := s.accountRepo.GetForUpdate(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %d: %w", accountID, entities.ErrAccountNotFound)
	}

	pending, err := s.withdrawalRepo.HasPending(ctx, accountID, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending withdrawals: %w", err)
	}
	if pending {
		return nil, entities.ErrWithdrawalPending
	}

	if !account.CanAfford(entities.FragmentCurrency(templateID), template.FragmentsRequired) {
		return nil, fmt.Errorf("%w: need %d fragments of template %d", entities.ErrInsufficientFunds, template.FragmentsRequired, templateID)
	}
	if !account.CanAfford(entities.CurrencyPremium, template.WithdrawalFee) {
		return nil, fmt.Errorf("%w: withdrawal fee is %d premium", entities.ErrInsufficientFunds, template.WithdrawalFee)
	}

	request := &entities.WithdrawalRequest{
		AccountID:     accountID,
		TemplateID:    templateID,
		TradeLink:     tradeLink,
		FragmentsUsed: template.FragmentsRequired,
		PremiumFee:    template.WithdrawalFee,
	}
	if err := s.withdrawalRepo.Create(ctx, request); err != nil {
		return nil, err
	}
	if err := s.move(ctx, request, entities.ReasonWithdrawal); err != nil {
		return nil, err
	}

	if err := s.publish(request); err != nil {
		return nil, err
	}
	return request, nil
}

// ConfirmWithdrawal completes a pending request. The hold taken at request
// time becomes final.
func (s *withdrawalService) ConfirmWithdrawal(ctx context.Context, requestID int64) (*entities.WithdrawalRequest, error) {
	request, err := s.getPending(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, request, entities.WithdrawalCompleted, "")
}

// RejectWithdrawal closes a pending request and refunds its hold
func (s *withdrawalService) RejectWithdrawal(ctx context.Context, requestID int64, note string) (*entities.WithdrawalRequest, error) {
	request, err := s.getPending(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.move(ctx, request, entities.ReasonWithdrawalRefund); err != nil {
		return nil, err
	}
	return s.resolve(ctx, request, entities.WithdrawalRejected, note)
}

// move debits the request's fragments and fee for ReasonWithdrawal and
// credits them back for ReasonWithdrawalRefund
func (s *withdrawalService) move(ctx context.Context, request *entities.WithdrawalRequest, reason entities.TransactionReason) error {
	apply := s.ledger.Debit
	if reason == entities.ReasonWithdrawalRefund {
		apply = s.ledger.Credit
	}

	requestRef := entities.TransactionRef{Metadata: map[string]any{"withdrawal_id": request.ID}}
	if _, err := apply(ctx, request.AccountID, entities.FragmentCurrency(request.TemplateID),
		request.FragmentsUsed, reason, requestRef); err != nil {
		return fmt.Errorf("failed to move withdrawal fragments: %w", err)
	}
	if request.PremiumFee > 0 {
		if _, err := apply(ctx, request.AccountID, entities.CurrencyPremium,
			request.PremiumFee, reason, requestRef); err != nil {
			return fmt.Errorf("failed to move withdrawal fee: %w", err)
		}
	}
	return nil
}

func (s *withdrawalService) getPending(ctx context.Context, requestID int64) (*entities.WithdrawalRequest, error) {
	request, err := s.withdrawalRepo.GetForUpdate(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock withdrawal: %w", err)
	}
	if request == nil {
		return nil, fmt.Errorf("withdrawal %d: %w", requestID, entities.ErrNotFound)
	}
	if !request.IsPending() {
		return nil, fmt.Errorf("withdrawal %d is %s: %w", requestID, request.Status, entities.ErrWithdrawalNotPending)
	}
	return request, nil
}

func (s *withdrawalService) resolve(ctx context.Context, request *entities.WithdrawalRequest, status entities.WithdrawalStatus, note string) (*entities.WithdrawalRequest, error) {
	resolvedAt := s.now().UTC()
	request.Status = status
	request.Note = note
	request.ResolvedAt = &resolvedAt

	if err := s.withdrawalRepo.Update(ctx, request); err != nil {
		return nil, err
	}
	if err := s.publish(request); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"withdrawal_id": request.ID,
		"account_id":    request.AccountID,
		"template_id":   request.TemplateID,
		"status":        status,
	}).Info("Withdrawal resolved")

	return request, nil
}

func (s *withdrawalService) publish(request *entities.WithdrawalRequest) error {
	if err := s.eventPublisher.Publish(events.WithdrawalStateChangedEvent{
		RequestID:  request.ID,
		AccountID:  request.AccountID,
		TemplateID: request.TemplateID,
		TradeLink:  request.TradeLink,
		Status:     request.Status,
	}); err != nil {
		return fmt.Errorf("failed to publish withdrawal event: %w", err)
	}
	return nil
}
