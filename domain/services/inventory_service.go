package services

import (
	"context"
	"fmt"

	"skinvault/domain/entities"
	"skinvault/domain/interfaces"
)

// inventoryService manages owned items and fragments
type inventoryService struct {
	inventoryRepo interfaces.InventoryRepository
	catalogRepo   interfaces.CatalogRepository
	accountRepo   interfaces.AccountRepository
	ledger        interfaces.LedgerService
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	inventoryRepo interfaces.InventoryRepository,
	catalogRepo interfaces.CatalogRepository,
	accountRepo interfaces.AccountRepository,
	ledger interfaces.LedgerService,
) interfaces.InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		catalogRepo:   catalogRepo,
		accountRepo:   accountRepo,
		ledger:        ledger,
	}
}

// CombineFragments spends the fragments required by a template for one item
func (s *inventoryService) CombineFragments(ctx context.Context, accountID, templateID int64) (*entities.CombineResult, error) {
	template, err := s.getTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	_, err = s.ledger.Debit(ctx, accountID, entities.FragmentCurrency(templateID), template.FragmentsRequired,
		entities.ReasonFragmentCombine, entities.TransactionRef{Metadata: map[string]any{"template_id": templateID}})
	if err != nil {
		return nil, fmt.Errorf("failed to spend fragments: %w", err)
	}

	item := &entities.InventoryItem{
		AccountID:  accountID,
		TemplateID: templateID,
		State:      entities.ItemStateAvailable,
	}
	if err := s.inventoryRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create combined item: %w", err)
	}

	balances, err := s.ledger.GetBalances(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &entities.CombineResult{
		Item:          item,
		FragmentsUsed: template.FragmentsRequired,
		Balances:      balances,
	}, nil
}

// ExchangeItem consumes an available item for its price in standard credits.
// Items held in escrow cannot be exchanged.
func (s *inventoryService) ExchangeItem(ctx context.Context, accountID, itemID int64) (*entities.ExchangeResult, error) {
	item, err := s.inventoryRepo.GetForUpdate(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", itemID, entities.ErrItemNotOwned)
	}
	if err := item.CheckUsableBy(accountID); err != nil {
		return nil, fmt.Errorf("item %d: %w", itemID, err)
	}

	template, err := s.getTemplate(ctx, item.TemplateID)
	if err != nil {
		return nil, err
	}

	item.State = entities.ItemStateExchanged
	if err := s.inventoryRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to consume item: %w", err)
	}

	if template.Price > 0 {
		_, err := s.ledger.Credit(ctx, accountID, entities.CurrencyStandard, template.Price,
			entities.ReasonItemExchange, entities.TransactionRef{Metadata: map[string]any{"item_id": item.ID}})
		if err != nil {
			return nil, fmt.Errorf("failed to credit exchange: %w", err)
		}
	}

	balances, err := s.ledger.GetBalances(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &entities.ExchangeResult{
		Item:     item,
		Credited: template.Price,
		Balances: balances,
	}, nil
}

// ListInventory returns the available and listed items of an account
func (s *inventoryService) ListInventory(ctx context.Context, accountID int64) ([]*entities.InventoryItem, error) {
	items, err := s.inventoryRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

// ListFragments returns fragment counts keyed by item template
func (s *inventoryService) ListFragments(ctx context.Context, accountID int64) (map[int64]int64, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %d: %w", accountID, entities.ErrAccountNotFound)
	}
	return account.Snapshot().Fragments, nil
}

func (s *inventoryService) getTemplate(ctx context.Context, templateID int64) (*entities.ItemTemplate, error) {
	template, err := s.catalogRepo.GetItemTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item template: %w", err)
	}
	if template == nil {
		return nil, fmt.Errorf("item template %d: %w", templateID, entities.ErrNotFound)
	}
	return template, nil
}
