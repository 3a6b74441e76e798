package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"skinvault/config"
	"skinvault/domain/entities"
	"skinvault/domain/events"
	"skinvault/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const (
	defaultBrowseLimit = 20
	maxBrowseLimit     = 100
)

// marketEscrowService holds listed items in escrow until they are sold,
// cancelled or expire. Locks are always taken listing, then item, then
// accounts in ascending id order.
type marketEscrowService struct {
	listingRepo    interfaces.ListingRepository
	inventoryRepo  interfaces.InventoryRepository
	accountRepo    interfaces.AccountRepository
	ledger         interfaces.LedgerService
	eventPublisher interfaces.EventPublisher
	now            func() time.Time
}

// NewMarketEscrowService creates a new market escrow service
func NewMarketEscrowService(
	listingRepo interfaces.ListingRepository,
	inventoryRepo interfaces.InventoryRepository,
	accountRepo interfaces.AccountRepository,
	ledger interfaces.LedgerService,
	eventPublisher interfaces.EventPublisher,
) interfaces.MarketEscrowService {
	return &marketEscrowService{
		listingRepo:    listingRepo,
		inventoryRepo:  inventoryRepo,
		accountRepo:    accountRepo,
		ledger:         ledger,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// List offers an available item for sale and locks it in escrow
func (s *marketEscrowService) List(ctx context.Context, sellerID, itemID, price int64, durationDays int) (*entities.Listing, error) {
	if price <= 0 {
		return nil, fmt.Errorf("ask price %d: %w", price, entities.ErrInvalidAmount)
	}
	duration, err := entities.ListingDuration(durationDays)
	if err != nil {
		return nil, err
	}

	item, err := s.inventoryRepo.GetForUpdate(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", itemID, entities.ErrItemNotOwned)
	}
	if err := item.CheckUsableBy(sellerID); err != nil {
		return nil, fmt.Errorf("item %d: %w", itemID, err)
	}

	now := s.now().UTC()
	listing := &entities.Listing{
		SellerID:  sellerID,
		ItemID:    itemID,
		AskPrice:  price,
		Currency:  entities.CurrencyStandard,
		State:     entities.ListingStateActive,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	}
	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	item.State = entities.ItemStateListed
	if err := s.inventoryRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to lock item in escrow: %w", err)
	}

	if err := s.publish(listing, ""); err != nil {
		return nil, err
	}

	return listing, nil
}

// Purchase buys an active listing, paying the seller minus the platform fee
func (s *marketEscrowService) Purchase(ctx context.Context, listingID, buyerID int64) (*entities.PurchaseResult, error) {
	listing, err := s.listingRepo.GetForUpdate(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock listing: %w", err)
	}
	if listing == nil {
		return nil, fmt.Errorf("listing %d: %w", listingID, entities.ErrNotFound)
	}
	if listing.SellerID == buyerID {
		return nil, entities.ErrSelfPurchase
	}

	now := s.now().UTC()
	if !listing.IsPurchasable(now) {
		return nil, fmt.Errorf("listing %d is %s: %w", listingID, listing.State, entities.ErrListingNotActive)
	}

	item, err := s.inventoryRepo.GetForUpdate(ctx, listing.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock item: %w", err)
	}
	if item == nil || item.State != entities.ItemStateListed || item.AccountID != listing.SellerID {
		return nil, fmt.Errorf("listing %d: escrowed item %d is inconsistent: %w", listingID, listing.ItemID, entities.ErrItemNotOwned)
	}

	cfg := config.Get()
	if err := s.lockAccounts(ctx, buyerID, listing.SellerID, cfg.PlatformAccountID); err != nil {
		return nil, err
	}

	fee := entities.MarketFee(listing.AskPrice, cfg.MarketFeeBasisPoints)
	sellerCredit := listing.AskPrice - fee
	listingRef := func() entities.TransactionRef {
		id := listing.ID
		return entities.TransactionRef{ListingID: &id, Metadata: map[string]any{"item_id": item.ID}}
	}

	if _, err := s.ledger.Debit(ctx, buyerID, listing.Currency, listing.AskPrice, entities.ReasonMarketPurchase, listingRef()); err != nil {
		return nil, fmt.Errorf("failed to charge buyer: %w", err)
	}
	if sellerCredit > 0 {
		if _, err := s.ledger.Credit(ctx, listing.SellerID, listing.Currency, sellerCredit, entities.ReasonMarketSale, listingRef()); err != nil {
			return nil, fmt.Errorf("failed to pay seller: %w", err)
		}
	}
	if fee > 0 {
		if _, err := s.ledger.Credit(ctx, cfg.PlatformAccountID, listing.Currency, fee, entities.ReasonMarketFee, listingRef()); err != nil {
			return nil, fmt.Errorf("failed to collect market fee: %w", err)
		}
	}

	item.AccountID = buyerID
	item.State = entities.ItemStateAvailable
	if err := s.inventoryRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to transfer item: %w", err)
	}

	if err := listing.Close(entities.ListingStateSold, &buyerID, now); err != nil {
		return nil, err
	}
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	if err := s.publish(listing, entities.ListingStateActive); err != nil {
		return nil, err
	}

	balances, err := s.ledger.GetBalances(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"listing_id": listing.ID,
		"buyer_id":   buyerID,
		"seller_id":  listing.SellerID,
		"price":      listing.AskPrice,
		"fee":        fee,
	}).Info("Listing sold")

	return &entities.PurchaseResult{
		Listing:      listing,
		Item:         item,
		Fee:          fee,
		SellerCredit: sellerCredit,
		Balances:     balances,
	}, nil
}

// Cancel withdraws an active listing and releases the item
func (s *marketEscrowService) Cancel(ctx context.Context, listingID, requesterID int64) (*entities.Listing, error) {
	listing, err := s.listingRepo.GetForUpdate(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock listing: %w", err)
	}
	if listing == nil {
		return nil, fmt.Errorf("listing %d: %w", listingID, entities.ErrNotFound)
	}
	if listing.SellerID != requesterID {
		return nil, entities.ErrNotOwner
	}

	if err := s.release(ctx, listing, entities.ListingStateCancelled); err != nil {
		return nil, err
	}
	return listing, nil
}

// Expire moves one listing to expired if it is still active and past its
// expiry. Safe to call concurrently and repeatedly.
func (s *marketEscrowService) Expire(ctx context.Context, listingID int64) (bool, error) {
	listing, err := s.listingRepo.GetForUpdate(ctx, listingID)
	if err != nil {
		return false, fmt.Errorf("failed to lock listing: %w", err)
	}
	if listing == nil || !listing.IsExpired(s.now().UTC()) {
		return false, nil
	}

	if err := s.release(ctx, listing, entities.ListingStateExpired); err != nil {
		return false, err
	}
	return true, nil
}

// Browse returns purchasable listings, newest first
func (s *marketEscrowService) Browse(ctx context.Context, limit, offset int) ([]*entities.Listing, error) {
	if limit <= 0 {
		limit = defaultBrowseLimit
	}
	if limit > maxBrowseLimit {
		limit = maxBrowseLimit
	}
	if offset < 0 {
		offset = 0
	}

	listings, err := s.listingRepo.ListActive(ctx, s.now().UTC(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to browse listings: %w", err)
	}
	return listings, nil
}

// History returns the closed listings an account sold or bought, tagged with its side
func (s *marketEscrowService) History(ctx context.Context, accountID int64, limit int) ([]*entities.MarketHistoryEntry, error) {
	if limit <= 0 {
		limit = defaultBrowseLimit
	}
	limit = min(limit, maxBrowseLimit)

	listings, err := s.listingRepo.ListClosedByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, err
	}

	history := make([]*entities.MarketHistoryEntry, 0, len(listings))
	for _, l := range listings {
		history = append(history, entities.NewMarketHistoryEntry(l, accountID))
	}
	return history, nil
}

// release closes an active listing into state and returns the item to its seller
func (s *marketEscrowService) release(ctx context.Context, listing *entities.Listing, state entities.ListingState) error {
	if listing.State != entities.ListingStateActive {
		return fmt.Errorf("listing %d is %s: %w", listing.ID, listing.State, entities.ErrListingNotActive)
	}

	item, err := s.inventoryRepo.GetForUpdate(ctx, listing.ItemID)
	if err != nil {
		return fmt.Errorf("failed to lock item: %w", err)
	}
	if item != nil && item.State == entities.ItemStateListed {
		item.State = entities.ItemStateAvailable
		if err := s.inventoryRepo.Update(ctx, item); err != nil {
			return fmt.Errorf("failed to release item: %w", err)
		}
	}

	if err := listing.Close(state, nil, s.now().UTC()); err != nil {
		return err
	}
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return err
	}

	return s.publish(listing, entities.ListingStateActive)
}

// lockAccounts takes the account row locks in ascending id order
func (s *marketEscrowService) lockAccounts(ctx context.Context, ids ...int64) error {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)

	for _, id := range slices.Compact(sorted) {
		account, err := s.accountRepo.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to lock account: %w", err)
		}
		if account == nil {
			return fmt.Errorf("account %d: %w", id, entities.ErrAccountNotFound)
		}
	}
	return nil
}

func (s *marketEscrowService) publish(listing *entities.Listing, oldState entities.ListingState) error {
	if err := s.eventPublisher.Publish(events.ListingStateChangedEvent{
		ListingID: listing.ID,
		SellerID:  listing.SellerID,
		ItemID:    listing.ItemID,
		BuyerID:   listing.BuyerID,
		OldState:  oldState,
		NewState:  listing.State,
		AskPrice:  listing.AskPrice,
	}); err != nil {
		return fmt.Errorf("failed to publish listing event: %w", err)
	}
	return nil
}
