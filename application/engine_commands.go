package application

import (
	"context"

	"skinvault/domain/entities"
)

// Operation names used for idempotency fingerprints, metrics and logs
const (
	OpAuthenticate      = "authenticate"
	OpOpenCase          = "open_case"
	OpPlayGame          = "play_game"
	OpListItem          = "list_item"
	OpPurchaseListing   = "purchase_listing"
	OpCancelListing     = "cancel_listing"
	OpExpireListing     = "expire_listing"
	OpCombineFragments  = "combine_fragments"
	OpExchangeItem      = "exchange_item"
	OpClaimDaily        = "claim_daily"
	OpRequestWithdrawal = "request_withdrawal"
	OpConfirmWithdrawal = "confirm_withdrawal"
	OpRejectWithdrawal  = "reject_withdrawal"
)

// Authenticate creates the account of a verified caller on first use and pays
// the referral bonus when a valid referrer is given
func (e *Engine) Authenticate(ctx context.Context, accountID int64, referrerID *int64) (*entities.Account, bool, error) {
	type authResult struct {
		Account *entities.Account
		Created bool
	}
	res, err := runCommand(ctx, e, command{operation: OpAuthenticate, accountID: accountID},
		func(ctx context.Context, _ UnitOfWork, svc *domainServices) (authResult, error) {
			account, created, err := svc.ledger.EnsureAccount(ctx, accountID, referrerID)
			return authResult{Account: account, Created: created}, err
		})
	if err != nil {
		return nil, false, err
	}
	return res.Account, res.Created, nil
}

// OpenCase debits the case price, draws from its reward table and grants the outcome
func (e *Engine) OpenCase(ctx context.Context, accountID int64, idempotencyKey, caseKey string) (*entities.RewardOutcome, error) {
	cmd := command{
		operation:      OpOpenCase,
		accountID:      accountID,
		idempotencyKey: idempotencyKey,
		params:         map[string]any{"case_key": caseKey},
		ensureAccount:  true,
	}
	return runCommand(ctx, e, cmd, func(ctx context.Context, _ UnitOfWork, svc *domainServices) (*entities.RewardOutcome, error) {
		return svc.cases.OpenCase(ctx, accountID, caseKey)
	})
}

// PlayGame debits the stake, resolves the game and credits any payout
func (e *Engine) PlayGame(ctx context.Context, accountID int64, idempotencyKey, gameKey string, stake int64) (*entities.GameOutcome, error) {
	cmd := command{
		operation:      OpPlayGame,
		accountID:      accountID,
		idempotencyKey: idempotencyKey,
		params:         map[string]any{"game_key": gameKey, "stake": stake},
		ensureAccount:  true,
	}
	return runCommand(ctx, e, cmd, func(ctx context.Context, _ UnitOfWork, svc *domainServices) (*entities.GameOutcome, error) {
		return svc.games.PlayGame(ctx, accountID, gameKey, stake)
	})
}

// ListItem puts an owned item into escrow and opens a listing
func (e *Engine) ListItem(ctx context.Context, sellerID int64, idempotencyKey string, itemID, price int64, durationDays int) (*entities.Listing, error) {
	cmd := command{
		operation:      OpListItem,
		accountID:      sellerID,
		idempotencyKey: idempotencyKey,
		params:         map[string]any{"item_id": itemID, "price": price, "duration_days": durationDays},
		ensureAccount:  true,
	}
	return runCommand(ctx, e, cmd, func(ctx context.Context, _ UnitOfWork, svc *domainServices) (*entities.Listing, error) {
		return svc.market.List(ctx, sellerID, itemID, price, durationDays)
	})
}

// PurchaseListing settles a listing: buyer pays, seller and platform are credited
// and the item changes owner
func (e *Engine) PurchaseListing(ctx context.Context, buyerID int64, idempotencyKey string, listingID int64) (*entities.PurchaseResult, error) {
	cmd := command{
		operation:      OpPurchaseListing,
		accountID:      buyerID,
		idempotencyKey: idempotencyKey,
		params:         map[string]any{"listing_id": listingID},
		ensureAccount:  true,
	}
	return runCommand(ctx, e, cmd, func(ctx context.Context, _ UnitOfWork, svc *domainServices) (*entities.PurchaseResult, error) {
		return svc.market.Purchase(ctx, listingID, buyerID)
	})
}

// CancelListing returns an escrowed item to its seller
func (e *Engine) CancelListing(ctx context.Context, sellerID int64, idempotencyKey string, listingID int64) (*entities.Listing, error) {
	cmd := command{
		operation:      OpCancelListing,
		accountID:      sellerID,
		idempotencyKey: idempotencyKey,
		params:         map[string]any{"listing_id": listingID},
		ensureAccount:  true,
	}
	return runCommand(ctx, e, cmd, func(ctx context.Context, _ UnitOfWork, svc *domainServices) (*entities.Listing, error) {
		return svc.market.Cancel(ctx, listingID, sellerID)
	})
}

// ExpireListing expires one listing if it is still active and past its expiry
func (e *Engine) ExpireListing(ctx context.Context, listingID int64) (bool, error) {
	return runCommand(ctx, e, command{operation: OpExpireListing},
		func(ctx context.Context, _ UnitOfWork, svc *domainServices) (bool, error) {
			return svc.market.Expire(ctx, listingID)
		})
}

// CombineFragments turns fragments of a template into one item
func (e *Engine) CombineFragments(ctx context.Context, accountID int64, idempotencyKey string, templateID int64) (*entities.CombineResult, error) {
	cmd := command{
		operation:      OpCombineFragments,
		accountID:      accountID,
		idempotencyKey: idempotencyKey,
		params:         map[string]any{"template_id": templateID},
		ensureAccount:  true,
	}
	return runCommand(ctx, e, cmd, func(ctx context.Context, _ UnitOfWork, svc *domainServices) (*entities.CombineResult, error) {
		return svc.inventory.CombineFragments(ctx, accountID, templateID)
	})
}

// ExchangeItem consumes an available item for its price in standard credits
func (e *Engine) ExchangeItem(ctx context.Context, accountID int64, idempotencyKey string, itemID int64) (*entities.ExchangeResult, error) {
	cmd := command{
		operation:      OpExchangeItem,
		accountID:      accountID,
		idempotencyKey: idempotencyKey,
		params:         map[string]any{"item_id": itemID},
		ensureAccount:  true,
	}
	return runCommand(ctx, e, cmd, func(ctx context.Context, _ UnitOfWork, svc *domainServices) (*entities.ExchangeResult, error) {
		return svc.inventory.ExchangeItem(ctx, accountID, itemID)
	})
}

// ClaimDaily pays the daily login reward
func (e *Engine) ClaimDaily(ctx context.Context, accountID int64, idempotencyKey string) (*entities.DailyClaimResult, error) {
	cmd := command{
		operation:      OpClaimDaily,
		accountID:      accountID,
		idempotencyKey: idempotencyKey,
		params:         map[string]any{},
		ensureAccount:  true,
	}
	return runCommand(ctx, e, cmd, func(ctx context.Context, _ UnitOfWork, svc *domainServices) (*entities.DailyClaimResult, error) {
		return svc.rewards.ClaimDaily(ctx, accountID)
	})
}

// RequestWithdrawal records a pending withdrawal for the fulfillment collaborator
func (e *Engine) RequestWithdrawal(ctx context.Context, accountID int64, idempotencyKey string, templateID int64, tradeLink string) (*entities.WithdrawalRequest, error) {
	cmd := command{
		operation:      OpRequestWithdrawal,
		accountID:      accountID,
		idempotencyKey: idempotencyKey,
		params:         map[string]any{"template_id": templateID, "trade_link": tradeLink},
		ensureAccount:  true,
	}
	return runCommand(ctx, e, cmd, func(ctx context.Context, _ UnitOfWork, svc *domainServices) (*entities.WithdrawalRequest, error) {
		return svc.withdrawals.RequestWithdrawal(ctx, accountID, templateID, tradeLink)
	})
}

// ConfirmWithdrawal debits fragments and fee and completes a pending request.
// Only pending requests transition, so a repeated confirmation fails with
// ErrWithdrawalNotPending instead of debiting twice.
func (e *Engine) ConfirmWithdrawal(ctx context.Context, requestID int64) (*entities.WithdrawalRequest, error) {
	return runCommand(ctx, e, command{operation: OpConfirmWithdrawal},
		func(ctx context.Context, _ UnitOfWork, svc *domainServices) (*entities.WithdrawalRequest, error) {
			return svc.withdrawals.ConfirmWithdrawal(ctx, requestID)
		})
}

// RejectWithdrawal closes a pending request without moving funds
func (e *Engine) RejectWithdrawal(ctx context.Context, requestID int64, note string) (*entities.WithdrawalRequest, error) {
	return runCommand(ctx, e, command{operation: OpRejectWithdrawal},
		func(ctx context.Context, _ UnitOfWork, svc *domainServices) (*entities.WithdrawalRequest, error) {
			return svc.withdrawals.RejectWithdrawal(ctx, requestID, note)
		})
}
