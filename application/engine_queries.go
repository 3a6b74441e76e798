package application

import (
	"context"
	"time"

	"skinvault/domain/entities"
	"skinvault/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// GetBalances returns display balances, served from the cache when possible
func (e *Engine) GetBalances(ctx context.Context, accountID int64) (*entities.Balances, error) {
	metrics := observability.GetMetrics()

	if e.balanceCache != nil {
		cached, err := e.balanceCache.Get(ctx, accountID)
		if err != nil {
			log.WithFields(log.Fields{
				"account_id": accountID,
				"error":      err,
			}).Warn("Balance cache read failed")
		}
		if cached != nil {
			metrics.RecordCacheLookup(true)
			return cached, nil
		}
		metrics.RecordCacheLookup(false)
	}

	balances, err := runQuery(ctx, e, "get_balances", func(ctx context.Context, _ UnitOfWork, svc *domainServices) (*entities.Balances, error) {
		return svc.ledger.GetBalances(ctx, accountID)
	})
	if err != nil {
		return nil, err
	}

	if e.balanceCache != nil {
		stored, err := e.balanceCache.Set(ctx, balances)
		if err != nil {
			log.WithFields(log.Fields{
				"account_id": accountID,
				"error":      err,
			}).Warn("Balance cache write failed")
		} else if !stored {
			log.WithFields(log.Fields{
				"account_id": accountID,
				"version":    balances.Version,
			}).Debug("Skipped caching superseded balances")
		}
	}
	return balances, nil
}

// ListTransactions returns the most recent ledger rows of an account
func (e *Engine) ListTransactions(ctx context.Context, accountID int64, limit int) ([]*entities.Transaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)
	return runQuery(ctx, e, "list_transactions", func(ctx context.Context, uow UnitOfWork, _ *domainServices) ([]*entities.Transaction, error) {
		return uow.TransactionRepository().ListByAccount(ctx, accountID, limit)
	})
}

// ListInventory returns the available and listed items of an account
func (e *Engine) ListInventory(ctx context.Context, accountID int64) ([]*entities.InventoryItem, error) {
	return runQuery(ctx, e, "list_inventory", func(ctx context.Context, _ UnitOfWork, svc *domainServices) ([]*entities.InventoryItem, error) {
		return svc.inventory.ListInventory(ctx, accountID)
	})
}

// ListFragments returns fragment counts per template
func (e *Engine) ListFragments(ctx context.Context, accountID int64) (map[int64]int64, error) {
	return runQuery(ctx, e, "list_fragments", func(ctx context.Context, _ UnitOfWork, svc *domainServices) (map[int64]int64, error) {
		return svc.inventory.ListFragments(ctx, accountID)
	})
}

// ListWithdrawals returns the withdrawal requests of an account
func (e *Engine) ListWithdrawals(ctx context.Context, accountID int64) ([]*entities.WithdrawalRequest, error) {
	return runQuery(ctx, e, "list_withdrawals", func(ctx context.Context, uow UnitOfWork, _ *domainServices) ([]*entities.WithdrawalRequest, error) {
		return uow.WithdrawalRepository().ListByAccount(ctx, accountID)
	})
}

// ListCases returns the cases that can be opened
func (e *Engine) ListCases(ctx context.Context) ([]*entities.Case, error) {
	return runQuery(ctx, e, "list_cases", func(ctx context.Context, _ UnitOfWork, svc *domainServices) ([]*entities.Case, error) {
		return svc.cases.ListCases(ctx)
	})
}

// CaseDrops lists what a case can drop, with the odds of each outcome
func (e *Engine) CaseDrops(ctx context.Context, caseKey string) (*entities.CaseContents, error) {
	return runQuery(ctx, e, "case_drops", func(ctx context.Context, _ UnitOfWork, svc *domainServices) (*entities.CaseContents, error) {
		return svc.cases.GetCaseDrops(ctx, caseKey)
	})
}

// CaseHistory returns an account's most recent case openings
func (e *Engine) CaseHistory(ctx context.Context, accountID int64, limit int) ([]*entities.CaseHistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)
	return runQuery(ctx, e, "case_history", func(ctx context.Context, _ UnitOfWork, svc *domainServices) ([]*entities.CaseHistoryEntry, error) {
		return svc.cases.History(ctx, accountID, limit)
	})
}

// ListGames returns the wager games that can be played
func (e *Engine) ListGames(ctx context.Context) ([]*entities.Game, error) {
	return runQuery(ctx, e, "list_games", func(ctx context.Context, _ UnitOfWork, svc *domainServices) ([]*entities.Game, error) {
		return svc.games.ListGames(ctx)
	})
}

// BrowseListings returns purchasable listings, newest first
func (e *Engine) BrowseListings(ctx context.Context, limit, offset int) ([]*entities.Listing, error) {
	return runQuery(ctx, e, "browse_listings", func(ctx context.Context, _ UnitOfWork, svc *domainServices) ([]*entities.Listing, error) {
		return svc.market.Browse(ctx, limit, offset)
	})
}

// MarketHistory returns the closed listings an account sold or bought
func (e *Engine) MarketHistory(ctx context.Context, accountID int64, limit int) ([]*entities.MarketHistoryEntry, error) {
	return runQuery(ctx, e, "market_history", func(ctx context.Context, _ UnitOfWork, svc *domainServices) ([]*entities.MarketHistoryEntry, error) {
		return svc.market.History(ctx, accountID, limit)
	})
}

// ListReferrals returns the accounts an account referred and the bonus earned
func (e *Engine) ListReferrals(ctx context.Context, accountID int64) (*entities.ReferralSummary, error) {
	return runQuery(ctx, e, "list_referrals", func(ctx context.Context, _ UnitOfWork, svc *domainServices) (*entities.ReferralSummary, error) {
		return svc.rewards.ListReferrals(ctx, accountID)
	})
}

// ExpiredListingIDs returns active listings whose expiry has passed
func (e *Engine) ExpiredListingIDs(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	return runQuery(ctx, e, "list_expired", func(ctx context.Context, uow UnitOfWork, _ *domainServices) ([]int64, error) {
		return uow.ListingRepository().ListExpiredIDs(ctx, now, limit)
	})
}

// VerifyDraw recomputes a persisted draw from its seed
func (e *Engine) VerifyDraw(ctx context.Context, drawID int64) (*entities.DrawVerification, error) {
	return runQuery(ctx, e, "verify_draw", func(ctx context.Context, _ UnitOfWork, svc *domainServices) (*entities.DrawVerification, error) {
		return svc.draws.Verify(ctx, drawID)
	})
}
