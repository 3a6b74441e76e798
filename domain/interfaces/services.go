package interfaces

import (
	"context"

	"skinvault/domain/entities"

	"github.com/shopspring/decimal"
)

// LedgerService is the only writer of balances. Every call must run inside a
// unit of work; it locks the account row and appends exactly one ledger row.
type LedgerService interface {
	// Debit removes amount from an account, failing with ErrInsufficientFunds
	Debit(ctx context.Context, accountID int64, currency entities.Currency, amount int64, reason entities.TransactionReason, ref entities.TransactionRef) (*entities.Transaction, error)

	// Credit adds amount to an account
	Credit(ctx context.Context, accountID int64, currency entities.Currency, amount int64, reason entities.TransactionReason, ref entities.TransactionRef) (*entities.Transaction, error)

	// GetBalance returns the strongly consistent balance for one currency
	GetBalance(ctx context.Context, accountID int64, currency entities.Currency) (int64, error)

	// GetBalances returns all balances of an account
	GetBalances(ctx context.Context, accountID int64) (*entities.Balances, error)

	// EnsureAccount creates the account on first use and pays the referral bonus
	EnsureAccount(ctx context.Context, accountID int64, referrerID *int64) (*entities.Account, bool, error)
}

// DrawEngine produces and persists provably fair draws
type DrawEngine interface {
	// Draw resolves a reward table for an account and persists the record
	Draw(ctx context.Context, accountID int64, table *entities.RewardTable) (*entities.DrawRecord, *entities.RewardEntry, error)

	// DrawChance resolves a fixed-probability draw for a game
	DrawChance(ctx context.Context, accountID int64, gameKey string, probability decimal.Decimal) (*entities.DrawRecord, bool, error)

	// Verify recomputes a persisted draw from its seed
	Verify(ctx context.Context, drawID int64) (*entities.DrawVerification, error)
}

// CaseOpeningService opens cases
type CaseOpeningService interface {
	OpenCase(ctx context.Context, accountID int64, caseKey string) (*entities.RewardOutcome, error)
	ListCases(ctx context.Context) ([]*entities.Case, error)
	// GetCaseDrops lists what a case can drop under its latest table
	GetCaseDrops(ctx context.Context, caseKey string) (*entities.CaseContents, error)
	// History returns an account's past case openings
	History(ctx context.Context, accountID int64, limit int) ([]*entities.CaseHistoryEntry, error)
}

// WagerGameService resolves instant wager games
type WagerGameService interface {
	PlayGame(ctx context.Context, accountID int64, gameKey string, stake int64) (*entities.GameOutcome, error)
	ListGames(ctx context.Context) ([]*entities.Game, error)
}

// MarketEscrowService manages listings and holds items in escrow
type MarketEscrowService interface {
	List(ctx context.Context, sellerID, itemID, price int64, durationDays int) (*entities.Listing, error)
	Purchase(ctx context.Context, listingID, buyerID int64) (*entities.PurchaseResult, error)
	Cancel(ctx context.Context, listingID, requesterID int64) (*entities.Listing, error)

	// Expire moves one listing to expired if it is still active and past its expiry
	Expire(ctx context.Context, listingID int64) (bool, error)

	Browse(ctx context.Context, limit, offset int) ([]*entities.Listing, error)
	// History returns closed listings the account sold or bought
	History(ctx context.Context, accountID int64, limit int) ([]*entities.MarketHistoryEntry, error)
}

// InventoryService manages owned items and fragments
type InventoryService interface {
	CombineFragments(ctx context.Context, accountID, templateID int64) (*entities.CombineResult, error)
	ExchangeItem(ctx context.Context, accountID, itemID int64) (*entities.ExchangeResult, error)
	ListInventory(ctx context.Context, accountID int64) ([]*entities.InventoryItem, error)
	ListFragments(ctx context.Context, accountID int64) (map[int64]int64, error)
}

// WithdrawalService manages withdrawal requests
type WithdrawalService interface {
	RequestWithdrawal(ctx context.Context, accountID, templateID int64, tradeLink string) (*entities.WithdrawalRequest, error)
	ConfirmWithdrawal(ctx context.Context, requestID int64) (*entities.WithdrawalRequest, error)
	RejectWithdrawal(ctx context.Context, requestID int64, note string) (*entities.WithdrawalRequest, error)
}

// RewardProgramService pays login rewards
type RewardProgramService interface {
	ClaimDaily(ctx context.Context, accountID int64) (*entities.DailyClaimResult, error)
	ListReferrals(ctx context.Context, accountID int64) (*entities.ReferralSummary, error)
}
