package api

import (
	"context"

	"skinvault/domain/entities"

	"github.com/stretchr/testify/mock"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Authenticate(ctx context.Context, accountID int64, referrerID *int64) (*entities.Account, bool, error) {
	args := m.Called(ctx, accountID, referrerID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.Account), args.Bool(1), args.Error(2)
}

func (m *mockEngine) OpenCase(ctx context.Context, accountID int64, idempotencyKey, caseKey string) (*entities.RewardOutcome, error) {
	args := m.Called(ctx, accountID, idempotencyKey, caseKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RewardOutcome), args.Error(1)
}

func (m *mockEngine) PlayGame(ctx context.Context, accountID int64, idempotencyKey, gameKey string, stake int64) (*entities.GameOutcome, error) {
	args := m.Called(ctx, accountID, idempotencyKey, gameKey, stake)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GameOutcome), args.Error(1)
}

func (m *mockEngine) ListItem(ctx context.Context, sellerID int64, idempotencyKey string, itemID, price int64, durationDays int) (*entities.Listing, error) {
	args := m.Called(ctx, sellerID, idempotencyKey, itemID, price, durationDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Listing), args.Error(1)
}

func (m *mockEngine) PurchaseListing(ctx context.Context, buyerID int64, idempotencyKey string, listingID int64) (*entities.PurchaseResult, error) {
	args := m.Called(ctx, buyerID, idempotencyKey, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PurchaseResult), args.Error(1)
}

func (m *mockEngine) CancelListing(ctx context.Context, sellerID int64, idempotencyKey string, listingID int64) (*entities.Listing, error) {
	args := m.Called(ctx, sellerID, idempotencyKey, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Listing), args.Error(1)
}

func (m *mockEngine) CombineFragments(ctx context.Context, accountID int64, idempotencyKey string, templateID int64) (*entities.CombineResult, error) {
	args := m.Called(ctx, accountID, idempotencyKey, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CombineResult), args.Error(1)
}

func (m *mockEngine) ExchangeItem(ctx context.Context, accountID int64, idempotencyKey string, itemID int64) (*entities.ExchangeResult, error) {
	args := m.Called(ctx, accountID, idempotencyKey, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ExchangeResult), args.Error(1)
}

func (m *mockEngine) ClaimDaily(ctx context.Context, accountID int64, idempotencyKey string) (*entities.DailyClaimResult, error) {
	args := m.Called(ctx, accountID, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DailyClaimResult), args.Error(1)
}

func (m *mockEngine) RequestWithdrawal(ctx context.Context, accountID int64, idempotencyKey string, templateID int64, tradeLink string) (*entities.WithdrawalRequest, error) {
	args := m.Called(ctx, accountID, idempotencyKey, templateID, tradeLink)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WithdrawalRequest), args.Error(1)
}

func (m *mockEngine) ConfirmWithdrawal(ctx context.Context, requestID int64) (*entities.WithdrawalRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WithdrawalRequest), args.Error(1)
}

func (m *mockEngine) RejectWithdrawal(ctx context.Context, requestID int64, note string) (*entities.WithdrawalRequest, error) {
	args := m.Called(ctx, requestID, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WithdrawalRequest), args.Error(1)
}

func (m *mockEngine) GetBalances(ctx context.Context, accountID int64) (*entities.Balances, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Balances), args.Error(1)
}

func (m *mockEngine) ListTransactions(ctx context.Context, accountID int64, limit int) ([]*entities.Transaction, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

func (m *mockEngine) ListInventory(ctx context.Context, accountID int64) ([]*entities.InventoryItem, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.InventoryItem), args.Error(1)
}

func (m *mockEngine) ListFragments(ctx context.Context, accountID int64) (map[int64]int64, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}

func (m *mockEngine) ListWithdrawals(ctx context.Context, accountID int64) ([]*entities.WithdrawalRequest, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WithdrawalRequest), args.Error(1)
}

func (m *mockEngine) ListCases(ctx context.Context) ([]*entities.Case, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Case), args.Error(1)
}

func (m *mockEngine) CaseDrops(ctx context.Context, caseKey string) (*entities.CaseContents, error) {
	args := m.Called(ctx, caseKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CaseContents), args.Error(1)
}

func (m *mockEngine) CaseHistory(ctx context.Context, accountID int64, limit int) ([]*entities.CaseHistoryEntry, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CaseHistoryEntry), args.Error(1)
}

func (m *mockEngine) MarketHistory(ctx context.Context, accountID int64, limit int) ([]*entities.MarketHistoryEntry, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.MarketHistoryEntry), args.Error(1)
}

func (m *mockEngine) ListReferrals(ctx context.Context, accountID int64) (*entities.ReferralSummary, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ReferralSummary), args.Error(1)
}

func (m *mockEngine) ListGames(ctx context.Context) ([]*entities.Game, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Game), args.Error(1)
}

func (m *mockEngine) BrowseListings(ctx context.Context, limit, offset int) ([]*entities.Listing, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Listing), args.Error(1)
}

func (m *mockEngine) VerifyDraw(ctx context.Context, drawID int64) (*entities.DrawVerification, error) {
	args := m.Called(ctx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DrawVerification), args.Error(1)
}
