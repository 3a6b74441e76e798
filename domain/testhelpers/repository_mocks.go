package testhelpers

import (
	"context"
	"encoding/json"
	"time"

	"skinvault/domain/entities"
	"skinvault/domain/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetForUpdate(ctx context.Context, id int64) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *entities.Account) (bool, error) {
	args := m.Called(ctx, account)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) UpdateProjection(ctx context.Context, account *entities.Account, currency entities.Currency, expectedVersion int64) error {
	args := m.Called(ctx, account, currency, expectedVersion)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateDailyStreak(ctx context.Context, accountID int64, streak int, claimedAt time.Time) error {
	args := m.Called(ctx, accountID, streak, claimedAt)
	return args.Error(0)
}

func (m *MockAccountRepository) ListReferrals(ctx context.Context, referrerID int64) ([]*entities.Referral, error) {
	args := m.Called(ctx, referrerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Referral), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Append(ctx context.Context, tx *entities.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*entities.Transaction, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SumDeltas(ctx context.Context, accountID int64, currency entities.Currency) (int64, error) {
	args := m.Called(ctx, accountID, currency)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) SumByReason(ctx context.Context, accountID int64, currency entities.Currency, reason entities.TransactionReason) (int64, error) {
	args := m.Called(ctx, accountID, currency, reason)
	return args.Get(0).(int64), args.Error(1)
}

// MockRewardTableRepository is a mock implementation of RewardTableRepository
type MockRewardTableRepository struct {
	mock.Mock
}

func (m *MockRewardTableRepository) Publish(ctx context.Context, table *entities.RewardTable) error {
	args := m.Called(ctx, table)
	return args.Error(0)
}

func (m *MockRewardTableRepository) GetLatest(ctx context.Context, key string) (*entities.RewardTable, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RewardTable), args.Error(1)
}

func (m *MockRewardTableRepository) GetByVersion(ctx context.Context, key string, version int) (*entities.RewardTable, error) {
	args := m.Called(ctx, key, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RewardTable), args.Error(1)
}

// MockDrawRecordRepository is a mock implementation of DrawRecordRepository
type MockDrawRecordRepository struct {
	mock.Mock
}

func (m *MockDrawRecordRepository) Create(ctx context.Context, record *entities.DrawRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDrawRecordRepository) GetByID(ctx context.Context, id int64) (*entities.DrawRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DrawRecord), args.Error(1)
}

func (m *MockDrawRecordRepository) ListByAccount(ctx context.Context, accountID int64, tableKeys []string, limit int) ([]*entities.DrawRecord, error) {
	args := m.Called(ctx, accountID, tableKeys, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.DrawRecord), args.Error(1)
}

// MockCatalogRepository is a mock implementation of CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) GetCase(ctx context.Context, key string) (*entities.Case, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Case), args.Error(1)
}

func (m *MockCatalogRepository) ListActiveCases(ctx context.Context) ([]*entities.Case, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Case), args.Error(1)
}

func (m *MockCatalogRepository) ListCases(ctx context.Context) ([]*entities.Case, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Case), args.Error(1)
}

func (m *MockCatalogRepository) GetGame(ctx context.Context, key string) (*entities.Game, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Game), args.Error(1)
}

func (m *MockCatalogRepository) ListActiveGames(ctx context.Context) ([]*entities.Game, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Game), args.Error(1)
}

func (m *MockCatalogRepository) GetItemTemplate(ctx context.Context, id int64) (*entities.ItemTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ItemTemplate), args.Error(1)
}

// MockInventoryRepository is a mock implementation of InventoryRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) Create(ctx context.Context, item *entities.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInventoryRepository) GetByID(ctx context.Context, id int64) (*entities.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) GetForUpdate(ctx context.Context, id int64) (*entities.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) Update(ctx context.Context, item *entities.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInventoryRepository) ListByAccount(ctx context.Context, accountID int64) ([]*entities.InventoryItem, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.InventoryItem), args.Error(1)
}

// MockListingRepository is a mock implementation of ListingRepository
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(ctx context.Context, listing *entities.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) GetByID(ctx context.Context, id int64) (*entities.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Listing), args.Error(1)
}

func (m *MockListingRepository) GetForUpdate(ctx context.Context, id int64) (*entities.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Listing), args.Error(1)
}

func (m *MockListingRepository) Update(ctx context.Context, listing *entities.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) ListActive(ctx context.Context, now time.Time, limit, offset int) ([]*entities.Listing, error) {
	args := m.Called(ctx, now, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Listing), args.Error(1)
}

func (m *MockListingRepository) ListExpiredIDs(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockListingRepository) ListClosedByAccount(ctx context.Context, accountID int64, limit int) ([]*entities.Listing, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Listing), args.Error(1)
}

// MockIdempotencyRepository is a mock implementation of IdempotencyRepository
type MockIdempotencyRepository struct {
	mock.Mock
}

func (m *MockIdempotencyRepository) Reserve(ctx context.Context, accountID int64, key, operation, requestHash string) (*entities.IdempotencyRecord, bool, error) {
	args := m.Called(ctx, accountID, key, operation, requestHash)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.IdempotencyRecord), args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyRepository) Complete(ctx context.Context, accountID int64, key string, response json.RawMessage) error {
	args := m.Called(ctx, accountID, key, response)
	return args.Error(0)
}

// MockWithdrawalRepository is a mock implementation of WithdrawalRepository
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, request *entities.WithdrawalRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetForUpdate(ctx context.Context, id int64) (*entities.WithdrawalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalRepository) Update(ctx context.Context, request *entities.WithdrawalRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) HasPending(ctx context.Context, accountID, templateID int64) (bool, error) {
	args := m.Called(ctx, accountID, templateID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWithdrawalRepository) ListByAccount(ctx context.Context, accountID int64) ([]*entities.WithdrawalRequest, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WithdrawalRequest), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockRandomSource is a mock implementation of RandomSource
type MockRandomSource struct {
	mock.Mock
}

func (m *MockRandomSource) Seed(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Debit(ctx context.Context, accountID int64, currency entities.Currency, amount int64, reason entities.TransactionReason, ref entities.TransactionRef) (*entities.Transaction, error) {
	args := m.Called(ctx, accountID, currency, amount, reason, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockLedgerService) Credit(ctx context.Context, accountID int64, currency entities.Currency, amount int64, reason entities.TransactionReason, ref entities.TransactionRef) (*entities.Transaction, error) {
	args := m.Called(ctx, accountID, currency, amount, reason, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockLedgerService) GetBalance(ctx context.Context, accountID int64, currency entities.Currency) (int64, error) {
	args := m.Called(ctx, accountID, currency)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) GetBalances(ctx context.Context, accountID int64) (*entities.Balances, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Balances), args.Error(1)
}

func (m *MockLedgerService) EnsureAccount(ctx context.Context, accountID int64, referrerID *int64) (*entities.Account, bool, error) {
	args := m.Called(ctx, accountID, referrerID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.Account), args.Bool(1), args.Error(2)
}

// MockDrawEngine is a mock implementation of DrawEngine
type MockDrawEngine struct {
	mock.Mock
}

func (m *MockDrawEngine) Draw(ctx context.Context, accountID int64, table *entities.RewardTable) (*entities.DrawRecord, *entities.RewardEntry, error) {
	args := m.Called(ctx, accountID, table)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*entities.DrawRecord), args.Get(1).(*entities.RewardEntry), args.Error(2)
}

func (m *MockDrawEngine) DrawChance(ctx context.Context, accountID int64, gameKey string, probability decimal.Decimal) (*entities.DrawRecord, bool, error) {
	args := m.Called(ctx, accountID, gameKey, probability)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*entities.DrawRecord), args.Bool(1), args.Error(2)
}

func (m *MockDrawEngine) Verify(ctx context.Context, drawID int64) (*entities.DrawVerification, error) {
	args := m.Called(ctx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DrawVerification), args.Error(1)
}
