package services

import (
	"context"
	"os"
	"testing"

	"skinvault/config"
	"skinvault/domain/entities"
	"skinvault/domain/events"
	"skinvault/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

// Test constants for consistent test data
const (
	TestAccountID       = int64(100)
	TestSellerID        = int64(200)
	TestBuyerID         = int64(300)
	TestReferrerID      = int64(400)
	TestPlatformID      = int64(0)
	TestInitialBalance  = int64(10_000)
	TestItemID          = int64(7)
	TestListingID       = int64(11)
	TestDrawID          = int64(42)
	TestTemplateID      = int64(4)
	TestWithdrawalID    = int64(5)
	TestCaseKey         = "standard"
	TestRewardTableKey  = "case.standard"
	TestChanceGameKey   = "dice"
	TestTableGameKey    = "slots"
	TestSlotsTableKey   = "game.slots"
	TestCasePrice       = int64(100)
	TestTemplatePrice   = int64(1500)
	TestFragmentsNeeded = int64(40)
	TestWithdrawalFee   = int64(300)
)

func TestMain(m *testing.M) {
	config.SetTestConfig(config.NewTestConfig())
	os.Exit(m.Run())
}

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	AccountRepo     *testhelpers.MockAccountRepository
	TransactionRepo *testhelpers.MockTransactionRepository
	RewardTableRepo *testhelpers.MockRewardTableRepository
	DrawRepo        *testhelpers.MockDrawRecordRepository
	CatalogRepo     *testhelpers.MockCatalogRepository
	InventoryRepo   *testhelpers.MockInventoryRepository
	ListingRepo     *testhelpers.MockListingRepository
	WithdrawalRepo  *testhelpers.MockWithdrawalRepository
	EventPublisher  *testhelpers.MockEventPublisher
	Random          *testhelpers.MockRandomSource
	Ledger          *testhelpers.MockLedgerService
	Draws           *testhelpers.MockDrawEngine
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		AccountRepo:     &testhelpers.MockAccountRepository{},
		TransactionRepo: &testhelpers.MockTransactionRepository{},
		RewardTableRepo: &testhelpers.MockRewardTableRepository{},
		DrawRepo:        &testhelpers.MockDrawRecordRepository{},
		CatalogRepo:     &testhelpers.MockCatalogRepository{},
		InventoryRepo:   &testhelpers.MockInventoryRepository{},
		ListingRepo:     &testhelpers.MockListingRepository{},
		WithdrawalRepo:  &testhelpers.MockWithdrawalRepository{},
		EventPublisher:  &testhelpers.MockEventPublisher{},
		Random:          &testhelpers.MockRandomSource{},
		Ledger:          &testhelpers.MockLedgerService{},
		Draws:           &testhelpers.MockDrawEngine{},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.AccountRepo.AssertExpectations(t)
	m.TransactionRepo.AssertExpectations(t)
	m.RewardTableRepo.AssertExpectations(t)
	m.DrawRepo.AssertExpectations(t)
	m.CatalogRepo.AssertExpectations(t)
	m.InventoryRepo.AssertExpectations(t)
	m.ListingRepo.AssertExpectations(t)
	m.WithdrawalRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
	m.Random.AssertExpectations(t)
	m.Ledger.AssertExpectations(t)
	m.Draws.AssertExpectations(t)
}

// MockHelper provides common mock setup patterns
type MockHelper struct {
	mocks *TestMocks
	ctx   context.Context
}

// NewMockHelper creates a new mock helper
func NewMockHelper(mocks *TestMocks) *MockHelper {
	return &MockHelper{
		mocks: mocks,
		ctx:   context.Background(),
	}
}

// ExpectEventPublish sets up event publisher mock expectations
func (h *MockHelper) ExpectEventPublish(eventType events.EventType) {
	h.mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		return e.Type() == eventType
	})).Return(nil)
}

// ExpectAccountLock sets up the account repository to lock and return account
func (h *MockHelper) ExpectAccountLock(account *entities.Account) {
	h.mocks.AccountRepo.On("GetForUpdate", mock.Anything, account.ID).Return(account, nil)
}

// ExpectDebit sets up a successful ledger debit
func (h *MockHelper) ExpectDebit(accountID int64, currency entities.Currency, amount int64, reason entities.TransactionReason) {
	h.mocks.Ledger.On("Debit", mock.Anything, accountID, currency, amount, reason, mock.Anything).
		Return(&entities.Transaction{AccountID: accountID, Delta: -amount, Currency: currency, Reason: reason}, nil).Once()
}

// ExpectCredit sets up a successful ledger credit
func (h *MockHelper) ExpectCredit(accountID int64, currency entities.Currency, amount int64, reason entities.TransactionReason) {
	h.mocks.Ledger.On("Credit", mock.Anything, accountID, currency, amount, reason, mock.Anything).
		Return(&entities.Transaction{AccountID: accountID, Delta: amount, Currency: currency, Reason: reason}, nil).Once()
}

// ExpectBalances sets up the ledger balance snapshot returned after an operation
func (h *MockHelper) ExpectBalances(accountID int64) {
	h.mocks.Ledger.On("GetBalances", mock.Anything, accountID).
		Return(&entities.Balances{AccountID: accountID}, nil)
}

// NewTestAccount creates an account with the given balances
func NewTestAccount(id, standard, premium int64) *entities.Account {
	return &entities.Account{
		ID:              id,
		StandardBalance: standard,
		PremiumBalance:  premium,
		FragmentCounts:  map[int64]int64{},
		Version:         1,
	}
}

// NewTestCase creates an active standard case
func NewTestCase() *entities.Case {
	return &entities.Case{
		ID:             1,
		Key:            TestCaseKey,
		Name:           "Standard Case",
		PriceCurrency:  entities.CurrencyStandard,
		Price:          TestCasePrice,
		RewardTableKey: TestRewardTableKey,
		Active:         true,
	}
}

// NewTestRewardTable builds a valid published table from entries
func NewTestRewardTable(t *testing.T, key string, entries ...entities.RewardEntry) *entities.RewardTable {
	t.Helper()
	table, err := entities.NewRewardTable(key, entries)
	if err != nil {
		t.Fatalf("invalid test reward table: %v", err)
	}
	table.ID = 1
	table.Version = 1
	return table
}

// NewTestTemplate creates an item template
func NewTestTemplate() *entities.ItemTemplate {
	return &entities.ItemTemplate{
		ID:                TestTemplateID,
		Name:              "AK-47 Redline",
		Weapon:            "AK-47",
		Rarity:            "classified",
		Price:             TestTemplatePrice,
		FragmentsRequired: TestFragmentsNeeded,
		WithdrawalFee:     TestWithdrawalFee,
	}
}

// FixedSeed returns a deterministic seed of the right size
func FixedSeed(b byte) []byte {
	seed := make([]byte, entities.SeedSize)
	for i := range seed {
		seed[i] = b
	}
	return seed
}
