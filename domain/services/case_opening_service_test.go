package services

import (
	"context"
	"testing"

	"skinvault/domain/entities"
	"skinvault/domain/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCaseOpeningService(mocks *TestMocks) *caseOpeningService {
	return NewCaseOpeningService(mocks.CatalogRepo, mocks.RewardTableRepo, mocks.InventoryRepo,
		mocks.DrawRepo, mocks.Ledger, mocks.Draws, mocks.EventPublisher).(*caseOpeningService)
}

func TestCaseOpeningService_OpenCase_PayoutKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		payout entities.PayoutSpec
		expect func(h *MockHelper, m *TestMocks)
		check  func(t *testing.T, outcome *entities.RewardOutcome)
	}{
		{
			name:   "item",
			payout: entities.PayoutSpec{Kind: entities.PayoutKindItem, ItemTemplateID: TestTemplateID},
			expect: func(h *MockHelper, m *TestMocks) {
				m.InventoryRepo.On("Create", mock.Anything, mock.MatchedBy(func(item *entities.InventoryItem) bool {
					return item.AccountID == TestAccountID &&
						item.TemplateID == TestTemplateID &&
						item.State == entities.ItemStateAvailable &&
						item.SourceDrawID != nil && *item.SourceDrawID == TestDrawID
				})).Return(nil)
			},
			check: func(t *testing.T, outcome *entities.RewardOutcome) {
				require.NotNil(t, outcome.Item)
				assert.Equal(t, TestTemplateID, outcome.TemplateID)
			},
		},
		{
			name:   "fragments",
			payout: entities.PayoutSpec{Kind: entities.PayoutKindFragments, ItemTemplateID: TestTemplateID, Quantity: 3},
			expect: func(h *MockHelper, m *TestMocks) {
				h.ExpectCredit(TestAccountID, entities.FragmentCurrency(TestTemplateID), 3, entities.ReasonCaseOpen)
			},
			check: func(t *testing.T, outcome *entities.RewardOutcome) {
				assert.Equal(t, int64(3), outcome.FragmentQuantity)
			},
		},
		{
			name:   "currency",
			payout: entities.PayoutSpec{Kind: entities.PayoutKindCurrency, Currency: entities.CurrencyPremium, Amount: 25},
			expect: func(h *MockHelper, m *TestMocks) {
				h.ExpectCredit(TestAccountID, entities.CurrencyPremium, 25, entities.ReasonCaseOpen)
			},
			check: func(t *testing.T, outcome *entities.RewardOutcome) {
				assert.Equal(t, entities.CurrencyPremium, outcome.Currency)
				assert.Equal(t, int64(25), outcome.Amount)
			},
		},
		{
			name:   "multiplier floors the payout",
			payout: entities.PayoutSpec{Kind: entities.PayoutKindMultiplier, Multiplier: decimal.RequireFromString("1.555")},
			expect: func(h *MockHelper, m *TestMocks) {
				h.ExpectCredit(TestAccountID, entities.CurrencyStandard, 155, entities.ReasonCaseOpen)
			},
			check: func(t *testing.T, outcome *entities.RewardOutcome) {
				assert.Equal(t, int64(155), outcome.Amount)
			},
		},
		{
			name:   "nothing",
			payout: entities.PayoutSpec{Kind: entities.PayoutKindNothing},
			expect: func(h *MockHelper, m *TestMocks) {},
			check: func(t *testing.T, outcome *entities.RewardOutcome) {
				assert.Nil(t, outcome.Item)
				assert.Zero(t, outcome.Amount)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mocks := NewTestMocks()
			helper := NewMockHelper(mocks)
			service := newCaseOpeningService(mocks)

			entry := entities.RewardEntry{OutcomeID: "outcome_" + string(tt.payout.Kind), Weight: entities.WholeWeight(1), Payout: tt.payout}
			table := NewTestRewardTable(t, TestRewardTableKey, entry)

			mocks.CatalogRepo.On("GetCase", mock.Anything, TestCaseKey).Return(NewTestCase(), nil)
			mocks.RewardTableRepo.On("GetLatest", mock.Anything, TestRewardTableKey).Return(table, nil)
			helper.ExpectDebit(TestAccountID, entities.CurrencyStandard, TestCasePrice, entities.ReasonCaseOpen)
			mocks.Draws.On("Draw", mock.Anything, TestAccountID, table).
				Return(&entities.DrawRecord{ID: TestDrawID, ResolvedOutcomeID: entry.OutcomeID}, &table.Entries[0], nil)
			tt.expect(helper, mocks)
			helper.ExpectBalances(TestAccountID)
			helper.ExpectEventPublish(events.EventTypeCaseOpened)

			outcome, err := service.OpenCase(context.Background(), TestAccountID, TestCaseKey)

			require.NoError(t, err)
			assert.Equal(t, entry.OutcomeID, outcome.OutcomeID)
			assert.Equal(t, tt.payout.Kind, outcome.PayoutKind)
			assert.Equal(t, TestDrawID, outcome.DrawID)
			assert.Equal(t, TestCasePrice, outcome.PricePaid)
			assert.Equal(t, 1, outcome.TableVersion)
			assert.NotNil(t, outcome.Balances)
			tt.check(t, outcome)
			mocks.AssertAllExpectations(t)
		})
	}
}

func TestCaseOpeningService_InsufficientFundsSkipsDraw(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	service := newCaseOpeningService(mocks)

	table := testTable(t)
	mocks.CatalogRepo.On("GetCase", mock.Anything, TestCaseKey).Return(NewTestCase(), nil)
	mocks.RewardTableRepo.On("GetLatest", mock.Anything, TestRewardTableKey).Return(table, nil)
	mocks.Ledger.On("Debit", mock.Anything, TestAccountID, entities.CurrencyStandard, TestCasePrice, entities.ReasonCaseOpen, mock.Anything).
		Return(nil, entities.ErrInsufficientFunds)

	_, err := service.OpenCase(context.Background(), TestAccountID, TestCaseKey)

	assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
	mocks.Draws.AssertNotCalled(t, "Draw", mock.Anything, mock.Anything, mock.Anything)
	mocks.InventoryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mocks.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestCaseOpeningService_DrawFailurePropagates(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	service := newCaseOpeningService(mocks)

	table := testTable(t)
	mocks.CatalogRepo.On("GetCase", mock.Anything, TestCaseKey).Return(NewTestCase(), nil)
	mocks.RewardTableRepo.On("GetLatest", mock.Anything, TestRewardTableKey).Return(table, nil)
	helper.ExpectDebit(TestAccountID, entities.CurrencyStandard, TestCasePrice, entities.ReasonCaseOpen)
	mocks.Draws.On("Draw", mock.Anything, TestAccountID, table).Return(nil, nil, entities.ErrRandomUnavailable)

	_, err := service.OpenCase(context.Background(), TestAccountID, TestCaseKey)

	assert.ErrorIs(t, err, entities.ErrRandomUnavailable)
	assert.Equal(t, entities.KindIntegrity, entities.Classify(err))
	mocks.Ledger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCaseOpeningService_UnavailableCase(t *testing.T) {
	t.Parallel()

	inactive := NewTestCase()
	inactive.Active = false

	tests := []struct {
		name  string
		found *entities.Case
	}{
		{name: "unknown case"},
		{name: "inactive case", found: inactive},
		{name: "no published table", found: NewTestCase()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mocks := NewTestMocks()
			service := newCaseOpeningService(mocks)
			if tt.found == nil {
				mocks.CatalogRepo.On("GetCase", mock.Anything, TestCaseKey).Return(nil, nil)
			} else {
				mocks.CatalogRepo.On("GetCase", mock.Anything, TestCaseKey).Return(tt.found, nil)
			}
			mocks.RewardTableRepo.On("GetLatest", mock.Anything, TestRewardTableKey).Return(nil, nil).Maybe()

			_, err := service.OpenCase(context.Background(), TestAccountID, TestCaseKey)

			assert.ErrorIs(t, err, entities.ErrCaseUnavailable)
			mocks.Ledger.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCaseOpeningService_ListCases(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	service := newCaseOpeningService(mocks)
	mocks.CatalogRepo.On("ListActiveCases", mock.Anything).Return([]*entities.Case{NewTestCase()}, nil)

	cases, err := service.ListCases(context.Background())

	require.NoError(t, err)
	assert.Len(t, cases, 1)
}

func TestCaseOpeningService_GetCaseDrops(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	service := newCaseOpeningService(mocks)

	table := NewTestRewardTable(t, TestRewardTableKey,
		entities.RewardEntry{OutcomeID: "rifle", Weight: entities.WholeWeight(1), Payout: entities.PayoutSpec{Kind: entities.PayoutKindItem, ItemTemplateID: TestTemplateID}},
		entities.RewardEntry{OutcomeID: "rifle_shards", Weight: entities.WholeWeight(1), Payout: entities.PayoutSpec{Kind: entities.PayoutKindFragments, ItemTemplateID: TestTemplateID, Quantity: 5}},
		entities.RewardEntry{OutcomeID: "coins", Weight: entities.WholeWeight(2), Payout: entities.PayoutSpec{Kind: entities.PayoutKindCurrency, Currency: entities.CurrencyStandard, Amount: 20}},
	)
	mocks.CatalogRepo.On("GetCase", mock.Anything, TestCaseKey).Return(NewTestCase(), nil)
	mocks.RewardTableRepo.On("GetLatest", mock.Anything, TestRewardTableKey).Return(table, nil)
	mocks.CatalogRepo.On("GetItemTemplate", mock.Anything, TestTemplateID).Return(NewTestTemplate(), nil).Once()

	contents, err := service.GetCaseDrops(context.Background(), TestCaseKey)

	require.NoError(t, err)
	assert.Equal(t, TestCaseKey, contents.Case.Key)
	assert.Equal(t, table.Version, contents.TableVersion)
	require.Len(t, contents.Drops, 3)
	assert.True(t, contents.Drops[0].Probability.Equal(decimal.RequireFromString("0.25")))
	assert.True(t, contents.Drops[2].Probability.Equal(decimal.RequireFromString("0.5")))
	require.NotNil(t, contents.Drops[1].Template)
	assert.Equal(t, "AK-47 Redline", contents.Drops[1].Template.Name)
	assert.Nil(t, contents.Drops[2].Template)
	mocks.AssertAllExpectations(t)
}

func TestCaseOpeningService_GetCaseDropsUnavailable(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	service := newCaseOpeningService(mocks)
	mocks.CatalogRepo.On("GetCase", mock.Anything, "retired").Return(nil, nil)

	_, err := service.GetCaseDrops(context.Background(), "retired")
	assert.ErrorIs(t, err, entities.ErrCaseUnavailable)
}

func TestCaseOpeningService_History(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	service := newCaseOpeningService(mocks)

	retired := &entities.Case{ID: 2, Key: "legacy", Name: "Legacy Case", RewardTableKey: "case.legacy"}
	mocks.CatalogRepo.On("ListCases", mock.Anything).Return([]*entities.Case{NewTestCase(), retired}, nil)

	table := NewTestRewardTable(t, TestRewardTableKey,
		entities.RewardEntry{OutcomeID: "nothing", Weight: entities.WholeWeight(1), Payout: entities.PayoutSpec{Kind: entities.PayoutKindNothing}},
		entities.RewardEntry{OutcomeID: "coins", Weight: entities.WholeWeight(1), Payout: entities.PayoutSpec{Kind: entities.PayoutKindCurrency, Currency: entities.CurrencyStandard, Amount: 20}},
	)
	records := []*entities.DrawRecord{
		{ID: 12, TableKey: TestRewardTableKey, TableVersion: 1, ResolvedIndex: 1, ResolvedOutcomeID: "coins", CreatedAt: testNow},
		{ID: 9, TableKey: "case.legacy", TableVersion: 3, ResolvedIndex: 0, ResolvedOutcomeID: "old", CreatedAt: testNow},
		{ID: 7, TableKey: TestRewardTableKey, TableVersion: 1, ResolvedIndex: 0, ResolvedOutcomeID: "nothing", CreatedAt: testNow},
	}
	mocks.DrawRepo.On("ListByAccount", mock.Anything, TestAccountID, []string{TestRewardTableKey, "case.legacy"}, 20).Return(records, nil)
	mocks.RewardTableRepo.On("GetByVersion", mock.Anything, TestRewardTableKey, 1).Return(table, nil).Once()
	mocks.RewardTableRepo.On("GetByVersion", mock.Anything, "case.legacy", 3).Return(nil, nil).Once()

	history, err := service.History(context.Background(), TestAccountID, 20)

	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, TestCaseKey, history[0].CaseKey)
	require.NotNil(t, history[0].Payout)
	assert.Equal(t, int64(20), history[0].Payout.Amount)
	assert.Equal(t, "Legacy Case", history[1].CaseName)
	assert.Nil(t, history[1].Payout, "a missing table version leaves the payout unknown")
	assert.Equal(t, entities.PayoutKindNothing, history[2].Payout.Kind)
	mocks.AssertAllExpectations(t)
}
