package services

import (
	"context"
	"testing"
	"time"

	"skinvault/domain/entities"
	"skinvault/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testTradeLink = "https://steamcommunity.com/tradeoffer/new/?partner=1&token=abc"

func newWithdrawalService(mocks *TestMocks) *withdrawalService {
	service := NewWithdrawalService(mocks.WithdrawalRepo, mocks.CatalogRepo, mocks.AccountRepo,
		mocks.Ledger, mocks.EventPublisher).(*withdrawalService)
	service.now = func() time.Time { return testNow }
	return service
}

func newPendingWithdrawal() *entities.WithdrawalRequest {
	return &entities.WithdrawalRequest{
		ID:            TestWithdrawalID,
		AccountID:     TestAccountID,
		TemplateID:    TestTemplateID,
		TradeLink:     testTradeLink,
		Status:        entities.WithdrawalPending,
		FragmentsUsed: TestFragmentsNeeded,
		PremiumFee:    TestWithdrawalFee,
	}
}

func TestWithdrawalService_Request(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	service := newWithdrawalService(mocks)

	account := NewTestAccount(TestAccountID, 0, TestWithdrawalFee)
	account.FragmentCounts[TestTemplateID] = TestFragmentsNeeded

	mocks.CatalogRepo.On("GetItemTemplate", mock.Anything, TestTemplateID).Return(NewTestTemplate(), nil)
	helper.ExpectAccountLock(account)
	mocks.WithdrawalRepo.On("HasPending", mock.Anything, TestAccountID, TestTemplateID).Return(false, nil)
	mocks.WithdrawalRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *entities.WithdrawalRequest) bool {
		return r.FragmentsUsed == TestFragmentsNeeded && r.PremiumFee == TestWithdrawalFee && r.TradeLink == testTradeLink
	})).Return(nil)
	helper.ExpectDebit(TestAccountID, entities.FragmentCurrency(TestTemplateID), TestFragmentsNeeded, entities.ReasonWithdrawal)
	helper.ExpectDebit(TestAccountID, entities.CurrencyPremium, TestWithdrawalFee, entities.ReasonWithdrawal)
	helper.ExpectEventPublish(events.EventTypeWithdrawalChanged)

	request, err := service.RequestWithdrawal(context.Background(), TestAccountID, TestTemplateID, "  "+testTradeLink+" ")

	require.NoError(t, err)
	assert.Equal(t, testTradeLink, request.TradeLink)
	mocks.AssertAllExpectations(t)
}

func TestWithdrawalService_RequestFailsWhenHoldCannotBeTaken(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	service := newWithdrawalService(mocks)

	account := NewTestAccount(TestAccountID, 0, TestWithdrawalFee)
	account.FragmentCounts[TestTemplateID] = TestFragmentsNeeded

	mocks.CatalogRepo.On("GetItemTemplate", mock.Anything, TestTemplateID).Return(NewTestTemplate(), nil)
	helper.ExpectAccountLock(account)
	mocks.WithdrawalRepo.On("HasPending", mock.Anything, TestAccountID, TestTemplateID).Return(false, nil)
	mocks.WithdrawalRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mocks.Ledger.On("Debit", mock.Anything, TestAccountID, entities.FragmentCurrency(TestTemplateID), TestFragmentsNeeded, entities.ReasonWithdrawal, mock.Anything).
		Return(nil, entities.ErrInsufficientFunds)

	_, err := service.RequestWithdrawal(context.Background(), TestAccountID, TestTemplateID, testTradeLink)

	assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
	mocks.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestWithdrawalService_RequestRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		fragments int64
		premium   int64
		pending   bool
		wantErr   error
	}{
		{name: "already pending", fragments: TestFragmentsNeeded, premium: TestWithdrawalFee, pending: true, wantErr: entities.ErrWithdrawalPending},
		{name: "not enough fragments", fragments: TestFragmentsNeeded - 1, premium: TestWithdrawalFee, wantErr: entities.ErrInsufficientFunds},
		{name: "cannot cover fee", fragments: TestFragmentsNeeded, premium: TestWithdrawalFee - 1, wantErr: entities.ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mocks := NewTestMocks()
			helper := NewMockHelper(mocks)
			service := newWithdrawalService(mocks)

			account := NewTestAccount(TestAccountID, 0, tt.premium)
			account.FragmentCounts[TestTemplateID] = tt.fragments
			mocks.CatalogRepo.On("GetItemTemplate", mock.Anything, TestTemplateID).Return(NewTestTemplate(), nil)
			helper.ExpectAccountLock(account)
			mocks.WithdrawalRepo.On("HasPending", mock.Anything, TestAccountID, TestTemplateID).Return(tt.pending, nil)

			_, err := service.RequestWithdrawal(context.Background(), TestAccountID, TestTemplateID, testTradeLink)

			assert.ErrorIs(t, err, tt.wantErr)
			mocks.WithdrawalRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestWithdrawalService_RequestRequiresTradeLink(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	service := newWithdrawalService(mocks)

	_, err := service.RequestWithdrawal(context.Background(), TestAccountID, TestTemplateID, "   ")
	assert.ErrorIs(t, err, entities.ErrInvalidTradeLink)
}

func TestWithdrawalService_Confirm(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	service := newWithdrawalService(mocks)

	request := newPendingWithdrawal()
	mocks.WithdrawalRepo.On("GetForUpdate", mock.Anything, TestWithdrawalID).Return(request, nil)
	mocks.WithdrawalRepo.On("Update", mock.Anything, request).Return(nil)
	helper.ExpectEventPublish(events.EventTypeWithdrawalChanged)

	confirmed, err := service.ConfirmWithdrawal(context.Background(), TestWithdrawalID)

	require.NoError(t, err)
	assert.Equal(t, entities.WithdrawalCompleted, confirmed.Status)
	require.NotNil(t, confirmed.ResolvedAt)
	assert.True(t, confirmed.ResolvedAt.Equal(testNow))
	mocks.Ledger.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mocks.Ledger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mocks.AssertAllExpectations(t)
}

func TestWithdrawalService_Reject(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	service := newWithdrawalService(mocks)

	request := newPendingWithdrawal()
	mocks.WithdrawalRepo.On("GetForUpdate", mock.Anything, TestWithdrawalID).Return(request, nil)
	helper.ExpectCredit(TestAccountID, entities.FragmentCurrency(TestTemplateID), TestFragmentsNeeded, entities.ReasonWithdrawalRefund)
	helper.ExpectCredit(TestAccountID, entities.CurrencyPremium, TestWithdrawalFee, entities.ReasonWithdrawalRefund)
	mocks.WithdrawalRepo.On("Update", mock.Anything, request).Return(nil)
	helper.ExpectEventPublish(events.EventTypeWithdrawalChanged)

	rejected, err := service.RejectWithdrawal(context.Background(), TestWithdrawalID, "trade link expired")

	require.NoError(t, err)
	assert.Equal(t, entities.WithdrawalRejected, rejected.Status)
	assert.Equal(t, "trade link expired", rejected.Note)
	mocks.Ledger.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mocks.AssertAllExpectations(t)
}

func TestWithdrawalService_ResolvedRequestIsFinal(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	service := newWithdrawalService(mocks)

	request := newPendingWithdrawal()
	request.Status = entities.WithdrawalCompleted
	mocks.WithdrawalRepo.On("GetForUpdate", mock.Anything, TestWithdrawalID).Return(request, nil)
	mocks.WithdrawalRepo.On("GetForUpdate", mock.Anything, int64(404)).Return(nil, nil)

	_, err := service.ConfirmWithdrawal(context.Background(), TestWithdrawalID)
	assert.ErrorIs(t, err, entities.ErrWithdrawalNotPending)

	_, err = service.RejectWithdrawal(context.Background(), TestWithdrawalID, "")
	assert.ErrorIs(t, err, entities.ErrWithdrawalNotPending)

	_, err = service.ConfirmWithdrawal(context.Background(), 404)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}
