package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"skinvault/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRewardProgramService(mocks *TestMocks) *rewardProgramService {
	service := NewRewardProgramService(mocks.AccountRepo, mocks.TransactionRepo, mocks.Ledger).(*rewardProgramService)
	service.now = func() time.Time { return testNow }
	return service
}

func TestRewardProgramService_ClaimDaily(t *testing.T) {
	t.Parallel()

	yesterday := testNow.Add(-30 * time.Hour)
	lapsed := testNow.Add(-72 * time.Hour)

	tests := []struct {
		name       string
		lastClaim  *time.Time
		streak     int
		wantStreak int
		wantReward int64
	}{
		{name: "first claim", lastClaim: nil, streak: 0, wantStreak: 1, wantReward: 100},
		{name: "consecutive day", lastClaim: &yesterday, streak: 3, wantStreak: 4, wantReward: 250},
		{name: "lapsed streak resets", lastClaim: &lapsed, streak: 6, wantStreak: 1, wantReward: 100},
		{name: "streak is capped", lastClaim: &yesterday, streak: 10, wantStreak: 11, wantReward: 450},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mocks := NewTestMocks()
			helper := NewMockHelper(mocks)
			service := newRewardProgramService(mocks)

			account := NewTestAccount(TestAccountID, 0, 0)
			account.LastDailyAt = tt.lastClaim
			account.DailyStreak = tt.streak

			helper.ExpectAccountLock(account)
			helper.ExpectCredit(TestAccountID, entities.CurrencyStandard, tt.wantReward, entities.ReasonDailyReward)
			mocks.AccountRepo.On("UpdateDailyStreak", mock.Anything, TestAccountID, tt.wantStreak, testNow).Return(nil)
			helper.ExpectBalances(TestAccountID)

			result, err := service.ClaimDaily(context.Background(), TestAccountID)

			require.NoError(t, err)
			assert.Equal(t, tt.wantReward, result.Reward)
			assert.Equal(t, tt.wantStreak, result.Streak)
			assert.Equal(t, testNow.Add(24*time.Hour).Format(time.RFC3339), result.NextAvailable)
			mocks.AssertAllExpectations(t)
		})
	}
}

func TestRewardProgramService_ClaimTooSoon(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	service := newRewardProgramService(mocks)

	recent := testNow.Add(-time.Hour)
	account := NewTestAccount(TestAccountID, 0, 0)
	account.LastDailyAt = &recent
	account.DailyStreak = 2
	helper.ExpectAccountLock(account)

	_, err := service.ClaimDaily(context.Background(), TestAccountID)

	var notReady *entities.DailyRewardNotReadyError
	require.True(t, errors.As(err, &notReady))
	assert.Equal(t, recent.Add(24*time.Hour), notReady.NextAvailable)
	assert.Equal(t, entities.KindUserRecoverable, entities.Classify(err))
	mocks.Ledger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRewardProgramService_ListReferrals(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	service := newRewardProgramService(mocks)

	referrals := []*entities.Referral{
		{AccountID: 501, JoinedAt: testNow},
		{AccountID: 502, JoinedAt: testNow.Add(-time.Hour)},
	}
	mocks.AccountRepo.On("ListReferrals", mock.Anything, TestAccountID).Return(referrals, nil)
	mocks.TransactionRepo.On("SumByReason", mock.Anything, TestAccountID, entities.CurrencyStandard, entities.ReasonReferralBonus).
		Return(int64(400), nil)

	summary, err := service.ListReferrals(context.Background(), TestAccountID)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, int64(400), summary.BonusEarned)
	assert.Equal(t, int64(501), summary.Referrals[0].AccountID)
	mocks.AssertAllExpectations(t)
}

func TestRewardProgramService_ListReferralsEmpty(t *testing.T) {
	t.Parallel()

	mocks := NewTestMocks()
	service := newRewardProgramService(mocks)
	mocks.AccountRepo.On("ListReferrals", mock.Anything, TestAccountID).Return(nil, nil)
	mocks.TransactionRepo.On("SumByReason", mock.Anything, TestAccountID, entities.CurrencyStandard, entities.ReasonReferralBonus).
		Return(int64(0), nil)

	summary, err := service.ListReferrals(context.Background(), TestAccountID)

	require.NoError(t, err)
	assert.NotNil(t, summary.Referrals)
	assert.Zero(t, summary.Count)
}
