package services

import (
	"context"
	"fmt"
	"time"

	"skinvault/config"
	"skinvault/domain/entities"
	"skinvault/domain/interfaces"
)

// rewardProgramService pays the daily login reward and reports referrals
type rewardProgramService struct {
	accountRepo     interfaces.AccountRepository
	transactionRepo interfaces.TransactionRepository
	ledger          interfaces.LedgerService
	now             func() time.Time
}

// NewRewardProgramService creates a new reward program service
func NewRewardProgramService(
	accountRepo interfaces.AccountRepository,
	transactionRepo interfaces.TransactionRepository,
	ledger interfaces.LedgerService,
) interfaces.RewardProgramService {
	return &rewardProgramService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		ledger:          ledger,
		now:             time.Now,
	}
}

// ClaimDaily credits the daily reward once per 24 hours
func (s *rewardProgramService) ClaimDaily(ctx context.Context, accountID int64) (*entities.DailyClaimResult, error) {
	account, err := s.accountRepo.GetForUpdate(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %d: %w", accountID, entities.ErrAccountNotFound)
	}

	policy := dailyRewardPolicy()
	now := s.now().UTC()

	streak, err := policy.NextStreak(account.LastDailyAt, account.DailyStreak, now)
	if err != nil {
		return nil, err
	}
	reward := policy.Reward(streak)

	_, err = s.ledger.Credit(ctx, accountID, entities.CurrencyStandard, reward, entities.ReasonDailyReward,
		entities.TransactionRef{Metadata: map[string]any{"streak": streak}})
	if err != nil {
		return nil, fmt.Errorf("failed to credit daily reward: %w", err)
	}

	if err := s.accountRepo.UpdateDailyStreak(ctx, accountID, streak, now); err != nil {
		return nil, err
	}

	balances, err := s.ledger.GetBalances(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &entities.DailyClaimResult{
		Reward:        reward,
		Streak:        streak,
		NextAvailable: now.Add(24 * time.Hour).Format(time.RFC3339),
		Balances:      balances,
	}, nil
}

func dailyRewardPolicy() entities.DailyRewardPolicy {
	cfg := config.Get()
	return entities.DailyRewardPolicy{
		Base:      cfg.DailyRewardBase,
		Step:      cfg.DailyRewardStep,
		MaxStreak: cfg.DailyRewardMaxStreak,
	}
}

// ListReferrals returns the accounts referred by accountID and the bonus the
// ledger has paid it for them
func (s *rewardProgramService) ListReferrals(ctx context.Context, accountID int64) (*entities.ReferralSummary, error) {
	referrals, err := s.accountRepo.ListReferrals(ctx, accountID)
	if err != nil {
		return nil, err
	}
	bonus, err := s.transactionRepo.SumByReason(ctx, accountID, entities.CurrencyStandard, entities.ReasonReferralBonus)
	if err != nil {
		return nil, err
	}

	if referrals == nil {
		referrals = []*entities.Referral{}
	}
	return &entities.ReferralSummary{
		Referrals:   referrals,
		Count:       len(referrals),
		BonusEarned: bonus,
	}, nil
}
