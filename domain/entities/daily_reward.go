package entities

import "time"

const (
	dailyClaimInterval = 24 * time.Hour
	dailyStreakWindow  = 48 * time.Hour
)

// DailyRewardPolicy computes the daily login reward
type DailyRewardPolicy struct {
	Base      int64
	Step      int64
	MaxStreak int
}

// DefaultDailyRewardPolicy pays 100 plus 50 per day already on the streak,
// capped at 7 days
func DefaultDailyRewardPolicy() DailyRewardPolicy {
	return DailyRewardPolicy{Base: 100, Step: 50, MaxStreak: 7}
}

// NextStreak returns the streak after a claim at now, or a
// DailyRewardNotReadyError when the previous claim is under 24h old.
func (p DailyRewardPolicy) NextStreak(lastClaim *time.Time, streak int, now time.Time) (int, error) {
	if lastClaim == nil {
		return 1, nil
	}
	elapsed := now.Sub(*lastClaim)
	if elapsed < dailyClaimInterval {
		return 0, &DailyRewardNotReadyError{NextAvailable: lastClaim.Add(dailyClaimInterval)}
	}
	if elapsed < dailyStreakWindow {
		return streak + 1, nil
	}
	return 1, nil
}

// Reward returns the credit for the claim that brings the streak to streak.
// The bonus counts the days held before the claim, so a first claim pays Base.
func (p DailyRewardPolicy) Reward(streak int) int64 {
	capped := max(streak-1, 0)
	if p.MaxStreak > 0 && capped > p.MaxStreak {
		capped = p.MaxStreak
	}
	return p.Base + p.Step*int64(capped)
}
