package entities

import (
	"time"
)

// Account holds the cached balance projection for one user. Balances are only
// ever changed by the ledger, which appends a Transaction for every mutation.
type Account struct {
	ID              int64           `db:"id"`
	StandardBalance int64           `db:"standard_balance"`
	PremiumBalance  int64           `db:"premium_balance"`
	FragmentCounts  map[int64]int64 `db:"-"` // Populated from account_fragments
	Version         int64           `db:"version"`
	Disabled        bool            `db:"disabled"`
	ReferredBy      *int64          `db:"referred_by"`
	DailyStreak     int             `db:"daily_streak"`
	LastDailyAt     *time.Time      `db:"last_daily_at"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// Balance returns the projected balance for a currency
func (a *Account) Balance(currency Currency) int64 {
	switch currency {
	case CurrencyStandard:
		return a.StandardBalance
	case CurrencyPremium:
		return a.PremiumBalance
	}
	if templateID, ok := currency.FragmentTemplateID(); ok {
		return a.FragmentCounts[templateID]
	}
	return 0
}

// CanAfford checks if the projected balance covers an amount
func (a *Account) CanAfford(currency Currency, amount int64) bool {
	return a.Balance(currency) >= amount
}

// ApplyDelta changes the projection in memory and returns the new balance.
// The caller is responsible for persisting the account and its ledger row.
func (a *Account) ApplyDelta(currency Currency, delta int64) (int64, error) {
	next := a.Balance(currency) + delta
	if next < 0 {
		return 0, ErrInsufficientFunds
	}

	switch currency {
	case CurrencyStandard:
		a.StandardBalance = next
	case CurrencyPremium:
		a.PremiumBalance = next
	default:
		templateID, ok := currency.FragmentTemplateID()
		if !ok {
			return 0, currency.Validate()
		}
		if a.FragmentCounts == nil {
			a.FragmentCounts = make(map[int64]int64)
		}
		a.FragmentCounts[templateID] = next
	}
	return next, nil
}

// Balances is the read model returned to callers for display
type Balances struct {
	AccountID int64           `json:"account_id"`
	Standard  int64           `json:"standard"`
	Premium   int64           `json:"premium"`
	Fragments map[int64]int64 `json:"fragments,omitempty"`
	Version   int64           `json:"version"`
}

// Snapshot returns the balances currently held by the account
func (a *Account) Snapshot() *Balances {
	fragments := make(map[int64]int64, len(a.FragmentCounts))
	for id, count := range a.FragmentCounts {
		if count > 0 {
			fragments[id] = count
		}
	}
	return &Balances{
		AccountID: a.ID,
		Standard:  a.StandardBalance,
		Premium:   a.PremiumBalance,
		Fragments: fragments,
		Version:   a.Version,
	}
}
