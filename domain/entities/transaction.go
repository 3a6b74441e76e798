package entities

import (
	"errors"
	"time"
)

// TransactionReason explains why a ledger row was written
type TransactionReason string

const (
	ReasonCaseOpen       TransactionReason = "case_open"
	ReasonGameStake      TransactionReason = "game_stake"
	ReasonGamePayout     TransactionReason = "game_payout"
	ReasonMarketSale     TransactionReason = "market_sale"
	ReasonMarketPurchase TransactionReason = "market_purchase"
	ReasonWithdrawal     TransactionReason = "withdrawal"
	ReasonDailyReward    TransactionReason = "daily_reward"
	ReasonReferralBonus  TransactionReason = "referral_bonus"

	ReasonMarketFee       TransactionReason = "market_fee"
	ReasonFragmentCombine TransactionReason = "fragment_combine"
	ReasonItemExchange    TransactionReason = "item_exchange"
	// ReasonWithdrawalRefund returns a rejected withdrawal's hold
	ReasonWithdrawalRefund TransactionReason = "withdrawal_refund"
)

// IsValid reports whether the reason is a known ledger reason
func (r TransactionReason) IsValid() bool {
	switch r {
	case ReasonCaseOpen, ReasonGameStake, ReasonGamePayout, ReasonMarketSale,
		ReasonMarketPurchase, ReasonWithdrawal, ReasonWithdrawalRefund, ReasonDailyReward, ReasonReferralBonus,
		ReasonMarketFee, ReasonFragmentCombine, ReasonItemExchange:
		return true
	}
	return false
}

func (r TransactionReason) String() string {
	return string(r)
}

// TransactionRef links a ledger row to the draw or listing that caused it
type TransactionRef struct {
	DrawID    *int64
	ListingID *int64
	Metadata  map[string]any
}

// Transaction is one immutable ledger row
type Transaction struct {
	ID               int64             `db:"id" json:"id"`
	AccountID        int64             `db:"account_id" json:"account_id"`
	Delta            int64             `db:"delta" json:"delta"`
	Currency         Currency          `db:"currency" json:"currency"`
	Reason           TransactionReason `db:"reason" json:"reason"`
	BalanceAfter     int64             `db:"balance_after" json:"balance_after"`
	RelatedDrawID    *int64            `db:"related_draw_id" json:"related_draw_id,omitempty"`
	RelatedListingID *int64            `db:"related_listing_id" json:"related_listing_id,omitempty"`
	Metadata         map[string]any    `db:"metadata" json:"metadata,omitempty"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
}

// IsDebit returns true if the row removed funds
func (t *Transaction) IsDebit() bool {
	return t.Delta < 0
}

// IsCredit returns true if the row added funds
func (t *Transaction) IsCredit() bool {
	return t.Delta > 0
}

// BalanceBefore returns the projection value prior to this row
func (t *Transaction) BalanceBefore() int64 {
	return t.BalanceAfter - t.Delta
}

// Validate performs basic consistency checks before the row is appended
func (t *Transaction) Validate() error {
	if t.Delta == 0 {
		return errors.New("transaction delta cannot be zero")
	}
	if err := t.Currency.Validate(); err != nil {
		return err
	}
	if !t.Reason.IsValid() {
		return errors.New("invalid transaction reason")
	}
	if t.BalanceAfter < 0 {
		return errors.New("balance after transaction cannot be negative")
	}
	return nil
}
