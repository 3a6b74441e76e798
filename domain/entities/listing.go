package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ListingState is the state of a market listing
type ListingState string

const (
	ListingStateActive    ListingState = "active"
	ListingStateSold      ListingState = "sold"
	ListingStateCancelled ListingState = "cancelled"
	ListingStateExpired   ListingState = "expired"
)

// IsTerminal returns true once the listing can no longer change
func (s ListingState) IsTerminal() bool {
	return s == ListingStateSold || s == ListingStateCancelled || s == ListingStateExpired
}

// AllowedListingDays are the durations a seller can choose
var AllowedListingDays = []int{1, 3, 7, 14, 30}

// ListingDuration validates a duration in days
func ListingDuration(days int) (time.Duration, error) {
	for _, allowed := range AllowedListingDays {
		if days == allowed {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return 0, fmt.Errorf("%w: %d days", ErrInvalidDuration, days)
}

// Listing is an item offered for sale. While active the item is held in escrow.
type Listing struct {
	ID        int64        `db:"id" json:"id"`
	SellerID  int64        `db:"seller_id" json:"seller_id"`
	ItemID    int64        `db:"item_id" json:"item_id"`
	AskPrice  int64        `db:"ask_price" json:"ask_price"`
	Currency  Currency     `db:"currency" json:"currency"`
	State     ListingState `db:"state" json:"state"`
	BuyerID   *int64       `db:"buyer_id" json:"buyer_id,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	ExpiresAt time.Time    `db:"expires_at" json:"expires_at"`
	ClosedAt  *time.Time   `db:"closed_at" json:"closed_at,omitempty"`
}

// IsPurchasable reports whether the listing can still be bought at now
func (l *Listing) IsPurchasable(now time.Time) bool {
	return l.State == ListingStateActive && now.Before(l.ExpiresAt)
}

// IsExpired reports whether an active listing has passed its expiry
func (l *Listing) IsExpired(now time.Time) bool {
	return l.State == ListingStateActive && !now.Before(l.ExpiresAt)
}

// Close moves an active listing to a terminal state
func (l *Listing) Close(state ListingState, buyerID *int64, now time.Time) error {
	if l.State != ListingStateActive {
		return fmt.Errorf("%w: listing %d is %s", ErrListingNotActive, l.ID, l.State)
	}
	if !state.IsTerminal() {
		return fmt.Errorf("cannot close listing %d into %s", l.ID, state)
	}
	l.State = state
	l.BuyerID = buyerID
	l.ClosedAt = &now
	return nil
}

// MarketFee returns the platform fee for a sale, floored to minor units
func MarketFee(price int64, feeBasisPoints int64) int64 {
	if price <= 0 || feeBasisPoints <= 0 {
		return 0
	}
	return decimal.NewFromInt(price).
		Mul(decimal.NewFromInt(feeBasisPoints)).
		Div(decimal.NewFromInt(10_000)).
		Floor().
		IntPart()
}
