package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingDuration(t *testing.T) {
	t.Parallel()

	for _, days := range AllowedListingDays {
		d, err := ListingDuration(days)
		require.NoError(t, err)
		assert.Equal(t, time.Duration(days)*24*time.Hour, d)
	}

	_, err := ListingDuration(2)
	assert.ErrorIs(t, err, ErrInvalidDuration)
	_, err = ListingDuration(0)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestListing_Close(t *testing.T) {
	t.Parallel()

	now := time.Now()
	buyer := int64(9)

	listing := &Listing{ID: 1, State: ListingStateActive, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, listing.Close(ListingStateSold, &buyer, now))
	assert.Equal(t, ListingStateSold, listing.State)
	assert.Equal(t, &buyer, listing.BuyerID)
	require.NotNil(t, listing.ClosedAt)

	// Terminal states never transition again
	assert.ErrorIs(t, listing.Close(ListingStateCancelled, nil, now), ErrListingNotActive)

	active := &Listing{ID: 2, State: ListingStateActive}
	assert.Error(t, active.Close(ListingStateActive, nil, now))
}

func TestListing_Expiry(t *testing.T) {
	t.Parallel()

	now := time.Now()
	listing := &Listing{State: ListingStateActive, ExpiresAt: now}
	assert.True(t, listing.IsExpired(now))
	assert.False(t, listing.IsPurchasable(now))
	assert.True(t, listing.IsPurchasable(now.Add(-time.Second)))

	listing.State = ListingStateSold
	assert.False(t, listing.IsExpired(now.Add(time.Hour)))
}

func TestMarketFee(t *testing.T) {
	t.Parallel()

	tests := []struct {
		price int64
		bps   int64
		want  int64
	}{
		{price: 1000, bps: 500, want: 50},
		{price: 999, bps: 500, want: 49},
		{price: 19, bps: 500, want: 0},
		{price: 1000, bps: 0, want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MarketFee(tt.price, tt.bps), "price %d bps %d", tt.price, tt.bps)
	}
}

func TestInventoryItem_CheckUsableBy(t *testing.T) {
	t.Parallel()

	item := &InventoryItem{ID: 1, AccountID: 5, State: ItemStateAvailable}
	assert.NoError(t, item.CheckUsableBy(5))
	assert.ErrorIs(t, item.CheckUsableBy(6), ErrItemNotOwned)

	item.State = ItemStateListed
	assert.ErrorIs(t, item.CheckUsableBy(5), ErrItemLocked)

	item.State = ItemStateExchanged
	assert.ErrorIs(t, item.CheckUsableBy(5), ErrItemNotOwned)
}
