package repository

import (
	"context"
	"testing"
	"time"

	"skinvault/domain/entities"
	"skinvault/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingRepository_OneActiveListingPerItem(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewListingRepository(testDB.DB)
	ctx := context.Background()
	testutil.CreateFundedAccount(t, testDB.DB, 4001, 0, 0)
	itemID := testutil.CreateItem(t, testDB.DB, 4001, testutil.AK47TemplateID)

	now := time.Now().UTC().Truncate(time.Microsecond)
	newListing := func() *entities.Listing {
		return &entities.Listing{
			SellerID:  4001,
			ItemID:    itemID,
			AskPrice:  1500,
			CreatedAt: now,
			ExpiresAt: now.Add(24 * time.Hour),
		}
	}

	first := newListing()
	require.NoError(t, repo.Create(ctx, first))

	err := repo.Create(ctx, newListing())
	assert.ErrorIs(t, err, entities.ErrItemLocked)

	// Closing the first listing frees the item for a new one
	require.NoError(t, first.Close(entities.ListingStateCancelled, nil, now))
	require.NoError(t, repo.Update(ctx, first))
	require.NoError(t, repo.Create(ctx, newListing()))

	// Terminal listings never change again
	err = repo.Update(ctx, first)
	assert.ErrorIs(t, err, entities.ErrListingNotActive)
}

func TestListingRepository_ActiveAndExpired(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewListingRepository(testDB.DB)
	ctx := context.Background()
	testutil.CreateFundedAccount(t, testDB.DB, 4101, 0, 0)

	now := time.Now().UTC().Truncate(time.Microsecond)
	fresh := &entities.Listing{
		SellerID:  4101,
		ItemID:    testutil.CreateItem(t, testDB.DB, 4101, testutil.P250TemplateID),
		AskPrice:  50,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	stale := &entities.Listing{
		SellerID:  4101,
		ItemID:    testutil.CreateItem(t, testDB.DB, 4101, testutil.GlockTemplateID),
		AskPrice:  300,
		CreatedAt: now.Add(-48 * time.Hour),
		ExpiresAt: now.Add(-24 * time.Hour),
	}
	require.NoError(t, repo.Create(ctx, fresh))
	require.NoError(t, repo.Create(ctx, stale))

	active, err := repo.ListActive(ctx, now, 10, 0)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, fresh.ID, active[0].ID)

	expired, err := repo.ListExpiredIDs(ctx, now, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{stale.ID}, expired)
}
