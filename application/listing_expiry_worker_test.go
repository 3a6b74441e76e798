package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockListingExpirer struct {
	mock.Mock
}

func (m *mockListingExpirer) ExpiredListingIDs(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockListingExpirer) ExpireListing(ctx context.Context, listingID int64) (bool, error) {
	args := m.Called(ctx, listingID)
	return args.Bool(0), args.Error(1)
}

func TestListingExpiryWorker_Sweep(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	expirer := new(mockListingExpirer)
	worker := NewListingExpiryWorker(expirer, time.Minute, 10)
	worker.now = func() time.Time { return now }

	expirer.On("ExpiredListingIDs", mock.Anything, now, 10).Return([]int64{1, 2, 3}, nil)
	expirer.On("ExpireListing", mock.Anything, int64(1)).Return(true, nil)
	// Bought between the scan and the lock
	expirer.On("ExpireListing", mock.Anything, int64(2)).Return(false, nil)
	expirer.On("ExpireListing", mock.Anything, int64(3)).Return(false, errors.New("connection reset"))

	expired, err := worker.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	expirer.AssertExpectations(t)
}

func TestListingExpiryWorker_SweepScanFailure(t *testing.T) {
	t.Parallel()

	expirer := new(mockListingExpirer)
	worker := NewListingExpiryWorker(expirer, time.Minute, 10)
	expirer.On("ExpiredListingIDs", mock.Anything, mock.Anything, 10).Return(nil, errors.New("timeout"))

	_, err := worker.Sweep(context.Background())
	require.Error(t, err)
	expirer.AssertNotCalled(t, "ExpireListing", mock.Anything, mock.Anything)
}

func TestListingExpiryWorker_StartStop(t *testing.T) {
	t.Parallel()

	expirer := new(mockListingExpirer)
	swept := make(chan struct{}, 1)
	expirer.On("ExpiredListingIDs", mock.Anything, mock.Anything, 5).
		Run(func(mock.Arguments) {
			select {
			case swept <- struct{}{}:
			default:
			}
		}).
		Return([]int64{}, nil)

	worker := NewListingExpiryWorker(expirer, 10*time.Millisecond, 5)
	stop := worker.Start(context.Background())
	defer stop()

	select {
	case <-swept:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not sweep")
	}
}
