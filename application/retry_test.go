package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"skinvault/domain/entities"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryOnConflict(t *testing.T) {
	t.Parallel()

	t.Run("succeeds after transient conflicts", func(t *testing.T) {
		t.Parallel()

		calls, retries := 0, 0
		err := retryOnConflict(context.Background(), "test", 3, func() { retries++ }, func() error {
			calls++
			if calls < 3 {
				return fmt.Errorf("update: %w", entities.ErrVersionConflict)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, 2, retries)
	})

	t.Run("serialization failures are retried", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := retryOnConflict(context.Background(), "test", 3, nil, func() error {
			calls++
			if calls == 1 {
				return &pgconn.PgError{Code: "40001"}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("exhausted retries surface as try again", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := retryOnConflict(context.Background(), "test", 2, nil, func() error {
			calls++
			return entities.ErrVersionConflict
		})
		require.ErrorIs(t, err, entities.ErrTryAgain)
		assert.Equal(t, 3, calls)
		assert.Equal(t, entities.KindConflict, entities.Classify(err))
	})

	t.Run("business errors are not retried", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := retryOnConflict(context.Background(), "test", 3, nil, func() error {
			calls++
			return fmt.Errorf("debit: %w", entities.ErrInsufficientFunds)
		})
		require.ErrorIs(t, err, entities.ErrInsufficientFunds)
		assert.Equal(t, 1, calls)
	})

	t.Run("integrity errors are not retried", func(t *testing.T) {
		t.Parallel()

		calls := 0
		boom := errors.New("connection reset")
		err := retryOnConflict(context.Background(), "test", 3, nil, func() error {
			calls++
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})
}
