package infrastructure

import (
	"context"
	"testing"

	"skinvault/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCryptoRandomSource(t *testing.T) {
	t.Parallel()

	source := NewCryptoRandomSource()

	a, err := source.Seed(context.Background())
	require.NoError(t, err)
	b, err := source.Seed(context.Background())
	require.NoError(t, err)

	assert.Len(t, a, entities.SeedSize)
	assert.NotEqual(t, a, b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = source.Seed(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
