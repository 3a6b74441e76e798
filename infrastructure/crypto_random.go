package infrastructure

import (
	"context"
	"crypto/rand"
	"fmt"

	"skinvault/domain/entities"
)

// CryptoRandomSource reads draw seeds from the operating system CSPRNG
type CryptoRandomSource struct{}

// NewCryptoRandomSource creates a new random source
func NewCryptoRandomSource() *CryptoRandomSource {
	return &CryptoRandomSource{}
}

// Seed returns entities.SeedSize fresh random bytes
func (r *CryptoRandomSource) Seed(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seed := make([]byte, entities.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return seed, nil
}
