package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorClassification(t *testing.T) {
	t.Parallel()

	serialization := fmt.Errorf("update: %w", &pgconn.PgError{Code: "40001"})
	deadlock := &pgconn.PgError{Code: "40P01"}
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "listings_one_active_per_item"}
	check := &pgconn.PgError{Code: "23514"}

	assert.True(t, IsRetryable(serialization))
	assert.True(t, IsRetryable(deadlock))
	assert.False(t, IsRetryable(unique))
	assert.False(t, IsRetryable(errors.New("plain")))

	assert.True(t, IsUniqueViolation(unique, "listings_one_active_per_item"))
	assert.True(t, IsUniqueViolation(unique, ""))
	assert.False(t, IsUniqueViolation(unique, "other"))
	assert.True(t, IsCheckViolation(check))
	assert.False(t, IsCheckViolation(unique))
}
