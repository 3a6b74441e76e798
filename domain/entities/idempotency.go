package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// IdempotencyRecord stores the response of a completed mutating request so
// that a retry with the same key replays it instead of re-executing.
type IdempotencyRecord struct {
	AccountID   int64           `db:"account_id"`
	Key         string          `db:"idempotency_key"`
	Operation   string          `db:"operation"`
	RequestHash string          `db:"request_hash"`
	Response    json.RawMessage `db:"response"`
	CreatedAt   time.Time       `db:"created_at"`
}

// IsComplete reports whether the response has been stored
func (r *IdempotencyRecord) IsComplete() bool {
	return len(r.Response) > 0
}

// HashRequest fingerprints an operation and its parameters
func HashRequest(operation string, params any) (string, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to hash request: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(operation))
	h.Write([]byte{0})
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil)), nil
}
