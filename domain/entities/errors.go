package entities

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// User-recoverable errors. These are returned to the caller as-is and are never
// retried; any of them means no funds moved and no reward was granted.
var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidBetSize       = errors.New("bet size outside allowed range")
	ErrCaseUnavailable      = errors.New("case unavailable")
	ErrGameUnavailable      = errors.New("game unavailable")
	ErrListingNotActive     = errors.New("listing is not active")
	ErrItemLocked           = errors.New("item is locked by an active listing")
	ErrItemNotOwned         = errors.New("item not owned by account")
	ErrNotOwner             = errors.New("requester does not own the listing")
	ErrInvalidDuration      = errors.New("invalid listing duration")
	ErrSelfPurchase         = errors.New("cannot buy your own listing")
	ErrIdempotencyKeyReused = errors.New("idempotency key reused with a different request")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountDisabled      = errors.New("account disabled")
	ErrWithdrawalNotPending = errors.New("withdrawal request is not pending")
	ErrWithdrawalPending    = errors.New("a withdrawal for this item is already pending")
	ErrInvalidTradeLink     = errors.New("trade link is required")
	ErrNotFound             = errors.New("not found")
)

// Conflict errors. Transient, retried a bounded number of times by the engine.
var (
	ErrVersionConflict = errors.New("account version conflict")
	ErrTryAgain        = errors.New("operation conflicted with concurrent activity, try again")
)

// Integrity-critical errors. These force a rollback and are always logged.
var (
	ErrRandomUnavailable = errors.New("random source unavailable")
	ErrDrawFailed        = errors.New("draw failed")
	ErrDrawOutOfRange    = errors.New("draw value outside table range")
	ErrInvalidTable      = errors.New("invalid reward table")
)

// DailyRewardNotReadyError is returned when the daily reward was already claimed
type DailyRewardNotReadyError struct {
	NextAvailable time.Time
}

func (e *DailyRewardNotReadyError) Error() string {
	return fmt.Sprintf("daily reward not ready until %s", e.NextAvailable.UTC().Format(time.RFC3339))
}

// ErrorKind groups errors by how callers should react to them
type ErrorKind string

const (
	KindNone            ErrorKind = ""
	KindUserRecoverable ErrorKind = "user_recoverable"
	KindConflict        ErrorKind = "conflict"
	KindIntegrity       ErrorKind = "integrity"
)

var userRecoverable = []error{
	ErrInsufficientFunds, ErrInvalidAmount, ErrInvalidBetSize, ErrCaseUnavailable,
	ErrGameUnavailable, ErrListingNotActive, ErrItemLocked, ErrItemNotOwned, ErrNotOwner,
	ErrInvalidDuration, ErrSelfPurchase, ErrIdempotencyKeyReused, ErrAccountNotFound,
	ErrAccountDisabled, ErrWithdrawalNotPending, ErrWithdrawalPending, ErrInvalidTradeLink, ErrNotFound,
}

// Classify returns the error kind for err
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var notReady *DailyRewardNotReadyError
	if errors.As(err, &notReady) {
		return KindUserRecoverable
	}
	for _, target := range userRecoverable {
		if errors.Is(err, target) {
			return KindUserRecoverable
		}
	}
	if errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrTryAgain) {
		return KindConflict
	}
	return KindIntegrity
}

// IsUserRecoverable reports whether err is a business-rule failure
func IsUserRecoverable(err error) bool {
	return Classify(err) == KindUserRecoverable
}

// IsTimeout reports whether err was caused by the request deadline or cancellation
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
