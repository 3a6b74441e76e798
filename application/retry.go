package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skinvault/database"
	"skinvault/domain/entities"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// isConflict reports whether err is transient and the whole unit can be retried
func isConflict(err error) bool {
	return errors.Is(err, entities.ErrVersionConflict) || database.IsRetryable(err)
}

// retryOnConflict runs fn until it succeeds, fails with a non-conflict error or
// maxRetries retries are used up. Exhausted retries surface as ErrTryAgain.
func retryOnConflict(ctx context.Context, operation string, maxRetries uint64, onRetry func(), fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	policy.MaxInterval = 250 * time.Millisecond

	attempt := func() error {
		err := fn()
		if err == nil || isConflict(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		log.WithFields(log.Fields{
			"operation": operation,
			"wait":      wait,
			"error":     err,
		}).Debug("Retrying after conflict")
		if onRetry != nil {
			onRetry()
		}
	}

	err := backoff.RetryNotify(attempt, backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx), notify)
	if err != nil && isConflict(err) {
		return fmt.Errorf("%s: %w (last error: %v)", operation, entities.ErrTryAgain, err)
	}
	return err
}
