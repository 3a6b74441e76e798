package application

import (
	"context"
	"time"

	"skinvault/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// ListingExpirer is the part of the engine the expiry sweep needs
type ListingExpirer interface {
	ExpiredListingIDs(ctx context.Context, now time.Time, limit int) ([]int64, error)
	ExpireListing(ctx context.Context, listingID int64) (bool, error)
}

// ListingExpiryWorker moves active listings past their expiry to expired and
// releases their items. Each listing is expired in its own unit of work, and
// the state is re-checked under the listing lock, so concurrent sweeps and
// purchases are safe.
type ListingExpiryWorker struct {
	expirer   ListingExpirer
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

// NewListingExpiryWorker creates a new expiry worker
func NewListingExpiryWorker(expirer ListingExpirer, interval time.Duration, batchSize int) *ListingExpiryWorker {
	return &ListingExpiryWorker{
		expirer:   expirer,
		interval:  interval,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Start begins the sweep loop and returns a function that stops it
func (w *ListingExpiryWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		log.Infof("Listing expiry worker started, sweeping every %v", w.interval)

		for {
			select {
			case <-ctx.Done():
				log.Info("Listing expiry worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Listing expiry worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				if _, err := w.Sweep(ctx); err != nil {
					log.Errorf("Error sweeping expired listings: %v", err)
				}
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// Sweep expires one batch of listings and returns how many were expired
func (w *ListingExpiryWorker) Sweep(ctx context.Context) (int, error) {
	ids, err := w.expirer.ExpiredListingIDs(ctx, w.now(), w.batchSize)
	if err != nil {
		return 0, err
	}

	var expired, failed int
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		ok, err := w.expirer.ExpireListing(ctx, id)
		if err != nil {
			log.WithFields(log.Fields{
				"listing_id": id,
				"error":      err,
			}).Error("Failed to expire listing")
			failed++
			continue
		}
		if ok {
			expired++
		}
	}

	observability.GetMetrics().RecordListingsExpired(expired)
	if len(ids) > 0 {
		log.WithFields(log.Fields{
			"candidates": len(ids),
			"expired":    expired,
			"failed":     failed,
		}).Info("Completed listing expiry sweep")
	}
	return expired, nil
}
