package catalog

import (
	"errors"
	"fmt"
	"os"
	"time"

	"photostore/internal/logging"
	"photostore/internal/metrics"
)

// LockFileName is the sentinel file marking an in-progress catalog
// mutation in the storage root.
const LockFileName = ".photos.lock"

// ErrCatalogBusy is returned when the lock could not be acquired within
// the retry budget.
var ErrCatalogBusy = errors.New("catalog busy: lock held by another writer")

// LockConfig configures the lock acquisition retry behavior.
type LockConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
}

// DefaultLockConfig returns the retry budget used by production catalogs.
func DefaultLockConfig() LockConfig {
	return LockConfig{
		MaxAttempts: 5,
		RetryDelay:  100 * time.Millisecond,
	}
}

// acquireLock creates the sentinel lock file, retrying on contention.
// On success it returns a release function that must run on every exit
// path of the guarded section, error paths included; a crashed holder is
// the only thing that should ever leave the sentinel behind.
func (c *Catalog) acquireLock() (release func(), err error) {
	for attempt := 0; attempt < c.lock.MaxAttempts; attempt++ {
		f, err := os.OpenFile(c.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			if cerr := f.Close(); cerr != nil {
				logging.Warn("Failed to close lock file %s: %v", c.lockPath, cerr)
			}
			if attempt > 0 {
				logging.Debug("Catalog lock acquired after %d retries", attempt)
			}
			return func() {
				if rerr := os.Remove(c.lockPath); rerr != nil && !os.IsNotExist(rerr) {
					logging.Error("Failed to release catalog lock %s: %v", c.lockPath, rerr)
				}
			}, nil
		}

		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		// Lock held by another writer; back off and retry
		metrics.CatalogLockRetries.Inc()
		logging.Debug("Catalog lock held, retrying in %v (attempt %d/%d)",
			c.lock.RetryDelay, attempt+1, c.lock.MaxAttempts)
		time.Sleep(c.lock.RetryDelay)
	}

	metrics.CatalogLockFailures.Inc()
	logging.Warn("Catalog lock not acquired after %d attempts: %s", c.lock.MaxAttempts, c.lockPath)
	return nil, ErrCatalogBusy
}
