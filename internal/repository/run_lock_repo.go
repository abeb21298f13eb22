package repository

import (
	"context"
	"time"
)

// RunLockRepository keeps two runs for the same website from overlapping.
type RunLockRepository interface {
	// Acquire returns false when another run already holds the lock.
	Acquire(ctx context.Context, websiteID, token string, ttl time.Duration) (bool, error)
	// Release drops the lock only if token still owns it.
	Release(ctx context.Context, websiteID, token string) error
}
