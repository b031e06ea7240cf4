package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a session lock taken by a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes Advance calls on one session when several
// engine processes share a store. The in-process session manager is enough
// for a single process; redis backs the multi-process case.
type DistributedLocker interface {
	// Lock takes the lock for key, waiting until ctx ends. The lock lapses
	// after ttl if the holder never calls the returned UnlockFunc.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
