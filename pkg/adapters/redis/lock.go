package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/casenav/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockAcquire wraps failures to take a session lock.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")
	// ErrLockLost is returned on unlock when the lock expired and may now
	// belong to another engine.
	ErrLockLost = errors.New("session lock expired before release")
)

// releaseScript deletes the key only while it still carries our token.
var releaseScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

const (
	defaultLockPoll = 25 * time.Millisecond
	maxLockPoll     = 400 * time.Millisecond
)

// Locker serializes navigation on a session across engines sharing redis.
type Locker struct {
	client *backend.Client
	prefix string
	poll   time.Duration
}

// LockerOption configures a Locker.
type LockerOption func(*Locker)

// WithLockPoll sets the first retry delay. Later retries back off up to maxLockPoll.
func WithLockPoll(d time.Duration) LockerOption {
	return func(l *Locker) {
		if d > 0 {
			l.poll = d
		}
	}
}

// NewLocker keys locks as <prefix>lock:<session id>.
func NewLocker(client *backend.Client, prefix string, opts ...LockerOption) *Locker {
	l := &Locker{client: client, prefix: prefix, poll: defaultLockPoll}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ ports.DistributedLocker = (*Locker)(nil)

// Lock takes the session lock with SET NX PX, retrying until ctx ends.
func (l *Locker) Lock(ctx context.Context, sessionID string, ttl time.Duration) (ports.UnlockFunc, error) {
	key := l.prefix + "lock:" + sessionID
	token := uuid.NewString()
	wait := l.poll

	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLockAcquire, err)
		}
		if ok {
			return l.release(key, token), nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: session %s: %w", ErrLockAcquire, sessionID, ctx.Err())
		case <-timer.C:
		}
		wait = min(wait*2, maxLockPoll)
	}
}

func (l *Locker) release(key, token string) ports.UnlockFunc {
	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrLockLost
		}
		return nil
	}
}
