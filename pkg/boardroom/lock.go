package boardroom

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Instance operation lock
//
// Protocol operations mutate several keys at once (escrow balance, review
// totals, share records). The op lock serializes all mutating operations for
// an instance so state transitions execute as if single-threaded: an observer
// can never see a partially-updated review. Reads stay lock-free.

const (
	// lockTTL bounds how long a crashed holder can block the instance.
	lockTTL = 5 * time.Second

	// lockRetryInterval is how often a blocked caller re-attempts acquisition.
	lockRetryInterval = 25 * time.Millisecond
)

// unlockScript releases the lock only if the caller still holds it, so a
// holder that overran the TTL cannot delete a successor's lock.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// WithLock runs fn while holding the instance operation lock.
// Acquisition blocks, retrying until the lock is free or ctx is cancelled.
// The lock is released when fn returns, whether or not fn errored.
func (c *Client) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	key := OpLockKey(c.instanceName)
	token := uuid.New().String()

	if err := c.acquireLock(ctx, key, token); err != nil {
		return err
	}
	defer func() {
		// Best-effort release; the TTL reclaims the lock if this fails.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = unlockScript.Run(releaseCtx, c.rdb, []string{key}, token).Err()
	}()

	return fn(ctx)
}

// acquireLock attempts SET NX PX in a retry loop until success or ctx is done.
func (c *Client) acquireLock(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := c.rdb.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire operation lock: %w", err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("operation lock wait cancelled: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
