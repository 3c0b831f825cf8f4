package redis

import (
	"context"
	"fmt"
	"sparkos/internal/domain/service"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the lock only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RolloverLock is a SET NX PX lock shared by all scheduler instances
type RolloverLock struct {
	client *redis.Client
	logger *zap.Logger
}

var _ service.Locker = (*RolloverLock)(nil)

// NewRolloverLock creates a new distributed lock
func NewRolloverLock(client *redis.Client, logger *zap.Logger) *RolloverLock {
	return &RolloverLock{
		client: client,
		logger: logger,
	}
}

// lockKey generates Redis key for a lock
func (l *RolloverLock) lockKey(key string) string {
	return fmt.Sprintf("lock:rollover:%s", key)
}

// TryLock acquires key for ttl without waiting
func (l *RolloverLock) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.New().String()
	redisKey := l.lockKey(key)

	ok, err := l.client.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	unlock := func() {
		// released with a fresh context so a cancelled caller still frees the lock
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil {
			l.logger.Warn("failed to release lock", zap.String("key", redisKey), zap.Error(err))
		}
	}
	return unlock, true, nil
}
