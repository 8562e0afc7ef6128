package numgen

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// releaseLockScript deletes the lock only while it still holds our value, so an expired lock
// taken over by another process is never released by us.
const releaseLockScript = `
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`

// RedisLocker is a SET NX based lock shared by every process pointing at the same Redis
type RedisLocker struct {
	redisClient   *redis.Client
	expiration    time.Duration
	retryAttempts int
	retryInterval time.Duration
	logger        Logger
	monitor       *PerformanceMonitor
	newValue      func() string
}

// NewRedisLocker creates a locker with default expiry and retry settings
func NewRedisLocker(redisClient *redis.Client, logger Logger) *RedisLocker {
	return NewRedisLockerWithRetry(redisClient, DefaultLockExpiration, DefaultRetryAttempts, DefaultRetryInterval, logger)
}

// NewRedisLockerWithRetry creates a locker with custom settings
func NewRedisLockerWithRetry(
	redisClient *redis.Client, expiration time.Duration, retryAttempts int, retryInterval time.Duration, logger Logger,
) *RedisLocker {
	if expiration <= 0 {
		expiration = DefaultLockExpiration
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	return &RedisLocker{
		redisClient:   redisClient,
		expiration:    expiration,
		retryAttempts: retryAttempts,
		retryInterval: retryInterval,
		logger:        logger,
		newValue:      generateLockValue,
	}
}

// SetPerformanceMonitor records lock outcomes on m
func (l *RedisLocker) SetPerformanceMonitor(m *PerformanceMonitor) { l.monitor = m }

// Acquire takes the lock under key, retrying while another holder has it. The returned
// release function is safe to call once the caller is done.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if key == "" {
		return nil, ErrInvalidParameters.WithDetails("empty lock key")
	}

	fullKey := LockKeyPrefix + key
	value := l.newValue()
	start := time.Now()

	for attempt := 0; attempt <= l.retryAttempts; attempt++ {
		select {
		case <-ctx.Done():
			l.recordLock(false, time.Since(start))
			return nil, ErrLockAcquisitionFailed.WithCause(ctx.Err())
		default:
		}

		acquired, err := l.redisClient.SetNX(ctx, fullKey, value, l.expiration).Result()
		if err != nil {
			l.logger.Debug("Lock attempt %d/%d on %s failed: %v", attempt+1, l.retryAttempts+1, fullKey, err)
			if attempt == l.retryAttempts {
				l.recordLock(false, time.Since(start))
				return nil, ErrRedisConnectionFailed.WithCause(err)
			}
		} else if acquired {
			l.recordLock(true, time.Since(start))
			return func() { l.release(fullKey, value) }, nil
		}

		if attempt < l.retryAttempts {
			select {
			case <-ctx.Done():
				l.recordLock(false, time.Since(start))
				return nil, ErrLockAcquisitionFailed.WithCause(ctx.Err())
			case <-time.After(l.retryInterval):
			}
		}
	}

	l.recordLock(false, time.Since(start))
	return nil, ErrLockAcquisitionFailed.WithDetails(fmt.Sprintf("%s is held by another process", fullKey))
}

// release uses a fresh context: the caller's context may already be cancelled
func (l *RedisLocker) release(fullKey, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultRedisWriteTimeout)
	defer cancel()

	result, err := l.redisClient.Eval(ctx, releaseLockScript, []string{fullKey}, value).Int64()
	if err != nil {
		l.logger.Error("%v", ErrLockReleaseFailure.WithDetails(fullKey).WithCause(err))
		return
	}
	if result == 0 {
		l.logger.Info("Lock %s expired before release", fullKey)
	}
}

func (l *RedisLocker) recordLock(success bool, d time.Duration) {
	if l.monitor != nil {
		l.monitor.RecordLockAcquisition(success, d)
	}
}

// generateLockValue generates a unique lock value using crypto/rand
func generateLockValue() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("lock_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
