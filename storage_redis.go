package numgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStorage keeps history records in Redis, so several hosts can share one history
type RedisStorage struct {
	redisClient    *redis.Client
	logger         Logger
	ttl            time.Duration
	retryAttempts  int
	retryBaseDelay time.Duration
}

// NewRedisStorage creates a Redis-backed storage without expiry
func NewRedisStorage(redisClient *redis.Client, logger Logger) *RedisStorage {
	return NewRedisStorageWithRetry(redisClient, logger, DefaultRetryAttempts, DefaultRetryInterval)
}

// NewRedisStorageWithRetry creates a Redis-backed storage with custom retry settings
func NewRedisStorageWithRetry(redisClient *redis.Client, logger Logger, retryAttempts int, retryDelay time.Duration) *RedisStorage {
	if logger == nil {
		logger = NewSilentLogger()
	}

	return &RedisStorage{
		redisClient:    redisClient,
		logger:         logger,
		retryAttempts:  retryAttempts,
		retryBaseDelay: retryDelay,
	}
}

// SetTTL makes every saved record expire after ttl; zero disables expiry
func (rs *RedisStorage) SetTTL(ttl time.Duration) { rs.ttl = ttl }

func redisKey(key string) string { return RedisKeyPrefix + key }

// executeWithRetry executes a Redis operation with retry logic using exponential backoff
func (rs *RedisStorage) executeWithRetry(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	startTime := time.Now()

	for attempt := 0; attempt <= rs.retryAttempts; attempt++ {
		if attempt > 0 {
			// baseDelay * 2^(attempt-1)
			delay := time.Duration(1<<(attempt-1)) * rs.retryBaseDelay
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}

			rs.logger.Debug("Retrying %s operation (attempt %d/%d) after %v, total elapsed: %v",
				operation, attempt, rs.retryAttempts, delay, time.Since(startTime))

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during retry for %s operation: %w", operation, ctx.Err())
			case <-time.After(delay):
			}
		}

		err := fn()
		if err == nil {
			if attempt > 0 {
				rs.logger.Info("Completed %s operation after %d retries", operation, attempt)
			}
			return nil
		}

		lastErr = err
		if !IsRetryableError(err) {
			rs.logger.Debug("Non-retriable error for %s operation (attempt %d): %v", operation, attempt+1, err)
			break
		}

		rs.logger.Debug("Retriable error for %s operation (attempt %d/%d): %v",
			operation, attempt+1, rs.retryAttempts+1, err)
	}

	return fmt.Errorf("%s operation failed after %v: %w", operation, time.Since(startTime), lastErr)
}

// Get loads the record from Redis, retrying transient failures
func (rs *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidParameters.WithDetails("empty key")
	}

	fullKey := redisKey(key)
	var data []byte
	notFound := false

	err := rs.executeWithRetry(ctx, fmt.Sprintf("load[%s]", fullKey), func() error {
		var err error
		data, err = rs.redisClient.Get(ctx, fullKey).Bytes()
		if errors.Is(err, redis.Nil) {
			notFound = true
			return nil
		}
		return err
	})
	if err != nil {
		return nil, ErrRecordLoadFailure.WithDetails(fullKey).WithCause(err)
	}
	if notFound {
		rs.logger.Debug("No saved record found: key=%s", fullKey)
		return nil, ErrRecordNotFound
	}

	return data, nil
}

// Set saves the record with the configured TTL, retrying transient failures
func (rs *RedisStorage) Set(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return ErrInvalidParameters.WithDetails("empty key")
	}

	fullKey := redisKey(key)
	err := rs.executeWithRetry(ctx, fmt.Sprintf("save[%s]", fullKey), func() error {
		return rs.redisClient.Set(ctx, fullKey, data, rs.ttl).Err()
	})
	if err != nil {
		rs.logger.Error("Failed to save record to Redis: key=%s, size=%d bytes, error=%v", fullKey, len(data), err)
		return ErrRecordSaveFailure.WithDetails(fullKey).WithCause(err)
	}

	rs.logger.Debug("Saved record: key=%s, size=%d bytes, ttl=%v", fullKey, len(data), rs.ttl)
	return nil
}

// Delete removes the record; a missing key is ignored
func (rs *RedisStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidParameters.WithDetails("empty key")
	}

	fullKey := redisKey(key)
	var deleted int64
	err := rs.executeWithRetry(ctx, fmt.Sprintf("delete[%s]", fullKey), func() error {
		var err error
		deleted, err = rs.redisClient.Del(ctx, fullKey).Result()
		return err
	})
	if err != nil {
		return ErrRecordSaveFailure.WithDetails(fullKey).WithCause(err)
	}

	rs.logger.Debug("Deleted record: key=%s, keys_deleted=%d", fullKey, deleted)
	return nil
}

// Close closes the underlying Redis client
func (rs *RedisStorage) Close() error { return rs.redisClient.Close() }
