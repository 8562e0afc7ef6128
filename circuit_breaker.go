package numgen

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"
)

// BreakerStorage guards a Storage with a circuit breaker. Once the backend keeps failing,
// calls fail fast with ErrCircuitBreakerOpen instead of waiting on retries.
type BreakerStorage struct {
	storage Storage

	breaker *gobreaker.CircuitBreaker
	logger  Logger
	config  *CircuitBreakerConfig
}

// NewBreakerStorage wraps storage. A disabled config returns a pass-through wrapper.
func NewBreakerStorage(storage Storage, config *CircuitBreakerConfig, logger Logger) *BreakerStorage {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}
	if !config.Enabled {
		return &BreakerStorage{storage: storage, logger: logger, config: config}
	}

	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= config.MinRequests &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= config.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			// a missing record is an answer, not a backend failure
			return err == nil || errors.Is(err, ErrRecordNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if config.OnStateChange {
				logger.Info("Circuit breaker '%s' state changed from %s to %s", name, from, to)
			}
		},
	}

	return &BreakerStorage{
		storage: storage,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
		config:  config,
	}
}

// State reports the breaker state; a disabled breaker is always closed
func (b *BreakerStorage) State() gobreaker.State {
	if b.breaker == nil {
		return gobreaker.StateClosed
	}
	return b.breaker.State()
}

func (b *BreakerStorage) executeWithBreaker(operation func() (any, error)) (any, error) {
	if b.breaker == nil {
		return operation()
	}

	result, err := b.breaker.Execute(operation)
	if errors.Is(err, gobreaker.ErrOpenState) {
		return nil, ErrCircuitBreakerOpen.WithDetails("storage is failing, requests are being rejected")
	}
	if errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitBreakerOpen.WithDetails("too many requests, circuit breaker is half-open")
	}
	return result, err
}

// Get reads through the breaker
func (b *BreakerStorage) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := b.executeWithBreaker(func() (any, error) {
		return b.storage.Get(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Set writes through the breaker
func (b *BreakerStorage) Set(ctx context.Context, key string, data []byte) error {
	_, err := b.executeWithBreaker(func() (any, error) {
		return nil, b.storage.Set(ctx, key, data)
	})
	return err
}

// Delete removes through the breaker
func (b *BreakerStorage) Delete(ctx context.Context, key string) error {
	_, err := b.executeWithBreaker(func() (any, error) {
		return nil, b.storage.Delete(ctx, key)
	})
	return err
}

// Close closes the wrapped storage
func (b *BreakerStorage) Close() error { return b.storage.Close() }
