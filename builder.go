package numgen

import "fmt"

// OpenStorage creates the backend selected by config, wrapped in a circuit breaker.
// For the redis driver a RedisLocker is returned too when the distributed lock is enabled.
func OpenStorage(config *Config, logger Logger) (Storage, Locker, error) {
	if logger == nil {
		logger = NewSilentLogger()
	}

	var (
		storage Storage
		locker  Locker
	)

	switch config.Storage.Driver {
	case StorageMemory:
		storage = NewMemoryStorage()
	case StorageBunt:
		bunt, err := NewBuntStorage(config.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		storage = bunt
	case StorageRedis:
		client := NewRedisClientFromConfig(config.Redis)
		rs := NewRedisStorageWithRetry(client, logger, config.Storage.RetryAttempts, config.Storage.RetryInterval)
		rs.SetTTL(config.Storage.TTL)
		storage = rs
		if config.Storage.DistributedLock {
			locker = NewRedisLocker(client, logger)
		}
	default:
		return nil, nil, ErrConfigInvalid.WithDetails(fmt.Sprintf("unknown storage driver %q", config.Storage.Driver))
	}

	return NewBreakerStorage(storage, config.CircuitBreaker, logger), locker, nil
}

// NewAppFromConfig builds a ready-to-load App from config. The returned Storage must be closed
// by the caller.
func NewAppFromConfig(config *Config, notifier Notifier, logger Logger) (*App, Storage, error) {
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}

	storage, locker, err := OpenStorage(config, logger)
	if err != nil {
		return nil, nil, err
	}

	roller := NewRoller(config.Generator.RollerConfig(), logger)
	if locker != nil {
		roller.SetLocker(locker, DefaultRollLockKey)
	}

	history := NewHistoryStore(storage, config.History, logger)
	return NewApp(roller, history, notifier, logger), storage, nil
}
