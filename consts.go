package numgen

import "time"

const (
	// DefaultMin is the lower bound offered before the user changes anything
	DefaultMin = 1

	// DefaultMax is the upper bound offered before the user changes anything
	DefaultMax = 100

	// DefaultTicks is the number of transient values shown before the final one
	DefaultTicks = 20

	// DefaultTickInterval is the delay between two transient values
	DefaultTickInterval = 50 * time.Millisecond

	// MaxTicks caps the animation length
	MaxTicks = 1000

	// MaxHistoryEntries is the retention cap of the history list
	MaxHistoryEntries = 50

	// DefaultHistoryKey is the name of the persisted history record
	DefaultHistoryKey = "numberHistory"

	// MaxSafeBound keeps float scaling exact (2^53)
	MaxSafeBound = 1 << 53

	// MaxRecordSize is the maximum allowed size of a serialized history record (1MiB)
	MaxRecordSize = 1 << 20

	// DefaultFastRandomGeneratorCacheSize is the batch size of the secure float cache
	DefaultFastRandomGeneratorCacheSize = 256
)

const (
	// RedisKeyPrefix is the prefix for Redis history records
	RedisKeyPrefix = "numgen:history:"

	// LockKeyPrefix is the prefix for Redis lock keys
	LockKeyPrefix = "numgen:lock:"

	// DefaultRollLockKey is the lock taken around a roll when a distributed locker is set
	DefaultRollLockKey = "roll"

	// DefaultLockExpiration is the default expiration time for locks
	DefaultLockExpiration = 30 * time.Second

	// DefaultRetryAttempts is the default number of retry attempts
	DefaultRetryAttempts = 3

	// DefaultRetryInterval is the default interval between retry attempts
	DefaultRetryInterval = 100 * time.Millisecond

	// MaxRetryAttempts is the maximum number of retry attempts allowed
	MaxRetryAttempts = 10

	// maxRetryDelay caps the exponential backoff
	maxRetryDelay = 5 * time.Second
)

const (
	// DefaultCircuitBreakerName is the default name for Circuit Breaker
	DefaultCircuitBreakerName = "numgen-storage"

	// DefaultCircuitBreakerMaxRequests is the default max requests in half-open state
	DefaultCircuitBreakerMaxRequests = 1

	// DefaultCircuitBreakerInterval is the default interval
	DefaultCircuitBreakerInterval = 60 * time.Second

	// DefaultCircuitBreakerTimeout is the default timeout
	DefaultCircuitBreakerTimeout = 30 * time.Second

	// DefaultCircuitBreakerFailureRatio is the default failure ratio
	DefaultCircuitBreakerFailureRatio = 0.6

	// DefaultCircuitBreakerMinRequests is the default min requests
	DefaultCircuitBreakerMinRequests = 3
)

const (
	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisPassword     = ""
	DefaultRedisDB           = 0
	DefaultRedisPoolSize     = 10
	DefaultRedisMinIdleConns = 1
	DefaultRedisMaxRetries   = 3
	DefaultRedisDialTimeout  = 5 * time.Second
	DefaultRedisReadTimeout  = 3 * time.Second
	DefaultRedisWriteTimeout = 3 * time.Second
	DefaultRedisPoolTimeout  = 4 * time.Second
)

const (
	StorageMemory = "memory"
	StorageBunt   = "bunt"
	StorageRedis  = "redis"
)
