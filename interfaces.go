package numgen

import "context"

// TickFunc receives every transient value shown while a roll is in flight
type TickFunc func(tick, total, value int)

// RandomSource yields uniform floats in [0, 1)
type RandomSource interface {
	GenerateFloat() (float64, error)
}

// Storage is a durable key-value facility holding serialized records
type Storage interface {
	// Get returns ErrRecordNotFound when the key is absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the record stored under key
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes the record; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	Close() error
}

// Locker serializes rolls across processes sharing one history
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Notifier delivers transient notices to the user, fire-and-forget
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}
