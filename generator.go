package numgen

import (
	"context"
	"sync/atomic"
	"time"
)

// Result is the committed outcome of a roll
type Result struct {
	Value     int
	Min       int
	Max       int
	CreatedAt time.Time
}

// RollerConfig controls the rolling animation
type RollerConfig struct {
	Ticks        int           `mapstructure:"ticks"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

// DefaultRollerConfig returns 20 ticks at 50ms, about one second in total
func DefaultRollerConfig() *RollerConfig {
	return &RollerConfig{
		Ticks:        DefaultTicks,
		TickInterval: DefaultTickInterval,
	}
}

// Validate checks the animation settings
func (c *RollerConfig) Validate() error {
	if c.Ticks < 1 || c.Ticks > MaxTicks {
		return ErrInvalidTicks
	}
	if c.TickInterval < 0 {
		return ErrInvalidInterval
	}
	return nil
}

// Roller animates a generation: it shows Ticks transient values, one per TickInterval, and
// commits only the value drawn after the last tick. Only one roll may be in flight at a time.
type Roller struct {
	source  RandomSource
	config  atomic.Pointer[RollerConfig]
	locker  Locker
	lockKey string
	logger  Logger
	now     func() time.Time

	busy atomic.Bool
}

// NewRoller creates a roller backed by a secure random source
func NewRoller(config *RollerConfig, logger Logger) *Roller {
	return NewRollerWithSource(NewSecureRandomGenerator(), config, logger)
}

// NewRollerWithSource creates a roller drawing from src
func NewRollerWithSource(src RandomSource, config *RollerConfig, logger Logger) *Roller {
	if config == nil {
		config = DefaultRollerConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	r := &Roller{
		source:  src,
		lockKey: DefaultRollLockKey,
		logger:  logger,
		now:     time.Now,
	}
	r.config.Store(config)
	return r
}

// SetConfig swaps the animation settings; rolls already in flight keep the old ones
func (r *Roller) SetConfig(config *RollerConfig) error {
	if config == nil {
		return ErrInvalidParameters.WithDetails("nil roller config")
	}
	if err := config.Validate(); err != nil {
		return err
	}
	r.config.Store(config)
	return nil
}

// Config returns the current animation settings
func (r *Roller) Config() RollerConfig { return *r.config.Load() }

// SetLocker makes every roll hold a lock under key, serializing rolls across processes
func (r *Roller) SetLocker(locker Locker, key string) {
	if key == "" {
		key = DefaultRollLockKey
	}
	r.locker = locker
	r.lockKey = key
}

// Busy reports whether a roll is in flight
func (r *Roller) Busy() bool { return r.busy.Load() }

// Roll runs the animation for [min, max] and returns the committed result.
//
// An invalid range fails before any tick. A second call while a roll is in flight fails with
// ErrGeneratorBusy. Cancelling ctx aborts with ErrRollInterrupted and nothing is committed.
func (r *Roller) Roll(ctx context.Context, min, max int, onTick TickFunc) (*Result, error) {
	return r.RollAndCommit(ctx, min, max, onTick, nil)
}

// RollAndCommit is Roll with commit run on the result before the lock is released, so the
// whole read-modify-write of a shared history happens under the lock. A commit error fails
// the roll.
func (r *Roller) RollAndCommit(ctx context.Context, min, max int, onTick TickFunc, commit func(*Result) error) (*Result, error) {
	if err := ValidateRange(min, max); err != nil {
		return nil, err
	}

	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrGeneratorBusy
	}
	defer r.busy.Store(false)

	if r.locker != nil {
		release, err := r.locker.Acquire(ctx, r.lockKey)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	if err := r.animate(ctx, min, max, onTick); err != nil {
		return nil, err
	}

	value, err := Generate(r.source, min, max)
	if err != nil {
		return nil, err
	}

	result := &Result{Value: value, Min: min, Max: max, CreatedAt: r.now()}
	if commit != nil {
		if err := commit(result); err != nil {
			return nil, err
		}
	}

	r.logger.Debug("Roll committed: value=%d, range=[%d, %d]", value, min, max)
	return result, nil
}

// Locked runs fn while holding the roll lock, if a locker is set
func (r *Roller) Locked(ctx context.Context, fn func() error) error {
	if r.locker != nil {
		release, err := r.locker.Acquire(ctx, r.lockKey)
		if err != nil {
			return err
		}
		defer release()
	}
	return fn()
}

// Shared reports whether rolls are serialized by a locker
func (r *Roller) Shared() bool { return r.locker != nil }

// animate emits the transient values. The ticker is the sole writer of the displayed value
// and is stopped exactly once, when the function returns.
func (r *Roller) animate(ctx context.Context, min, max int, onTick TickFunc) error {
	config := r.config.Load()
	total := config.Ticks
	interval := config.TickInterval
	if interval <= 0 {
		interval = time.Nanosecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for tick := 1; tick <= total; tick++ {
		select {
		case <-ctx.Done():
			r.logger.Debug("Roll interrupted at tick %d/%d", tick, total)
			return ErrRollInterrupted.WithCause(ctx.Err())
		case <-ticker.C:
		}

		value, err := Generate(r.source, min, max)
		if err != nil {
			return err
		}
		if onTick != nil {
			onTick(tick, total, value)
		}
	}

	return nil
}
