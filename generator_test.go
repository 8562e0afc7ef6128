package numgen

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRollerConfig(ticks int) *RollerConfig {
	return &RollerConfig{Ticks: ticks, TickInterval: time.Millisecond}
}

type recordingLocker struct {
	acquired atomic.Int32
	released atomic.Int32
	err      error
}

func (l *recordingLocker) Acquire(_ context.Context, _ string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired.Add(1)
	return func() { l.released.Add(1) }, nil
}

func TestRoller_Roll(t *testing.T) {
	t.Run("emits every tick before committing", func(t *testing.T) {
		roller := NewRollerWithSource(NewSecureRandomGenerator(), fastRollerConfig(20), nil)

		var ticks []int
		result, err := roller.Roll(context.Background(), 1, 100, func(tick, total, value int) {
			assert.Equal(t, 20, total)
			assert.GreaterOrEqual(t, value, 1)
			assert.LessOrEqual(t, value, 100)
			ticks = append(ticks, tick)
		})

		require.NoError(t, err)
		require.Len(t, ticks, 20)
		assert.Equal(t, 1, ticks[0])
		assert.Equal(t, 20, ticks[19])
		assert.GreaterOrEqual(t, result.Value, 1)
		assert.LessOrEqual(t, result.Value, 100)
		assert.Equal(t, 1, result.Min)
		assert.Equal(t, 100, result.Max)
		assert.False(t, result.CreatedAt.IsZero())
		assert.False(t, roller.Busy())
	})

	t.Run("commits the value drawn after the last tick", func(t *testing.T) {
		// three transient draws, then the committed one
		src := &sequenceSource{values: []float64{0.0, 0.1, 0.2, 0.95}}
		roller := NewRollerWithSource(src, fastRollerConfig(3), nil)

		var shown []int
		result, err := roller.Roll(context.Background(), 0, 9, func(_, _, value int) {
			shown = append(shown, value)
		})

		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, shown)
		assert.Equal(t, 9, result.Value)
	})

	t.Run("invalid range produces no ticks", func(t *testing.T) {
		roller := NewRollerWithSource(NewSecureRandomGenerator(), fastRollerConfig(5), nil)

		called := false
		result, err := roller.Roll(context.Background(), 1, 1, func(_, _, _ int) { called = true })

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidRange))
		assert.Nil(t, result)
		assert.False(t, called)
	})

	t.Run("nil tick callback", func(t *testing.T) {
		roller := NewRollerWithSource(NewSecureRandomGenerator(), fastRollerConfig(2), nil)
		result, err := roller.Roll(context.Background(), 5, 6, nil)
		require.NoError(t, err)
		assert.Contains(t, []int{5, 6}, result.Value)
	})
}

func TestRoller_BusyGuard(t *testing.T) {
	roller := NewRollerWithSource(NewSecureRandomGenerator(), &RollerConfig{Ticks: 5, TickInterval: 20 * time.Millisecond}, nil)

	started := make(chan struct{})
	var once sync.Once
	done := make(chan error, 1)

	go func() {
		_, err := roller.Roll(context.Background(), 1, 10, func(_, _, _ int) {
			once.Do(func() { close(started) })
		})
		done <- err
	}()

	<-started
	assert.True(t, roller.Busy())

	_, err := roller.Roll(context.Background(), 1, 10, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGeneratorBusy))

	require.NoError(t, <-done)
	assert.False(t, roller.Busy())

	// the guard is released once the first roll completes
	_, err = roller.Roll(context.Background(), 1, 10, nil)
	assert.NoError(t, err)
}

func TestRoller_Interrupted(t *testing.T) {
	roller := NewRollerWithSource(NewSecureRandomGenerator(), &RollerConfig{Ticks: 20, TickInterval: 50 * time.Millisecond}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	var ticks atomic.Int32
	result, err := roller.Roll(ctx, 1, 10, func(_, _, _ int) {
		if ticks.Add(1) == 2 {
			cancel()
		}
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRollInterrupted))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, result)
	assert.Equal(t, int32(2), ticks.Load())
	assert.False(t, roller.Busy())
}

func TestRoller_Locker(t *testing.T) {
	t.Run("lock held around the roll", func(t *testing.T) {
		locker := &recordingLocker{}
		roller := NewRollerWithSource(NewSecureRandomGenerator(), fastRollerConfig(2), nil)
		roller.SetLocker(locker, "")

		_, err := roller.Roll(context.Background(), 1, 10, nil)
		require.NoError(t, err)
		assert.Equal(t, int32(1), locker.acquired.Load())
		assert.Equal(t, int32(1), locker.released.Load())
	})

	t.Run("lock failure aborts the roll", func(t *testing.T) {
		locker := &recordingLocker{err: ErrLockAcquisitionFailed}
		roller := NewRollerWithSource(NewSecureRandomGenerator(), fastRollerConfig(2), nil)
		roller.SetLocker(locker, "shared")

		called := false
		_, err := roller.Roll(context.Background(), 1, 10, func(_, _, _ int) { called = true })
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrLockAcquisitionFailed))
		assert.False(t, called)
		assert.False(t, roller.Busy())
	})
}

func TestRollerConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultRollerConfig().Validate())
	assert.ErrorIs(t, (&RollerConfig{Ticks: 0, TickInterval: time.Millisecond}).Validate(), ErrInvalidTicks)
	assert.ErrorIs(t, (&RollerConfig{Ticks: MaxTicks + 1}).Validate(), ErrInvalidTicks)
	assert.ErrorIs(t, (&RollerConfig{Ticks: 1, TickInterval: -time.Second}).Validate(), ErrInvalidInterval)
}
