package numgen

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// App ties the roller, the history store and the notifier together. Every mutation goes
// through it, so the history is never touched from anywhere else.
type App struct {
	roller   *Roller
	history  *HistoryStore
	notifier Notifier
	logger   Logger
	monitor  *PerformanceMonitor
}

// NewApp assembles an App; nil notifier and logger are replaced by silent ones. When the
// roller has a locker the history is shared: every mutation re-reads the record under the lock.
func NewApp(roller *Roller, history *HistoryStore, notifier Notifier, logger Logger) *App {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	monitor := NewPerformanceMonitor()
	history.SetNotifier(notifier)
	history.SetPerformanceMonitor(monitor)
	if rl, ok := roller.locker.(*RedisLocker); ok {
		rl.SetPerformanceMonitor(monitor)
	}
	history.SetShared(roller.Shared())

	return &App{
		roller:   roller,
		history:  history,
		notifier: notifier,
		logger:   logger,
		monitor:  monitor,
	}
}

// Load rehydrates the history; call once at startup
func (a *App) Load(ctx context.Context) []HistoryEntry {
	entries := a.history.Load(ctx)
	a.logger.Info("History loaded: %d entries", len(entries))
	return entries
}

// Generate rolls a number in [min, max] and, once the last tick has passed, records it.
// The insert runs before the roll lock is released. An invalid range is reported to the user
// and mutates nothing.
func (a *App) Generate(ctx context.Context, min, max int, onTick TickFunc) (HistoryEntry, error) {
	start := time.Now()

	var entry HistoryEntry
	_, err := a.roller.RollAndCommit(ctx, min, max, onTick, func(result *Result) error {
		entry = a.history.NewEntry(result)
		return a.history.Insert(ctx, entry)
	})
	if err != nil {
		a.monitor.RecordRoll(classifyRollError(err), time.Since(start))
		a.logger.Debug("Roll for [%d, %d] failed: %v", min, max, err)
		a.notifier.Error(UserMessage(err))
		return HistoryEntry{}, err
	}

	a.monitor.RecordRoll(RollCommitted, time.Since(start))
	a.logger.Info("Generated %d in [%d, %d], id=%s", entry.Number, min, max, entry.ID)
	a.notifier.Success(fmt.Sprintf("generated number: %d", entry.Number))
	return entry, nil
}

// Delete removes one history entry; an unknown id is not an error
func (a *App) Delete(ctx context.Context, id string) bool {
	var removed bool
	err := a.roller.Locked(ctx, func() error {
		removed = a.history.Remove(ctx, id)
		return nil
	})
	if err != nil {
		a.logger.Error("Delete of id=%s skipped: %v", id, err)
		a.notifier.Error(UserMessage(err))
		return false
	}

	if removed {
		a.notifier.Success("entry deleted")
	} else {
		a.logger.Debug("Delete ignored, no entry with id=%s", id)
	}
	return removed
}

// Clear empties the history
func (a *App) Clear(ctx context.Context) {
	err := a.roller.Locked(ctx, func() error {
		a.history.Clear(ctx)
		return nil
	})
	if err != nil {
		a.logger.Error("Clear skipped: %v", err)
		a.notifier.Error(UserMessage(err))
		return
	}
	a.notifier.Success("history cleared")
}

// Reconfigure applies new animation settings to later rolls
func (a *App) Reconfigure(config *GeneratorConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := a.roller.SetConfig(config.RollerConfig()); err != nil {
		return err
	}
	a.logger.Info("Generator reconfigured: ticks=%d, interval=%v", config.Ticks, config.TickInterval)
	return nil
}

// History returns the entries, newest first
func (a *App) History() []HistoryEntry { return a.history.Entries() }

// Total is the number of generations currently kept in history
func (a *App) Total() int { return a.history.Len() }

// Busy reports whether a roll is in flight
func (a *App) Busy() bool { return a.roller.Busy() }

// Metrics returns a snapshot of the counters
func (a *App) Metrics() PerformanceMetrics { return a.monitor.GetMetrics() }

func classifyRollError(err error) RollOutcome {
	switch {
	case errors.Is(err, ErrInvalidRange), errors.Is(err, ErrInvalidInput):
		return RollRejected
	case errors.Is(err, ErrGeneratorBusy):
		return RollBusy
	default:
		return RollFailed
	}
}
