package numgen

import (
	"sync"
	"sync/atomic"
	"time"
)

// PerformanceMetrics 性能指标
type PerformanceMetrics struct {
	// 生成统计
	TotalRolls      int64 `json:"total_rolls"`      // 总生成次数
	SuccessfulRolls int64 `json:"successful_rolls"` // 成功提交次数
	RejectedRolls   int64 `json:"rejected_rolls"`   // 无效范围被拒绝次数
	BusyRejections  int64 `json:"busy_rejections"`  // 生成进行中被拒绝次数
	FailedRolls     int64 `json:"failed_rolls"`     // 其它失败次数

	// 锁操作统计
	LockAcquisitions    int64 `json:"lock_acquisitions"`
	LockAcquisitionTime int64 `json:"lock_acquisition_time"` // 纳秒
	LockFailures        int64 `json:"lock_failures"`

	// 存储统计
	PersistFailures int64 `json:"persist_failures"`
	LoadFailures    int64 `json:"load_failures"`

	// 耗时统计
	AverageRollTime int64 `json:"average_roll_time"` // 纳秒
	TotalRollTime   int64 `json:"total_roll_time"`   // 纳秒

	StartTime      int64 `json:"start_time"`
	LastUpdateTime int64 `json:"last_update_time"`
}

// GetSuccessRate 获取成功率(百分比)
func (pm *PerformanceMetrics) GetSuccessRate() float64 {
	total := atomic.LoadInt64(&pm.TotalRolls)
	if total == 0 {
		return 0.0
	}
	successful := atomic.LoadInt64(&pm.SuccessfulRolls)
	return float64(successful) / float64(total) * 100.0
}

// GetAverageLockTime 获取平均锁获取时间
func (pm *PerformanceMetrics) GetAverageLockTime() time.Duration {
	acquisitions := atomic.LoadInt64(&pm.LockAcquisitions)
	if acquisitions == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&pm.LockAcquisitionTime) / acquisitions)
}

// Reset 重置性能指标
func (pm *PerformanceMetrics) Reset() {
	atomic.StoreInt64(&pm.TotalRolls, 0)
	atomic.StoreInt64(&pm.SuccessfulRolls, 0)
	atomic.StoreInt64(&pm.RejectedRolls, 0)
	atomic.StoreInt64(&pm.BusyRejections, 0)
	atomic.StoreInt64(&pm.FailedRolls, 0)
	atomic.StoreInt64(&pm.LockAcquisitions, 0)
	atomic.StoreInt64(&pm.LockAcquisitionTime, 0)
	atomic.StoreInt64(&pm.LockFailures, 0)
	atomic.StoreInt64(&pm.PersistFailures, 0)
	atomic.StoreInt64(&pm.LoadFailures, 0)
	atomic.StoreInt64(&pm.AverageRollTime, 0)
	atomic.StoreInt64(&pm.TotalRollTime, 0)
	atomic.StoreInt64(&pm.StartTime, time.Now().UnixNano())
	atomic.StoreInt64(&pm.LastUpdateTime, time.Now().UnixNano())
}

// RollOutcome classifies a finished Roll call
type RollOutcome int

const (
	RollCommitted RollOutcome = iota
	RollRejected
	RollBusy
	RollFailed
)

// PerformanceMonitor 性能监控器
type PerformanceMonitor struct {
	metrics *PerformanceMetrics
	mu      sync.RWMutex
	enabled bool
}

// NewPerformanceMonitor 创建新的性能监控器
func NewPerformanceMonitor() *PerformanceMonitor {
	pm := &PerformanceMonitor{
		metrics: &PerformanceMetrics{},
		enabled: true,
	}
	pm.metrics.Reset()
	return pm
}

// Enable 启用性能监控
func (pm *PerformanceMonitor) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.enabled = true
}

// Disable 禁用性能监控
func (pm *PerformanceMonitor) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.enabled = false
}

// IsEnabled 检查是否启用了性能监控
func (pm *PerformanceMonitor) IsEnabled() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	return pm.enabled
}

// RecordRoll 记录一次生成
func (pm *PerformanceMonitor) RecordRoll(outcome RollOutcome, duration time.Duration) {
	if !pm.IsEnabled() {
		return
	}

	total := atomic.AddInt64(&pm.metrics.TotalRolls, 1)
	switch outcome {
	case RollCommitted:
		atomic.AddInt64(&pm.metrics.SuccessfulRolls, 1)
	case RollRejected:
		atomic.AddInt64(&pm.metrics.RejectedRolls, 1)
	case RollBusy:
		atomic.AddInt64(&pm.metrics.BusyRejections, 1)
	default:
		atomic.AddInt64(&pm.metrics.FailedRolls, 1)
	}

	totalTime := atomic.AddInt64(&pm.metrics.TotalRollTime, int64(duration))
	atomic.StoreInt64(&pm.metrics.AverageRollTime, totalTime/total)
	pm.touch()
}

// RecordLockAcquisition 记录锁获取操作
func (pm *PerformanceMonitor) RecordLockAcquisition(success bool, duration time.Duration) {
	if !pm.IsEnabled() {
		return
	}

	if success {
		atomic.AddInt64(&pm.metrics.LockAcquisitions, 1)
		atomic.AddInt64(&pm.metrics.LockAcquisitionTime, int64(duration))
	} else {
		atomic.AddInt64(&pm.metrics.LockFailures, 1)
	}
	pm.touch()
}

// RecordPersistFailure 记录一次被吞掉的写失败
func (pm *PerformanceMonitor) RecordPersistFailure() {
	if !pm.IsEnabled() {
		return
	}

	atomic.AddInt64(&pm.metrics.PersistFailures, 1)
	pm.touch()
}

// RecordLoadFailure 记录一次读失败或损坏的记录
func (pm *PerformanceMonitor) RecordLoadFailure() {
	if !pm.IsEnabled() {
		return
	}

	atomic.AddInt64(&pm.metrics.LoadFailures, 1)
	pm.touch()
}

func (pm *PerformanceMonitor) touch() {
	atomic.StoreInt64(&pm.metrics.LastUpdateTime, time.Now().UnixNano())
}

// GetMetrics 获取性能指标的副本
func (pm *PerformanceMonitor) GetMetrics() PerformanceMetrics {
	return PerformanceMetrics{
		TotalRolls:          atomic.LoadInt64(&pm.metrics.TotalRolls),
		SuccessfulRolls:     atomic.LoadInt64(&pm.metrics.SuccessfulRolls),
		RejectedRolls:       atomic.LoadInt64(&pm.metrics.RejectedRolls),
		BusyRejections:      atomic.LoadInt64(&pm.metrics.BusyRejections),
		FailedRolls:         atomic.LoadInt64(&pm.metrics.FailedRolls),
		LockAcquisitions:    atomic.LoadInt64(&pm.metrics.LockAcquisitions),
		LockAcquisitionTime: atomic.LoadInt64(&pm.metrics.LockAcquisitionTime),
		LockFailures:        atomic.LoadInt64(&pm.metrics.LockFailures),
		PersistFailures:     atomic.LoadInt64(&pm.metrics.PersistFailures),
		LoadFailures:        atomic.LoadInt64(&pm.metrics.LoadFailures),
		AverageRollTime:     atomic.LoadInt64(&pm.metrics.AverageRollTime),
		TotalRollTime:       atomic.LoadInt64(&pm.metrics.TotalRollTime),
		StartTime:           atomic.LoadInt64(&pm.metrics.StartTime),
		LastUpdateTime:      atomic.LoadInt64(&pm.metrics.LastUpdateTime),
	}
}

// ResetMetrics 重置性能指标
func (pm *PerformanceMonitor) ResetMetrics() { pm.metrics.Reset() }
