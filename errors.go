package numgen

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode 错误代码类型
type ErrorCode string

// 错误代码常量
const (
	// 系统级错误 (1000-1999)
	ErrCodeSystem          ErrorCode = "NUMGEN_1000"
	ErrCodeRedisConnection ErrorCode = "NUMGEN_1001"
	ErrCodeConfigInvalid   ErrorCode = "NUMGEN_1004"

	// 业务级错误 (2000-2999)
	ErrCodeInvalidParameters ErrorCode = "NUMGEN_2000"
	ErrCodeInvalidRange      ErrorCode = "NUMGEN_2001"
	ErrCodeInvalidInput      ErrorCode = "NUMGEN_2002"
	ErrCodeGeneratorBusy     ErrorCode = "NUMGEN_2003"
	ErrCodeRollInterrupted   ErrorCode = "NUMGEN_2004"
	ErrCodeInvalidTicks      ErrorCode = "NUMGEN_2005"
	ErrCodeInvalidInterval   ErrorCode = "NUMGEN_2006"
	ErrCodeInvalidMaxEntries ErrorCode = "NUMGEN_2007"

	// 锁相关错误 (3000-3999)
	ErrCodeLockAcquisitionFailed ErrorCode = "NUMGEN_3000"
	ErrCodeLockReleaseFailure    ErrorCode = "NUMGEN_3002"

	// 熔断相关错误 (5000-5999)
	ErrCodeCircuitBreakerOpen ErrorCode = "NUMGEN_5002"

	// 存储相关错误 (6000-6999)
	ErrCodeRecordNotFound      ErrorCode = "NUMGEN_6000"
	ErrCodeRecordSaveFailure   ErrorCode = "NUMGEN_6001"
	ErrCodeRecordLoadFailure   ErrorCode = "NUMGEN_6002"
	ErrCodeRecordCorrupted     ErrorCode = "NUMGEN_6003"
	ErrCodeSerializationFailed ErrorCode = "NUMGEN_6004"
	ErrCodeRecordTooLarge      ErrorCode = "NUMGEN_6006"
)

// ErrorSeverity 错误严重程度
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "critical"
	SeverityHigh     ErrorSeverity = "high"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityLow      ErrorSeverity = "low"
	SeverityInfo     ErrorSeverity = "info"
)

// NumGenError 带错误码的错误类型
type NumGenError struct {
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   string        `json:"details,omitempty"`
	Severity  ErrorSeverity `json:"severity"`
	Timestamp time.Time     `json:"timestamp"`
	Operation string        `json:"operation,omitempty"`
	Cause     error         `json:"-"`
	Retryable bool          `json:"retryable"`
}

// Error 实现 error 接口
func (e *NumGenError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap 接口
func (e *NumGenError) Unwrap() error {
	return e.Cause
}

// Is 按错误码比较
func (e *NumGenError) Is(target error) bool {
	if t, ok := target.(*NumGenError); ok {
		return e.Code == t.Code
	}
	return false
}

// clone returns a copy so the package-level sentinels are never mutated.
func (e *NumGenError) clone() *NumGenError {
	c := *e
	c.Timestamp = time.Now()
	return &c
}

// WithCause 返回附带原因错误的副本
func (e *NumGenError) WithCause(cause error) *NumGenError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithDetails 返回附带详细信息的副本
func (e *NumGenError) WithDetails(details string) *NumGenError {
	c := e.clone()
	c.Details = details
	return c
}

// WithOperation 返回附带操作信息的副本
func (e *NumGenError) WithOperation(operation string) *NumGenError {
	c := e.clone()
	c.Operation = operation
	return c
}

// NewError 创建新的错误
func NewError(code ErrorCode, message string) *NumGenError {
	return &NumGenError{
		Code:      code,
		Message:   message,
		Severity:  SeverityMedium,
		Timestamp: time.Now(),
	}
}

// NewRetryableError 创建可重试的错误
func NewRetryableError(code ErrorCode, message string) *NumGenError {
	err := NewError(code, message)
	err.Retryable = true
	return err
}

// NewCriticalError 创建严重错误
func NewCriticalError(code ErrorCode, message string) *NumGenError {
	err := NewError(code, message)
	err.Severity = SeverityCritical
	return err
}

// 预定义的错误实例
var (
	ErrSystemError           = NewCriticalError(ErrCodeSystem, "system error occurred")
	ErrRedisConnectionFailed = NewRetryableError(ErrCodeRedisConnection, "Redis connection failed")
	ErrConfigInvalid         = NewCriticalError(ErrCodeConfigInvalid, "configuration is invalid")

	ErrInvalidParameters = NewError(ErrCodeInvalidParameters, "invalid parameters provided")
	ErrInvalidRange      = NewError(ErrCodeInvalidRange, "minimum must be less than maximum")
	ErrInvalidInput      = NewError(ErrCodeInvalidInput, "bound must be an integer")
	ErrGeneratorBusy     = NewRetryableError(ErrCodeGeneratorBusy, "generation already in progress")
	ErrRollInterrupted   = NewError(ErrCodeRollInterrupted, "generation interrupted")
	ErrInvalidTicks      = NewError(ErrCodeInvalidTicks, "invalid tick count: must be between 1 and 1000")
	ErrInvalidInterval   = NewError(ErrCodeInvalidInterval, "invalid tick interval: cannot be negative")
	ErrInvalidMaxEntries = NewError(ErrCodeInvalidMaxEntries, "invalid history size: must be positive")

	ErrLockAcquisitionFailed = NewRetryableError(ErrCodeLockAcquisitionFailed, "failed to acquire distributed lock")
	ErrLockReleaseFailure    = NewError(ErrCodeLockReleaseFailure, "failed to release lock")

	ErrCircuitBreakerOpen = NewRetryableError(ErrCodeCircuitBreakerOpen, "circuit breaker is open")

	ErrRecordNotFound      = NewError(ErrCodeRecordNotFound, "record not found")
	ErrRecordSaveFailure   = NewRetryableError(ErrCodeRecordSaveFailure, "failed to save record")
	ErrRecordLoadFailure   = NewRetryableError(ErrCodeRecordLoadFailure, "failed to load record")
	ErrRecordCorrupted     = NewError(ErrCodeRecordCorrupted, "record data is corrupted")
	ErrSerializationFailed = NewError(ErrCodeSerializationFailed, "serialization failed")
	ErrRecordTooLarge      = NewError(ErrCodeRecordTooLarge, "record exceeds maximum size")
)

// retryablePatterns are substrings of transport errors worth another attempt.
var retryablePatterns = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"network is unreachable",
	"temporary failure",
	"server closed",
	"broken pipe",
	"i/o timeout",
	"dial tcp",
	"read tcp",
	"write tcp",
	"connection timed out",
	"no route to host",
	"host is down",
	"connection aborted",
	"operation timed out",
	"redis: connection pool timeout",
	"redis: client is closed",
	"context deadline exceeded",
}

// IsRetryableError 检查是否为可重试错误
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var numErr *NumGenError
	if errors.As(err, &numErr) && numErr.Retryable {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// UserMessage returns the short text shown to the user for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var numErr *NumGenError
	if errors.As(err, &numErr) {
		return numErr.Message
	}
	return err.Error()
}
