package numgen

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// ValidateRange validates generation range parameters
func ValidateRange(min, max int) error {
	if min >= max {
		return ErrInvalidRange.WithDetails(fmt.Sprintf("min=%d, max=%d", min, max))
	}
	if min < -MaxSafeBound || max > MaxSafeBound {
		return ErrInvalidInput.WithDetails(fmt.Sprintf("bounds must stay within ±%d", int64(MaxSafeBound)))
	}
	return nil
}

// ParseBound coerces user input into an integer bound.
//
// Integral values in any numeric form ("12", "12.0", 12, 12.0) are accepted. Fractional,
// non-numeric and out-of-range input is rejected with ErrInvalidInput.
func ParseBound(raw any) (int, error) {
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
		if raw == "" {
			return 0, ErrInvalidInput.WithDetails("empty value")
		}
	}

	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, ErrInvalidInput.WithDetails(fmt.Sprintf("%v is not a number", raw)).WithCause(err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, ErrInvalidInput.WithDetails(fmt.Sprintf("%v is not an integer", raw))
	}
	if math.Abs(f) > MaxSafeBound {
		return 0, ErrInvalidInput.WithDetails(fmt.Sprintf("%v is out of range", raw))
	}

	return int(f), nil
}

// ParseRange parses both bounds and checks min < max
func ParseRange(rawMin, rawMax any) (int, int, error) {
	min, err := ParseBound(rawMin)
	if err != nil {
		return 0, 0, fmt.Errorf("minimum: %w", err)
	}
	max, err := ParseBound(rawMax)
	if err != nil {
		return 0, 0, fmt.Errorf("maximum: %w", err)
	}
	if err := ValidateRange(min, max); err != nil {
		return 0, 0, err
	}
	return min, max, nil
}
