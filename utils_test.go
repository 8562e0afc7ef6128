package numgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBound(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected int
		wantErr  bool
	}{
		{name: "plain integer string", input: "42", expected: 42},
		{name: "padded string", input: "  7 ", expected: 7},
		{name: "negative", input: "-15", expected: -15},
		{name: "integral float string", input: "12.0", expected: 12},
		{name: "int value", input: 99, expected: 99},
		{name: "integral float value", input: 3.0, expected: 3},
		{name: "fractional string", input: "12.5", wantErr: true},
		{name: "fractional value", input: 0.25, wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "too large", input: "1e300", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseBound(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseRange(t *testing.T) {
	min, max, err := ParseRange("1", "100")
	require.NoError(t, err)
	assert.Equal(t, 1, min)
	assert.Equal(t, 100, max)

	_, _, err = ParseRange("5", "5")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, _, err = ParseRange("10", "1")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, _, err = ParseRange("x", "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "minimum")

	_, _, err = ParseRange("1", "2.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum")
}

func TestValidateRange(t *testing.T) {
	assert.NoError(t, ValidateRange(1, 2))
	assert.NoError(t, ValidateRange(-MaxSafeBound, MaxSafeBound))
	assert.ErrorIs(t, ValidateRange(1, 1), ErrInvalidRange)
	assert.ErrorIs(t, ValidateRange(2, 1), ErrInvalidRange)
	assert.ErrorIs(t, ValidateRange(-MaxSafeBound-1, 0), ErrInvalidInput)
}
