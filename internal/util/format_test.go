package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTokenCount(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected string
	}{
		{
			name:     "zero",
			input:    0,
			expected: "0",
		},
		{
			name:     "small number",
			input:    42,
			expected: "42",
		},
		{
			name:     "just below K threshold",
			input:    999,
			expected: "999",
		},
		{
			name:     "exactly 1000",
			input:    1000,
			expected: "1K",
		},
		{
			name:     "round thousands",
			input:    2000,
			expected: "2K",
		},
		{
			name:     "thousands round to nearest K",
			input:    1500,
			expected: "2K",
		},
		{
			name:     "tens of thousands",
			input:    25000,
			expected: "25K",
		},
		{
			name:     "exactly 1 million",
			input:    1000000,
			expected: "1.0M",
		},
		{
			name:     "fractional millions",
			input:    1500000,
			expected: "1.5M",
		},
		{
			name:     "millions",
			input:    2500000,
			expected: "2.5M",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatTokenCount(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected string
	}{
		{
			name:     "zero",
			input:    0,
			expected: "0",
		},
		{
			name:     "three digits",
			input:    999,
			expected: "999",
		},
		{
			name:     "four digits",
			input:    1000,
			expected: "1,000",
		},
		{
			name:     "six digits",
			input:    123456,
			expected: "123,456",
		},
		{
			name:     "seven digits",
			input:    1234567,
			expected: "1,234,567",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatNumber(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Duration
		expected string
	}{
		{
			name:     "zero duration",
			input:    0,
			expected: "0m",
		},
		{
			name:     "minutes only",
			input:    30 * time.Minute,
			expected: "30m",
		},
		{
			name:     "exactly 1 hour",
			input:    time.Hour,
			expected: "1h 0m",
		},
		{
			name:     "hours and minutes",
			input:    5*time.Hour + 15*time.Minute,
			expected: "5h 15m",
		},
		{
			name:     "seconds get rounded down",
			input:    time.Hour + 30*time.Minute + 45*time.Second,
			expected: "1h 30m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatDuration(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{
			name:     "zero",
			input:    0.0,
			expected: "$0.00",
		},
		{
			name:     "dollars and cents",
			input:    42.50,
			expected: "$42.50",
		},
		{
			name:     "thousands with separator",
			input:    1234.56,
			expected: "$1,234.56",
		},
		{
			name:     "millions with separators",
			input:    2500000.50,
			expected: "$2,500,000.50",
		},
		{
			name:     "rounds to 2 decimal places",
			input:    123.456,
			expected: "$123.46",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatCurrency(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}
