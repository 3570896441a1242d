package mathutil

import (
	"math"
	"testing"
)

func TestIsNonNegative(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Zero", 0.0, true},
		{"Positive", 12.5, true},
		{"Negative", -0.001, false},
		{"NaN", math.NaN(), false},
		{"Positive infinity", math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsNonNegative(tt.input); result != tt.expected {
				t.Errorf("IsNonNegative(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestPercentConversions(t *testing.T) {
	if got := PercentToFraction(12.5); math.Abs(got-0.125) > 1e-12 {
		t.Errorf("PercentToFraction(12.5) = %v, expected 0.125", got)
	}
	if got := FractionToPercent(0.125); math.Abs(got-12.5) > 1e-12 {
		t.Errorf("FractionToPercent(0.125) = %v, expected 12.5", got)
	}
}

func TestIsWhole(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Integer", 365, true},
		{"Zero", 0, true},
		{"Negative integer", -3, true},
		{"Fraction", 1.5, false},
		{"NaN", math.NaN(), false},
		{"Infinity", math.Inf(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsWhole(tt.input); result != tt.expected {
				t.Errorf("IsWhole(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}
