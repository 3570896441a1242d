package datetime

import (
	"math"
	"testing"
)

func TestDayClock(t *testing.T) {
	tests := []struct {
		name     string
		days     float64
		expected string
	}{
		{"Midnight", 0, "00:00:00"},
		{"Whole day", 3, "00:00:00"},
		{"Quarter day", 0.25, "06:00:00"},
		{"Three quarters past day two", 2.75, "18:00:00"},
		{"Half day", 0.5, "12:00:00"},
		{"One second", 1.0 / 86400 * 1.5, "00:00:01"},
		{"Just under a second", 0.99 / 86400, "00:00:00"},
		{"Just under midnight", 1 - 0.5/86400, "23:59:59"},
		{"NaN", math.NaN(), "00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayClock(tt.days); got != tt.expected {
				t.Errorf("DayClock(%v) = %s, expected %s", tt.days, got, tt.expected)
			}
		})
	}
}
