package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBase(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		unit     string
		expected float64
	}{
		{"Base unit", 15.7, "Gh/s", 15.7},
		{"Tera", 1.5, "Th/s", 1500},
		{"Peta", 2, "Ph/s", 2e6},
		{"Exa", 3, "Eh/s", 3e9},
		{"Case insensitive", 1, "th/S", 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBase(tt.value, tt.unit)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestToBaseUnknownUnit(t *testing.T) {
	_, err := ToBase(1, "Zh/s")
	assert.Error(t, err)
}

func TestSplitAndParse(t *testing.T) {
	num, unit := Split(" 15.7 Th/s ")
	assert.Equal(t, "15.7", num)
	assert.Equal(t, TeraHash, unit)

	num, unit = Split("42")
	assert.Equal(t, "42", num)
	assert.Equal(t, BaseLabel, unit)

	got, err := Parse("2.5 Ph/s")
	require.NoError(t, err)
	assert.InDelta(t, 2.5e6, got, 1e-6)

	_, err = Parse("Th/s")
	assert.Error(t, err)

	_, err = Parse("abc Th/s")
	assert.Error(t, err)
}

func TestScale(t *testing.T) {
	tests := []struct {
		name      string
		magnitude float64
		value     float64
		label     string
	}{
		{"Below step", 999, 999, GigaHash},
		{"Exactly one step", 1000, 1, TeraHash},
		{"Peta", 2.5e6, 2.5, PetaHash},
		{"Exa", 4e9, 4, ExaHash},
		{"Saturates at largest unit", 7e15, 7e6, ExaHash},
		{"Zero", 0, 0, GigaHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, label := Scale(tt.magnitude)
			assert.InDelta(t, tt.value, value, 1e-6)
			assert.Equal(t, tt.label, label)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1.500 Th/s", Format(1500))
	assert.Equal(t, "12.000 Gh/s", Format(12))
	assert.Equal(t, "1000000.000 Eh/s", Format(1e15))
}
