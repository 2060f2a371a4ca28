package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{name: "zero", input: 0, expected: "0.00"},
		{name: "whole number", input: 5, expected: "5.00"},
		{name: "two decimals", input: 3.45, expected: "3.45"},
		{name: "rounds up to two decimals", input: 0.856, expected: "0.86"},
		{name: "rounds down to two decimals", input: 0.854, expected: "0.85"},
		{name: "one hundred", input: 100, expected: "100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatPercent(tt.input))
		})
	}
}

func TestFormatSigned(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{name: "zero has no sign", input: 0, expected: "0.00"},
		{name: "positive", input: 1.69, expected: "+1.69"},
		{name: "negative", input: -2.6, expected: "-2.60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatSigned(tt.input))
		})
	}
}

func TestFormatBool(t *testing.T) {
	assert.Equal(t, "true", formatBool(true))
	assert.Equal(t, "false", formatBool(false))
}
