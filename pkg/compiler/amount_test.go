package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		token string
		want  int64
		ok    bool
	}{
		{"2m", 2_000_000, true},
		{"2.5m", 2_500_000, true},
		{"2million", 2_000_000, true},
		{"950k", 950_000, true},
		{"950thousand", 950_000, true},
		{"2,000,000", 2_000_000, true},
		{"2000000", 2_000_000, true},
		{"0.5m", 500_000, true},
		{"2", 2, true},
		{"2mm", 0, false},
		{"m2", 0, false},
		{"2,00", 0, false},
		{"", 0, false},
		{"two", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := parseAmount(tt.token)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseAmountRange(t *testing.T) {
	tests := []struct {
		token    string
		wantLow  int64
		wantHigh int64
		ok       bool
	}{
		{"1-2m", 1_000_000, 2_000_000, true},
		{"1m-2m", 1_000_000, 2_000_000, true},
		{"1.5m-2m", 1_500_000, 2_000_000, true},
		{"800k-1.2m", 800_000, 1_200_000, true},
		{"500-900k", 500_000, 900_000, true},
		{"2m-1m", 0, 0, false}, // inverted bounds
		{"1-2", 0, 0, false},   // no suffix anchor
		{"1m", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			low, high, ok := parseAmountRange(tt.token)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.wantLow, low)
				assert.Equal(t, tt.wantHigh, high)
			}
		})
	}
}
