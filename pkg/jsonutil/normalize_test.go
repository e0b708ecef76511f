package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, int64(2000000), NormalizeValue(float64(2000000)))
	assert.Equal(t, 2.5, NormalizeValue(2.5))
	assert.Equal(t, []string{"A", "B"}, NormalizeValue([]any{"A", "B"}))
	assert.Equal(t, "JVC", NormalizeValue("JVC"))

	// Mixed arrays pass through unchanged.
	mixed := []any{"A", 1.0}
	assert.Equal(t, mixed, NormalizeValue(mixed))
}
