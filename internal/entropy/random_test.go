package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeed(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 32; i++ {
		s := Seed()
		assert.Positive(t, s)
		seen[s] = true
	}
	assert.Greater(t, len(seen), 1, "seeds should vary")
}

func TestNonZero(t *testing.T) {
	assert.Equal(t, int64(1), nonZero(0))
	assert.Equal(t, int64(5), nonZero(5))
}
