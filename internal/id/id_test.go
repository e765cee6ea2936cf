package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDsAreUniqueAndTimeSorted(t *testing.T) {
	t.Parallel()

	g := NewGenerator()

	seen := make(map[string]bool)
	var prev string
	for i := 0; i < 1000; i++ {
		id := g.New()
		assert.Len(t, id, 26)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		if prev != "" {
			assert.Greater(t, id, prev, "ids must sort by creation order")
		}
		prev = id
	}
}

func TestDefaultGenerator(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 26)
}
