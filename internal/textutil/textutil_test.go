package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exact", Truncate("exact", 5))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	// "é" is two bytes; cutting inside it backs off to the rune start.
	assert.Equal(t, "a...", Truncate("aéb", 2))
	assert.Equal(t, "...", Truncate("日本", 1))
}
