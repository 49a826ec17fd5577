package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsJPYTicker(t *testing.T) {
	assert.True(t, IsJPYTicker("7203"))
	assert.True(t, IsJPYTicker("9984"))
	assert.False(t, IsJPYTicker("AAPL"))
	assert.False(t, IsJPYTicker("BRK.B"))
	assert.False(t, IsJPYTicker(""))
}

func TestPositionClone(t *testing.T) {
	original := Position{"7203": 100}
	clone := original.Clone()

	clone["7203"] = 1
	clone["9984"] = 50

	assert.Equal(t, int64(100), original["7203"])
	assert.NotContains(t, original, "9984")
}
