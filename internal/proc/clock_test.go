package proc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_StartsAtZero(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next(), "first sequence is 1")
}

func TestClock_NextIsStrictlyIncreasing(t *testing.T) {
	c := NewClock()
	for want := int64(1); want <= 100; want++ {
		assert.Equal(t, want, c.Next())
	}
	assert.Equal(t, int64(100), c.Current())
}

func TestClock_Reset(t *testing.T) {
	c := NewClock()
	c.Next()
	c.Next()
	c.Reset()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
}
