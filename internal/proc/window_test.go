package proc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateWindow_AllowUntilCap(t *testing.T) {
	w := NewRateWindow(3)

	for i := 0; i < 3; i++ {
		assert.True(t, w.Allow(), "fire %d", i+1)
		w.Record()
	}
	assert.False(t, w.Allow())
	assert.Equal(t, 3, w.Fires())
}

func TestRateWindow_CapCoercion(t *testing.T) {
	assert.Equal(t, 1, NewRateWindow(0).Cap())
	assert.Equal(t, 1, NewRateWindow(-5).Cap())
	assert.Equal(t, 250, NewRateWindow(250).Cap())
}

func TestRateWindow_RollWrapsOnce(t *testing.T) {
	w := NewRateWindow(10)
	w.Record()

	assert.False(t, w.Roll(999))
	assert.Equal(t, 1, w.Fires())

	assert.True(t, w.Roll(1))
	assert.Equal(t, 0, w.ElapsedMs())
	assert.Equal(t, 0, w.Fires())
}

func TestRateWindow_LongRollKeepsRemainder(t *testing.T) {
	w := NewRateWindow(10)

	// A single subtraction per roll: 2500 -> 1500, not 500.
	assert.True(t, w.Roll(2500))
	assert.Equal(t, 1500, w.ElapsedMs())

	// The next roll wraps again from the leftover.
	assert.True(t, w.Roll(100))
	assert.Equal(t, 600, w.ElapsedMs())
}

func TestRateWindow_ResetKeepsCap(t *testing.T) {
	w := NewRateWindow(7)
	w.Record()
	w.Roll(300)

	w.Reset()

	assert.Equal(t, 0, w.Fires())
	assert.Equal(t, 0, w.ElapsedMs())
	assert.Equal(t, 7, w.Cap())
}
