package proc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsorbPool_Empty(t *testing.T) {
	e := quietEngine(t)
	assert.Equal(t, 0, e.AbsorbPool())
	assert.Equal(t, 0, e.ConsumeAbsorb(50))
}

func TestAbsorbPool_OnlyActiveBlockProcs(t *testing.T) {
	e := quietEngine(t)
	shield, _ := e.Register(Definition{Trigger: OnBlock, DurationMs: 1000, Magnitude: 10, StackRule: Stack, MaxStacks: 3})
	_, _ = e.Register(Definition{Trigger: OnHit, DurationMs: 1000, Magnitude: 99})
	_, _ = e.Register(Definition{Trigger: OnBlock, DurationMs: 0, Magnitude: 50})

	assert.Equal(t, 0, e.AbsorbPool(), "nothing active yet")

	e.Block()
	e.Hit(false)
	assert.Equal(t, 10, e.AbsorbPool(), "instant block procs and hit procs hold nothing")

	require.NoError(t, e.ForceActivate(shield, 3, 500))
	assert.Equal(t, 30, e.AbsorbPool())
}

func TestAbsorbPool_SkipsNonPositiveMagnitude(t *testing.T) {
	e := quietEngine(t)
	neg, _ := e.Register(Definition{Trigger: OnBlock, DurationMs: 1000, Magnitude: -5})
	pos, _ := e.Register(Definition{Trigger: OnBlock, DurationMs: 1000, Magnitude: 8})
	require.NoError(t, e.ForceActivate(neg, 2, 500))
	require.NoError(t, e.ForceActivate(pos, 1, 500))

	assert.Equal(t, 8, e.AbsorbPool())
	assert.Equal(t, 8, e.ConsumeAbsorb(100))
	assert.Equal(t, 2, e.ActiveStacks(neg), "non-positive shields are untouched")
}

func TestConsumeAbsorb_PartialStack(t *testing.T) {
	e := quietEngine(t)
	id, _ := e.Register(Definition{Trigger: OnBlock, DurationMs: 1000, Magnitude: 10, StackRule: Stack, MaxStacks: 3})
	require.NoError(t, e.ForceActivate(id, 3, 1000))
	require.Equal(t, 30, e.AbsorbPool())

	// 15 spans one and a half stacks: two stacks are removed.
	assert.Equal(t, 15, e.ConsumeAbsorb(15))
	assert.Equal(t, 1, e.ActiveStacks(id))
	assert.Equal(t, 10, e.AbsorbPool())
}

func TestConsumeAbsorb_DrainsInIDOrder(t *testing.T) {
	e := quietEngine(t)
	first, _ := e.Register(Definition{Trigger: OnBlock, DurationMs: 1000, Magnitude: 5})
	second, _ := e.Register(Definition{Trigger: OnBlock, DurationMs: 1000, Magnitude: 20})
	require.NoError(t, e.ForceActivate(first, 2, 1000))
	require.NoError(t, e.ForceActivate(second, 1, 1000))

	assert.Equal(t, 12, e.ConsumeAbsorb(12))

	st, _ := e.State(first)
	assert.Equal(t, 0, st.Stacks)
	assert.Equal(t, 0, st.DurationRemainingMs, "drained shields lose their duration")

	// 2 of the second shield's 20 were taken, which costs its only stack.
	assert.Equal(t, 0, e.ActiveStacks(second))
	assert.Equal(t, 0, e.AbsorbPool())
}

func TestConsumeAbsorb_CappedByPool(t *testing.T) {
	e := quietEngine(t)
	id, _ := e.Register(Definition{Trigger: OnBlock, DurationMs: 1000, Magnitude: 10})
	require.NoError(t, e.ForceActivate(id, 2, 1000))

	assert.Equal(t, 20, e.ConsumeAbsorb(75))
	assert.Equal(t, 0, e.AbsorbPool())
	assert.Equal(t, 0, e.ConsumeAbsorb(10))
}

func TestConsumeAbsorb_NonPositiveAmount(t *testing.T) {
	e := quietEngine(t)
	id, _ := e.Register(Definition{Trigger: OnBlock, DurationMs: 1000, Magnitude: 10})
	require.NoError(t, e.ForceActivate(id, 1, 1000))

	assert.Equal(t, 0, e.ConsumeAbsorb(0))
	assert.Equal(t, 0, e.ConsumeAbsorb(-4))
	assert.Equal(t, 10, e.AbsorbPool())
}

func TestConsumeAbsorb_NeverExceedsPool(t *testing.T) {
	e := quietEngine(t)
	for _, mag := range []int{3, 7, 11, 0, -2} {
		id, _ := e.Register(Definition{Trigger: OnBlock, DurationMs: 1000, Magnitude: mag, StackRule: Stack})
		require.NoError(t, e.ForceActivate(id, 4, 1000))
	}

	for _, amount := range []int{1, 5, 9, 13, 40, 100} {
		pool := e.AbsorbPool()
		got := e.ConsumeAbsorb(amount)
		assert.LessOrEqual(t, got, amount)
		assert.LessOrEqual(t, got, pool)
		assert.GreaterOrEqual(t, got, 0)
	}
}

func TestShield_BlockStacksAcrossEncounter(t *testing.T) {
	e := quietEngine(t)
	id, _ := e.Register(Definition{
		Name:       "BurningAegis",
		Trigger:    OnBlock,
		ICDMs:      500,
		DurationMs: 6000,
		Magnitude:  12,
		MaxStacks:  3,
		StackRule:  Stack,
	})

	e.Block()
	e.Advance(5000, 100, 100)
	e.Block()
	e.Advance(500, 100, 100)
	e.Block()

	// Duration is anchored to the first stack: 6000 - 5500 = 500ms left.
	st, _ := e.State(id)
	assert.Equal(t, 3, st.Stacks)
	assert.Equal(t, 500, st.DurationRemainingMs)
	assert.Equal(t, 36, e.AbsorbPool())
}
