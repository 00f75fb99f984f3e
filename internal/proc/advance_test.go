package proc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvance_NonPositiveIsNoop(t *testing.T) {
	e := quietEngine(t)
	id, _ := e.Register(Definition{Trigger: OnHit, ICDMs: 100, DurationMs: 300})
	e.Hit(false)
	before, _ := e.State(id)

	e.Advance(0, 100, 100)
	e.Advance(-50, 100, 100)

	after, _ := e.State(id)
	assert.Equal(t, before, after)
	assert.Equal(t, int64(0), e.ElapsedMs())
	assert.Equal(t, 0, e.WindowElapsedMs())
}

func TestAdvance_CooldownClampsAtZero(t *testing.T) {
	e := quietEngine(t)
	id, _ := e.Register(Definition{Trigger: OnHit, ICDMs: 100})
	e.Hit(false)

	e.Advance(60, 100, 100)
	st, _ := e.State(id)
	assert.Equal(t, 40, st.CooldownRemainingMs)

	e.Advance(500, 100, 100)
	st, _ = e.State(id)
	assert.Equal(t, 0, st.CooldownRemainingMs)
}

func TestAdvance_DurationExpiry(t *testing.T) {
	e := quietEngine(t)
	id, _ := e.Register(Definition{Trigger: OnHit, DurationMs: 300, StackRule: Refresh})
	e.Hit(false)

	e.Advance(299, 100, 100)
	st, _ := e.State(id)
	assert.Equal(t, 1, st.Stacks)
	assert.Equal(t, 1, st.DurationRemainingMs)

	e.Advance(1, 100, 100)
	st, _ = e.State(id)
	assert.Equal(t, 0, st.Stacks, "expiry clears stacks")
	assert.Equal(t, 0, st.DurationRemainingMs)
	assert.False(t, st.Active())
}

func TestAdvance_OvershootClampsDuration(t *testing.T) {
	e := quietEngine(t)
	id, _ := e.Register(Definition{Trigger: OnKill, DurationMs: 100, StackRule: Stack, MaxStacks: 5})
	e.Kill()
	e.Kill()

	e.Advance(5000, 100, 100)
	st, _ := e.State(id)
	assert.Equal(t, 0, st.DurationRemainingMs)
	assert.Equal(t, 0, st.Stacks)
}

func TestAdvance_AccruesActiveTimeBeforeDecay(t *testing.T) {
	e := quietEngine(t)
	id, _ := e.Register(Definition{Trigger: OnHit, DurationMs: 300, StackRule: Refresh})
	e.Hit(false)

	e.Advance(100, 100, 100)
	st, _ := e.State(id)
	assert.Equal(t, 100, st.ActiveTimeMs)

	// The expiring step is credited in full.
	e.Advance(250, 100, 100)
	st, _ = e.State(id)
	assert.Equal(t, 350, st.ActiveTimeMs)
	assert.Equal(t, 0, st.Stacks)

	e.Advance(1000, 100, 100)
	st, _ = e.State(id)
	assert.Equal(t, 350, st.ActiveTimeMs, "inactive procs accrue nothing")
}

func TestAdvance_WindowSingleSubtraction(t *testing.T) {
	e := quietEngine(t)

	e.Advance(2500, 100, 100)
	assert.Equal(t, 1500, e.WindowElapsedMs())
	assert.Equal(t, int64(2500), e.ElapsedMs())

	e.Advance(100, 100, 100)
	assert.Equal(t, 600, e.WindowElapsedMs())
	assert.Equal(t, int64(2600), e.ElapsedMs())
}

func TestAdvance_HPIsIgnored(t *testing.T) {
	e := quietEngine(t)
	id, _ := e.Register(Definition{Trigger: WhenLowHP, DurationMs: 500})

	e.Advance(100, 1, 100)
	e.Advance(100, 0, 0)

	assert.Equal(t, 0, e.TriggerCount(id))
	assert.Equal(t, int64(0), e.Sequence())
}

func TestAdvance_ForcedWhenLowHPDecays(t *testing.T) {
	e := quietEngine(t)
	id, _ := e.Register(Definition{Trigger: WhenLowHP, DurationMs: 500})
	require.NoError(t, e.ForceActivate(id, 1, 200))

	e.Advance(150, 20, 100)
	assert.Equal(t, 1, e.ActiveStacks(id))

	e.Advance(50, 20, 100)
	assert.Equal(t, 0, e.ActiveStacks(id))
}
