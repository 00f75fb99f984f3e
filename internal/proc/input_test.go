package proc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_MatchesDirectCalls(t *testing.T) {
	defs := []Definition{
		{Name: "Flurry", Trigger: OnHit, ICDMs: 40, DurationMs: 120, StackRule: Stack, MaxStacks: 4},
		{Name: "Execute", Trigger: OnCrit, ICDMs: 90},
		{Name: "Aegis", Trigger: OnBlock, ICDMs: 60, DurationMs: 400, Magnitude: 6, StackRule: Stack, MaxStacks: 3},
		{Name: "Sidestep", Trigger: OnDodge, DurationMs: 80, StackRule: Ignore},
		{Name: "Reap", Trigger: OnKill, DurationMs: 300, StackRule: Refresh},
	}

	inputs := []Input{
		{Kind: InputRateCap, Amount: 50},
		{Kind: InputHit},
		{Kind: InputCrit},
		{Kind: InputBlock},
		{Kind: InputAdvance, DtMs: 30, HP: 90, HPMax: 100},
		{Kind: InputBlock},
		{Kind: InputDodge},
		{Kind: InputKill},
		{Kind: InputAdvance, DtMs: 70, HP: 80, HPMax: 100},
		{Kind: InputCrit},
		{Kind: InputBlock},
		{Kind: InputConsume, Amount: 9},
		{Kind: InputForce, ProcID: 4, Stacks: 2, DurationMs: 50},
		{Kind: InputAdvance, DtMs: 100, HP: 70, HPMax: 100},
	}

	viaApply := quietEngine(t)
	direct := quietEngine(t)
	for _, def := range defs {
		_, err := viaApply.Register(def)
		require.NoError(t, err)
		_, err = direct.Register(def)
		require.NoError(t, err)
	}

	for _, in := range inputs {
		_, err := viaApply.Apply(in)
		require.NoError(t, err, in.String())
	}

	direct.SetRateCapPerSecond(50)
	direct.Hit(false)
	direct.Hit(true)
	direct.Block()
	direct.Advance(30, 90, 100)
	direct.Block()
	direct.Dodge()
	direct.Kill()
	direct.Advance(70, 80, 100)
	direct.Hit(true)
	direct.Block()
	direct.ConsumeAbsorb(9)
	require.NoError(t, direct.ForceActivate(4, 2, 50))
	direct.Advance(100, 70, 100)

	assert.Equal(t, direct.Snapshots(), viaApply.Snapshots())
	assert.Equal(t, direct.Sequence(), viaApply.Sequence())
}

func TestApply_ConsumeReturnsAbsorbed(t *testing.T) {
	e := quietEngine(t)
	_, _ = e.Register(Definition{Trigger: OnBlock, DurationMs: 500, Magnitude: 7})
	e.Block()

	got, err := e.Apply(Input{Kind: InputConsume, Amount: 20})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestApply_Errors(t *testing.T) {
	e := quietEngine(t)

	_, err := e.Apply(Input{Kind: "parry"})
	require.Error(t, err)
	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeUnknownInput, re.Code)

	_, err = e.Apply(Input{Kind: InputForce, ProcID: 3, Stacks: 1, DurationMs: 10})
	assert.True(t, IsInvalidIDError(err))
}

func TestInput_String(t *testing.T) {
	assert.Equal(t, "advance(20, 40/100)", Input{Kind: InputAdvance, DtMs: 20, HP: 40, HPMax: 100}.String())
	assert.Equal(t, "force(2, stacks=3, duration=500)", Input{Kind: InputForce, ProcID: 2, Stacks: 3, DurationMs: 500}.String())
	assert.Equal(t, "consume(15)", Input{Kind: InputConsume, Amount: 15}.String())
	assert.Equal(t, "rate_cap(5)", Input{Kind: InputRateCap, Amount: 5}.String())
	assert.Equal(t, "crit", Input{Kind: InputCrit}.String())
}
