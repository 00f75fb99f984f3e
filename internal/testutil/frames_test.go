package testutil

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/procforge/internal/proc"
)

func TestFrameDriver_EmitsEventsThenAdvance(t *testing.T) {
	var got []proc.Input
	d := NewFrameDriver(20, func(in proc.Input) { got = append(got, in) })

	d.Run(3, Every(2, proc.InputHit))

	assert.Equal(t, []proc.Input{
		{Kind: proc.InputHit},
		{Kind: proc.InputAdvance, DtMs: 20, HP: 100, HPMax: 100},
		{Kind: proc.InputAdvance, DtMs: 20, HP: 100, HPMax: 100},
		{Kind: proc.InputHit},
		{Kind: proc.InputAdvance, DtMs: 20, HP: 100, HPMax: 100},
	}, got)
	assert.Equal(t, 3, d.Frame())
	assert.Equal(t, int64(60), d.ElapsedMs())
}

func TestFrameDriver_FrameNumbersContinue(t *testing.T) {
	var frames []int
	d := NewFrameDriver(10, func(proc.Input) {})

	d.Run(2, func(f int) []proc.Input { frames = append(frames, f); return nil })
	d.Run(2, func(f int) []proc.Input { frames = append(frames, f); return nil })

	assert.Equal(t, []int{0, 1, 2, 3}, frames)
}

func TestFrameDriver_SetHP(t *testing.T) {
	var last proc.Input
	d := NewFrameDriver(10, func(in proc.Input) { last = in })

	d.SetHP(12, 80)
	d.Run(1, nil)

	assert.Equal(t, 12, last.HP)
	assert.Equal(t, 80, last.HPMax)
}

func TestEngineSink_DrivesEngine(t *testing.T) {
	eng := proc.New(proc.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	id, err := eng.Register(proc.Definition{Trigger: proc.OnHit, ICDMs: 100, DurationMs: 300})
	require.NoError(t, err)

	// One hit every 20ms for one second: the 100ms cooldown admits 10.
	d := NewFrameDriver(20, EngineSink(eng))
	d.Run(50, Every(1, proc.InputHit))

	assert.Equal(t, 10, eng.TriggerCount(id))
	assert.Equal(t, int64(1000), eng.ElapsedMs())
}
