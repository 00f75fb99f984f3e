package proc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUptimeRatio_WindowDenominator(t *testing.T) {
	e := quietEngine(t)
	id, _ := e.Register(Definition{Trigger: OnHit, DurationMs: 1000, StackRule: Refresh})

	e.Hit(false)
	e.Advance(500, 100, 100)
	assert.InDelta(t, 1.0, e.UptimeRatio(id), 1e-9)

	// 1100ms active against a window that wrapped to 100ms.
	e.Advance(600, 100, 100)
	assert.Equal(t, 100, e.WindowElapsedMs())
	assert.InDelta(t, 11.0, e.UptimeRatio(id), 1e-9)
	assert.InDelta(t, 1.0, e.SessionUptimeRatio(id), 1e-9)
}

func TestUptimeRatio_ZeroWindow(t *testing.T) {
	e := quietEngine(t)
	id, _ := e.Register(Definition{Trigger: OnHit, DurationMs: 1000})
	e.Hit(false)

	assert.Equal(t, 0.0, e.UptimeRatio(id))
	assert.Equal(t, 0.0, e.TriggersPerMinute(id))
	assert.Equal(t, 0.0, e.SessionUptimeRatio(id))
	assert.Equal(t, 0.0, e.SessionTriggersPerMinute(id))

	e.Advance(1000, 100, 100)
	assert.Equal(t, 0, e.WindowElapsedMs())
	assert.Equal(t, 0.0, e.UptimeRatio(id), "window lands on a whole second")
	assert.InDelta(t, 1.0, e.SessionUptimeRatio(id), 1e-9)
}

func TestTriggersPerMinute(t *testing.T) {
	e := quietEngine(t)
	id, _ := e.Register(Definition{Trigger: OnKill})

	e.Kill()
	e.Advance(500, 100, 100)

	assert.InDelta(t, 120.0, e.TriggersPerMinute(id), 1e-9)
	assert.InDelta(t, 120.0, e.SessionTriggersPerMinute(id), 1e-9)
}

func TestSnapshots(t *testing.T) {
	e := quietEngine(t)
	_, _ = e.Register(Definition{Name: "A", Trigger: OnHit, DurationMs: 200})
	_, _ = e.Register(Definition{Name: "B", Trigger: OnKill})

	e.Hit(false)
	e.Advance(100, 100, 100)

	snaps := e.Snapshots()
	require.Len(t, snaps, 2)
	assert.Equal(t, "A", snaps[0].Definition.Name)
	assert.Equal(t, 1, snaps[0].State.Stacks)
	assert.Equal(t, 100, snaps[0].State.ActiveTimeMs)
	assert.InDelta(t, 1.0, snaps[0].UptimeRatio, 1e-9)
	assert.InDelta(t, 600.0, snaps[0].TriggersPerMinute, 1e-9)
	assert.Equal(t, "B", snaps[1].Definition.Name)
	assert.Equal(t, 0, snaps[1].State.TriggerCount)
}

func TestScanAnomalies(t *testing.T) {
	e := quietEngine(t)
	fast, _ := e.Register(Definition{Name: "Runaway", Trigger: OnHit})
	slow, _ := e.Register(Definition{Name: "Tuned", Trigger: OnHit, ICDMs: 500})

	for i := 0; i < 120; i++ {
		e.Hit(false)
		e.Advance(50, 100, 100)
	}

	require.Equal(t, 120, e.TriggerCount(fast))
	require.Equal(t, 12, e.TriggerCount(slow))

	// 6000ms is a whole number of windows, so the windowed rate reads 0.
	assert.Equal(t, 0.0, e.TriggersPerMinute(fast))

	anomalies := e.ScanAnomalies(600)
	require.Len(t, anomalies, 1)
	assert.Equal(t, fast, anomalies[0].ProcID)
	assert.Equal(t, "Runaway", anomalies[0].Name)
	assert.InDelta(t, 1200.0, anomalies[0].TriggersPerMinute, 1e-9)

	assert.InDelta(t, 120.0, e.SessionTriggersPerMinute(slow), 1e-9)
	assert.Empty(t, e.ScanAnomalies(5000))
}
