package testutil

import (
	"sync"

	"github.com/roach88/procforge/internal/proc"
)

// FrameDriver produces the input stream of a fixed-step game loop: each
// frame emits that frame's events followed by one advance.
//
// Inputs go to a sink, so the same driver can feed an Engine directly,
// a journal Recorder, or a Loop.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
// The sink is called with the mutex held.
type FrameDriver struct {
	mu      sync.Mutex
	sink    func(proc.Input)
	frameMs int
	hp      int
	hpMax   int
	frame   int
	elapsed int64
}

// NewFrameDriver creates a driver with full health (100/100).
//
// The first frame is frame 0.
func NewFrameDriver(frameMs int, sink func(proc.Input)) *FrameDriver {
	return &FrameDriver{
		sink:    sink,
		frameMs: frameMs,
		hp:      100,
		hpMax:   100,
	}
}

// EngineSink applies inputs to eng and drops their results.
func EngineSink(eng *proc.Engine) func(proc.Input) {
	return func(in proc.Input) {
		_, _ = eng.Apply(in)
	}
}

// SetHP sets the health reported with subsequent advances.
func (d *FrameDriver) SetHP(hp, hpMax int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hp, d.hpMax = hp, hpMax
}

// Run drives n frames. events is called once per frame with the frame
// number and returns the inputs for that frame; it may return nil.
func (d *FrameDriver) Run(n int, events func(frame int) []proc.Input) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := 0; i < n; i++ {
		if events != nil {
			for _, in := range events(d.frame) {
				d.sink(in)
			}
		}
		d.sink(proc.Input{Kind: proc.InputAdvance, DtMs: d.frameMs, HP: d.hp, HPMax: d.hpMax})
		d.frame++
		d.elapsed += int64(d.frameMs)
	}
}

// Frame returns the number of frames driven so far.
func (d *FrameDriver) Frame() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame
}

// ElapsedMs returns the simulated time driven so far.
func (d *FrameDriver) ElapsedMs() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.elapsed
}

// Every returns an events function that emits kind on every nth frame,
// starting at frame 0.
func Every(n int, kind proc.InputKind) func(frame int) []proc.Input {
	return func(frame int) []proc.Input {
		if frame%n == 0 {
			return []proc.Input{{Kind: kind}}
		}
		return nil
	}
}
