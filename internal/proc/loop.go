package proc

import (
	"context"
	"errors"
)

// ErrLoopStopped is returned by Do once the loop has been stopped.
var ErrLoopStopped = errors.New("proc loop stopped")

// Loop serializes access to one Engine for hosts that produce events on
// several goroutines.
//
// The Engine itself has no locking. Loop owns it and applies queued work
// on the single goroutine that calls Run, in FIFO order.
//
// Thread-safety model:
//   - Enqueue(), Do(), Stop(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
type Loop struct {
	eng   *Engine
	queue *requestQueue
}

// NewLoop wraps eng. The caller must not touch eng directly while Run is active.
func NewLoop(eng *Engine) *Loop {
	return &Loop{
		eng:   eng,
		queue: newRequestQueue(),
	}
}

// Enqueue submits an input for the Run loop.
// Returns false if the loop has been stopped.
func (l *Loop) Enqueue(in Input) bool {
	return l.queue.Enqueue(request{input: in})
}

// Do runs fn on the loop goroutine and waits for it to finish.
// Use it for telemetry reads and other direct engine access.
func (l *Loop) Do(ctx context.Context, fn func(*Engine)) error {
	done := make(chan struct{})
	if !l.queue.Enqueue(request{fn: fn, done: done}) {
		return ErrLoopStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes queued work until ctx is cancelled or Stop is called.
//
// Input errors (bad proc id, unknown kind) are logged and processing
// continues; retrying would change the order of later inputs.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if r, ok := l.queue.TryDequeue(); ok {
			l.process(r)
			continue
		}

		select {
		case <-ctx.Done():
			l.queue.Close()
			return ctx.Err()

		case <-l.queue.Wait():
			// The signal channel is closed on Stop; drain before returning.
			if l.queue.Len() == 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				if l.stopped() {
					return nil
				}
			}
		}
	}
}

// Stop closes the queue. Run returns once the queue is drained.
func (l *Loop) Stop() {
	l.queue.Close()
}

func (l *Loop) stopped() bool {
	l.queue.mu.Lock()
	defer l.queue.mu.Unlock()
	return l.queue.closed
}

func (l *Loop) process(r request) {
	if r.fn != nil {
		r.fn(l.eng)
		close(r.done)
		return
	}
	if _, err := l.eng.Apply(r.input); err != nil {
		l.eng.logger.Error("proc input failed",
			"input", r.input.String(),
			"error", err,
		)
	}
}
