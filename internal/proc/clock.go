package proc

// Clock is the monotonic logical clock that stamps successful fires.
//
// Every fire receives a strictly increasing sequence number from Next.
// This gives a total order over fires that is identical on replay and
// independent of wall time.
//
// Like the Engine that owns it, a Clock is not safe for concurrent use.
type Clock struct {
	seq int64
}

// NewClock creates a clock starting at 0. The first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	c.seq++
	return c.seq
}

// Current returns the last issued sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq
}

// Reset rewinds the clock to 0.
func (c *Clock) Reset() {
	c.seq = 0
}
