package engine

import "sync/atomic"

// Clock is a monotonic logical clock for message ordering.
//
// Every message a Runner delivers is stamped with a strictly increasing seq
// number from this clock, so listeners can order events that arrive from
// timer goroutines without relying on wall-clock time.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}
