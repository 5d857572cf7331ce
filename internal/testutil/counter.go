package testutil

import "sync"

// Counter is a thread-safe monotonic counter. A fresh counter per run numbers
// the same scenario's operations identically every time.
type Counter struct {
	mu sync.Mutex
	n  int64
}

// NewCounter creates a counter whose first Next returns 1.
func NewCounter() *Counter {
	return &Counter{}
}

// Next increments and returns the counter.
func (c *Counter) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.n
}
