package state

import (
	"sync"

	"github.com/google/uuid"
)

// NewID returns a fresh identifier for a stroke or a session site.
func NewID() string {
	return uuid.NewString()
}

// Clock is a Lamport clock. The zero value is ready to use and it is safe
// for concurrent use.
type Clock struct {
	mu      sync.Mutex
	counter int64
}

// Tick increments the clock and returns the new value.
func (c *Clock) Tick() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter++
	return c.counter
}

// Update moves the clock forward to a timestamp seen elsewhere. It reports
// whether timestamp was newer than anything seen so far.
func (c *Clock) Update(timestamp int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if timestamp > c.counter {
		c.counter = timestamp
		return true
	}
	return false
}

// Now returns the current value without advancing it.
func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counter
}
