package sim

import "sync"

// Tick is the value of the global cycle counter. It is 32 bits wide and wraps
// around on overflow.
type Tick uint32

// A TimeTeller can tell the current tick.
type TimeTeller interface {
	CurrentTick() Tick
}

// TickCounter is a monotonically increasing logical clock. It is never reset
// during a run.
type TickCounter struct {
	lock  sync.RWMutex
	value Tick
}

// Advance moves the counter forward by one cycle.
func (c *TickCounter) Advance() Tick {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.value++

	return c.value
}

// Value returns the current count.
func (c *TickCounter) Value() Tick {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.value
}
