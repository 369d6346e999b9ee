// Package counter provides the timing counters of the SDRAM controller.
//
// All counters are values. Every method that changes a counter returns the
// changed copy and leaves the receiver alone, so the next state of a clock
// tick can be built from the committed state without aliasing it.
package counter

import "math"

// Down is a down-counter that is loaded with a delay and expires once the
// delay has elapsed.
type Down struct {
	value  uint32
	loaded bool
}

// Load returns the counter loaded with n ticks.
func (c Down) Load(n int) Down {
	if n < 0 {
		n = 0
	}

	return Down{value: uint32(n), loaded: true}
}

// Tick returns the counter one tick later. The counter stops at zero.
func (c Down) Tick() Down {
	if c.value > 0 {
		c.value--
	}

	return c
}

// Expired returns true if the counter has been loaded and has reached zero.
func (c Down) Expired() bool {
	return c.loaded && c.value == 0
}

// Value returns the remaining ticks.
func (c Down) Value() int {
	return int(c.value)
}

// Loaded returns true if the counter has been loaded since reset.
func (c Down) Loaded() bool {
	return c.loaded
}

// Up counts the ticks since it was last reset.
type Up struct {
	count uint32
}

// Reset returns a counter at zero.
func (c Up) Reset() Up {
	return Up{}
}

// Tick returns the counter one tick later. The counter saturates.
func (c Up) Tick() Up {
	if c.count < math.MaxUint32 {
		c.count++
	}

	return c
}

// Count returns the number of ticks since the last reset.
func (c Up) Count() int {
	return int(c.count)
}
