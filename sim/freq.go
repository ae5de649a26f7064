package sim

import (
	"log"
)

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two consecutive ticks, in seconds.
func (f Freq) Period() float64 {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return 1.0 / float64(f)
}

// Seconds converts a number of elapsed ticks to simulated seconds.
func (f Freq) Seconds(t Tick) float64 {
	return float64(t) * f.Period()
}

// Cycles returns the number of ticks that covers the given duration in
// seconds, rounded up.
func (f Freq) Cycles(seconds float64) uint64 {
	if seconds < 0 {
		log.Panic("duration cannot be negative")
	}

	n := seconds * float64(f)
	whole := uint64(n)

	if float64(whole) < n {
		whole++
	}

	return whole
}
