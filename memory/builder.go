package memory

import (
	"log"

	"github.com/sarchlab/sdsim/sim"
)

// A Builder can build SRAMs.
type Builder struct {
	size       uint64
	waitStates int
}

// MakeBuilder creates a builder for a 1 KiB SRAM with one wait state.
func MakeBuilder() Builder {
	return Builder{
		size:       1024,
		waitStates: 1,
	}
}

// WithSize sets the size of the SRAM in bytes.
func (b Builder) WithSize(bytes uint64) Builder {
	b.size = bytes
	return b
}

// WithWaitStates sets how many extra cycles the SRAM takes to acknowledge.
func (b Builder) WithWaitStates(n int) Builder {
	b.waitStates = n
	return b
}

// Build creates an SRAM.
func (b Builder) Build(name string) *SRAM {
	sim.NameMustBeValid(name)

	if b.size < 4 || b.size%4 != 0 {
		log.Panicf("SRAM %s size must be a positive multiple of 4", name)
	}

	if b.waitStates < 0 {
		log.Panicf("SRAM %s cannot have negative wait states", name)
	}

	return &SRAM{
		name:       name,
		storage:    NewStorageWithUnitSize(b.size, b.size),
		depth:      uint32(b.size / 4),
		waitStates: b.waitStates,
	}
}
