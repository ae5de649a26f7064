package sdemu

import (
	"log"

	"github.com/sarchlab/sdsim/regfile"
	"github.com/sarchlab/sdsim/sim"
)

// A Builder can build emulators.
type Builder struct {
	base      uint32
	card      *Card
	readClear *regfile.Register
}

// MakeBuilder creates a builder for an emulator at 0x20000000.
func MakeBuilder() Builder {
	return Builder{
		base: 0x20000000,
	}
}

// WithBase sets the byte address of the CSR block.
func (b Builder) WithBase(base uint32) Builder {
	b.base = base
	return b
}

// WithCard sets the card. A default card is built if none is given.
func (b Builder) WithCard(c *Card) Builder {
	b.card = c
	return b
}

// WithReadClear sets the register that holds the read event clear.
func (b Builder) WithReadClear(r *regfile.Register) Builder {
	b.readClear = r
	return b
}

// Build creates an emulator.
func (b Builder) Build(name string) *Emulator {
	if b.base%4 != 0 {
		log.Panicf("emulator %s base 0x%x is not word aligned", name, b.base)
	}

	e := &Emulator{
		ComponentBase: sim.NewComponentBase(name),
		card:          b.card,
		baseWord:      b.base / 4,
		readClear:     b.readClear,
	}

	if e.card == nil {
		e.card = MakeCardBuilder().Build()
	}

	return e
}
