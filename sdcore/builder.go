package sdcore

import (
	"log"

	"github.com/sarchlab/sdsim/regfile"
	"github.com/sarchlab/sdsim/sdemu"
	"github.com/sarchlab/sdsim/sim"
)

// A Builder can build cores.
type Builder struct {
	cmd    *regfile.CommandRegisters
	card   *sdemu.Card
	notify ReadNotifier
	sink   sim.Buffer
	source sim.Buffer
}

// MakeBuilder creates a builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithCommandRegisters sets the registers that the host writes. Fresh
// registers are created if none are given.
func (b Builder) WithCommandRegisters(regs regfile.CommandRegisters) Builder {
	b.cmd = &regs
	return b
}

// WithCard sets the card.
func (b Builder) WithCard(c *sdemu.Card) Builder {
	b.card = c
	return b
}

// WithReadNotifier sets who is told about completed read transfers.
func (b Builder) WithReadNotifier(n ReadNotifier) Builder {
	b.notify = n
	return b
}

// WithSink sets the stream that read data is pushed into.
func (b Builder) WithSink(buf sim.Buffer) Builder {
	b.sink = buf
	return b
}

// WithSource sets the stream that write data is pulled from.
func (b Builder) WithSource(buf sim.Buffer) Builder {
	b.source = buf
	return b
}

// Build creates a core.
func (b Builder) Build(name string) *Core {
	if b.card == nil {
		log.Panicf("core %s needs a card", name)
	}

	c := &Core{
		ComponentBase: sim.NewComponentBase(name),
		card:          b.card,
		notify:        b.notify,
		sink:          b.sink,
		source:        b.source,
	}

	if b.cmd != nil {
		c.cmd = *b.cmd
	} else {
		c.cmd = regfile.NewCommandRegisters()
	}

	return c
}
