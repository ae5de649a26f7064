package dma

import (
	"github.com/sarchlab/sdsim/bus"
	"github.com/sarchlab/sdsim/regfile"
	"github.com/sarchlab/sdsim/sim"
)

// A Builder can build DMA readers and writers.
type Builder struct {
	streamCapacity int
	queueSize      int
	address        *regfile.Register
	length         *regfile.Register
}

// MakeBuilder creates a builder with 16-byte streams and a 4-word write queue.
func MakeBuilder() Builder {
	return Builder{
		streamCapacity: 16,
		queueSize:      4,
	}
}

// WithStreamCapacity sets the number of bytes the stream buffer holds.
func (b Builder) WithStreamCapacity(n int) Builder {
	b.streamCapacity = n
	return b
}

// WithQueueSize sets how many packed words the writer holds before it stops
// draining its sink.
func (b Builder) WithQueueSize(n int) Builder {
	b.queueSize = n
	return b
}

// WithAddressRegister sets the register that holds the word address.
func (b Builder) WithAddressRegister(r *regfile.Register) Builder {
	b.address = r
	return b
}

// WithLengthRegister sets the register that holds the reader length.
func (b Builder) WithLengthRegister(r *regfile.Register) Builder {
	b.length = r
	return b
}

func (b Builder) addressRegister() *regfile.Register {
	if b.address != nil {
		return b.address
	}

	return regfile.NewRegister("address")
}

// BuildWriter creates a writer.
func (b Builder) BuildWriter(name string) *Writer {
	if b.queueSize <= 0 {
		panic("writer queue size must be positive")
	}

	return &Writer{
		ComponentBase: sim.NewComponentBase(name),
		port:          bus.NewMasterPort(name + ".Port"),
		address:       b.addressRegister(),
		sink:          sim.NewBuffer(name+".Sink", b.streamCapacity),
		queueSize:     b.queueSize,
	}
}

// BuildReader creates a reader.
func (b Builder) BuildReader(name string) *Reader {
	length := b.length
	if length == nil {
		length = regfile.NewRegister("length")
	}

	return &Reader{
		ComponentBase: sim.NewComponentBase(name),
		port:          bus.NewMasterPort(name + ".Port"),
		address:       b.addressRegister(),
		length:        length,
		source:        sim.NewBuffer(name+".Source", b.streamCapacity),
	}
}
