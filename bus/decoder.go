package bus

import "github.com/sarchlab/sdsim/sim"

// Slave address decoding follows the SoC convention of one slave per 256 MiB
// region, selected by bits 28..30 of the byte address.
const (
	decodeShift = 26
	decodeMask  = 0x7
)

// An AddressRange describes the words owned by a slave.
type AddressRange struct {
	// Base is the byte address of the region.
	Base uint32

	// Decode tells if a word address belongs to the region.
	Decode func(wordAddr uint32) bool
}

// Contains tells if the word address belongs to the range.
func (r AddressRange) Contains(wordAddr uint32) bool {
	return r.Decode(wordAddr)
}

// MemDecoder creates the region that starts at the byte address base and spans
// the whole 256 MiB window selected by the decoding bits.
func MemDecoder(base uint32) AddressRange {
	sel := (base >> (decodeShift + 2)) & decodeMask

	return AddressRange{
		Base: base,
		Decode: func(wordAddr uint32) bool {
			return (wordAddr>>decodeShift)&decodeMask == sel
		},
	}
}

// SizedRange creates a region that covers exactly size bytes from base.
func SizedRange(base uint32, size uint32) AddressRange {
	lo := uint64(base / 4)
	hi := lo + uint64(size/4)

	return AddressRange{
		Base: base,
		Decode: func(wordAddr uint32) bool {
			a := uint64(wordAddr)
			return a >= lo && a < hi
		},
	}
}

// A Slave receives transactions routed by the interconnect.
type Slave interface {
	Name() string

	// Access presents the transaction to the slave. The slave returns true
	// when it acknowledges. A transaction that is not acknowledged is
	// presented again in the following tick.
	Access(now sim.Tick, t *Transaction) (ack bool)
}

type decoderEntry struct {
	addrRange AddressRange
	slave     Slave
}

// A Decoder maps word addresses to slaves. Ranges are expected to be
// disjoint. If they are not, the first registered range wins.
type Decoder struct {
	entries []decoderEntry
}

// AddSlave registers a slave for the given range.
func (d *Decoder) AddSlave(r AddressRange, s Slave) {
	if r.Decode == nil {
		panic("address range must have a decode function")
	}

	d.entries = append(d.entries, decoderEntry{addrRange: r, slave: s})
}

// Decode finds the slave that owns the word address.
func (d *Decoder) Decode(wordAddr uint32) (Slave, bool) {
	for _, e := range d.entries {
		if e.addrRange.Contains(wordAddr) {
			return e.slave, true
		}
	}

	return nil, false
}

// Slaves returns the slaves in registration order.
func (d *Decoder) Slaves() []Slave {
	slaves := make([]Slave, 0, len(d.entries))
	for _, e := range d.entries {
		slaves = append(slaves, e.slave)
	}

	return slaves
}
