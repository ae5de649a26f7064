package sdemu

import (
	"encoding/binary"
	"log"

	"github.com/sarchlab/sdsim/memory"
)

// PatternByte is the byte that a freshly built card holds at the offset.
func PatternByte(offset uint64) byte {
	return byte(offset) ^ byte(offset>>8) ^ byte(offset>>16) ^ 0xa5
}

// CardBuilder can build cards.
type CardBuilder struct {
	rca          uint16
	capacity     uint64
	seededBlocks uint64
}

// MakeCardBuilder creates a builder for a 1 MiB card with RCA 0x1337 and the
// first 16 blocks filled with the test pattern.
func MakeCardBuilder() CardBuilder {
	return CardBuilder{
		rca:          0x1337,
		capacity:     1 << 20,
		seededBlocks: 16,
	}
}

// WithRCA sets the relative card address published on CMD3.
func (b CardBuilder) WithRCA(rca uint16) CardBuilder {
	b.rca = rca
	return b
}

// WithCapacity sets the size of the card in bytes.
func (b CardBuilder) WithCapacity(bytes uint64) CardBuilder {
	b.capacity = bytes
	return b
}

// WithSeededBlocks sets how many leading blocks hold the test pattern.
func (b CardBuilder) WithSeededBlocks(n uint64) CardBuilder {
	b.seededBlocks = n
	return b
}

// Build creates a card in the idle state.
func (b CardBuilder) Build() *Card {
	if b.capacity < BlockSize || b.capacity%BlockSize != 0 {
		log.Panicf("card capacity %d is not a whole number of blocks",
			b.capacity)
	}

	if b.rca == 0 {
		log.Panic("card RCA must not be zero")
	}

	c := &Card{
		publishedRCA: b.rca,
		storage:      memory.NewStorage(b.capacity),
	}

	c.Reset()
	b.fillRegisters(c)
	b.seed(c)

	return c
}

func (b CardBuilder) fillRegisters(c *Card) {
	// Manufacturer, OEM, product name, revision, serial number, date.
	c.cid = [16]byte{
		0x03, 'S', 'D', 'S', 'D', 'S', 'I', 'M',
		0x10, 0x13, 0x37, 0x00, 0x01, 0x01, 0x9a, 0x01,
	}

	sizeUnits := uint32(b.capacity/(512*1024)) - 1
	if b.capacity < 512*1024 {
		sizeUnits = 0
	}

	c.csd = [16]byte{0x40, 0x0e, 0x00, 0x32, 0x5b, 0x59, 0x00}
	c.csd[7] = byte(sizeUnits>>16) & 0x3f
	c.csd[8] = byte(sizeUnits >> 8)
	c.csd[9] = byte(sizeUnits)
	c.csd[10] = 0x7f
	c.csd[11] = 0x80
	c.csd[12] = 0x0a
	c.csd[13] = 0x40
	c.csd[15] = 0x01

	binary.BigEndian.PutUint32(c.scr[:4], 0x02358000)
}

func (b CardBuilder) seed(c *Card) {
	n := min(b.seededBlocks*BlockSize, b.capacity)
	data := make([]byte, n)

	for i := range data {
		data[i] = PatternByte(uint64(i))
	}

	if err := c.storage.Write(0, data); err != nil {
		log.Panic(err)
	}
}
