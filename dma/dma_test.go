package dma_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sdsim/bus"
	"github.com/sarchlab/sdsim/dma"
	"github.com/sarchlab/sdsim/memory"
	"github.com/sarchlab/sdsim/regfile"
	"github.com/sarchlab/sdsim/sim"
)

const scratchWord = 0x10000000 / 4

var _ = Describe("DMA", func() {
	var (
		sram   *memory.SRAM
		reader *dma.Reader
		writer *dma.Writer
		ic     *bus.Interconnect
		now    sim.Tick
		popped []byte
	)

	tick := func() {
		now++
		reader.Tick(now)
		writer.Tick(now)
		ic.Tick(now)

		for reader.Source().Size() > 0 {
			popped = append(popped, reader.Source().Pop().(byte))
		}
	}

	run := func(n int) {
		for i := 0; i < n; i++ {
			tick()
		}
	}

	BeforeEach(func() {
		now = 0
		popped = nil
		sram = memory.MakeBuilder().Build("Scratch")
		reader = dma.MakeBuilder().
			WithAddressRegister(regfile.NewRegister("dma_reader.address")).
			WithLengthRegister(regfile.NewRegister("dma_reader.length")).
			BuildReader("Reader")
		writer = dma.MakeBuilder().
			WithAddressRegister(regfile.NewRegister("dma_writer.address")).
			BuildWriter("Writer")
		ic = bus.MakeBuilder().
			WithMasters(reader.Port(), writer.Port()).
			WithSlave(bus.MemDecoder(0x10000000), sram).
			Build("Bus")
	})

	Describe("Writer", func() {
		It("should pack bytes little-endian into consecutive words", func() {
			writer.Address().Write(scratchWord + 2)
			for _, b := range []byte{1, 2, 3, 4, 5, 6, 7, 8} {
				writer.Sink().Push(b)
			}

			run(20)

			Expect(writer.Idle()).To(BeTrue())
			Expect(writer.NumWritten()).To(Equal(uint64(2)))
			Expect(sram.ReadWord(2)).To(Equal(uint32(0x04030201)))
			Expect(sram.ReadWord(3)).To(Equal(uint32(0x08070605)))
		})

		It("should restart the offset when the address is rewritten", func() {
			writer.Address().Write(scratchWord)
			for _, b := range []byte{1, 2, 3, 4, 5, 6, 7, 8} {
				writer.Sink().Push(b)
			}
			run(20)

			writer.Address().Write(scratchWord)
			for _, b := range []byte{9, 9, 9, 9} {
				writer.Sink().Push(b)
			}
			run(20)

			Expect(sram.ReadWord(0)).To(Equal(uint32(0x09090909)))
			Expect(sram.ReadWord(1)).To(Equal(uint32(0x08070605)))
			Expect(sram.ReadWord(2)).To(BeZero())
		})

		It("should keep a partial word until it is complete", func() {
			writer.Address().Write(scratchWord)
			writer.Sink().Push(byte(1))
			run(5)

			Expect(writer.Idle()).To(BeFalse())
			Expect(writer.NumWritten()).To(BeZero())
		})

		It("should count writes to unmapped addresses as failures", func() {
			writer.Address().Write(0x30000000 / 4)
			for _, b := range []byte{1, 2, 3, 4} {
				writer.Sink().Push(b)
			}
			run(5)

			Expect(writer.NumFailed()).To(Equal(uint64(1)))
			Expect(writer.NumWritten()).To(BeZero())
		})
	})

	Describe("Reader", func() {
		It("should do nothing without a length strobe", func() {
			reader.Length().Write(8)
			run(10)

			Expect(reader.Busy()).To(BeFalse())
			Expect(reader.NumRead()).To(BeZero())
		})

		It("should stream the requested bytes", func() {
			sram.WriteWord(4, 0x44332211)
			sram.WriteWord(5, 0x88776655)

			reader.Address().Write(scratchWord + 4)
			reader.Length().Write(6)
			reader.Length().Strobe()

			run(20)

			Expect(popped).To(Equal([]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}))
			Expect(reader.Busy()).To(BeFalse())
			Expect(reader.NumRead()).To(Equal(uint64(2)))
			Expect(reader.NumTransfers()).To(Equal(uint64(1)))
		})
	})

	It("should share the bus between reader and writer", func() {
		for i := uint32(0); i < 8; i++ {
			sram.WriteWord(i, i)
		}

		reader.Address().Write(scratchWord)
		reader.Length().Write(32)
		reader.Length().Strobe()

		writer.Address().Write(scratchWord + 64)
		for i := 0; i < 16; i++ {
			writer.Sink().Push(byte(i))
		}

		masters := []int{}
		ic.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			if ctx.Pos == bus.HookPosGrant {
				masters = append(masters, ctx.Item.(*bus.Transaction).MasterID)
			}
		}))

		run(100)

		Expect(popped).To(HaveLen(32))
		Expect(popped[4]).To(Equal(byte(1)))
		Expect(writer.NumWritten()).To(Equal(uint64(4)))
		Expect(sram.ReadWord(64)).To(Equal(uint32(0x03020100)))
		Expect(masters[:4]).To(Equal([]int{0, 1, 0, 1}))
	})
})
