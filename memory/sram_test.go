package memory_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sdsim/bus"
	"github.com/sarchlab/sdsim/memory"
	"github.com/sarchlab/sdsim/sim"
)

var _ = Describe("SRAM", func() {
	var sram *memory.SRAM

	BeforeEach(func() {
		sram = memory.MakeBuilder().Build("Scratch")
	})

	It("should have 256 words by default", func() {
		Expect(sram.Depth()).To(Equal(uint32(256)))
	})

	It("should acknowledge on the second presentation", func() {
		t := bus.NewWriteTransaction(0x10000000/4, 0x11223344)

		Expect(sram.Access(1, t)).To(BeFalse())
		Expect(sram.ReadWord(0)).To(Equal(uint32(0)))
		Expect(sram.Access(2, t)).To(BeTrue())
		Expect(sram.ReadWord(0)).To(Equal(uint32(0x11223344)))
		Expect(sram.NumWrite()).To(Equal(uint64(1)))
	})

	It("should store words little-endian", func() {
		sram.WriteWord(1, 0x04030201)

		data, err := sram.Dump(4, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("should alias addresses beyond the depth", func() {
		sram.WriteWord(3, 0xcafe)

		t := bus.NewReadTransaction(0x10000000/4 + 256 + 3)
		sram.Access(1, t)
		Expect(sram.Access(2, t)).To(BeTrue())
		Expect(t.Data).To(Equal(uint32(0xcafe)))
		Expect(sram.NumRead()).To(Equal(uint64(1)))
	})

	It("should acknowledge immediately without wait states", func() {
		fast := memory.MakeBuilder().WithWaitStates(0).WithSize(16).Build("Fast")
		t := bus.NewReadTransaction(0)

		Expect(fast.Access(1, t)).To(BeTrue())
	})

	It("should invoke the access hook", func() {
		var items []interface{}
		sram.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			if ctx.Pos == memory.HookPosSRAMAccess {
				items = append(items, ctx.Item)
			}
		}))

		t := bus.NewReadTransaction(0)
		sram.Access(1, t)
		sram.Access(2, t)

		Expect(items).To(ConsistOf(t))
	})

	It("should reject invalid sizes", func() {
		Expect(func() { memory.MakeBuilder().WithSize(6).Build("Bad") }).
			To(Panic())
	})
})
