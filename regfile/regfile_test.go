package regfile

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sdsim/sim"
)

var _ = Describe("Register", func() {
	var r *Register

	BeforeEach(func() {
		r = NewRegister("command")
	})

	It("should store values without strobing", func() {
		r.Write(0x1234)

		Expect(r.Value()).To(Equal(uint32(0x1234)))
		Expect(r.Strobed()).To(BeFalse())
		Expect(r.WriteCount()).To(Equal(uint64(1)))
	})

	It("should be consumed once per strobe", func() {
		r.Strobe()

		Expect(r.Strobed()).To(BeTrue())
		Expect(r.Consume()).To(BeTrue())
		Expect(r.Consume()).To(BeFalse())
	})

	It("should not be consumable without strobe", func() {
		Expect(r.Consume()).To(BeFalse())
	})
})

var _ = Describe("File", func() {
	var (
		f    *File
		regs CommandRegisters
	)

	BeforeEach(func() {
		f = NewFile("Regs")
		regs = NewCommandRegisters()
		f.Add(regs.All()...)
	})

	It("should find registers by name", func() {
		r, found := f.Lookup(CommandName)

		Expect(found).To(BeTrue())
		Expect(r).To(BeIdenticalTo(regs.Command))

		_, found = f.Lookup("nothing")
		Expect(found).To(BeFalse())
	})

	It("should reject duplicated names", func() {
		Expect(func() { f.Add(NewRegister(CommandName)) }).To(Panic())
	})

	It("should clear consumed strobes silently", func() {
		f.Strobe(10, CommandName)
		regs.Command.Consume()

		missed := f.BeginCycle(11)

		Expect(missed).To(BeEmpty())
		Expect(regs.Command.Strobed()).To(BeFalse())
	})

	It("should report strobes nobody consumed", func() {
		var hooked []*StrobeMissedError
		f.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			Expect(ctx.Pos).To(BeIdenticalTo(HookPosStrobeMissed))
			hooked = append(hooked, ctx.Item.(*StrobeMissedError))
		}))

		f.Strobe(10, CommandName)
		missed := f.BeginCycle(11)

		Expect(missed).To(HaveLen(1))
		Expect(missed[0].Register).To(Equal(CommandName))
		Expect(missed[0].Tick).To(Equal(sim.Tick(10)))
		Expect(missed[0].Error()).To(ContainSubstring("not consumed"))
		Expect(hooked).To(Equal(missed))
		Expect(regs.Command.Strobed()).To(BeFalse())
	})
})

var _ = Describe("CommandWord", func() {
	It("should pack the SD core command layout", func() {
		w := MakeCommandWord(51, ResponseShort, TransferRead)

		Expect(uint32(w)).To(Equal(uint32(51<<8 | 1 | 1<<5)))
	})

	It("should unpack what it packs", func() {
		for opcode := uint8(0); opcode <= 63; opcode++ {
			w := MakeCommandWord(opcode, ResponseLong, TransferWrite)

			Expect(w.Opcode()).To(Equal(opcode))
			Expect(w.ResponseKind()).To(Equal(ResponseLong))
			Expect(w.TransferDirection()).To(Equal(TransferWrite))
		}
	})

	It("should reject invalid opcodes", func() {
		Expect(func() {
			MakeCommandWord(64, ResponseNone, TransferNone)
		}).To(Panic())
	})

	It("should name response kinds", func() {
		Expect(ResponseLong.String()).To(Equal("LONG"))
		Expect(TransferRead.String()).To(Equal("READ"))
	})
})

var _ = Describe("ResponseRegisters", func() {
	It("should place short responses in the last word", func() {
		r := ResponseRegisters{}
		r.SetShortResponse(0x900)

		Expect(r.Response).To(Equal([4]uint32{0, 0, 0, 0x900}))
	})

	It("should store long responses most significant word first", func() {
		r := ResponseRegisters{}
		b := [16]byte{}
		b[0] = 0xaa
		b[15] = 0x55
		r.SetLongResponse(b)

		Expect(r.Response[0]).To(Equal(uint32(0xaa000000)))
		Expect(r.Response[3]).To(Equal(uint32(0x00000055)))
	})
})
