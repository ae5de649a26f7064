package schedule

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sdsim/regfile"
	"github.com/sarchlab/sdsim/sim"
)

var _ = Describe("Schedule", func() {
	It("should look up events by tick", func() {
		s, err := NewSchedule([]Event{
			{Tick: 3, Name: "A"},
			{Tick: 7, Name: "B", Terminate: true},
		})
		Expect(err).NotTo(HaveOccurred())

		e, found := s.Lookup(7)
		Expect(found).To(BeTrue())
		Expect(e.Name).To(Equal("B"))

		_, found = s.Lookup(4)
		Expect(found).To(BeFalse())

		Expect(s.LastTick()).To(Equal(sim.Tick(7)))
		Expect(s.Events()).To(HaveLen(2))

		tick, found := s.TerminateTick()
		Expect(found).To(BeTrue())
		Expect(tick).To(Equal(sim.Tick(7)))
	})

	DescribeTable("should reject malformed schedules",
		func(events []Event) {
			_, err := NewSchedule(events)

			var violation *ScheduleViolationError
			Expect(errors.As(err, &violation)).To(BeTrue())
		},
		Entry("duplicated tick", []Event{{Tick: 2}, {Tick: 2}}),
		Entry("decreasing tick", []Event{{Tick: 5}, {Tick: 2}}),
		Entry("tick zero", []Event{{Tick: 0}}),
		Entry("empty register", []Event{
			{Tick: 1, Writes: []RegisterWrite{{Register: "", Value: 1}}},
		}),
	)

	It("should report unknown registers", func() {
		s, _ := NewSchedule([]Event{{Tick: 1, Strobes: []string{"nope"}}})

		err := s.Validate(regfile.NewFile("Regs"))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("nope"))
	})
})

var _ = Describe("SDInitScript", func() {
	var events []Event

	BeforeEach(func() {
		events = SDInitScript(DefaultScriptParams())
	})

	commandEvents := func() []Event {
		var cmds []Event
		for _, e := range events {
			if len(e.Strobes) > 0 {
				cmds = append(cmds, e)
			}
		}

		return cmds
	}

	valueOf := func(e Event, reg string) (uint32, bool) {
		for _, w := range e.Writes {
			if w.Register == reg {
				return w.Value, true
			}
		}

		return 0, false
	}

	It("should issue the init sequence at the scheduled ticks", func() {
		var opcodes []uint8
		var ticks []sim.Tick

		for _, e := range commandEvents() {
			v, _ := valueOf(e, regfile.CommandName)
			opcodes = append(opcodes, regfile.CommandWord(v).Opcode())
			ticks = append(ticks, e.Tick)
		}

		Expect(opcodes).To(Equal([]uint8{
			0, 8, 55, 41, 2, 3, 10, 9, 7, 55, 6, 55, 51, 17}))
		Expect(ticks).To(Equal([]sim.Tick{
			2048, 4096, 6144, 8192, 10240, 12288, 14336, 16384,
			18432, 20480, 22528, 24576, 26624, 32768}))
	})

	It("should carry the RCA in the addressed commands", func() {
		for _, e := range commandEvents() {
			unit := e.Tick / UnitTicks
			arg, _ := valueOf(e, regfile.ArgumentName)

			switch unit {
			case 7, 8, 9, 10, 12:
				Expect(arg).To(Equal(uint32(0x1337<<16)), e.Name)
			}
		}
	})

	It("should write the command word last", func() {
		for _, e := range commandEvents() {
			Expect(e.Writes[len(e.Writes)-1].Register).
				To(Equal(regfile.CommandName))
			Expect(e.Strobes).To(Equal([]string{regfile.CommandName}))
		}
	})

	It("should set up the reads", func() {
		cmds := commandEvents()
		scr := cmds[12]
		block := cmds[13]

		Expect(scr.Name).To(Equal("APP_SEND_SCR (acmd51)"))

		v, _ := valueOf(scr, regfile.CommandName)
		Expect(v).To(Equal(uint32(51<<8 | 1 | 1<<5)))

		size, _ := valueOf(scr, regfile.BlockSizeName)
		Expect(size).To(Equal(uint32(8)))

		size, _ = valueOf(block, regfile.BlockSizeName)
		Expect(size).To(Equal(uint32(512)))

		addr, _ := valueOf(block, WriterAddressName)
		Expect(addr).To(Equal(uint32(0x10000000 / 4)))

		count, _ := valueOf(block, regfile.BlockCountName)
		Expect(count).To(Equal(uint32(1)))
	})

	It("should use the exact argument of the op cond command", func() {
		arg, _ := valueOf(commandEvents()[3], regfile.ArgumentName)
		Expect(arg).To(Equal(uint32(0x70ff8000)))
	})

	It("should pulse the read event clear and finish", func() {
		n := len(events)

		Expect(events[n-3].Tick).To(Equal(sim.Tick(17 * UnitTicks)))
		Expect(events[n-3].Writes).To(Equal(
			[]RegisterWrite{{Register: ReadClearName, Value: 1}}))
		Expect(events[n-2].Tick).To(Equal(sim.Tick(18 * UnitTicks)))
		Expect(events[n-2].Writes).To(Equal(
			[]RegisterWrite{{Register: ReadClearName, Value: 0}}))
		Expect(events[n-1].Tick).To(Equal(sim.Tick(64 * UnitTicks)))
		Expect(events[n-1].Terminate).To(BeTrue())
	})

	It("should form a valid schedule", func() {
		_, err := NewSchedule(events)
		Expect(err).NotTo(HaveOccurred())
	})
})
