package schedule

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sdsim/bus"
	"github.com/sarchlab/sdsim/regfile"
	"github.com/sarchlab/sdsim/sim"
)

type observation struct {
	tick    sim.Tick
	strobed bool
	written bool
	command uint32
	arg     uint32
}

// probe consumes the command strobe like an idle core and records what it
// sees in every tick.
type probe struct {
	*sim.ComponentBase

	regs       []*regfile.Register
	command    *regfile.Register
	argument   *regfile.Register
	consume    bool
	lastWrites uint64
	seen       []observation
}

func (p *probe) Tick(now sim.Tick) bool {
	var writes uint64
	for _, r := range p.regs {
		writes += r.WriteCount()
	}

	o := observation{
		tick:    now,
		strobed: p.command.Strobed(),
		written: writes != p.lastWrites,
		command: p.command.Value(),
		arg:     p.argument.Value(),
	}
	p.lastWrites = writes

	if p.consume {
		p.command.Consume()
	}

	if o.strobed || o.written {
		p.seen = append(p.seen, o)
	}

	return o.strobed
}

var _ = Describe("Driver", func() {
	var (
		engine    *sim.SerialEngine
		cmdRegs   regfile.CommandRegisters
		extraRegs []*regfile.Register
		p         *probe
	)

	allRegs := func() []*regfile.Register {
		return append(cmdRegs.All(), extraRegs...)
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		cmdRegs = regfile.NewCommandRegisters()
		extraRegs = []*regfile.Register{
			regfile.NewRegister(WriterAddressName),
			regfile.NewRegister(ReadClearName),
		}
		p = &probe{
			ComponentBase: sim.NewComponentBase("Probe"),
			command:       cmdRegs.Command,
			argument:      cmdRegs.Argument,
			consume:       true,
		}
		p.regs = allRegs()
	})

	It("should refuse a schedule that names a missing register", func() {
		s, _ := NewSchedule(SDInitScript(DefaultScriptParams()))

		Expect(func() {
			MakeBuilder().
				WithEngine(engine).
				WithRegisters(cmdRegs.All()...).
				WithSchedule(s).
				Build("Driver")
		}).To(Panic())
	})

	Context("running the init script", func() {
		var d *Driver

		BeforeEach(func() {
			s, err := NewSchedule(SDInitScript(DefaultScriptParams()))
			Expect(err).NotTo(HaveOccurred())

			d = MakeBuilder().
				WithEngine(engine).
				WithRegisters(allRegs()...).
				WithSchedule(s).
				Build("Driver")

			engine.RegisterComponent(d)
			engine.RegisterComponent(p)

			Expect(engine.Run()).To(Succeed())
		})

		It("should stop right after the final tick", func() {
			Expect(engine.CurrentTick()).To(Equal(sim.Tick(64 * UnitTicks)))
			Expect(d.ReachedTermination()).To(BeTrue())
		})

		It("should act only on scheduled ticks", func() {
			for _, o := range p.seen {
				_, found := d.Schedule().Lookup(o.tick)
				Expect(found).To(BeTrue(), "tick %d", o.tick)
			}

			Expect(d.Issued()).To(HaveLen(len(d.Schedule().Events())))
		})

		It("should raise each strobe for a single tick", func() {
			strobedTicks := []sim.Tick{}
			for _, o := range p.seen {
				if o.strobed {
					strobedTicks = append(strobedTicks, o.tick)
				}
			}

			Expect(strobedTicks).To(HaveLen(14))
			for i := 1; i < len(strobedTicks); i++ {
				Expect(strobedTicks[i] - strobedTicks[i-1]).
					To(BeNumerically(">", 1))
			}

			Expect(d.MissedStrobes()).To(BeEmpty())
		})

		It("should make the writes visible in the strobe tick", func() {
			opcodes := []uint8{}
			for _, o := range p.seen {
				if o.strobed {
					opcodes = append(opcodes, regfile.CommandWord(o.command).Opcode())
				}
			}

			Expect(opcodes).To(Equal([]uint8{
				0, 8, 55, 41, 2, 3, 10, 9, 7, 55, 6, 55, 51, 17}))
		})
	})

	It("should report strobes that nobody consumes", func() {
		p.consume = false
		s, _ := NewSchedule([]Event{
			{Tick: 2, Name: "CMD", Strobes: []string{regfile.CommandName}},
			{Tick: 4, Name: "FINISH", Terminate: true},
		})
		d := MakeBuilder().
			WithEngine(engine).
			WithRegisters(cmdRegs.All()...).
			WithSchedule(s).
			Build("Driver")

		var hooked []*regfile.StrobeMissedError
		d.Registers().AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			hooked = append(hooked, ctx.Item.(*regfile.StrobeMissedError))
		}))

		engine.RegisterComponent(d)
		engine.RegisterComponent(p)
		Expect(engine.Run()).To(Succeed())

		Expect(d.MissedStrobes()).To(HaveLen(1))
		Expect(d.MissedStrobes()[0].Tick).To(Equal(sim.Tick(2)))
		Expect(d.MissedStrobes()[0].Register).To(Equal(regfile.CommandName))
		Expect(hooked).To(Equal(d.MissedStrobes()))
	})

	It("should invoke the event hook", func() {
		s, _ := NewSchedule([]Event{
			{Tick: 1, Name: "A"},
			{Tick: 3, Name: "FINISH", Terminate: true},
		})
		d := MakeBuilder().
			WithEngine(engine).
			WithSchedule(s).
			Build("Driver")

		names := []string{}
		d.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			if ctx.Pos == HookPosEventIssued {
				names = append(names, ctx.Item.(Event).Name)
			}
		}))

		engine.RegisterComponent(d)
		Expect(engine.Run()).To(Succeed())
		Expect(names).To(Equal([]string{"A", "FINISH"}))
	})

	Context("with a host port", func() {
		var (
			host *bus.MasterPort
			ic   *bus.Interconnect
			d    *Driver
		)

		BeforeEach(func() {
			host = bus.NewMasterPort("Host")
			ic = bus.MakeBuilder().
				WithMasters(host).
				WithSlave(bus.SizedRange(0, 64), &echoSlave{}).
				Build("Bus")

			s, _ := NewSchedule([]Event{{Tick: 10, Name: "FINISH", Terminate: true}})
			d = MakeBuilder().
				WithEngine(engine).
				WithSchedule(s).
				WithHostPort(host).
				WithHostQueueSize(2).
				Build("Driver")
		})

		It("should bound the host queue", func() {
			Expect(d.QueueHostTransaction(bus.NewReadTransaction(1))).To(BeTrue())
			Expect(d.QueueHostTransaction(bus.NewReadTransaction(2))).To(BeTrue())
			Expect(d.QueueHostTransaction(bus.NewReadTransaction(3))).To(BeFalse())
		})

		It("should issue queued transactions in order", func() {
			d.QueueHostTransaction(bus.NewReadTransaction(1))
			d.QueueHostTransaction(bus.NewReadTransaction(2))

			engine.RegisterComponent(d)
			engine.RegisterComponent(ic)
			Expect(engine.Run()).To(Succeed())

			done := d.HostCompleted()
			Expect(done).To(HaveLen(2))
			Expect(done[0].Data).To(Equal(uint32(1)))
			Expect(done[1].Data).To(Equal(uint32(2)))
		})
	})

	It("should not queue host transactions without a port", func() {
		s, _ := NewSchedule(nil)
		d := MakeBuilder().WithEngine(engine).WithSchedule(s).Build("Driver")

		Expect(d.QueueHostTransaction(bus.NewReadTransaction(0))).To(BeFalse())
	})
})

type echoSlave struct{}

func (s *echoSlave) Name() string {
	return "Echo"
}

func (s *echoSlave) Access(_ sim.Tick, t *bus.Transaction) bool {
	t.Data = t.Address
	return true
}
