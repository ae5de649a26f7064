package schedule

import (
	"log"

	"github.com/sarchlab/sdsim/bus"
	"github.com/sarchlab/sdsim/regfile"
	"github.com/sarchlab/sdsim/sim"
)

// A Builder can build drivers.
type Builder struct {
	engine        sim.Engine
	registers     []*regfile.Register
	schedule      *Schedule
	hostPort      *bus.MasterPort
	hostQueueSize int
}

// MakeBuilder creates a builder with a host queue of 16 transactions.
func MakeBuilder() Builder {
	return Builder{
		hostQueueSize: 16,
	}
}

// WithEngine sets the engine that the driver terminates.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithRegisters adds registers that the schedule may write and strobe.
func (b Builder) WithRegisters(regs ...*regfile.Register) Builder {
	registers := make([]*regfile.Register, 0, len(b.registers)+len(regs))
	registers = append(registers, b.registers...)
	b.registers = append(registers, regs...)

	return b
}

// WithSchedule sets the schedule to follow.
func (b Builder) WithSchedule(s *Schedule) Builder {
	b.schedule = s
	return b
}

// WithHostPort sets the bus port that host transactions are issued from.
func (b Builder) WithHostPort(p *bus.MasterPort) Builder {
	b.hostPort = p
	return b
}

// WithHostQueueSize sets how many host transactions can wait for the bus.
func (b Builder) WithHostQueueSize(n int) Builder {
	b.hostQueueSize = n
	return b
}

// Build creates a driver. It panics if a scheduled event names a register
// that is not given to the builder.
func (b Builder) Build(name string) *Driver {
	if b.engine == nil {
		log.Panicf("driver %s needs an engine", name)
	}

	if b.schedule == nil {
		log.Panicf("driver %s needs a schedule", name)
	}

	d := &Driver{
		ComponentBase: sim.NewComponentBase(name),
		engine:        b.engine,
		registers:     regfile.NewFile(name + ".Registers"),
		schedule:      b.schedule,
		writes:        make(map[sim.Tick][]resolvedWrite),
		hostPort:      b.hostPort,
		hostQueueSize: b.hostQueueSize,
	}

	d.registers.Add(b.registers...)

	if err := b.schedule.Validate(d.registers); err != nil {
		log.Panic(err)
	}

	for _, e := range b.schedule.Events() {
		for _, w := range e.Writes {
			reg, _ := d.registers.Lookup(w.Register)
			d.writes[e.Tick] = append(d.writes[e.Tick],
				resolvedWrite{reg: reg, value: w.Value})
		}
	}

	return d
}
