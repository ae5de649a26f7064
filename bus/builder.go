package bus

import (
	"log"

	"github.com/sarchlab/sdsim/pipelining"
	"github.com/sarchlab/sdsim/sim"
)

type slaveEntry struct {
	addrRange AddressRange
	slave     Slave
}

// Builder can build interconnects.
type Builder struct {
	registerStage bool
	masters       []*MasterPort
	slaves        []slaveEntry
	arbiter       Arbiter
}

// MakeBuilder creates a builder with no masters, no slaves, and no register
// stage.
func MakeBuilder() Builder {
	return Builder{}
}

// WithRegisterStage sets whether the interconnect registers the transaction
// for one cycle between grant and the slave.
func (b Builder) WithRegisterStage(registered bool) Builder {
	b.registerStage = registered
	return b
}

// WithMasters appends masters. Masters are arbitrated in the order they are
// added.
func (b Builder) WithMasters(ports ...*MasterPort) Builder {
	masters := make([]*MasterPort, 0, len(b.masters)+len(ports))
	masters = append(masters, b.masters...)
	b.masters = append(masters, ports...)

	return b
}

// WithSlave registers a slave for an address range.
func (b Builder) WithSlave(r AddressRange, s Slave) Builder {
	slaves := make([]slaveEntry, 0, len(b.slaves)+1)
	slaves = append(slaves, b.slaves...)
	b.slaves = append(slaves, slaveEntry{addrRange: r, slave: s})

	return b
}

// WithArbiter replaces the default round-robin arbiter.
func (b Builder) WithArbiter(a Arbiter) Builder {
	b.arbiter = a
	return b
}

// Build creates the interconnect and plugs the master ports into it.
func (b Builder) Build(name string) *Interconnect {
	if len(b.masters) == 0 {
		log.Panicf("bus %s needs at least one master", name)
	}

	ic := &Interconnect{
		ComponentBase: sim.NewComponentBase(name),
		masters:       b.masters,
		arbiter:       b.arbiter,
		registerStage: b.registerStage,
		granted:       -1,
	}

	if ic.arbiter == nil {
		ic.arbiter = NewRoundRobinArbiter(len(b.masters))
	}

	for i, m := range b.masters {
		if m.id >= 0 {
			log.Panicf("port %s is already connected to a bus", m.Name())
		}

		m.id = i
	}

	for _, s := range b.slaves {
		ic.decoder.AddSlave(s.addrRange, s.slave)
	}

	if b.registerStage {
		ic.stageBuf = sim.NewBuffer(name+".RegisterStageBuf", 1)
		ic.stage = pipelining.MakeBuilder().
			WithNumStage(1).
			WithCyclePerStage(1).
			WithPostPipelineBuffer(ic.stageBuf).
			Build(name + ".RegisterStage")
	}

	return ic
}
