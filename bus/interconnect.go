package bus

import (
	"log"

	"github.com/sarchlab/sdsim/pipelining"
	"github.com/sarchlab/sdsim/sim"
	"github.com/sarchlab/sdsim/tracing"
)

// Hook positions of the interconnect. The hook item is the transaction.
var (
	HookPosGrant       = &sim.HookPos{Name: "Bus Grant"}
	HookPosComplete    = &sim.HookPos{Name: "Bus Complete"}
	HookPosDecodeError = &sim.HookPos{Name: "Bus Decode Error"}
)

// Interconnect is a shared bus. One transaction is on the bus at a time. The
// granted master holds the bus until the slave acknowledges.
type Interconnect struct {
	*sim.ComponentBase

	masters []*MasterPort
	decoder Decoder
	arbiter Arbiter

	registerStage bool
	stage         pipelining.Pipeline
	stageBuf      sim.Buffer

	granted  int
	inFlight *Transaction
	target   Slave
	atSlave  bool
}

// Masters returns the master ports in arbitration order.
func (ic *Interconnect) Masters() []*MasterPort {
	return ic.masters
}

// Decoder returns the address decoder.
func (ic *Interconnect) Decoder() *Decoder {
	return &ic.decoder
}

// HasRegisterStage tells if transactions are registered before reaching the
// slaves.
func (ic *Interconnect) HasRegisterStage() bool {
	return ic.registerStage
}

// Granted returns the index of the master that owns the bus, or -1 if the bus
// is idle.
func (ic *Interconnect) Granted() int {
	if ic.inFlight == nil {
		return -1
	}

	return ic.granted
}

// InFlight returns the transaction that is on the bus.
func (ic *Interconnect) InFlight() *Transaction {
	return ic.inFlight
}

// Tick grants the bus, moves the in-flight transaction towards its slave, and
// completes it when the slave acknowledges.
func (ic *Interconnect) Tick(now sim.Tick) (madeProgress bool) {
	if ic.inFlight == nil {
		if !ic.grant(now) {
			return false
		}

		madeProgress = true

		if ic.inFlight == nil || ic.registerStage {
			return madeProgress
		}

		ic.atSlave = true
	}

	if !ic.atSlave {
		madeProgress = ic.stage.Tick(now) || madeProgress

		if ic.stageBuf.Pop() == nil {
			return madeProgress
		}

		ic.atSlave = true
	}

	if ic.target.Access(now, ic.inFlight) {
		ic.complete(now)
		madeProgress = true
	}

	return madeProgress
}

func (ic *Interconnect) grant(now sim.Tick) bool {
	requests := make([]bool, len(ic.masters))
	for i, m := range ic.masters {
		requests[i] = m.Requesting()
	}

	g, ok := ic.arbiter.Arbitrate(requests)
	if !ok {
		return false
	}

	t := ic.masters[g].pending()
	t.GrantTick = now
	ic.granted = g
	ic.inFlight = t

	tracing.StartTask(now, t.ID, "", ic, "bus", t.Kind(), t)
	ic.invoke(now, HookPosGrant, t)

	slave, found := ic.decoder.Decode(t.Address)
	if !found {
		t.Err = &AddressDecodeError{Address: t.Address, MasterID: t.MasterID}
		log.Printf("%s: %v", ic.Name(), t.Err)
		ic.invoke(now, HookPosDecodeError, t)
		ic.complete(now)

		return true
	}

	ic.target = slave

	if ic.registerStage {
		ic.stage.Accept(now, t)
	}

	return true
}

func (ic *Interconnect) complete(now sim.Tick) {
	t := ic.inFlight
	t.CompleteTick = now

	ic.masters[ic.granted].complete(t)
	ic.arbiter.Release(ic.granted)

	ic.inFlight = nil
	ic.target = nil
	ic.atSlave = false

	ic.invoke(now, HookPosComplete, t)
	tracing.EndTask(now, t.ID, ic)
}

func (ic *Interconnect) invoke(now sim.Tick, pos *sim.HookPos, t *Transaction) {
	if ic.NumHooks() == 0 {
		return
	}

	ic.InvokeHook(sim.HookCtx{
		Domain: ic,
		Now:    now,
		Pos:    pos,
		Item:   t,
	})
}
