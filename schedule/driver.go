package schedule

import (
	"log"

	"github.com/sarchlab/sdsim/bus"
	"github.com/sarchlab/sdsim/regfile"
	"github.com/sarchlab/sdsim/sim"
)

// HookPosEventIssued is triggered after the driver applies an event. The hook
// item is the Event.
var HookPosEventIssued = &sim.HookPos{Name: "Schedule Event Issued"}

type resolvedWrite struct {
	reg   *regfile.Register
	value uint32
}

// Driver applies the schedule to the register file, one tick at a time. It
// also plays the role of the host CPU on the shared bus.
type Driver struct {
	*sim.ComponentBase

	engine    sim.Engine
	registers *regfile.File
	schedule  *Schedule
	writes    map[sim.Tick][]resolvedWrite

	hostPort      *bus.MasterPort
	hostQueue     []*bus.Transaction
	hostQueueSize int
	hostCompleted []*bus.Transaction

	issued       []Event
	missed       []*regfile.StrobeMissedError
	reachedFinal bool
}

// Schedule returns the schedule that the driver follows.
func (d *Driver) Schedule() *Schedule {
	return d.schedule
}

// Registers returns the register file that the driver writes.
func (d *Driver) Registers() *regfile.File {
	return d.registers
}

// HostPort returns the bus port of the host, or nil.
func (d *Driver) HostPort() *bus.MasterPort {
	return d.hostPort
}

// Issued returns the events applied so far.
func (d *Driver) Issued() []Event {
	return d.issued
}

// MissedStrobes returns the strobes that nobody consumed.
func (d *Driver) MissedStrobes() []*regfile.StrobeMissedError {
	return d.missed
}

// ReachedTermination tells if the terminating event has been applied.
func (d *Driver) ReachedTermination() bool {
	return d.reachedFinal
}

// QueueHostTransaction schedules a host bus access. It returns false if the
// driver has no host port or the queue is full.
func (d *Driver) QueueHostTransaction(t *bus.Transaction) bool {
	if d.hostPort == nil || len(d.hostQueue) >= d.hostQueueSize {
		return false
	}

	d.hostQueue = append(d.hostQueue, t)

	return true
}

// HostCompleted returns the host transactions that the bus has completed.
func (d *Driver) HostCompleted() []*bus.Transaction {
	return d.hostCompleted
}

// Tick lowers the strobes of the previous tick, applies the event of this
// tick, and feeds the host port.
func (d *Driver) Tick(now sim.Tick) (madeProgress bool) {
	missed := d.registers.BeginCycle(now)
	d.missed = append(d.missed, missed...)

	madeProgress = d.feedHostPort(now) || madeProgress
	madeProgress = d.applyEvent(now) || madeProgress

	return madeProgress
}

func (d *Driver) applyEvent(now sim.Tick) bool {
	e, found := d.schedule.Lookup(now)
	if !found {
		return false
	}

	for _, w := range d.writes[now] {
		w.reg.Write(w.value)
	}

	for _, s := range e.Strobes {
		d.registers.Strobe(now, s)
	}

	log.Printf("%s", e.Name)

	d.issued = append(d.issued, e)

	if d.NumHooks() > 0 {
		d.InvokeHook(sim.HookCtx{
			Domain: d,
			Now:    now,
			Pos:    HookPosEventIssued,
			Item:   e,
		})
	}

	if e.Terminate {
		d.reachedFinal = true
		d.engine.Terminate()
	}

	return true
}

func (d *Driver) feedHostPort(now sim.Tick) bool {
	if d.hostPort == nil {
		return false
	}

	madeProgress := false

	for t := d.hostPort.RetrieveCompleted(); t != nil; t = d.hostPort.RetrieveCompleted() {
		if t.Err != nil {
			log.Printf("%s: host access failed: %v", d.Name(), t.Err)
		}

		d.hostCompleted = append(d.hostCompleted, t)
		madeProgress = true
	}

	if len(d.hostQueue) > 0 && d.hostPort.CanRequest() {
		d.hostPort.Request(now, d.hostQueue[0])
		d.hostQueue = d.hostQueue[1:]
		madeProgress = true
	}

	return madeProgress
}
