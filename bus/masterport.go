package bus

import (
	"log"

	"github.com/sarchlab/sdsim/sim"
)

// A MasterPort is the connection between a bus master and the interconnect.
// A master has at most one outstanding transaction. The request stays
// asserted until the interconnect completes it.
type MasterPort struct {
	name      string
	id        int
	req       *Transaction
	completed []*Transaction
}

// NewMasterPort creates a port that is not plugged into any interconnect.
func NewMasterPort(name string) *MasterPort {
	sim.NameMustBeValid(name)

	return &MasterPort{
		name: name,
		id:   -1,
	}
}

// Name returns the name of the port.
func (p *MasterPort) Name() string {
	return p.name
}

// ID returns the arbitration index of the master. It is -1 until the port is
// plugged into an interconnect.
func (p *MasterPort) ID() int {
	return p.id
}

// CanRequest tells if the master has no outstanding transaction.
func (p *MasterPort) CanRequest() bool {
	return p.req == nil
}

// Request asserts a request for the transaction. It returns false if another
// transaction is still outstanding.
func (p *MasterPort) Request(now sim.Tick, t *Transaction) bool {
	if p.id < 0 {
		log.Panicf("port %s is not connected to a bus", p.name)
	}

	if p.req != nil {
		return false
	}

	t.MasterID = p.id
	t.IssueTick = now
	t.Err = nil
	p.req = t

	return true
}

// Requesting tells if the master is asking for the bus.
func (p *MasterPort) Requesting() bool {
	return p.req != nil
}

// PeekCompleted returns the oldest completed transaction without removing it.
func (p *MasterPort) PeekCompleted() *Transaction {
	if len(p.completed) == 0 {
		return nil
	}

	return p.completed[0]
}

// RetrieveCompleted removes and returns the oldest completed transaction.
func (p *MasterPort) RetrieveCompleted() *Transaction {
	if len(p.completed) == 0 {
		return nil
	}

	t := p.completed[0]
	p.completed = p.completed[1:]

	return t
}

func (p *MasterPort) pending() *Transaction {
	return p.req
}

func (p *MasterPort) complete(t *Transaction) {
	if p.req != t {
		log.Panicf("port %s completing a transaction it did not issue", p.name)
	}

	p.req = nil
	p.completed = append(p.completed, t)
}
