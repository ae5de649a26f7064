// Package bus provides a shared memory-mapped bus, where several masters
// contend for a single path to a set of address-decoded slaves.
package bus

import (
	"fmt"

	"github.com/sarchlab/sdsim/sim"
)

// A Transaction is a single word access on the bus. Addresses are in 32-bit
// word units.
type Transaction struct {
	ID       string
	MasterID int
	Address  uint32
	IsWrite  bool
	Data     uint32

	// Err is set when the transaction fails. The only failure the bus
	// produces itself is *AddressDecodeError.
	Err error

	IssueTick    sim.Tick
	GrantTick    sim.Tick
	CompleteTick sim.Tick
}

// NewReadTransaction creates a read of the word at addr.
func NewReadTransaction(addr uint32) *Transaction {
	return &Transaction{
		ID:       sim.GetIDGenerator().Generate(),
		MasterID: -1,
		Address:  addr,
	}
}

// NewWriteTransaction creates a write of data to the word at addr.
func NewWriteTransaction(addr uint32, data uint32) *Transaction {
	return &Transaction{
		ID:       sim.GetIDGenerator().Generate(),
		MasterID: -1,
		Address:  addr,
		IsWrite:  true,
		Data:     data,
	}
}

// TaskID returns the ID used to trace the transaction.
func (t *Transaction) TaskID() string {
	return t.ID
}

// Kind returns "write" or "read".
func (t *Transaction) Kind() string {
	if t.IsWrite {
		return "write"
	}

	return "read"
}

func (t *Transaction) String() string {
	return fmt.Sprintf("%s %s @0x%08x master %d",
		t.ID, t.Kind(), t.Address, t.MasterID)
}

// AddressDecodeError is the error of a transaction whose address does not
// belong to any slave.
type AddressDecodeError struct {
	Address  uint32
	MasterID int
}

func (e *AddressDecodeError) Error() string {
	return fmt.Sprintf("word address 0x%08x from master %d decodes to no slave",
		e.Address, e.MasterID)
}
