package memory

import (
	"encoding/binary"
	"log"

	"github.com/sarchlab/sdsim/bus"
	"github.com/sarchlab/sdsim/sim"
	"github.com/sarchlab/sdsim/tracing"
)

// HookPosSRAMAccess is triggered when the SRAM acknowledges a transaction.
var HookPosSRAMAccess = &sim.HookPos{Name: "SRAM Access"}

// SRAM is a word-addressed bus slave. Addresses wrap around the depth of the
// memory. A transaction is acknowledged after a fixed number of wait states.
type SRAM struct {
	sim.HookableBase

	name       string
	storage    *Storage
	depth      uint32
	waitStates int

	current *bus.Transaction
	waited  int

	numRead  uint64
	numWrite uint64
}

// Name returns the name of the SRAM.
func (m *SRAM) Name() string {
	return m.name
}

// Depth returns the number of words.
func (m *SRAM) Depth() uint32 {
	return m.depth
}

// Storage returns the underlying storage.
func (m *SRAM) Storage() *Storage {
	return m.storage
}

// NumRead returns how many reads have been acknowledged.
func (m *SRAM) NumRead() uint64 {
	return m.numRead
}

// NumWrite returns how many writes have been acknowledged.
func (m *SRAM) NumWrite() uint64 {
	return m.numWrite
}

// Access serves a bus transaction.
func (m *SRAM) Access(now sim.Tick, t *bus.Transaction) bool {
	if m.current != t {
		m.current = t
		m.waited = 0

		tracing.StartTask(now, t.ID+"_sram", t.ID, m, "sram", t.Kind(), nil)
	}

	if m.waited < m.waitStates {
		m.waited++
		return false
	}

	index := t.Address % m.depth
	if t.IsWrite {
		m.WriteWord(index, t.Data)
		m.numWrite++
	} else {
		t.Data = m.ReadWord(index)
		m.numRead++
	}

	m.current = nil

	if m.NumHooks() > 0 {
		m.InvokeHook(sim.HookCtx{
			Domain: m,
			Now:    now,
			Pos:    HookPosSRAMAccess,
			Item:   t,
		})
	}

	tracing.EndTask(now, t.ID+"_sram", m)

	return true
}

// ReadWord returns the word at the index.
func (m *SRAM) ReadWord(index uint32) uint32 {
	data, err := m.storage.Read(uint64(index%m.depth)*4, 4)
	if err != nil {
		log.Panic(err)
	}

	return binary.LittleEndian.Uint32(data)
}

// WriteWord stores the word at the index.
func (m *SRAM) WriteWord(index uint32, value uint32) {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, value)

	err := m.storage.Write(uint64(index%m.depth)*4, data)
	if err != nil {
		log.Panic(err)
	}
}

// Dump returns n bytes starting at the byte offset.
func (m *SRAM) Dump(offset, n uint64) ([]byte, error) {
	return m.storage.Read(offset, n)
}

var _ bus.Slave = (*SRAM)(nil)
