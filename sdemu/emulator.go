package sdemu

import (
	"github.com/sarchlab/sdsim/bus"
	"github.com/sarchlab/sdsim/regfile"
	"github.com/sarchlab/sdsim/sim"
)

// Word offsets of the emulator CSRs.
const (
	CSRStatus uint32 = iota
	CSRRCA
	CSREventStatus
	CSREventPending
	CSREventEnable
	CSRReadCount
	numCSR
)

// EventRead is the bit of the read event in the event registers.
const EventRead uint32 = 1 << 0

// Hook positions of the emulator. The hook item is the number of blocks read.
var (
	HookPosReadEvent = &sim.HookPos{Name: "Emulator Read Event"}
)

// Emulator is the device side of the SD link. It owns the card and exposes a
// small CSR block on the bus with a "read" event that is raised whenever a
// read transfer completes.
type Emulator struct {
	*sim.ComponentBase

	card      *Card
	baseWord  uint32
	readClear *regfile.Register

	pending   bool
	enable    uint32
	readCount uint32
}

// Card returns the emulated card.
func (e *Emulator) Card() *Card {
	return e.card
}

// ReadPending tells if the read event is pending.
func (e *Emulator) ReadPending() bool {
	return e.pending
}

// ReadCount returns how many read transfers have completed.
func (e *Emulator) ReadCount() uint32 {
	return e.readCount
}

// IRQ tells if an enabled event is pending.
func (e *Emulator) IRQ() bool {
	return e.pending && e.enable&EventRead != 0
}

// ReadCleared tells if the clear input of the read event is asserted.
func (e *Emulator) ReadCleared() bool {
	return e.readClear != nil && e.readClear.Value() != 0
}

// NotifyReadComplete raises the read event unless it is held clear.
func (e *Emulator) NotifyReadComplete(now sim.Tick) {
	e.readCount++

	if e.ReadCleared() {
		return
	}

	e.pending = true

	if e.NumHooks() > 0 {
		e.InvokeHook(sim.HookCtx{
			Domain: e,
			Now:    now,
			Pos:    HookPosReadEvent,
			Item:   e.readCount,
		})
	}
}

// Tick drops the pending read event while the clear input is asserted.
func (e *Emulator) Tick(_ sim.Tick) bool {
	if e.pending && e.ReadCleared() {
		e.pending = false
		return true
	}

	return false
}

// Access serves CSR reads and writes. Unknown offsets read as zero and ignore
// writes.
func (e *Emulator) Access(_ sim.Tick, t *bus.Transaction) bool {
	offset := t.Address - e.baseWord

	if t.IsWrite {
		e.writeCSR(offset, t.Data)
	} else {
		t.Data = e.readCSR(offset)
	}

	return true
}

func (e *Emulator) readCSR(offset uint32) uint32 {
	switch offset {
	case CSRStatus:
		return e.card.Status()
	case CSRRCA:
		return uint32(e.card.RCA())
	case CSREventStatus:
		if e.pending {
			return EventRead
		}

		return 0
	case CSREventPending:
		if e.pending && e.enable&EventRead != 0 {
			return EventRead
		}

		return 0
	case CSREventEnable:
		return e.enable
	case CSRReadCount:
		return e.readCount
	default:
		return 0
	}
}

func (e *Emulator) writeCSR(offset uint32, v uint32) {
	switch offset {
	case CSREventPending:
		if v&EventRead != 0 {
			e.pending = false
		}
	case CSREventEnable:
		e.enable = v & EventRead
	}
}

var _ bus.Slave = (*Emulator)(nil)
