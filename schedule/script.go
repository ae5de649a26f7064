package schedule

import (
	"fmt"

	"github.com/sarchlab/sdsim/regfile"
	"github.com/sarchlab/sdsim/sim"
)

// UnitTicks is the spacing of the initialization script.
const UnitTicks = 2048

// Registers that the script drives besides the command registers.
const (
	WriterAddressName = "dma_writer.address"
	ReadClearName     = "emulator.read_clear"
)

// ScriptParams are the values that the initialization script depends on.
type ScriptParams struct {
	// RCA is the relative card address the card publishes on CMD3.
	RCA uint16

	// ScratchBase is the byte address of the scratch memory that receives
	// block reads.
	ScratchBase uint32
}

// DefaultScriptParams returns the RCA of the emulated card and the scratch
// SRAM base address.
func DefaultScriptParams() ScriptParams {
	return ScriptParams{
		RCA:         0x1337,
		ScratchBase: 0x10000000,
	}
}

type command struct {
	unit     sim.Tick
	name     string
	app      bool
	arg      uint32
	opcode   uint8
	response regfile.ResponseKind
	transfer regfile.TransferDirection

	blockSize uint32
}

func (c command) displayName() string {
	prefix := "cmd"
	if c.app {
		prefix = "acmd"
	}

	return fmt.Sprintf("%s (%s%d)", c.name, prefix, c.opcode)
}

// SDInitScript returns the card initialization sequence followed by a SCR
// read, a single block read, a pulse of the device read-event clear, and the
// end of the run at unit 64.
func SDInitScript(p ScriptParams) []Event {
	rca := uint32(p.RCA) << 16

	commands := []command{
		{unit: 1, name: "GO_IDLE_STATE", opcode: 0,
			response: regfile.ResponseNone},
		{unit: 2, name: "SEND_IF_COND", arg: 0x000001aa, opcode: 8,
			response: regfile.ResponseShort},
		{unit: 3, name: "APP_CMD", opcode: 55,
			response: regfile.ResponseShort},
		{unit: 4, name: "APP_SEND_OP_COND", app: true,
			arg: 0x10ff8000 | 0x60000000, opcode: 41,
			response: regfile.ResponseShort},
		{unit: 5, name: "ALL_SEND_CID", opcode: 2,
			response: regfile.ResponseLong},
		{unit: 6, name: "SEND_RELATIVE_ADDR", opcode: 3,
			response: regfile.ResponseShort},
		{unit: 7, name: "SEND_CID", arg: rca, opcode: 10,
			response: regfile.ResponseLong},
		{unit: 8, name: "SEND_CSD", arg: rca, opcode: 9,
			response: regfile.ResponseLong},
		{unit: 9, name: "SELECT_CARD", arg: rca, opcode: 7,
			response: regfile.ResponseShort},
		{unit: 10, name: "APP_CMD", arg: rca, opcode: 55,
			response: regfile.ResponseShort},
		{unit: 11, name: "APP_SET_BUS_WIDTH", app: true, arg: 0x00000002,
			opcode: 6, response: regfile.ResponseShort},
		{unit: 12, name: "APP_CMD", arg: rca, opcode: 55,
			response: regfile.ResponseShort},
		{unit: 13, name: "APP_SEND_SCR", app: true, opcode: 51,
			response: regfile.ResponseShort, transfer: regfile.TransferRead,
			blockSize: 8},
		{unit: 16, name: "READ_SINGLE_BLOCK", opcode: 17,
			response: regfile.ResponseShort, transfer: regfile.TransferRead,
			blockSize: 512},
	}

	events := make([]Event, 0, len(commands)+3)
	for _, c := range commands {
		events = append(events, commandEvent(c, p))
	}

	events = append(events,
		Event{
			Tick:   17 * UnitTicks,
			Name:   "READ_EVENT_CLEAR",
			Writes: []RegisterWrite{{Register: ReadClearName, Value: 1}},
		},
		Event{
			Tick:   18 * UnitTicks,
			Name:   "READ_EVENT_RELEASE",
			Writes: []RegisterWrite{{Register: ReadClearName, Value: 0}},
		},
		Event{
			Tick:      64 * UnitTicks,
			Name:      "FINISH",
			Terminate: true,
		},
	)

	return events
}

func commandEvent(c command, p ScriptParams) Event {
	word := regfile.MakeCommandWord(c.opcode, c.response, c.transfer)

	writes := []RegisterWrite{{Register: regfile.ArgumentName, Value: c.arg}}

	if c.transfer != regfile.TransferNone {
		writes = append(writes,
			RegisterWrite{Register: regfile.BlockSizeName, Value: c.blockSize},
			RegisterWrite{Register: regfile.BlockCountName, Value: 1},
			RegisterWrite{Register: WriterAddressName, Value: p.ScratchBase / 4},
		)
	}

	writes = append(writes,
		RegisterWrite{Register: regfile.CommandName, Value: uint32(word)})

	return Event{
		Tick:    c.unit * UnitTicks,
		Name:    c.displayName(),
		Writes:  writes,
		Strobes: []string{regfile.CommandName},
	}
}
