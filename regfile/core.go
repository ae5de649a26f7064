package regfile

import "encoding/binary"

// Names of the command registers of the SD core.
const (
	ArgumentName   = "argument"
	CommandName    = "command"
	BlockSizeName  = "block_size"
	BlockCountName = "block_count"
)

// CommandRegisters are the registers that the host writes to issue a command.
type CommandRegisters struct {
	Argument   *Register
	Command    *Register
	BlockSize  *Register
	BlockCount *Register
}

// NewCommandRegisters creates the command registers, all zero.
func NewCommandRegisters() CommandRegisters {
	return CommandRegisters{
		Argument:   NewRegister(ArgumentName),
		Command:    NewRegister(CommandName),
		BlockSize:  NewRegister(BlockSizeName),
		BlockCount: NewRegister(BlockCountName),
	}
}

// All returns the registers in a fixed order.
func (c CommandRegisters) All() []*Register {
	return []*Register{c.Argument, c.Command, c.BlockSize, c.BlockCount}
}

// Bits of the command and data event registers.
const (
	EventDone     uint32 = 1 << 0
	EventError    uint32 = 1 << 1
	EventTimeout  uint32 = 1 << 2
	EventCRCError uint32 = 1 << 3
)

// ResponseRegisters are written by the core and read by the host.
type ResponseRegisters struct {
	// Response holds up to 128 response bits, most significant word first.
	// A short response occupies the last word.
	Response  [4]uint32
	CmdEvent  uint32
	DataEvent uint32
}

// SetShortResponse stores a 32-bit card response.
func (r *ResponseRegisters) SetShortResponse(v uint32) {
	r.Response = [4]uint32{0, 0, 0, v}
}

// SetLongResponse stores a 128-bit card response.
func (r *ResponseRegisters) SetLongResponse(b [16]byte) {
	for i := range r.Response {
		r.Response[i] = binary.BigEndian.Uint32(b[i*4 : i*4+4])
	}
}

// ClearResponse zeroes the response words.
func (r *ResponseRegisters) ClearResponse() {
	r.Response = [4]uint32{}
}
