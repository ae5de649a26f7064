package regfile

import "log"

// ResponseKind is the expected length of the card response.
type ResponseKind uint8

// Response kinds understood by the core.
const (
	ResponseNone      ResponseKind = 0
	ResponseShort     ResponseKind = 1
	ResponseLong      ResponseKind = 2
	ResponseShortBusy ResponseKind = 3
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseNone:
		return "NONE"
	case ResponseShort:
		return "SHORT"
	case ResponseLong:
		return "LONG"
	case ResponseShortBusy:
		return "SHORT_BUSY"
	default:
		return "INVALID"
	}
}

// TransferDirection tells whether a command moves a data block.
type TransferDirection uint8

// Transfer directions understood by the core.
const (
	TransferNone  TransferDirection = 0
	TransferRead  TransferDirection = 1
	TransferWrite TransferDirection = 2
)

func (d TransferDirection) String() string {
	switch d {
	case TransferNone:
		return "-"
	case TransferRead:
		return "READ"
	case TransferWrite:
		return "WRITE"
	default:
		return "INVALID"
	}
}

const (
	responseKindMask  = 0x1f
	transferShift     = 5
	transferMask      = 0x3
	opcodeShift       = 8
	maxOpcode         = 63
	maxResponseKind   = ResponseShortBusy
	maxTransferDirect = TransferWrite
)

// CommandWord is the packed value of the command register:
// opcode<<8 | transfer<<5 | responseKind.
type CommandWord uint32

// MakeCommandWord packs a command. It panics on an opcode outside 0..63 or an
// unknown response kind or transfer direction.
func MakeCommandWord(
	opcode uint8,
	kind ResponseKind,
	dir TransferDirection,
) CommandWord {
	if opcode > maxOpcode {
		log.Panicf("opcode %d is not a valid SD command", opcode)
	}

	if kind > maxResponseKind {
		log.Panicf("response kind %d is not valid", kind)
	}

	if dir > maxTransferDirect {
		log.Panicf("transfer direction %d is not valid", dir)
	}

	return CommandWord(uint32(opcode)<<opcodeShift |
		uint32(dir)<<transferShift |
		uint32(kind))
}

// Opcode returns the SD command index.
func (w CommandWord) Opcode() uint8 {
	return uint8(w >> opcodeShift)
}

// ResponseKind returns the expected response length.
func (w CommandWord) ResponseKind() ResponseKind {
	return ResponseKind(w & responseKindMask)
}

// TransferDirection returns the data direction of the command.
func (w CommandWord) TransferDirection() TransferDirection {
	return TransferDirection((w >> transferShift) & transferMask)
}
