// Package sdemu emulates an SD card and the device block that exposes it on
// the shared bus.
package sdemu

import (
	"errors"
	"fmt"
	"log"

	"github.com/sarchlab/sdsim/memory"
	"github.com/sarchlab/sdsim/regfile"
)

// Errors reported by the card.
var (
	ErrIllegalCommand    = errors.New("illegal command")
	ErrAddressOutOfRange = errors.New("address out of range")
)

// CardState is the state of the card as encoded in the R1 status.
type CardState uint32

// Card states.
const (
	StateIdle  CardState = 0
	StateReady CardState = 1
	StateIdent CardState = 2
	StateStby  CardState = 3
	StateTran  CardState = 4
	StateData  CardState = 5
)

func (s CardState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateIdent:
		return "ident"
	case StateStby:
		return "stby"
	case StateTran:
		return "tran"
	case StateData:
		return "data"
	default:
		return "unknown"
	}
}

// Bits of the R1 card status.
const (
	StatusAppCmd       uint32 = 1 << 5
	StatusReadyForData uint32 = 1 << 8
	StatusIllegalCmd   uint32 = 1 << 22
	StatusOutOfRange   uint32 = 1 << 31
	statusStateShift          = 9
)

// Bits of the operation conditions register.
const (
	OCRVoltageWindow uint32 = 0x00ff8000
	OCRCapacity      uint32 = 1 << 30
	OCRPowerUp       uint32 = 1 << 31
)

// BlockSize is the fixed block length of a high capacity card.
const BlockSize = 512

// A Response is what the card answers on the command line.
type Response struct {
	Kind  regfile.ResponseKind
	Short uint32
	Long  [16]byte
}

// Card is a high capacity SD card. Block storage is addressed in 512-byte
// blocks.
type Card struct {
	state    CardState
	appCmd   bool
	rca      uint16
	ocr      uint32
	busWidth uint32
	blockLen uint32

	publishedRCA uint16
	cid          [16]byte
	csd          [16]byte
	scr          [8]byte
	storage      *memory.Storage

	lastErr bool
}

// State returns the current card state.
func (c *Card) State() CardState {
	return c.state
}

// RCA returns the relative card address, or 0 before CMD3.
func (c *Card) RCA() uint16 {
	return c.rca
}

// BusWidth returns the data bus width in bits.
func (c *Card) BusWidth() uint32 {
	return c.busWidth
}

// OCR returns the operation conditions register.
func (c *Card) OCR() uint32 {
	return c.ocr
}

// CID returns the card identification register.
func (c *Card) CID() [16]byte {
	return c.cid
}

// CSD returns the card specific data register.
func (c *Card) CSD() [16]byte {
	return c.csd
}

// SCR returns the SD configuration register.
func (c *Card) SCR() [8]byte {
	return c.scr
}

// AppCmd tells if the next command is an application command.
func (c *Card) AppCmd() bool {
	return c.appCmd
}

// Storage returns the block storage of the card.
func (c *Card) Storage() *memory.Storage {
	return c.storage
}

// Reset brings the card back to the idle state.
func (c *Card) Reset() {
	c.state = StateIdle
	c.appCmd = false
	c.rca = 0
	c.ocr = 0
	c.busWidth = 1
	c.blockLen = BlockSize
	c.lastErr = false
}

// Status returns the R1 card status.
func (c *Card) Status() uint32 {
	s := uint32(c.state) << statusStateShift

	if c.appCmd {
		s |= StatusAppCmd
	}

	if c.state == StateTran {
		s |= StatusReadyForData
	}

	if c.lastErr {
		s |= StatusIllegalCmd
	}

	return s
}

// Execute runs a command. Application commands are recognized when they
// follow CMD55.
func (c *Card) Execute(opcode uint8, arg uint32) (Response, error) {
	app := c.appCmd
	c.appCmd = false

	var (
		rsp Response
		err error
	)

	if app {
		rsp, err = c.executeApp(opcode, arg)
	} else {
		rsp, err = c.executeStd(opcode, arg)
	}

	c.lastErr = err != nil
	if err != nil {
		log.Printf("card: cmd%d in state %s: %v", opcode, c.state, err)
	}

	return rsp, err
}

func (c *Card) illegal(opcode uint8, app bool) error {
	prefix := "cmd"
	if app {
		prefix = "acmd"
	}

	return fmt.Errorf("%w: %s%d in state %s",
		ErrIllegalCommand, prefix, opcode, c.state)
}

func (c *Card) r1() Response {
	return Response{Kind: regfile.ResponseShort, Short: c.Status()}
}

func (c *Card) long(v [16]byte) Response {
	return Response{Kind: regfile.ResponseLong, Long: v}
}

func (c *Card) addressed(arg uint32) bool {
	return uint16(arg>>16) == c.rca
}

//nolint:gocyclo,funlen
func (c *Card) executeStd(opcode uint8, arg uint32) (Response, error) {
	switch opcode {
	case 0:
		c.Reset()
		return Response{Kind: regfile.ResponseNone}, nil
	case 2:
		if c.state != StateReady {
			return Response{}, c.illegal(opcode, false)
		}

		c.state = StateIdent

		return c.long(c.cid), nil
	case 3:
		if c.state != StateIdent && c.state != StateStby {
			return Response{}, c.illegal(opcode, false)
		}

		c.state = StateStby
		c.rca = c.publishedRCA
		r6 := uint32(c.rca)<<16 | c.Status()&0x1fff

		return Response{Kind: regfile.ResponseShort, Short: r6}, nil
	case 7:
		if c.state != StateStby && c.state != StateTran {
			return Response{}, c.illegal(opcode, false)
		}

		rsp := c.r1()
		if c.addressed(arg) {
			c.state = StateTran
		} else {
			c.state = StateStby
		}

		rsp.Kind = regfile.ResponseShortBusy

		return rsp, nil
	case 8:
		if c.state != StateIdle {
			return Response{}, c.illegal(opcode, false)
		}

		return Response{Kind: regfile.ResponseShort, Short: arg & 0xfff}, nil
	case 9, 10:
		if c.state != StateStby || !c.addressed(arg) {
			return Response{}, c.illegal(opcode, false)
		}

		if opcode == 9 {
			return c.long(c.csd), nil
		}

		return c.long(c.cid), nil
	case 13:
		if !c.addressed(arg) || c.state < StateStby {
			return Response{}, c.illegal(opcode, false)
		}

		return c.r1(), nil
	case 16:
		if c.state != StateTran {
			return Response{}, c.illegal(opcode, false)
		}

		c.blockLen = arg

		return c.r1(), nil
	case 17, 24:
		if c.state != StateTran {
			return Response{}, c.illegal(opcode, false)
		}

		if err := c.blockMustExist(arg); err != nil {
			return Response{}, err
		}

		return c.r1(), nil
	case 55:
		c.appCmd = true
		return c.r1(), nil
	default:
		return Response{}, c.illegal(opcode, false)
	}
}

func (c *Card) executeApp(opcode uint8, arg uint32) (Response, error) {
	switch opcode {
	case 6:
		if c.state != StateTran {
			return Response{}, c.illegal(opcode, true)
		}

		switch arg & 0x3 {
		case 0:
			c.busWidth = 1
		case 2:
			c.busWidth = 4
		default:
			return Response{}, c.illegal(opcode, true)
		}

		return c.r1(), nil
	case 41:
		if c.state != StateIdle {
			return Response{}, c.illegal(opcode, true)
		}

		c.ocr = OCRVoltageWindow | OCRPowerUp | arg&OCRCapacity
		c.state = StateReady

		return Response{Kind: regfile.ResponseShort, Short: c.ocr}, nil
	case 51:
		if c.state != StateTran {
			return Response{}, c.illegal(opcode, true)
		}

		return c.r1(), nil
	default:
		return c.executeStd(opcode, arg)
	}
}

func (c *Card) blockMustExist(block uint32) error {
	if uint64(block+1)*BlockSize > c.storage.Capacity() {
		return fmt.Errorf("%w: block %d", ErrAddressOutOfRange, block)
	}

	return nil
}

// ReadData returns the data of a read command. ACMD51 returns the SCR.
// Block reads return n bytes starting at the block addressed by arg.
func (c *Card) ReadData(opcode uint8, arg uint32, n uint32) ([]byte, error) {
	if c.state != StateTran {
		return nil, c.illegal(opcode, false)
	}

	switch opcode {
	case 51:
		data := make([]byte, n)
		copy(data, c.scr[:])

		return data, nil
	case 17, 18:
		if err := c.blockMustExist(arg); err != nil {
			return nil, err
		}

		data, err := c.storage.Read(uint64(arg)*BlockSize, uint64(n))
		if err != nil {
			return nil, fmt.Errorf("%w: %d bytes at block %d",
				ErrAddressOutOfRange, n, arg)
		}

		return data, nil
	default:
		return nil, c.illegal(opcode, false)
	}
}

// WriteData stores the data of a write command at the block addressed by arg.
func (c *Card) WriteData(opcode uint8, arg uint32, data []byte) error {
	if c.state != StateTran || (opcode != 24 && opcode != 25) {
		return c.illegal(opcode, false)
	}

	if err := c.blockMustExist(arg); err != nil {
		return err
	}

	err := c.storage.Write(uint64(arg)*BlockSize, data)
	if err != nil {
		return fmt.Errorf("%w: %d bytes at block %d",
			ErrAddressOutOfRange, len(data), arg)
	}

	return nil
}
