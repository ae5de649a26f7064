// Package sdcore models the host side SD protocol core. It consumes command
// strobes, runs the commands on the card, and streams block data between the
// card and the DMA engines.
package sdcore

import (
	"fmt"
	"log"

	"github.com/sarchlab/sdsim/regfile"
	"github.com/sarchlab/sdsim/sdemu"
	"github.com/sarchlab/sdsim/sim"
	"github.com/sarchlab/sdsim/tracing"
)

// HookPosCommandDone is triggered when a command, including its data phase,
// finishes. The hook item is the CommandRecord.
var HookPosCommandDone = &sim.HookPos{Name: "SD Command Done"}

// A ReadNotifier is told when a read transfer completes.
type ReadNotifier interface {
	NotifyReadComplete(now sim.Tick)
}

// A CommandRecord describes a finished command.
type CommandRecord struct {
	StartTick sim.Tick
	EndTick   sim.Tick
	Opcode    uint8
	Argument  uint32
	Word      regfile.CommandWord
	Response  [4]uint32
	CmdEvent  uint32
	DataEvent uint32
	Bytes     uint32
	Err       error
}

type coreState int

const (
	coreIdle coreState = iota
	coreReading
	coreWriting
)

// Core is the SD protocol core.
type Core struct {
	*sim.ComponentBase

	cmd    regfile.CommandRegisters
	rsp    regfile.ResponseRegisters
	card   *sdemu.Card
	notify ReadNotifier
	sink   sim.Buffer
	source sim.Buffer

	state    coreState
	data     []byte
	pos      int
	expected int
	current  CommandRecord
	taskID   string

	records []CommandRecord
}

// CommandRegisters returns the registers the host writes.
func (c *Core) CommandRegisters() regfile.CommandRegisters {
	return c.cmd
}

// Response returns the response and event registers.
func (c *Core) Response() *regfile.ResponseRegisters {
	return &c.rsp
}

// Card returns the card the core talks to.
func (c *Core) Card() *sdemu.Card {
	return c.card
}

// Busy tells if a command is in its data phase.
func (c *Core) Busy() bool {
	return c.state != coreIdle
}

// Records returns the finished commands in order.
func (c *Core) Records() []CommandRecord {
	return c.records
}

// Tick consumes the command strobe when idle or moves one byte of data.
func (c *Core) Tick(now sim.Tick) bool {
	switch c.state {
	case coreReading:
		return c.readByte(now)
	case coreWriting:
		return c.writeByte(now)
	}

	if !c.cmd.Command.Consume() {
		return false
	}

	c.execute(now)

	return true
}

func (c *Core) execute(now sim.Tick) {
	word := regfile.CommandWord(c.cmd.Command.Value())
	op := word.Opcode()
	arg := c.cmd.Argument.Value()

	c.rsp.CmdEvent = 0
	c.rsp.DataEvent = 0
	c.current = CommandRecord{
		StartTick: now,
		Opcode:    op,
		Argument:  arg,
		Word:      word,
	}

	c.taskID = sim.GetIDGenerator().Generate()
	tracing.StartTask(now, c.taskID, "", c, "cmd",
		fmt.Sprintf("cmd%d", op), word)

	rsp, err := c.card.Execute(op, arg)
	if err != nil {
		c.rsp.ClearResponse()
		c.rsp.CmdEvent = regfile.EventDone | regfile.EventError
		c.current.Err = err
		c.finish(now)

		return
	}

	c.rsp.CmdEvent = regfile.EventDone | c.storeResponse(word, rsp)

	n := c.cmd.BlockSize.Value() * c.cmd.BlockCount.Value()
	c.current.Bytes = n

	switch word.TransferDirection() {
	case regfile.TransferRead:
		c.startRead(now, op, arg, n)
	case regfile.TransferWrite:
		c.startWrite(now, n)
	default:
		c.finish(now)
	}
}

func (c *Core) storeResponse(
	word regfile.CommandWord,
	rsp sdemu.Response,
) (timeout uint32) {
	short := rsp.Kind == regfile.ResponseShort ||
		rsp.Kind == regfile.ResponseShortBusy

	switch word.ResponseKind() {
	case regfile.ResponseNone:
		c.rsp.ClearResponse()
	case regfile.ResponseShort, regfile.ResponseShortBusy:
		if !short {
			c.rsp.ClearResponse()
			return regfile.EventTimeout
		}

		c.rsp.SetShortResponse(rsp.Short)
	case regfile.ResponseLong:
		if rsp.Kind != regfile.ResponseLong {
			c.rsp.ClearResponse()
			return regfile.EventTimeout
		}

		c.rsp.SetLongResponse(rsp.Long)
	}

	return 0
}

func (c *Core) startRead(now sim.Tick, op uint8, arg uint32, n uint32) {
	if c.sink == nil {
		c.failData(now, fmt.Errorf("core %s has no sink stream", c.Name()))
		return
	}

	data, err := c.card.ReadData(op, arg, n)
	if err != nil {
		c.failData(now, err)
		return
	}

	c.data = data
	c.pos = 0
	c.state = coreReading

	if n == 0 {
		c.finishData(now)
	}
}

func (c *Core) startWrite(now sim.Tick, n uint32) {
	if c.source == nil {
		c.failData(now, fmt.Errorf("core %s has no source stream", c.Name()))
		return
	}

	c.data = c.data[:0]
	c.expected = int(n)
	c.state = coreWriting

	if n == 0 {
		c.finishData(now)
	}
}

func (c *Core) readByte(now sim.Tick) bool {
	if !c.sink.CanPush() {
		return false
	}

	c.sink.Push(c.data[c.pos])
	c.pos++

	if c.pos == len(c.data) {
		c.finishData(now)
	}

	return true
}

func (c *Core) writeByte(now sim.Tick) bool {
	if c.source.Size() == 0 {
		return false
	}

	c.data = append(c.data, c.source.Pop().(byte))

	if len(c.data) < c.expected {
		return true
	}

	err := c.card.WriteData(c.current.Opcode, c.current.Argument, c.data)
	if err != nil {
		c.failData(now, err)
		return true
	}

	c.finishData(now)

	return true
}

func (c *Core) failData(now sim.Tick, err error) {
	log.Printf("%s: data phase of cmd%d failed: %v",
		c.Name(), c.current.Opcode, err)

	c.rsp.DataEvent = regfile.EventDone | regfile.EventError
	c.current.Err = err
	c.state = coreIdle
	c.finish(now)
}

func (c *Core) finishData(now sim.Tick) {
	c.rsp.DataEvent = regfile.EventDone

	if c.state == coreReading && c.notify != nil {
		c.notify.NotifyReadComplete(now)
	}

	c.state = coreIdle
	c.finish(now)
}

func (c *Core) finish(now sim.Tick) {
	c.current.EndTick = now
	c.current.Response = c.rsp.Response
	c.current.CmdEvent = c.rsp.CmdEvent
	c.current.DataEvent = c.rsp.DataEvent

	c.records = append(c.records, c.current)

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Now:    now,
			Pos:    HookPosCommandDone,
			Item:   c.current,
		})
	}

	tracing.EndTask(now, c.taskID, c)
}
