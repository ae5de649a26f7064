package dma

import (
	"encoding/binary"
	"log"

	"github.com/sarchlab/sdsim/bus"
	"github.com/sarchlab/sdsim/regfile"
	"github.com/sarchlab/sdsim/sim"
)

// HookPosReadDone is triggered when all the requested bytes are pushed into
// the source stream. The hook item is the number of bytes.
var HookPosReadDone = &sim.HookPos{Name: "DMA Read Done"}

// Reader reads words starting at the address register and unpacks them into
// its source stream. A strobe on the length register starts a transfer of
// that many bytes.
type Reader struct {
	*sim.ComponentBase

	port    *bus.MasterPort
	address *regfile.Register
	length  *regfile.Register
	source  sim.Buffer

	busy      bool
	total     uint32
	nextWord  uint32
	wordsLeft uint32
	bytesLeft uint32
	unpacked  []byte

	numRead     uint64
	numFailed   uint64
	numFinished uint64
}

// Port returns the bus master port.
func (r *Reader) Port() *bus.MasterPort {
	return r.port
}

// Address returns the address register.
func (r *Reader) Address() *regfile.Register {
	return r.address
}

// Length returns the length register.
func (r *Reader) Length() *regfile.Register {
	return r.length
}

// Source returns the byte stream that the reader fills.
func (r *Reader) Source() sim.Buffer {
	return r.source
}

// Busy tells if a transfer is in progress.
func (r *Reader) Busy() bool {
	return r.busy
}

// NumRead returns how many words have been read.
func (r *Reader) NumRead() uint64 {
	return r.numRead
}

// NumFailed returns how many word reads have failed on the bus.
func (r *Reader) NumFailed() uint64 {
	return r.numFailed
}

// NumTransfers returns how many transfers have finished.
func (r *Reader) NumTransfers() uint64 {
	return r.numFinished
}

// Tick starts a transfer on a length strobe, collects read data, feeds the
// source stream, and issues the next read.
func (r *Reader) Tick(now sim.Tick) (madeProgress bool) {
	madeProgress = r.start() || madeProgress
	madeProgress = r.collect() || madeProgress
	madeProgress = r.feed(now) || madeProgress
	madeProgress = r.issue(now) || madeProgress

	return madeProgress
}

func (r *Reader) start() bool {
	if r.busy || !r.length.Consume() {
		return false
	}

	r.busy = true
	r.total = r.length.Value()
	r.bytesLeft = r.total
	r.nextWord = r.address.Value()
	r.wordsLeft = (r.total + 3) / 4
	r.unpacked = r.unpacked[:0]

	return true
}

func (r *Reader) collect() bool {
	t := r.port.RetrieveCompleted()
	if t == nil {
		return false
	}

	if t.Err != nil {
		r.numFailed++
		log.Printf("%s: read failed: %v", r.Name(), t.Err)
	} else {
		r.numRead++
	}

	word := make([]byte, 4)
	binary.LittleEndian.PutUint32(word, t.Data)
	r.unpacked = append(r.unpacked, word...)

	return true
}

func (r *Reader) feed(now sim.Tick) bool {
	madeProgress := false

	for len(r.unpacked) > 0 && r.bytesLeft > 0 && r.source.CanPush() {
		r.source.Push(r.unpacked[0])
		r.unpacked = r.unpacked[1:]
		r.bytesLeft--
		madeProgress = true
	}

	if r.busy && r.bytesLeft == 0 && r.wordsLeft == 0 && !r.port.Requesting() {
		r.busy = false
		r.unpacked = r.unpacked[:0]
		r.numFinished++

		if r.NumHooks() > 0 {
			r.InvokeHook(sim.HookCtx{
				Domain: r,
				Now:    now,
				Pos:    HookPosReadDone,
				Item:   r.total,
			})
		}

		madeProgress = true
	}

	return madeProgress
}

func (r *Reader) issue(now sim.Tick) bool {
	if !r.busy || r.wordsLeft == 0 || !r.port.CanRequest() {
		return false
	}

	if len(r.unpacked) >= r.source.Capacity() {
		return false
	}

	r.port.Request(now, bus.NewReadTransaction(r.nextWord))
	r.nextWord++
	r.wordsLeft--

	return true
}
