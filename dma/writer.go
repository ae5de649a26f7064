// Package dma provides the engines that move the byte streams of the SD core
// to and from memory over the shared bus.
package dma

import (
	"encoding/binary"
	"log"

	"github.com/sarchlab/sdsim/bus"
	"github.com/sarchlab/sdsim/regfile"
	"github.com/sarchlab/sdsim/sim"
)

// HookPosWordWritten is triggered when a word write completes. The hook item
// is the transaction.
var HookPosWordWritten = &sim.HookPos{Name: "DMA Word Written"}

type pendingWord struct {
	addr  uint32
	value uint32
}

// Writer packs the bytes that arrive on its sink into little-endian words and
// writes them to consecutive word addresses starting at the address register.
// Writing the address register restarts the offset.
type Writer struct {
	*sim.ComponentBase

	port    *bus.MasterPort
	address *regfile.Register
	sink    sim.Buffer

	seenAddrWrite uint64
	offset        uint32
	packing       []byte
	queue         []pendingWord
	queueSize     int

	numWritten uint64
	numFailed  uint64
}

// Port returns the bus master port.
func (w *Writer) Port() *bus.MasterPort {
	return w.port
}

// Address returns the address register.
func (w *Writer) Address() *regfile.Register {
	return w.address
}

// Sink returns the byte stream that the writer drains.
func (w *Writer) Sink() sim.Buffer {
	return w.sink
}

// NumWritten returns how many words have been written.
func (w *Writer) NumWritten() uint64 {
	return w.numWritten
}

// NumFailed returns how many word writes have failed on the bus.
func (w *Writer) NumFailed() uint64 {
	return w.numFailed
}

// Idle tells if every byte received has been written.
func (w *Writer) Idle() bool {
	return w.sink.Size() == 0 &&
		len(w.packing) == 0 &&
		len(w.queue) == 0 &&
		!w.port.Requesting()
}

// Tick collects completed writes, packs incoming bytes and issues the next
// write.
func (w *Writer) Tick(now sim.Tick) (madeProgress bool) {
	if w.address.WriteCount() != w.seenAddrWrite {
		w.seenAddrWrite = w.address.WriteCount()
		w.offset = 0
		w.packing = w.packing[:0]
	}

	madeProgress = w.collect(now) || madeProgress
	madeProgress = w.pack() || madeProgress
	madeProgress = w.issue(now) || madeProgress

	return madeProgress
}

func (w *Writer) collect(now sim.Tick) bool {
	t := w.port.RetrieveCompleted()
	if t == nil {
		return false
	}

	if t.Err != nil {
		w.numFailed++
		log.Printf("%s: write failed: %v", w.Name(), t.Err)
	} else {
		w.numWritten++
	}

	if w.NumHooks() > 0 {
		w.InvokeHook(sim.HookCtx{
			Domain: w,
			Now:    now,
			Pos:    HookPosWordWritten,
			Item:   t,
		})
	}

	return true
}

func (w *Writer) pack() bool {
	madeProgress := false

	for w.sink.Size() > 0 && len(w.queue) < w.queueSize {
		w.packing = append(w.packing, w.sink.Pop().(byte))
		madeProgress = true

		if len(w.packing) < 4 {
			continue
		}

		w.queue = append(w.queue, pendingWord{
			addr:  w.address.Value() + w.offset,
			value: binary.LittleEndian.Uint32(w.packing),
		})
		w.offset++
		w.packing = w.packing[:0]
	}

	return madeProgress
}

func (w *Writer) issue(now sim.Tick) bool {
	if len(w.queue) == 0 || !w.port.CanRequest() {
		return false
	}

	word := w.queue[0]
	w.port.Request(now, bus.NewWriteTransaction(word.addr, word.value))
	w.queue = w.queue[1:]

	return true
}
