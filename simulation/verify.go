package simulation

import (
	"fmt"
	"strings"

	"github.com/sarchlab/sdsim/regfile"
	"github.com/sarchlab/sdsim/sdcore"
	"github.com/sarchlab/sdsim/sdemu"
)

// A VerificationError lists the checks that a finished run failed.
type VerificationError struct {
	Failures []string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%d check(s) failed:\n  %s",
		len(e.Failures), strings.Join(e.Failures, "\n  "))
}

type verifier struct {
	s        *Simulation
	failures []string
}

func (v *verifier) failf(format string, args ...any) {
	v.failures = append(v.failures, fmt.Sprintf(format, args...))
}

// Verify checks a finished run. The run must have stopped on its terminating
// event without missing a strobe, every scheduled command must have finished
// without an error or a timeout, and the scratch memory must hold the data of
// the last block read.
func (s *Simulation) Verify() error {
	v := &verifier{s: s}

	v.checkTermination()
	v.checkStrobes()
	v.checkCommands()
	v.checkScratch()

	if len(v.failures) > 0 {
		return &VerificationError{Failures: v.failures}
	}

	return nil
}

func (v *verifier) checkTermination() {
	want, ok := v.s.driver.Schedule().TerminateTick()
	if !ok {
		v.failf("schedule has no terminating event")
		return
	}

	if !v.s.driver.ReachedTermination() {
		v.failf("terminating event at tick %d not reached", want)
	}

	if now := v.s.engine.CurrentTick(); now != want {
		v.failf("run stopped at tick %d, want %d", now, want)
	}
}

func (v *verifier) checkStrobes() {
	for _, err := range v.s.driver.MissedStrobes() {
		v.failf("%v", err)
	}
}

func (v *verifier) expectedOpcodes() []uint8 {
	var ops []uint8

	for _, e := range v.s.driver.Schedule().Events() {
		for _, w := range e.Writes {
			if w.Register == regfile.CommandName {
				ops = append(ops, regfile.CommandWord(w.Value).Opcode())
			}
		}
	}

	return ops
}

func (v *verifier) checkCommands() {
	want := v.expectedOpcodes()
	records := v.s.core.Records()

	if len(records) != len(want) {
		v.failf("%d commands finished, want %d", len(records), len(want))
	}

	for i, rec := range records {
		if i < len(want) && rec.Opcode != want[i] {
			v.failf("command %d is cmd%d, want cmd%d", i, rec.Opcode, want[i])
		}

		v.checkRecord(i, rec)
	}
}

func (v *verifier) checkRecord(i int, rec sdcore.CommandRecord) {
	if rec.Err != nil {
		v.failf("command %d (cmd%d) failed: %v", i, rec.Opcode, rec.Err)
		return
	}

	if rec.CmdEvent&regfile.EventTimeout != 0 {
		v.failf("command %d (cmd%d) timed out", i, rec.Opcode)
	}

	if rec.Word.TransferDirection() != regfile.TransferNone &&
		rec.DataEvent != regfile.EventDone {
		v.failf("command %d (cmd%d) data event is 0x%x",
			i, rec.Opcode, rec.DataEvent)
	}
}

func (v *verifier) lastRead() (sdcore.CommandRecord, bool) {
	records := v.s.core.Records()
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if rec.Opcode == 17 && rec.Err == nil {
			return rec, true
		}
	}

	return sdcore.CommandRecord{}, false
}

func (v *verifier) checkScratch() {
	if n := v.s.writer.NumFailed(); n > 0 {
		v.failf("%d DMA writes failed", n)
	}

	if !v.s.writer.Idle() {
		v.failf("DMA writer still holds data")
	}

	rec, ok := v.lastRead()
	if !ok {
		v.failf("no block was read")
		return
	}

	data, err := v.s.sram.Dump(0, uint64(rec.Bytes))
	if err != nil {
		v.failf("dumping scratch memory: %v", err)
		return
	}

	base := uint64(rec.Argument) * sdemu.BlockSize
	for i, b := range data {
		want := sdemu.PatternByte(base + uint64(i))
		if b != want {
			v.failf("scratch byte %d is 0x%02x, want 0x%02x", i, b, want)
			return
		}
	}
}
