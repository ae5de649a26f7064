// Package simulation assembles the harness: the scheduled driver, the protocol
// core, the emulated card, the DMA engines and the scratch SRAM around the
// shared bus.
package simulation

import (
	"fmt"
	"log"

	"github.com/sarchlab/sdsim/analysis"
	"github.com/sarchlab/sdsim/bus"
	"github.com/sarchlab/sdsim/datarecording"
	"github.com/sarchlab/sdsim/dma"
	"github.com/sarchlab/sdsim/memory"
	"github.com/sarchlab/sdsim/monitoring"
	"github.com/sarchlab/sdsim/regfile"
	"github.com/sarchlab/sdsim/schedule"
	"github.com/sarchlab/sdsim/sdcore"
	"github.com/sarchlab/sdsim/sdemu"
	"github.com/sarchlab/sdsim/sim"
	"github.com/sarchlab/sdsim/tracing"
)

// CommandLogTableName is the table that receives one row per finished
// command.
const CommandLogTableName = "command_log"

type commandLogEntry struct {
	StartTick uint32
	EndTick   uint32
	Opcode    uint8
	Argument  uint32
	Response  string
	CmdEvent  uint32
	DataEvent uint32
	Bytes     uint32
	Error     string
}

// A Simulation owns all the components of a run.
type Simulation struct {
	engine *sim.SerialEngine

	cmdRegs       regfile.CommandRegisters
	writerAddress *regfile.Register
	readClear     *regfile.Register
	readerAddress *regfile.Register
	readerLength  *regfile.Register

	driver       *schedule.Driver
	core         *sdcore.Core
	emulator     *sdemu.Emulator
	reader       *dma.Reader
	writer       *dma.Writer
	sram         *memory.SRAM
	hostPort     *bus.MasterPort
	interconnect *bus.Interconnect

	dataRecorder datarecording.DataRecorder
	visTracer    *tracing.DBTracer
	monitor      *monitoring.Monitor
	progressBar  *monitoring.ProgressBar

	bufferAnalyzers []*analysis.BufferAnalyzer

	components    []sim.Component
	compNameIndex map[string]int
}

// Engine returns the engine used in the simulation.
func (s *Simulation) Engine() *sim.SerialEngine {
	return s.engine
}

// Driver returns the scheduled command driver.
func (s *Simulation) Driver() *schedule.Driver {
	return s.driver
}

// Core returns the protocol core.
func (s *Simulation) Core() *sdcore.Core {
	return s.core
}

// Emulator returns the device side of the link.
func (s *Simulation) Emulator() *sdemu.Emulator {
	return s.emulator
}

// SRAM returns the scratch memory.
func (s *Simulation) SRAM() *memory.SRAM {
	return s.sram
}

// Reader returns the DMA reader.
func (s *Simulation) Reader() *dma.Reader {
	return s.reader
}

// Writer returns the DMA writer.
func (s *Simulation) Writer() *dma.Writer {
	return s.writer
}

// Interconnect returns the shared bus.
func (s *Simulation) Interconnect() *bus.Interconnect {
	return s.interconnect
}

// DataRecorder returns the recorder, or nil if the run is not recorded.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// VisTracer returns the tracer that writes tasks into the recorder, or nil.
func (s *Simulation) VisTracer() *tracing.DBTracer {
	return s.visTracer
}

// Monitor returns the monitor, or nil if monitoring is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

func (s *Simulation) registerComponent(c sim.Component) {
	if _, found := s.compNameIndex[c.Name()]; found {
		panic("component " + c.Name() + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[c.Name()] = len(s.components) - 1
	s.engine.RegisterComponent(c)
}

// Components returns the components in tick order.
func (s *Simulation) Components() []sim.Component {
	return s.components
}

// GetComponentByName returns the component with the given name, or nil.
func (s *Simulation) GetComponentByName(name string) sim.Component {
	i, found := s.compNameIndex[name]
	if !found {
		return nil
	}

	return s.components[i]
}

// Run runs the engine until the script terminates it.
func (s *Simulation) Run() error {
	err := s.engine.Run()
	s.engine.Finished()

	if err != nil {
		return fmt.Errorf("run stopped at tick %d: %w",
			s.engine.CurrentTick(), err)
	}

	return nil
}

// Terminate records the buffer levels, closes the recorder and removes the
// progress bar.
func (s *Simulation) Terminate() {
	if s.progressBar != nil {
		s.monitor.CompleteProgressBar(s.progressBar)
	}

	for _, a := range s.bufferAnalyzers {
		a.Summarize()
	}

	if s.dataRecorder != nil {
		if err := s.dataRecorder.Close(); err != nil {
			log.Printf("closing recorder: %v", err)
		}
	}
}

func (s *Simulation) logCommand(ctx sim.HookCtx) {
	if ctx.Pos != sdcore.HookPosCommandDone {
		return
	}

	rec := ctx.Item.(sdcore.CommandRecord)
	rsp := fmt.Sprintf("%08x%08x%08x%08x",
		rec.Response[0], rec.Response[1], rec.Response[2], rec.Response[3])

	entry := commandLogEntry{
		StartTick: uint32(rec.StartTick),
		EndTick:   uint32(rec.EndTick),
		Opcode:    rec.Opcode,
		Argument:  rec.Argument,
		Response:  rsp,
		CmdEvent:  rec.CmdEvent,
		DataEvent: rec.DataEvent,
		Bytes:     rec.Bytes,
	}

	if rec.Err != nil {
		entry.Error = rec.Err.Error()
	}

	s.dataRecorder.InsertData(CommandLogTableName, entry)
}
