package simulation

import (
	"log"
	"strings"

	"github.com/sarchlab/sdsim/analysis"
	"github.com/sarchlab/sdsim/bus"
	"github.com/sarchlab/sdsim/config"
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

// Names of the registers of the DMA reader.
const (
	ReaderAddressName = "dma_reader.address"
	ReaderLengthName  = "dma_reader.length"
)

// DeviceBase is the byte address of the emulator CSR block.
const DeviceBase uint32 = 0x20000000

// Builder can be used to build a simulation.
type Builder struct {
	name     string
	cfg      config.Config
	events   []schedule.Event
	recorder datarecording.DataRecorder
}

// MakeBuilder creates a builder for the reference run.
func MakeBuilder() Builder {
	return Builder{
		name: "SD",
		cfg:  config.Default(),
	}
}

// WithName sets the prefix of all the component names.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithConfig replaces the run configuration.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithRegisterStage inserts the one-cycle register stage into the bus.
func (b Builder) WithRegisterStage(registered bool) Builder {
	b.cfg.RegisterStage = registered
	return b
}

// WithoutMonitoring disables the web monitor.
func (b Builder) WithoutMonitoring() Builder {
	b.cfg.Monitor = false
	return b
}

// WithTraceFile records tasks and commands into the given SQLite file.
func (b Builder) WithTraceFile(path string) Builder {
	b.cfg.TraceFile = path
	return b
}

// WithDataRecorder records tasks and commands into the given recorder instead
// of a file named by the configuration.
func (b Builder) WithDataRecorder(r datarecording.DataRecorder) Builder {
	b.recorder = r
	return b
}

// WithEvents replaces the initialization script.
func (b Builder) WithEvents(events []schedule.Event) Builder {
	b.events = events
	return b
}

func (b Builder) parametersMustBeValid() {
	if err := b.cfg.Validate(); err != nil {
		log.Panic(err)
	}

	if !b.cfg.Monitor && b.cfg.OpenBrowser {
		log.Panic("browser cannot be opened when monitoring is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		compNameIndex: make(map[string]int),
	}

	s.engine = sim.NewSerialEngine().WithTickLimit(b.cfg.TickLimit)

	b.buildRegisters(s)
	b.buildDevices(s)
	b.buildBus(s)
	b.buildDriver(s)

	for _, c := range []sim.Component{
		s.driver, s.core, s.emulator, s.reader, s.writer, s.interconnect,
	} {
		s.registerComponent(c)
	}

	b.buildRecorder(s)
	b.buildMonitor(s)

	return s
}

func (b Builder) buildRegisters(s *Simulation) {
	s.cmdRegs = regfile.NewCommandRegisters()
	s.writerAddress = regfile.NewRegister(schedule.WriterAddressName)
	s.readClear = regfile.NewRegister(schedule.ReadClearName)
	s.readerAddress = regfile.NewRegister(ReaderAddressName)
	s.readerLength = regfile.NewRegister(ReaderLengthName)
}

func (b Builder) buildDevices(s *Simulation) {
	card := sdemu.MakeCardBuilder().
		WithRCA(b.cfg.RCA).
		Build()

	s.emulator = sdemu.MakeBuilder().
		WithBase(DeviceBase).
		WithCard(card).
		WithReadClear(s.readClear).
		Build(b.name + ".Emulator")

	s.sram = memory.MakeBuilder().Build(b.name + ".SRAM")

	dmaBuilder := dma.MakeBuilder()
	s.writer = dmaBuilder.
		WithAddressRegister(s.writerAddress).
		BuildWriter(b.name + ".DMAWriter")
	s.reader = dmaBuilder.
		WithAddressRegister(s.readerAddress).
		WithLengthRegister(s.readerLength).
		BuildReader(b.name + ".DMAReader")

	s.core = sdcore.MakeBuilder().
		WithCommandRegisters(s.cmdRegs).
		WithCard(card).
		WithReadNotifier(s.emulator).
		WithSink(s.writer.Sink()).
		WithSource(s.reader.Source()).
		Build(b.name + ".Core")
}

func (b Builder) buildBus(s *Simulation) {
	s.hostPort = bus.NewMasterPort(b.name + ".Driver.HostPort")

	s.interconnect = bus.MakeBuilder().
		WithRegisterStage(b.cfg.RegisterStage).
		WithMasters(s.hostPort, s.reader.Port(), s.writer.Port()).
		WithSlave(bus.MemDecoder(b.cfg.ScratchBase), s.sram).
		WithSlave(bus.MemDecoder(DeviceBase), s.emulator).
		Build(b.name + ".Bus")
}

func (b Builder) buildDriver(s *Simulation) {
	events := b.events
	if events == nil {
		events = schedule.SDInitScript(schedule.ScriptParams{
			RCA:         b.cfg.RCA,
			ScratchBase: b.cfg.ScratchBase,
		})
	}

	sched, err := schedule.NewSchedule(events)
	if err != nil {
		log.Panic(err)
	}

	regs := append(s.cmdRegs.All(),
		s.writerAddress, s.readClear, s.readerAddress, s.readerLength)

	s.driver = schedule.MakeBuilder().
		WithEngine(s.engine).
		WithRegisters(regs...).
		WithSchedule(sched).
		WithHostPort(s.hostPort).
		Build(b.name + ".Driver")
}

func (b Builder) buildRecorder(s *Simulation) {
	s.dataRecorder = b.recorder
	if s.dataRecorder == nil && b.cfg.TraceFile != "" {
		s.dataRecorder = datarecording.New(
			strings.TrimSuffix(b.cfg.TraceFile, ".sqlite3"))
	}

	if s.dataRecorder == nil {
		return
	}

	s.visTracer = tracing.NewDBTracer(s.dataRecorder)
	tracing.CollectTrace(s.core, s.visTracer)
	tracing.CollectTrace(s.interconnect, s.visTracer)
	tracing.CollectTrace(s.sram, s.visTracer)

	s.dataRecorder.CreateTable(CommandLogTableName, commandLogEntry{})
	s.core.AcceptHook(sim.HookFunc(s.logCommand))

	analysis.CreateTable(s.dataRecorder)

	for _, buf := range []sim.Buffer{s.writer.Sink(), s.reader.Source()} {
		a := analysis.MakeBufferAnalyzerBuilder().
			WithDataRecorder(s.dataRecorder).
			WithTimeTeller(s.engine).
			WithPeriod(schedule.UnitTicks).
			WithBuffer(buf).
			Build()
		s.bufferAnalyzers = append(s.bufferAnalyzers, a)
	}
}

func (b Builder) buildMonitor(s *Simulation) {
	if !b.cfg.Monitor {
		return
	}

	s.monitor = monitoring.NewMonitor().
		WithPortNumber(b.cfg.MonitorPort).
		WithBrowser(b.cfg.OpenBrowser)
	s.monitor.RegisterEngine(s.engine)

	for _, c := range s.components {
		s.monitor.RegisterComponent(c)
	}

	total := uint64(s.driver.Schedule().LastTick())
	s.progressBar = s.monitor.CreateProgressBar("Ticks", total)
	s.engine.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
		if ctx.Pos == sim.HookPosAfterTick {
			s.progressBar.SetFinished(uint64(ctx.Now))
		}
	}))

	s.monitor.StartServer()
}
