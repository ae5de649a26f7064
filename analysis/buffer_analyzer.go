// Package analysis summarizes how components use their buffers.
package analysis

import (
	"github.com/sarchlab/sdsim/datarecording"
	"github.com/sarchlab/sdsim/sim"
)

// BufferLevelTableName is the table that receives the buffer levels.
const BufferLevelTableName = "buffer_level"

// A BufferLevelEntry is the average level of a buffer over a period.
type BufferLevelEntry struct {
	Start    uint32
	End      uint32
	Location string
	Level    float64
}

// CreateTable creates the buffer level table in the recorder.
func CreateTable(r datarecording.DataRecorder) {
	r.CreateTable(BufferLevelTableName, BufferLevelEntry{})
}

// BufferAnalyzer records the time-weighted average level of a buffer. It is a
// hook that should be attached to the buffer.
type BufferAnalyzer struct {
	sim.TimeTeller

	recorder datarecording.DataRecorder
	buf      sim.Buffer
	period   sim.Tick

	periodStart  sim.Tick
	lastTick     sim.Tick
	lastLevel    int
	levelToTicks map[int]uint64
}

// Func records a buffer level change.
func (b *BufferAnalyzer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosBufPush && ctx.Pos != sim.HookPosBufPop {
		return
	}

	b.advance(b.CurrentTick())
	b.lastLevel = b.buf.Size()
}

// Summarize records every period up to the current tick, including the
// unfinished last one.
func (b *BufferAnalyzer) Summarize() {
	now := b.CurrentTick()

	b.advance(now)
	b.summarizePeriod(b.periodStart, now)
	b.periodStart = now
}

func (b *BufferAnalyzer) advance(now sim.Tick) {
	if b.period > 0 {
		for now >= b.periodStart+b.period {
			end := b.periodStart + b.period
			b.accumulate(end)
			b.summarizePeriod(b.periodStart, end)
			b.periodStart = end
		}
	}

	b.accumulate(now)
}

func (b *BufferAnalyzer) accumulate(until sim.Tick) {
	if until <= b.lastTick {
		return
	}

	b.levelToTicks[b.lastLevel] += uint64(until - b.lastTick)
	b.lastTick = until
}

func (b *BufferAnalyzer) summarizePeriod(start, end sim.Tick) {
	sumLevel := 0.0
	sumTicks := 0.0

	for level, ticks := range b.levelToTicks {
		sumLevel += float64(level) * float64(ticks)
		sumTicks += float64(ticks)
	}

	b.levelToTicks = make(map[int]uint64)

	if sumLevel == 0 {
		return
	}

	b.recorder.InsertData(BufferLevelTableName, BufferLevelEntry{
		Start:    uint32(start),
		End:      uint32(end),
		Location: b.buf.Name(),
		Level:    sumLevel / sumTicks,
	})
}

// BufferAnalyzerBuilder can build a BufferAnalyzer.
type BufferAnalyzerBuilder struct {
	recorder   datarecording.DataRecorder
	timeTeller sim.TimeTeller
	period     sim.Tick
	buffer     sim.Buffer
}

// MakeBufferAnalyzerBuilder creates a BufferAnalyzerBuilder that summarizes
// the whole run as a single period.
func MakeBufferAnalyzerBuilder() BufferAnalyzerBuilder {
	return BufferAnalyzerBuilder{}
}

// WithDataRecorder sets the recorder that receives the levels.
func (b BufferAnalyzerBuilder) WithDataRecorder(
	r datarecording.DataRecorder,
) BufferAnalyzerBuilder {
	b.recorder = r
	return b
}

// WithTimeTeller sets the TimeTeller to use.
func (b BufferAnalyzerBuilder) WithTimeTeller(
	timeTeller sim.TimeTeller,
) BufferAnalyzerBuilder {
	b.timeTeller = timeTeller
	return b
}

// WithPeriod sets the number of ticks summarized in each entry.
func (b BufferAnalyzerBuilder) WithPeriod(period sim.Tick) BufferAnalyzerBuilder {
	b.period = period
	return b
}

// WithBuffer sets the buffer to analyze.
func (b BufferAnalyzerBuilder) WithBuffer(
	buffer sim.Buffer,
) BufferAnalyzerBuilder {
	b.buffer = buffer
	return b
}

// Build creates a BufferAnalyzer and attaches it to the buffer.
func (b BufferAnalyzerBuilder) Build() *BufferAnalyzer {
	if b.recorder == nil {
		panic("recorder is not set")
	}

	if b.timeTeller == nil {
		panic("timeTeller is not set")
	}

	if b.buffer == nil {
		panic("buffer is not set")
	}

	analyzer := &BufferAnalyzer{
		TimeTeller:   b.timeTeller,
		recorder:     b.recorder,
		buf:          b.buffer,
		period:       b.period,
		levelToTicks: make(map[int]uint64),
	}

	b.buffer.AcceptHook(analyzer)

	return analyzer
}
