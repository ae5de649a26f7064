package sim

import (
	"sync"
)

// A SerialEngine is an Engine that ticks the components one after another, in
// the order they are registered.
type SerialEngine struct {
	HookableBase

	counter    TickCounter
	components []Component
	tickLimit  uint64

	terminateLock sync.Mutex
	terminate     bool

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex

	simulationEndHandlers []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine
func NewSerialEngine() *SerialEngine {
	e := new(SerialEngine)

	return e
}

// WithTickLimit makes Run give up after n ticks. A limit of 0 means no limit.
func (e *SerialEngine) WithTickLimit(n uint64) *SerialEngine {
	e.tickLimit = n
	return e
}

// RegisterComponent adds a component to the end of the tick order.
func (e *SerialEngine) RegisterComponent(c Component) {
	for _, existing := range e.components {
		if existing.Name() == c.Name() {
			panic("component " + c.Name() + " already registered")
		}
	}

	e.components = append(e.components, c)
}

// Components returns the registered components in tick order.
func (e *SerialEngine) Components() []Component {
	return e.components
}

// Run advances the clock and ticks all the components until termination is
// requested.
func (e *SerialEngine) Run() error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	if len(e.components) == 0 {
		return ErrNoComponent
	}

	var ticks uint64

	for !e.Terminated() {
		if e.tickLimit > 0 && ticks >= e.tickLimit {
			return ErrTickLimitReached
		}

		e.pauseLock.Lock()
		e.step()
		e.pauseLock.Unlock()

		ticks++
	}

	return nil
}

func (e *SerialEngine) step() {
	now := e.counter.Advance()

	hookCtx := HookCtx{
		Domain: e,
		Now:    now,
		Pos:    HookPosBeforeTick,
	}
	e.InvokeHook(hookCtx)

	for _, c := range e.components {
		c.Tick(now)
	}

	hookCtx.Pos = HookPosAfterTick
	e.InvokeHook(hookCtx)
}

// Terminate requests the engine to stop after the current tick.
func (e *SerialEngine) Terminate() {
	e.terminateLock.Lock()
	defer e.terminateLock.Unlock()

	e.terminate = true
}

// Terminated tells if a termination has been requested.
func (e *SerialEngine) Terminated() bool {
	e.terminateLock.Lock()
	defer e.terminateLock.Unlock()

	return e.terminate
}

// Pause prevents the SerialEngine to start more ticks.
func (e *SerialEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the SerialEngine to start more ticks.
func (e *SerialEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

// CurrentTick returns the value of the tick counter.
func (e *SerialEngine) CurrentTick() Tick {
	return e.counter.Value()
}

// RegisterSimulationEndHandler registers a handler to be called by Finished.
func (e *SerialEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.simulationEndHandlers = append(e.simulationEndHandlers, handler)
}

// Finished should be called after the simulation ends. This function
// calls all the registered SimulationEndHandler.
func (e *SerialEngine) Finished() {
	now := e.CurrentTick()
	for _, h := range e.simulationEndHandlers {
		h.Handle(now)
	}
}
