package sim

import "errors"

// ErrTickLimitReached is returned by Run when the engine stops because of the
// tick limit rather than because a component requested termination.
var ErrTickLimitReached = errors.New("tick limit reached before termination")

// ErrNoComponent is returned by Run when there is nothing to simulate.
var ErrNoComponent = errors.New("no component registered to the engine")

// A SimulationEndHandler is a handler that is called after the simulation ends.
type SimulationEndHandler interface {
	Handle(now Tick)
}

// A Terminator can stop the simulation. The current tick is completed before
// the engine stops.
type Terminator interface {
	Terminate()
}

// An Engine drives all the components in a single synchronous clock domain.
type Engine interface {
	Hookable
	TimeTeller
	Terminator

	// RegisterComponent adds a component to be ticked every cycle. Components
	// are ticked in the order of registration.
	RegisterComponent(c Component)

	// Run advances the tick counter until a component terminates the run.
	Run() error

	// Pause will pause the simulation until continue is called.
	Pause()

	// Continue will continue the paused simulation
	Continue()

	// Terminated tells if a termination has been requested.
	Terminated() bool

	// RegisterSimulationEndHandler registers a handler that perform some
	// actions after the simulation is finished.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished invokes all the registered SimulationEndHandler
	Finished()
}
