package sim

// A Ticker is an object that updates states with ticks.
type Ticker interface {
	// Tick updates the state for the cycle now. It returns true if the
	// object did something in this cycle.
	Tick(now Tick) bool
}

// A Component is an element that is being simulated. Every component is
// ticked once per cycle.
type Component interface {
	Named
	Hookable
	Ticker
}

// ComponentBase provides some functions that other component can use.
type ComponentBase struct {
	HookableBase
	name string
}

// NewComponentBase creates a new ComponentBase
func NewComponentBase(name string) *ComponentBase {
	NameMustBeValid(name)

	c := new(ComponentBase)
	c.name = name

	return c
}

// Name returns the name of the BasicComponent
func (c *ComponentBase) Name() string {
	return c.name
}
