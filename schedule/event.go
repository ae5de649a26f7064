// Package schedule drives the SD core registers from a tick-indexed script.
package schedule

import (
	"fmt"
	"strings"

	"github.com/sarchlab/sdsim/sim"
)

// A RegisterWrite stores Value into the named register.
type RegisterWrite struct {
	Register string
	Value    uint32
}

// An Event is everything the driver does in a single tick. Writes are applied
// in order before the strobes are raised.
type Event struct {
	Tick      sim.Tick
	Name      string
	Writes    []RegisterWrite
	Strobes   []string
	Terminate bool
}

func (e Event) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%d %s", e.Tick, e.Name)

	for _, w := range e.Writes {
		fmt.Fprintf(&sb, " %s=0x%08x", w.Register, w.Value)
	}

	for _, s := range e.Strobes {
		fmt.Fprintf(&sb, " %s.re", s)
	}

	if e.Terminate {
		sb.WriteString(" finish")
	}

	return sb.String()
}

// Registers returns the names of all registers the event touches.
func (e Event) Registers() []string {
	names := make([]string, 0, len(e.Writes)+len(e.Strobes))

	for _, w := range e.Writes {
		names = append(names, w.Register)
	}

	names = append(names, e.Strobes...)

	return names
}
