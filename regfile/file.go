package regfile

import (
	"fmt"
	"log"

	"github.com/sarchlab/sdsim/sim"
)

// HookPosStrobeMissed marks a strobe that was cleared without being consumed.
// The hook item is a *StrobeMissedError.
var HookPosStrobeMissed = &sim.HookPos{Name: "Strobe Missed"}

// StrobeMissedError reports that a one-shot write-enable was not observed
// before the tick ended. The schedule has no retry, so the write is lost.
type StrobeMissedError struct {
	Register string
	Tick     sim.Tick
}

func (e *StrobeMissedError) Error() string {
	return fmt.Sprintf("strobe of register %s at tick %d was not consumed",
		e.Register, e.Tick)
}

// A File is a named set of registers that share the strobe clearing cycle.
type File struct {
	sim.HookableBase

	name      string
	registers []*Register
	index     map[string]*Register
	strobedAt sim.Tick
}

// NewFile creates an empty register file.
func NewFile(name string) *File {
	sim.NameMustBeValid(name)

	return &File{
		name:  name,
		index: make(map[string]*Register),
	}
}

// Name returns the name of the register file.
func (f *File) Name() string {
	return f.name
}

// Add puts registers into the file. Register names must be unique.
func (f *File) Add(regs ...*Register) {
	for _, r := range regs {
		if _, found := f.index[r.Name()]; found {
			log.Panicf("register %s already exists in %s", r.Name(), f.name)
		}

		f.registers = append(f.registers, r)
		f.index[r.Name()] = r
	}
}

// Lookup finds a register by name.
func (f *File) Lookup(name string) (*Register, bool) {
	r, found := f.index[name]
	return r, found
}

// Registers returns the registers in the order they are added.
func (f *File) Registers() []*Register {
	return f.registers
}

// Strobe pulses the named register and remembers the tick so that a miss can
// be attributed to it.
func (f *File) Strobe(now sim.Tick, name string) {
	r, found := f.index[name]
	if !found {
		log.Panicf("register %s not found in %s", name, f.name)
	}

	r.Strobe()
	f.strobedAt = now
}

// BeginCycle lowers every strobe. Strobes that were raised but not consumed
// are reported through the returned errors and the StrobeMissed hook.
func (f *File) BeginCycle(now sim.Tick) []*StrobeMissedError {
	var missed []*StrobeMissedError

	for _, r := range f.registers {
		if !r.clearStrobe() {
			continue
		}

		err := &StrobeMissedError{Register: r.Name(), Tick: f.strobedAt}
		missed = append(missed, err)

		log.Printf("%s: %v", f.name, err)

		f.InvokeHook(sim.HookCtx{
			Domain: f,
			Now:    now,
			Pos:    HookPosStrobeMissed,
			Item:   err,
		})
	}

	return missed
}
