// Package regfile provides the command and response registers of the SD
// core and the one-shot write-enable strobes used to commit them.
package regfile

// Register is a 32-bit storage register with a one-shot write-enable strobe.
// A strobe stays pending for exactly one tick; the owner of the register file
// clears it at the start of every tick.
type Register struct {
	name          string
	value         uint32
	pendingStrobe bool
	consumed      bool
	writeCount    uint64
}

// NewRegister creates a register with value 0 and no pending strobe.
func NewRegister(name string) *Register {
	if name == "" {
		panic("register name must not be empty")
	}

	return &Register{name: name}
}

// Name returns the name of the register.
func (r *Register) Name() string {
	return r.name
}

// Value returns the stored value.
func (r *Register) Value() uint32 {
	return r.value
}

// Write stores a value without pulsing the strobe.
func (r *Register) Write(v uint32) {
	r.value = v
	r.writeCount++
}

// WriteCount returns how many times the register has been written. Readers
// that need to notice a rewrite of the same value compare write counts.
func (r *Register) WriteCount() uint64 {
	return r.writeCount
}

// Strobe raises the write-enable pulse for the current tick.
func (r *Register) Strobe() {
	r.pendingStrobe = true
	r.consumed = false
}

// Strobed tells if the write-enable pulse is high in the current tick.
func (r *Register) Strobed() bool {
	return r.pendingStrobe
}

// Consume acknowledges the pulse. It returns false if the strobe is low or if
// it has already been consumed in this tick.
func (r *Register) Consume() bool {
	if !r.pendingStrobe || r.consumed {
		return false
	}

	r.consumed = true

	return true
}

// clearStrobe lowers the pulse. It reports whether the pulse was high but
// nobody consumed it.
func (r *Register) clearStrobe() (missed bool) {
	missed = r.pendingStrobe && !r.consumed
	r.pendingStrobe = false
	r.consumed = false

	return missed
}
