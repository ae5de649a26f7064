package bus

// An Arbiter decides which requesting master owns the bus next.
type Arbiter interface {
	// Arbitrate returns the index of the master to grant. It returns false
	// if no master is requesting.
	Arbitrate(requests []bool) (grant int, ok bool)

	// Release tells the arbiter that the transaction of the granted master
	// has completed.
	Release(grant int)
}

// RoundRobinArbiter searches for a requesting master starting at the one
// after the last grantee.
type RoundRobinArbiter struct {
	numMasters int
	last       int
}

// NewRoundRobinArbiter creates an arbiter for n masters. The first search
// starts at master 0.
func NewRoundRobinArbiter(n int) *RoundRobinArbiter {
	if n <= 0 {
		panic("arbiter needs at least one master")
	}

	return &RoundRobinArbiter{
		numMasters: n,
		last:       n - 1,
	}
}

// Arbitrate picks the first requesting master after the last grantee.
func (a *RoundRobinArbiter) Arbitrate(requests []bool) (int, bool) {
	if len(requests) != a.numMasters {
		panic("request vector does not match the number of masters")
	}

	for i := 1; i <= a.numMasters; i++ {
		m := (a.last + i) % a.numMasters
		if requests[m] {
			return m, true
		}
	}

	return 0, false
}

// Release moves the search start past the master that just finished.
func (a *RoundRobinArbiter) Release(grant int) {
	a.last = grant
}
