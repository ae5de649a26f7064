package schedule

import (
	"fmt"

	"github.com/sarchlab/sdsim/regfile"
	"github.com/sarchlab/sdsim/sim"
)

// ScheduleViolationError reports a malformed schedule.
type ScheduleViolationError struct {
	Tick   sim.Tick
	Reason string
}

func (e *ScheduleViolationError) Error() string {
	return fmt.Sprintf("schedule violation at tick %d: %s", e.Tick, e.Reason)
}

// A Schedule is an immutable list of events sorted by tick.
type Schedule struct {
	events []Event
	index  map[sim.Tick]int
}

// NewSchedule checks that the events have unique, strictly increasing,
// non-zero ticks and builds a schedule from them.
func NewSchedule(events []Event) (*Schedule, error) {
	s := &Schedule{
		events: make([]Event, 0, len(events)),
		index:  make(map[sim.Tick]int, len(events)),
	}

	for i, e := range events {
		if e.Tick == 0 {
			return nil, &ScheduleViolationError{
				Tick:   e.Tick,
				Reason: "tick 0 is never reached",
			}
		}

		if i > 0 && e.Tick <= events[i-1].Tick {
			return nil, &ScheduleViolationError{
				Tick: e.Tick,
				Reason: fmt.Sprintf("event %q is not after tick %d",
					e.Name, events[i-1].Tick),
			}
		}

		for _, r := range e.Registers() {
			if r == "" {
				return nil, &ScheduleViolationError{
					Tick:   e.Tick,
					Reason: fmt.Sprintf("event %q names an empty register", e.Name),
				}
			}
		}

		s.index[e.Tick] = len(s.events)
		s.events = append(s.events, e)
	}

	return s, nil
}

// Lookup returns the event at the tick.
func (s *Schedule) Lookup(now sim.Tick) (Event, bool) {
	i, found := s.index[now]
	if !found {
		return Event{}, false
	}

	return s.events[i], true
}

// Events returns the events in tick order.
func (s *Schedule) Events() []Event {
	return s.events
}

// LastTick returns the tick of the last event, or 0 for an empty schedule.
func (s *Schedule) LastTick() sim.Tick {
	if len(s.events) == 0 {
		return 0
	}

	return s.events[len(s.events)-1].Tick
}

// TerminateTick returns the tick of the first terminating event.
func (s *Schedule) TerminateTick() (sim.Tick, bool) {
	for _, e := range s.events {
		if e.Terminate {
			return e.Tick, true
		}
	}

	return 0, false
}

// Validate checks that every register the schedule names exists in the file.
func (s *Schedule) Validate(file *regfile.File) error {
	for _, e := range s.events {
		for _, r := range e.Registers() {
			if _, found := file.Lookup(r); !found {
				return &ScheduleViolationError{
					Tick: e.Tick,
					Reason: fmt.Sprintf("event %q names unknown register %s",
						e.Name, r),
				}
			}
		}
	}

	return nil
}
