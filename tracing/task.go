package tracing

import "github.com/sarchlab/sdsim/sim"

// A TaskStep represents a milestone in the processing of task
type TaskStep struct {
	Tick sim.Tick `json:"tick"`
	What string   `json:"what"`
}

// A Task is a piece of work that a component performs over one or more ticks,
// such as a bus transaction or an SD command.
type Task struct {
	ID        string      `json:"id"`
	ParentID  string      `json:"parent_id"`
	Kind      string      `json:"kind"`
	What      string      `json:"what"`
	Where     string      `json:"where"`
	StartTick sim.Tick    `json:"start_tick"`
	EndTick   sim.Tick    `json:"end_tick"`
	Steps     []TaskStep  `json:"steps"`
	Detail    interface{} `json:"-"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// AllTasks is a filter that accepts every task.
func AllTasks(Task) bool {
	return true
}

// KindIs returns a filter that accepts tasks of the given kind.
func KindIs(kind string) TaskFilter {
	return func(t Task) bool {
		return t.Kind == kind
	}
}
