package tracing

import (
	"sync"

	"github.com/sarchlab/sdsim/sim"
)

// TotalTimeTracer can collect the total number of ticks spent on a certain
// type of task. If the execution of two tasks overlaps, this tracer will
// simply add the two task processing time together.
type TotalTimeTracer struct {
	filter        TaskFilter
	lock          sync.Mutex
	totalTicks    uint64
	taskCount     uint64
	inflightTasks map[string]Task
}

// NewTotalTimeTracer creates a new TotalTimeTracer
func NewTotalTimeTracer(filter TaskFilter) *TotalTimeTracer {
	t := &TotalTimeTracer{
		filter:        filter,
		inflightTasks: make(map[string]Task),
	}

	return t
}

// TotalTicks returns the number of ticks spent on the filtered tasks.
func (t *TotalTimeTracer) TotalTicks() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.totalTicks
}

// TaskCount returns the number of completed tasks.
func (t *TotalTimeTracer) TaskCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.taskCount
}

// AverageTicks returns the average task duration.
func (t *TotalTimeTracer) AverageTicks() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.taskCount == 0 {
		return 0
	}

	return float64(t.totalTicks) / float64(t.taskCount)
}

// StartTask records the task start time
func (t *TotalTimeTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.inflightTasks[task.ID] = task
	t.lock.Unlock()
}

// StepTask does nothing
func (t *TotalTimeTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask records the end of the task
func (t *TotalTimeTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	originalTask, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	t.totalTicks += uint64(task.EndTick - originalTask.StartTick)
	t.taskCount++
	delete(t.inflightTasks, task.ID)
}

var _ Tracer = (*TotalTimeTracer)(nil)
var _ sim.Hook = (*traceHook)(nil)
