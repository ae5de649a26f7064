package tracing

import (
	"sync"

	"github.com/sarchlab/sdsim/datarecording"
)

// TraceTableName is the table where DBTracer stores completed tasks.
const TraceTableName = "trace"

type taskTableEntry struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Location  string
	StartTick uint32
	EndTick   uint32
}

// DBTracer is a tracer that stores completed tasks into a data recorder.
type DBTracer struct {
	mu           sync.Mutex
	backend      datarecording.DataRecorder
	tracingTasks map[string]Task
}

// NewDBTracer creates a DBTracer and the trace table in the backend.
func NewDBTracer(backend datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{
		backend:      backend,
		tracingTasks: make(map[string]Task),
	}

	backend.CreateTable(TraceTableName, taskTableEntry{})

	return t
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tracingTasks[task.ID] = task
}

// StepTask marks a step of a task.
func (t *DBTracer) StepTask(_ Task) {
	// Steps are not stored.
}

// EndTask writes the task into the backend.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, task.ID)

	t.backend.InsertData(TraceTableName, taskTableEntry{
		ID:        originalTask.ID,
		ParentID:  originalTask.ParentID,
		Kind:      originalTask.Kind,
		What:      originalTask.What,
		Location:  originalTask.Where,
		StartTick: uint32(originalTask.StartTick),
		EndTick:   uint32(task.EndTick),
	})
}

// InflightTasks returns the number of tasks that started but did not end.
func (t *DBTracer) InflightTasks() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.tracingTasks)
}
