package tracing

import (
	"sync"

	"github.com/sarchlab/sdramctrl/datarecording"
	"github.com/sarchlab/sdramctrl/sim"
)

type taskTableEntry struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Location  string
	StartTime float64
	EndTime   float64
	NumSteps  int
}

type stepTableEntry struct {
	TaskID string
	What   string
	Time   float64
}

// DBTracer is a tracer that stores completed tasks and their steps into a
// DataRecorder.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller sim.TimeTeller
	backend    datarecording.DataRecorder

	startTime, endTime sim.VTimeInSec

	tracingTasks map[string]Task
}

// NewDBTracer creates a new DBTracer.
func NewDBTracer(
	timeTeller sim.TimeTeller,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable("trace", taskTableEntry{})
	dataRecorder.CreateTable("trace_steps", stepTableEntry{})

	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      dataRecorder,
		tracingTasks: make(map[string]Task),
	}

	return t
}

// SetTimeRange limits the tracer to the tasks that overlap with the given
// time range. A zero bound is open.
func (t *DBTracer) SetTimeRange(startTime, endTime sim.VTimeInSec) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task.StartTime = t.timeTeller.CurrentTime()
	if t.endTime > 0 && task.StartTime > t.endTime {
		return
	}

	t.tracingTasks[task.ID] = task
}

// StepTask records a step of a task that is being traced.
func (t *DBTracer) StepTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	step := task.Steps[0]
	step.Time = t.timeTeller.CurrentTime()
	originalTask.Steps = append(originalTask.Steps, step)
	t.tracingTasks[task.ID] = originalTask
}

// EndTask marks the end of a task and writes it.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, task.ID)

	originalTask.EndTime = t.timeTeller.CurrentTime()
	if t.startTime > 0 && originalTask.EndTime < t.startTime {
		return
	}

	t.write(originalTask)
}

func (t *DBTracer) write(task Task) {
	t.backend.InsertData("trace", taskTableEntry{
		ID:        task.ID,
		ParentID:  task.ParentID,
		Kind:      task.Kind,
		What:      task.What,
		Location:  task.Where,
		StartTime: float64(task.StartTime),
		EndTime:   float64(task.EndTime),
		NumSteps:  len(task.Steps),
	})

	for _, step := range task.Steps {
		t.backend.InsertData("trace_steps", stepTableEntry{
			TaskID: task.ID,
			What:   step.What,
			Time:   float64(step.Time),
		})
	}
}

// Terminate writes the unfinished tasks with the current time as their end
// time and flushes the backend.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.timeTeller.CurrentTime()
	for id, task := range t.tracingTasks {
		task.EndTime = now
		t.write(task)
		delete(t.tracingTasks, id)
	}

	t.backend.Flush()
}
