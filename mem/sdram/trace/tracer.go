// Package trace records what an SDRAM controller does, either as log lines or
// into a database.
package trace

import (
	"log"

	"github.com/sarchlab/sdramctrl/datarecording"
	"github.com/sarchlab/sdramctrl/mem/sdram"
	"github.com/sarchlab/sdramctrl/sim"
	"github.com/sarchlab/sdramctrl/tracing"
)

// The tables written by a DB tracer.
const (
	TransactionsTable     = "sdram_transactions"
	TransactionStepsTable = "sdram_transaction_steps"
)

// transactionEntry is one request, from latch to acknowledge.
type transactionEntry struct {
	ID        string
	Location  string
	What      string
	StartTime float64
	EndTime   float64
	Address   uint32
	Data      uint32
	Commands  int
}

// transactionStepEntry is a command issued on behalf of a request.
type transactionStepEntry struct {
	TaskID string
	Time   float64
	What   string
}

// A tracer logs the transactions of a controller.
type tracer struct {
	timeTeller sim.TimeTeller
	logger     *log.Logger
}

// NewTracer creates a tracer that writes one line per transaction event.
func NewTracer(logger *log.Logger, timeTeller sim.TimeTeller) tracing.Tracer {
	t := new(tracer)
	t.logger = logger
	t.timeTeller = timeTeller

	return t
}

func (t *tracer) StartTask(task tracing.Task) {
	task.StartTime = t.timeTeller.CurrentTime()

	req, ok := task.Detail.(sdram.PendingRequest)
	if !ok {
		return
	}

	t.logger.Printf("start, %.12f, %s, %s, %s, 0x%06x, 0x%08x\n",
		task.StartTime, task.Where, task.ID, task.What,
		req.Address, req.Data)
}

func (t *tracer) StepTask(task tracing.Task) {
	t.logger.Printf("step, %.12f, %s, %s\n",
		t.timeTeller.CurrentTime(), task.ID, task.Steps[0].What)
}

func (t *tracer) EndTask(task tracing.Task) {
	task.EndTime = t.timeTeller.CurrentTime()

	t.logger.Printf("end, %.12f, %s\n", task.EndTime, task.ID)
}

// A dbTracer stores the transactions of a controller into a DataRecorder.
type dbTracer struct {
	timeTeller   sim.TimeTeller
	dataRecorder datarecording.DataRecorder
	pending      map[string]*transactionEntry
}

// NewDBTracer creates a tracer that stores every completed transaction and
// the commands issued for it.
func NewDBTracer(
	dataRecorder datarecording.DataRecorder,
	timeTeller sim.TimeTeller,
) tracing.Tracer {
	t := &dbTracer{
		timeTeller:   timeTeller,
		dataRecorder: dataRecorder,
		pending:      make(map[string]*transactionEntry),
	}

	t.dataRecorder.CreateTable(TransactionsTable, transactionEntry{})
	t.dataRecorder.CreateTable(TransactionStepsTable, transactionStepEntry{})

	return t
}

func (t *dbTracer) StartTask(task tracing.Task) {
	req, ok := task.Detail.(sdram.PendingRequest)
	if !ok {
		return
	}

	t.pending[task.ID] = &transactionEntry{
		ID:        task.ID,
		Location:  task.Where,
		What:      task.What,
		StartTime: float64(t.timeTeller.CurrentTime()),
		Address:   req.Address,
		Data:      req.Data,
	}
}

func (t *dbTracer) StepTask(task tracing.Task) {
	entry, ok := t.pending[task.ID]
	if !ok {
		return
	}

	entry.Commands++

	t.dataRecorder.InsertData(TransactionStepsTable, transactionStepEntry{
		TaskID: task.ID,
		Time:   float64(t.timeTeller.CurrentTime()),
		What:   task.Steps[0].What,
	})
}

func (t *dbTracer) EndTask(task tracing.Task) {
	entry, ok := t.pending[task.ID]
	if !ok {
		return
	}

	entry.EndTime = float64(t.timeTeller.CurrentTime())
	t.dataRecorder.InsertData(TransactionsTable, *entry)

	delete(t.pending, task.ID)
}
