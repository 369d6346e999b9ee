package trace

import (
	"github.com/sarchlab/sdramctrl/datarecording"
	"github.com/sarchlab/sdramctrl/mem/sdram"
	"github.com/sarchlab/sdramctrl/mem/sdram/device"
	"github.com/sarchlab/sdramctrl/sim"
)

// The tables written by a Recorder.
const (
	CommandsTable    = "sdram_commands"
	TransitionsTable = "sdram_transitions"
	ViolationsTable  = "sdram_violations"
)

type commandEntry struct {
	Location string
	Cycle    uint64
	Command  string
	Bank     uint8
	Addr     uint16
	DQ       uint16
	Driven   bool
}

type transitionEntry struct {
	Location string
	Cycle    uint64
	Machine  string
	From     string
	To       string
}

type violationEntry struct {
	Location string
	Cycle    uint64
	Kind     string
	Command  string
	Bank     uint8
	Detail   string
}

// Recorder is a hook that stores the commands and state transitions of
// controllers and the violations detected by devices.
type Recorder struct {
	dataRecorder datarecording.DataRecorder
}

// NewRecorder creates a Recorder and the tables it writes to.
func NewRecorder(dataRecorder datarecording.DataRecorder) *Recorder {
	r := &Recorder{dataRecorder: dataRecorder}

	dataRecorder.CreateTable(CommandsTable, commandEntry{})
	dataRecorder.CreateTable(TransitionsTable, transitionEntry{})
	dataRecorder.CreateTable(ViolationsTable, violationEntry{})

	return r
}

// Func stores one row per item.
func (r *Recorder) Func(ctx sim.HookCtx) {
	where := location(ctx.Domain)

	switch item := ctx.Item.(type) {
	case sdram.CommandRecord:
		r.dataRecorder.InsertData(CommandsTable, commandEntry{
			Location: where,
			Cycle:    item.Cycle,
			Command:  item.Command.String(),
			Bank:     item.Bank,
			Addr:     item.Addr,
			DQ:       item.Data.Value,
			Driven:   item.Data.Driven,
		})
	case sdram.Transition:
		r.dataRecorder.InsertData(TransitionsTable, transitionEntry{
			Location: where,
			Cycle:    item.Cycle,
			Machine:  item.Machine,
			From:     item.From,
			To:       item.To,
		})
	case device.Violation:
		r.dataRecorder.InsertData(ViolationsTable, violationEntry{
			Location: where,
			Cycle:    item.Cycle,
			Kind:     item.Kind.String(),
			Command:  item.Command.String(),
			Bank:     item.Bank,
			Detail:   item.Detail,
		})
	}
}

func location(domain sim.Hookable) string {
	if named, ok := domain.(sim.Named); ok {
		return named.Name()
	}

	return ""
}
