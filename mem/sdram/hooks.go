package sdram

import (
	"log"

	"github.com/sarchlab/sdramctrl/mem/sdram/signal"
	"github.com/sarchlab/sdramctrl/sim"
)

// Hook positions of the controller.
var (
	// HookPosCommand is invoked for every command other than NOP. The item is
	// a CommandRecord.
	HookPosCommand = &sim.HookPos{Name: "SDRAMCommand"}

	// HookPosStateTransition is invoked when either state machine changes
	// state. The item is a Transition.
	HookPosStateTransition = &sim.HookPos{Name: "SDRAMStateTransition"}
)

// The state machines named in a Transition.
const (
	MachineInit    = "init"
	MachineArbiter = "arbiter"
)

// CommandRecord describes a command put on the pins.
type CommandRecord struct {
	Cycle   uint64
	Command signal.Command
	Bank    uint8
	Addr    uint16
	Data    signal.DQ
}

// Transition describes a state change of one of the state machines.
type Transition struct {
	Cycle   uint64
	Machine string
	From    string
	To      string
}

// CommandLogger writes the commands and state transitions of a controller
// into a logger.
type CommandLogger struct {
	sim.LogHookBase

	LogTransitions bool
}

// NewCommandLogger creates a CommandLogger.
func NewCommandLogger(logger *log.Logger) *CommandLogger {
	h := new(CommandLogger)
	h.Logger = logger

	return h
}

// Func writes one line per command or transition.
func (h *CommandLogger) Func(ctx sim.HookCtx) {
	switch item := ctx.Item.(type) {
	case CommandRecord:
		if ctx.Pos != HookPosCommand {
			return
		}

		if item.Data.Driven {
			h.Printf("%d, %s, bank %d, addr 0x%04X, dq 0x%04X",
				item.Cycle, item.Command, item.Bank, item.Addr,
				item.Data.Value)
			return
		}

		h.Printf("%d, %s, bank %d, addr 0x%04X",
			item.Cycle, item.Command, item.Bank, item.Addr)
	case Transition:
		if !h.LogTransitions || ctx.Pos != HookPosStateTransition {
			return
		}

		h.Printf("%d, %s, %s -> %s",
			item.Cycle, item.Machine, item.From, item.To)
	}
}
