package device

import (
	"fmt"
	"log"

	"github.com/sarchlab/sdramctrl/mem/sdram/signal"
	"github.com/sarchlab/sdramctrl/sim"
)

// HookPosViolation is invoked for every protocol violation. The item is a
// Violation.
var HookPosViolation = &sim.HookPos{Name: "SDRAMViolation"}

// ViolationKind classifies protocol violations.
type ViolationKind int

// The protocol violations the device detects.
const (
	ViolationPowerUp ViolationKind = iota
	ViolationUninitialized
	ViolationRASToCAS
	ViolationRowCycle
	ViolationRefreshCycle
	ViolationModeRegister
	ViolationRASTime
	ViolationBankNotIdle
	ViolationClosedRow
	ViolationRefreshOpenBank
	ViolationBusContention
	ViolationRefreshGap
	ViolationMissingWriteData
	ViolationOutOfRange
)

var violationNames = []string{
	"command before power-up",
	"command before initialization",
	"tRCD",
	"tRC",
	"tRFC",
	"tMRD",
	"tRAS",
	"bank not idle",
	"access to closed row",
	"refresh with open bank",
	"data bus contention",
	"refresh gap",
	"missing write data",
	"address out of range",
}

func (k ViolationKind) String() string {
	if k < 0 || int(k) >= len(violationNames) {
		return fmt.Sprintf("ViolationKind(%d)", int(k))
	}

	return violationNames[k]
}

// A Violation is a command or bus state that breaks the SDRAM protocol.
type Violation struct {
	Cycle   uint64
	Kind    ViolationKind
	Command signal.Command
	Bank    uint8
	Detail  string
}

func (v Violation) Error() string {
	msg := fmt.Sprintf("cycle %d: %s on %s, bank %d",
		v.Cycle, v.Kind, v.Command, v.Bank)

	if v.Detail != "" {
		msg += ": " + v.Detail
	}

	return msg
}

// ViolationLogger writes every violation into a logger.
type ViolationLogger struct {
	sim.LogHookBase
}

// NewViolationLogger creates a ViolationLogger.
func NewViolationLogger(logger *log.Logger) *ViolationLogger {
	h := new(ViolationLogger)
	h.Logger = logger

	return h
}

// Func writes the violation.
func (h *ViolationLogger) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosViolation {
		return
	}

	v, ok := ctx.Item.(Violation)
	if !ok {
		return
	}

	name := "device"
	if named, ok := ctx.Domain.(sim.Named); ok {
		name = named.Name()
	}

	h.Printf("%s: %v", name, v)
}
