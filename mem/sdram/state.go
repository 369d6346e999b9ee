package sdram

import (
	"fmt"

	"github.com/sarchlab/sdramctrl/mem/sdram/internal/counter"
	"github.com/sarchlab/sdramctrl/mem/sdram/signal"
)

// ControllerState is the state of the access/refresh arbiter.
type ControllerState int

// The states of the access/refresh arbiter.
const (
	StateIdle ControllerState = iota
	StateRefresh
	StateRefreshWait
	StateActivate
	StateWaitActivate
	StateWrite0
	StateWrite1
	StateWritePrecharge
	StateRead0
	StateRead1
	StateRead2
	StateRead3
	StateRead4
	StateReadPrecharge
	StatePrecharge
	StateWaitPrecharge
)

var controllerStateNames = []string{
	"Idle",
	"Refresh",
	"RefreshWait",
	"Activate",
	"WaitActivate",
	"Write0",
	"Write1",
	"WritePrecharge",
	"Read0",
	"Read1",
	"Read2",
	"Read3",
	"Read4",
	"ReadPrecharge",
	"Precharge",
	"WaitPrecharge",
}

func (s ControllerState) String() string {
	if s < 0 || int(s) >= len(controllerStateNames) {
		return fmt.Sprintf("ControllerState(%d)", int(s))
	}

	return controllerStateNames[s]
}

// readState returns the i-th state of the read pipeline.
func readState(i int) ControllerState {
	return StateRead0 + ControllerState(i)
}

// InitState is the state of the initialization sequencer.
type InitState int

// The states of the initialization sequencer.
const (
	InitIdle InitState = iota
	InitWait200us
	InitAssertPrecharge
	InitWaitPrecharge
	InitProgramModeRegister
	InitWaitModeRegister
	InitDone
)

var initStateNames = []string{
	"Idle",
	"Wait200us",
	"AssertPrecharge",
	"WaitPrecharge",
	"ProgramModeRegister",
	"WaitModeRegister",
	"Done",
}

func (s InitState) String() string {
	if s < 0 || int(s) >= len(initStateNames) {
		return fmt.Sprintf("InitState(%d)", int(s))
	}

	return initStateNames[s]
}

// PendingRequest is a request latched from the bus.
type PendingRequest struct {
	Address uint32
	Data    uint32
	Write   bool
	Valid   bool
}

// Timers are the timing counters shared by the two state machines.
type Timers struct {
	RowCycle      counter.Down
	RASToCAS      counter.Down
	PowerUp       counter.Down
	SinceActivate counter.Up
	Refresh       counter.RefreshTimer
}

// State holds every register of the controller. It is pure data and is
// copied by value.
type State struct {
	Init             InitState
	Ctrl             ControllerState
	PrechargeRepeats int
	Ready            bool

	Pending     PendingRequest
	Active      PendingRequest
	Outstanding bool
	TaskID      string

	Timers Timers

	Pins     signal.Pins
	ReadData uint32
	Ack      bool
}

func initialState() State {
	return State{
		Pins: signal.IdlePins(),
	}
}
