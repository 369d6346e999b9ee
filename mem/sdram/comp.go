package sdram

import (
	"github.com/sarchlab/sdramctrl/mem/sdram/signal"
	"github.com/sarchlab/sdramctrl/sim"
	"github.com/sarchlab/sdramctrl/tracing"
)

// Comp is an SDRAM controller. It turns the requests of one bus client into
// SDRAM commands and keeps the device refreshed.
//
// Every tick computes the next State from the committed one and then commits
// it as a whole. Middlewares only read the committed state, except that later
// middlewares may read the next state values produced by earlier ones.
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	Spec Spec

	bus    *Bus
	device Device
	ids    sim.IDGenerator

	state State
	next  State

	dqIn   signal.DQ
	reset  bool
	locked bool
	cycle  uint64
}

// Tick runs the controller for one clock.
func (c *Comp) Tick() bool {
	c.cycle++

	if c.reset {
		c.next = initialState()
		c.next.Pins.CSn = !c.locked
	} else {
		c.next = c.state
		c.MiddlewareHolder.Tick()
	}

	c.commit()

	return true
}

func (c *Comp) commit() {
	prev := c.state
	c.state = c.next

	c.publish(prev)

	c.bus.Response = BusResponse{
		ReadData: c.state.ReadData,
		Ack:      c.state.Ack,
		Ready:    c.state.Ready,
	}

	if c.device == nil {
		c.dqIn = signal.Released
		return
	}

	c.dqIn = c.device.Edge(c.state.Pins)
}

func (c *Comp) publish(prev State) {
	if c.NumHooks() == 0 {
		return
	}

	c.publishCommand()
	c.publishTransitions(prev)
	c.publishTask(prev)
}

func (c *Comp) publishCommand() {
	p := c.state.Pins

	cmd := p.Command()
	if cmd == signal.CmdNOP || cmd == signal.CmdDeselect {
		return
	}

	record := CommandRecord{
		Cycle:   c.cycle,
		Command: cmd,
		Bank:    p.Bank,
		Addr:    p.Addr,
		Data:    p.Drive(),
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosCommand,
		Item:   record,
	})

	if c.state.TaskID != "" {
		tracing.AddTaskStep(c.state.TaskID, c, cmd.String())
	}
}

func (c *Comp) publishTransitions(prev State) {
	if prev.Init != c.state.Init {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosStateTransition,
			Item: Transition{
				Cycle:   c.cycle,
				Machine: MachineInit,
				From:    prev.Init.String(),
				To:      c.state.Init.String(),
			},
		})
	}

	if prev.Ctrl != c.state.Ctrl {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosStateTransition,
			Item: Transition{
				Cycle:   c.cycle,
				Machine: MachineArbiter,
				From:    prev.Ctrl.String(),
				To:      c.state.Ctrl.String(),
			},
		})
	}
}

func (c *Comp) publishTask(prev State) {
	if prev.TaskID != "" && prev.TaskID != c.state.TaskID && !prev.Ack {
		tracing.EndTask(prev.TaskID, c)
	}

	if c.state.TaskID != "" && c.state.TaskID != prev.TaskID {
		what := "read"
		if c.state.Pending.Write {
			what = "write"
		}

		tracing.StartTask(c.state.TaskID, "", c, "req", what,
			c.state.Pending)
	}

	if c.state.Ack && c.state.TaskID != "" {
		tracing.EndTask(c.state.TaskID, c)
	}
}

// Start schedules the first tick. The controller ticks every cycle after
// that.
func (c *Comp) Start() {
	c.TickNow()
}

// Bus returns the client interface.
func (c *Comp) Bus() *Bus {
	return c.bus
}

// Ready returns true once the device is initialized.
func (c *Comp) Ready() bool {
	return c.state.Ready
}

// Cycle returns the number of ticks so far.
func (c *Comp) Cycle() uint64 {
	return c.cycle
}

// Pins returns the pins driven to the device in the current cycle.
func (c *Comp) Pins() signal.Pins {
	return c.state.Pins
}

// SetReset drives the reset input. While reset is asserted, both state
// machines are held in their initial states with the outputs idle.
func (c *Comp) SetReset(asserted bool) {
	c.reset = asserted
}

// Reset brings the controller back to its initial state immediately,
// discarding any request in flight.
func (c *Comp) Reset() {
	prev := c.state
	c.state = initialState()
	c.state.Pins.CSn = !c.locked
	c.next = c.state
	c.dqIn = signal.Released
	c.bus.Response = BusResponse{}

	if prev.TaskID != "" && !prev.Ack {
		tracing.EndTask(prev.TaskID, c)
	}
}

// SetClockLocked drives the clock locked input. Chip select is only asserted
// while the clock is locked.
func (c *Comp) SetClockLocked(locked bool) {
	c.locked = locked
}

// SnapshotState returns a copy of the committed state.
func (c *Comp) SnapshotState() any {
	return c.state
}

// RestoreState replaces the committed state.
func (c *Comp) RestoreState(snapshot any) error {
	switch s := snapshot.(type) {
	case State:
		c.state = s
	case *State:
		c.state = *s
	default:
		return ErrInvalidSnapshot
	}

	c.next = c.state

	return nil
}

// Status summarizes the controller for monitoring.
type Status struct {
	Cycle       uint64 `json:"cycle"`
	Ready       bool   `json:"ready"`
	Init        string `json:"init"`
	Arbiter     string `json:"arbiter"`
	Outstanding bool   `json:"outstanding"`
	RefreshDue  bool   `json:"refresh_due"`
	NextRefresh int    `json:"next_refresh"`
}

// Status returns a Status of the committed state.
func (c *Comp) Status() any {
	return Status{
		Cycle:       c.cycle,
		Ready:       c.state.Ready,
		Init:        c.state.Init.String(),
		Arbiter:     c.state.Ctrl.String(),
		Outstanding: c.state.Outstanding,
		RefreshDue:  c.state.Timers.Refresh.Due(),
		NextRefresh: c.state.Timers.Refresh.Remaining(),
	}
}
