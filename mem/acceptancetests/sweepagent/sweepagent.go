// Package sweepagent provides a bus client that checks an SDRAM controller
// by writing a range of addresses and reading them all back.
package sweepagent

import (
	"fmt"
	"log"

	"github.com/sarchlab/sdramctrl/mem/sdram"
	"github.com/sarchlab/sdramctrl/sim"
)

// Phase is the progress of a sweep.
type Phase int

// The phases of a sweep.
const (
	PhaseWaitReady Phase = iota
	PhaseWrite
	PhaseRead
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseWaitReady:
		return "WaitReady"
	case PhaseWrite:
		return "Write"
	case PhaseRead:
		return "Read"
	case PhaseDone:
		return "Done"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Mismatch is a read that did not return what was written.
type Mismatch struct {
	Address  uint32
	Expected uint32
	Got      uint32
}

func (m Mismatch) Error() string {
	return fmt.Sprintf("address 0x%06X: expected 0x%08X, got 0x%08X",
		m.Address, m.Expected, m.Got)
}

// An Agent writes Pattern(addr) to every address of a range, then reads the
// range back and compares. It ticks after the controller in each cycle, so it
// always sees the response committed in the same cycle.
type Agent struct {
	*sim.TickingComponent

	Bus      *sdram.Bus
	First    uint32
	Count    uint32
	DataMask uint32
	Pattern  func(addr uint32) uint32

	// Logger, when set, receives one line per presented request and per
	// mismatch.
	Logger *log.Logger

	phase    Phase
	index    uint32
	inFlight bool
	waited   int

	Mismatches    []Mismatch
	Completed     int
	MaxLatency    int
	TotalLatency  int
	ReadyAtCycles int
	cycles        int
}

// Tick advances the sweep by one clock.
func (a *Agent) Tick() bool {
	a.cycles++

	switch a.phase {
	case PhaseWaitReady:
		a.waitReady()
	case PhaseWrite, PhaseRead:
		a.access()
	case PhaseDone:
		return false
	}

	return true
}

func (a *Agent) waitReady() {
	if !a.Bus.Response.Ready {
		return
	}

	a.ReadyAtCycles = a.cycles
	a.phase = PhaseWrite

	if a.Count == 0 {
		a.phase = PhaseDone
		return
	}

	a.present()
}

func (a *Agent) access() {
	if !a.inFlight {
		a.present()
		return
	}

	a.waited++

	if !a.Bus.Response.Ack {
		return
	}

	a.complete()

	if a.phase != PhaseDone {
		a.present()
	}
}

func (a *Agent) address() uint32 {
	return a.First + a.index
}

func (a *Agent) present() {
	addr := a.address()

	a.Bus.Request = sdram.BusRequest{
		Address:     addr,
		WriteData:   a.Pattern(addr),
		WriteEnable: a.phase == PhaseWrite,
		Valid:       true,
		BusActive:   true,
	}
	a.inFlight = true
	a.waited = 0

	if a.Logger != nil {
		a.Logger.Printf("%.10f, %s, %s, 0x%06X",
			a.CurrentTime(), a.Name(), a.phase, addr)
	}
}

func (a *Agent) complete() {
	addr := a.address()

	if a.phase == PhaseRead {
		a.check(addr, a.Bus.Response.ReadData)
	}

	a.Completed++
	a.TotalLatency += a.waited
	a.MaxLatency = max(a.MaxLatency, a.waited)

	a.Bus.Request = sdram.BusRequest{}
	a.inFlight = false
	a.index++

	if a.index < a.Count {
		return
	}

	a.index = 0

	if a.phase == PhaseWrite {
		a.phase = PhaseRead
	} else {
		a.phase = PhaseDone
	}
}

func (a *Agent) check(addr, got uint32) {
	expected := a.Pattern(addr) & a.DataMask
	got &= a.DataMask

	if got == expected {
		return
	}

	m := Mismatch{Address: addr, Expected: expected, Got: got}
	a.Mismatches = append(a.Mismatches, m)

	if a.Logger != nil {
		a.Logger.Printf("%.10f, %s, %v", a.CurrentTime(), a.Name(), m)
	}
}

// Phase returns the current phase.
func (a *Agent) Phase() Phase {
	return a.phase
}

// Done returns true once every address has been read back.
func (a *Agent) Done() bool {
	return a.phase == PhaseDone
}

// Passed returns true if the sweep is done and every read matched.
func (a *Agent) Passed() bool {
	return a.Done() && len(a.Mismatches) == 0
}

// AverageLatency returns the mean number of cycles from presenting a request
// to its acknowledge.
func (a *Agent) AverageLatency() float64 {
	if a.Completed == 0 {
		return 0
	}

	return float64(a.TotalLatency) / float64(a.Completed)
}

// Status summarizes the progress for monitoring.
type Status struct {
	Phase      string  `json:"phase"`
	Address    uint32  `json:"address"`
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Mismatches int     `json:"mismatches"`
	MaxLatency int     `json:"max_latency"`
	AvgLatency float64 `json:"avg_latency"`
}

// Status returns the current Status.
func (a *Agent) Status() any {
	return Status{
		Phase:      a.phase.String(),
		Address:    a.address(),
		Completed:  a.Completed,
		Total:      2 * int(a.Count),
		Mismatches: len(a.Mismatches),
		MaxLatency: a.MaxLatency,
		AvgLatency: a.AverageLatency(),
	}
}
