// Package device provides a behavioural model of an SDR SDRAM chip that
// checks the commands it receives against its timing.
package device

import (
	"fmt"

	"github.com/sarchlab/sdramctrl/mem/sdram/signal"
	"github.com/sarchlab/sdramctrl/sim"
)

const never = int64(-1) << 40

// Timing holds the minimum delays of the device in clock cycles.
type Timing struct {
	PowerUp       int
	RASToCAS      int // tRCD
	Precharge     int // tRP
	RowCycle      int // tRC
	RefreshCycle  int // tRFC
	ModeRegister  int // tMRD
	WriteRecovery int // tWR
	RASMin        int // tRAS

	// MaxRefreshGap is the longest allowed time between two refreshes once
	// the first refresh has happened. Zero disables the check.
	MaxRefreshGap int
}

type bank struct {
	open        bool
	row         uint16
	activatedAt int64
	idleAt      int64
}

type beat struct {
	edge  int64
	loc   signal.Location
	value uint16
}

// Device is an SDRAM chip. It is clocked by the controller through Edge.
type Device struct {
	*sim.HookableBase

	name     string
	geometry signal.Geometry
	timing   Timing
	cells    *storage

	cycle      int64
	modeLoaded bool
	casLatency int
	burstLen   int
	lastMRS    int64
	banks      []bank

	lastRefresh   int64
	refreshCount  uint64
	maxRefreshGap int64

	reads  []beat
	writes []beat

	violations []Violation
}

// Name returns the name of the device.
func (d *Device) Name() string {
	return d.name
}

// Edge clocks the device once.
func (d *Device) Edge(p signal.Pins) signal.DQ {
	d.cycle++
	e := d.cycle

	cmd := signal.CmdNOP
	if p.CKE {
		cmd = p.Command()
	}

	d.execute(e, cmd, p)
	d.captureWriteData(e, p)

	out := d.drive(e)
	if out.Driven && p.DQOE {
		d.violate(ViolationBusContention, cmd, p.Bank,
			"controller and device both drive DQ")
	}

	return out
}

func (d *Device) execute(e int64, cmd signal.Command, p signal.Pins) {
	if cmd == signal.CmdNOP || cmd == signal.CmdDeselect {
		return
	}

	if e <= int64(d.timing.PowerUp) {
		d.violate(ViolationPowerUp, cmd, p.Bank,
			fmt.Sprintf("%d of %d cycles elapsed", e-1, d.timing.PowerUp))
	}

	if cmd != signal.CmdLoadModeRegister &&
		e-d.lastMRS < int64(d.timing.ModeRegister) {
		d.violate(ViolationModeRegister, cmd, p.Bank, "")
	}

	switch cmd {
	case signal.CmdPrecharge:
		d.precharge(e, p)
	case signal.CmdRefresh:
		d.refresh(e, cmd)
	case signal.CmdActivate:
		d.activate(e, cmd, p)
	case signal.CmdRead, signal.CmdWrite:
		d.access(e, cmd, p)
	case signal.CmdLoadModeRegister:
		d.loadModeRegister(e, cmd, p)
	}
}

func (d *Device) precharge(e int64, p signal.Pins) {
	for i := range d.banks {
		if p.Addr&signal.PrechargeAll == 0 && i != int(p.Bank) {
			continue
		}

		b := &d.banks[i]
		if !b.open {
			continue
		}

		if e-b.activatedAt < int64(d.timing.RASMin) {
			d.violate(ViolationRASTime, signal.CmdPrecharge, uint8(i), "")
		}

		b.open = false
		b.idleAt = e + int64(d.timing.Precharge)
	}
}

func (d *Device) refresh(e int64, cmd signal.Command) {
	if !d.modeLoaded {
		d.violate(ViolationUninitialized, cmd, 0, "")
	}

	for i, b := range d.banks {
		if b.open || e < b.idleAt {
			d.violate(ViolationRefreshOpenBank, cmd, uint8(i), "")
		}
	}

	if e-d.lastRefresh < int64(d.timing.RefreshCycle) {
		d.violate(ViolationRefreshCycle, cmd, 0, "")
	}

	if d.lastRefresh != never {
		gap := e - d.lastRefresh
		if gap > d.maxRefreshGap {
			d.maxRefreshGap = gap
		}

		if d.timing.MaxRefreshGap > 0 && gap > int64(d.timing.MaxRefreshGap) {
			d.violate(ViolationRefreshGap, cmd, 0,
				fmt.Sprintf("%d cycles since the last refresh", gap))
		}
	}

	d.lastRefresh = e
	d.refreshCount++
}

func (d *Device) activate(e int64, cmd signal.Command, p signal.Pins) {
	if !d.modeLoaded {
		d.violate(ViolationUninitialized, cmd, p.Bank, "")
	}

	if e-d.lastRefresh < int64(d.timing.RefreshCycle) {
		d.violate(ViolationRefreshCycle, cmd, p.Bank, "")
	}

	if int(p.Bank) >= len(d.banks) {
		d.violate(ViolationOutOfRange, cmd, p.Bank, "")
		return
	}

	b := &d.banks[p.Bank]

	if b.open || e < b.idleAt {
		d.violate(ViolationBankNotIdle, cmd, p.Bank, "")
	}

	if e-b.activatedAt < int64(d.timing.RowCycle) {
		d.violate(ViolationRowCycle, cmd, p.Bank,
			fmt.Sprintf("%d cycles since the last activate",
				e-b.activatedAt))
	}

	b.open = true
	b.row = p.Addr
	b.activatedAt = e
}

func (d *Device) access(e int64, cmd signal.Command, p signal.Pins) {
	if int(p.Bank) >= len(d.banks) {
		d.violate(ViolationOutOfRange, cmd, p.Bank, "")
		return
	}

	b := &d.banks[p.Bank]

	if !b.open {
		d.violate(ViolationClosedRow, cmd, p.Bank, "")
		return
	}

	if e-b.activatedAt < int64(d.timing.RASToCAS) {
		d.violate(ViolationRASToCAS, cmd, p.Bank,
			fmt.Sprintf("%d cycles since activate", e-b.activatedAt))
	}

	col := p.Addr &^ signal.AutoPrecharge
	burstEnd := e + int64(d.burstLen)

	for i := 0; i < d.burstLen; i++ {
		loc := signal.Location{Bank: p.Bank, Row: b.row, Col: col + uint16(i)}

		if cmd == signal.CmdWrite {
			d.writes = append(d.writes, beat{edge: e + int64(i), loc: loc})
			continue
		}

		value, err := d.cells.read(loc)
		if err != nil {
			d.violate(ViolationOutOfRange, cmd, p.Bank, err.Error())
		}

		d.reads = append(d.reads, beat{
			edge:  e + int64(d.casLatency-1+i),
			loc:   loc,
			value: value,
		})
	}

	if p.Addr&signal.AutoPrecharge == 0 {
		return
	}

	if cmd == signal.CmdWrite {
		burstEnd = e + int64(d.burstLen-1+d.timing.WriteRecovery)
	}

	start := max(burstEnd, b.activatedAt+int64(d.timing.RASMin))
	b.open = false
	b.idleAt = start + int64(d.timing.Precharge)
}

func (d *Device) loadModeRegister(e int64, cmd signal.Command, p signal.Pins) {
	for i, b := range d.banks {
		if b.open || e < b.idleAt {
			d.violate(ViolationBankNotIdle, cmd, uint8(i), "")
		}
	}

	d.casLatency = int(p.Addr>>4) & 0x7
	d.burstLen = 1 << uint(p.Addr&0x7)
	d.modeLoaded = true
	d.lastMRS = e
}

func (d *Device) captureWriteData(e int64, p signal.Pins) {
	remaining := d.writes[:0]

	for _, w := range d.writes {
		if w.edge != e {
			remaining = append(remaining, w)
			continue
		}

		if !p.DQOE {
			d.violate(ViolationMissingWriteData, signal.CmdWrite, w.loc.Bank,
				"")
			continue
		}

		if err := d.cells.write(w.loc, p.DQ); err != nil {
			d.violate(ViolationOutOfRange, signal.CmdWrite, w.loc.Bank,
				err.Error())
		}
	}

	d.writes = remaining
}

func (d *Device) drive(e int64) signal.DQ {
	out := signal.Released
	remaining := d.reads[:0]

	for _, r := range d.reads {
		switch {
		case r.edge == e:
			out = signal.DQ{Value: r.value, Driven: true}
		case r.edge > e:
			remaining = append(remaining, r)
		}
	}

	d.reads = remaining

	return out
}

func (d *Device) violate(
	kind ViolationKind,
	cmd signal.Command,
	bank uint8,
	detail string,
) {
	v := Violation{
		Cycle:   uint64(d.cycle),
		Kind:    kind,
		Command: cmd,
		Bank:    bank,
		Detail:  detail,
	}

	d.violations = append(d.violations, v)

	d.InvokeHook(sim.HookCtx{
		Domain: d,
		Pos:    HookPosViolation,
		Item:   v,
	})
}

// Violations returns all the violations detected so far.
func (d *Device) Violations() []Violation {
	return d.violations
}

// Cycle returns the number of clock edges seen.
func (d *Device) Cycle() uint64 {
	return uint64(d.cycle)
}

// Initialized returns true once the mode register has been programmed.
func (d *Device) Initialized() bool {
	return d.modeLoaded
}

// CASLatency returns the programmed CAS latency.
func (d *Device) CASLatency() int {
	return d.casLatency
}

// BurstLength returns the programmed burst length.
func (d *Device) BurstLength() int {
	return d.burstLen
}

// RefreshCount returns the number of refresh commands received.
func (d *Device) RefreshCount() uint64 {
	return d.refreshCount
}

// MaxRefreshGap returns the longest time between two refresh commands.
func (d *Device) MaxRefreshGap() int {
	return int(d.maxRefreshGap)
}

// Peek returns the content of a cell without going through the pins.
func (d *Device) Peek(loc signal.Location) (uint16, error) {
	return d.cells.read(loc)
}

// Poke sets the content of a cell without going through the pins.
func (d *Device) Poke(loc signal.Location, value uint16) error {
	return d.cells.write(loc, value)
}
