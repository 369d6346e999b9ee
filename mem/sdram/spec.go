package sdram

import (
	"errors"
	"fmt"

	"github.com/sarchlab/sdramctrl/mem/sdram/signal"
	"github.com/sarchlab/sdramctrl/sim"
)

// InitPrecharges is the number of precharge-all commands of the
// initialization sequence.
const InitPrecharges = 8

// Errors returned by the controller.
var (
	ErrInvalidBurstLength = errors.New("burst length must be 1 or 2")
	ErrInvalidCASLatency  = errors.New("CAS latency must be 2 or 3")
	ErrInvalidTiming      = errors.New("invalid timing parameter")
	ErrInvalidSnapshot    = errors.New("snapshot is not a controller state")
)

// Spec holds the immutable configuration of a controller. All durations are
// in controller clock ticks.
type Spec struct {
	Freq     sim.Freq
	Geometry signal.Geometry

	CASLatency  int
	BurstLength int

	PowerUp         int // power-up wait
	RefreshInterval int // average refresh interval, tREFI
	RASToCAS        int // tRCD
	Precharge       int // tRP
	RowCycle        int // tRC, also used as tRFC
	ModeRegister    int // tMRD
}

// Defaults returns the Spec of a 4 bank, 8192 row, x16 SDR SDRAM clocked at
// 100 MHz. A word is two 16-bit beats.
func Defaults() Spec {
	return Spec{
		Freq: 100 * sim.MHz,
		Geometry: signal.Geometry{
			BankBits: 2,
			RowBits:  13,
			ColBits:  8,
		},
		CASLatency:      3,
		BurstLength:     2,
		PowerUp:         20000,
		RefreshInterval: 780,
		RASToCAS:        2,
		Precharge:       2,
		RowCycle:        7,
		ModeRegister:    2,
	}
}

// Validate checks that the Spec describes a controller that can be built.
func (s Spec) Validate() error {
	if s.Freq <= 0 {
		return fmt.Errorf("freq must be > 0")
	}

	if s.BurstLength != 1 && s.BurstLength != 2 {
		return fmt.Errorf("%w, got %d", ErrInvalidBurstLength, s.BurstLength)
	}

	if s.CASLatency != 2 && s.CASLatency != 3 {
		return fmt.Errorf("%w, got %d", ErrInvalidCASLatency, s.CASLatency)
	}

	if err := s.Geometry.Validate(); err != nil {
		return err
	}

	if s.Geometry.ColBits+s.burstBits() > 10 {
		return fmt.Errorf("column bits %d do not fit below the auto-precharge bit",
			s.Geometry.ColBits)
	}

	timings := []struct {
		name  string
		value int
		min   int
	}{
		{"power-up", s.PowerUp, 0},
		{"refresh interval", s.RefreshInterval, 1},
		{"RAS-to-CAS", s.RASToCAS, 1},
		{"precharge", s.Precharge, 1},
		{"row cycle", s.RowCycle, 1},
		{"mode register", s.ModeRegister, 1},
	}

	for _, t := range timings {
		if t.value < t.min {
			return fmt.Errorf("%w: %s must be >= %d, got %d",
				ErrInvalidTiming, t.name, t.min, t.value)
		}
	}

	if s.RefreshInterval <= s.WorstCaseAccessCycles()+s.RefreshCycles() {
		return fmt.Errorf(
			"%w: refresh interval %d leaves no room for an access",
			ErrInvalidTiming, s.RefreshInterval)
	}

	return nil
}

func (s Spec) burstBits() int {
	if s.BurstLength == 2 {
		return 1
	}

	return 0
}

// ModeRegisterValue returns the value programmed into the mode register:
// sequential bursts, CAS latency in A6..A4, burst length code in A2..A0.
func (s Spec) ModeRegisterValue() uint16 {
	return uint16(s.CASLatency)<<4 | uint16(s.burstBits())
}

// ColumnAddress returns the device column of the first beat of a word.
func (s Spec) ColumnAddress(col uint16) uint16 {
	return col << uint(s.burstBits())
}

// ReadyLatency returns the number of ticks after reset release until the
// controller reports ready.
func (s Spec) ReadyLatency() int {
	return 4 + s.PowerUp + InitPrecharges*(s.Precharge+1) + s.ModeRegister
}

func (s Spec) columnDelay() int {
	return max(s.RASToCAS, 2)
}

// WorstCaseAccessCycles returns the longest time the arbiter can spend
// between leaving Idle for an access and being able to decide again.
func (s Spec) WorstCaseAccessCycles() int {
	readPath := s.columnDelay() + 8 + s.burstBits()

	return max(readPath, s.RowCycle+2)
}

// RefreshCycles returns the time the arbiter spends on one refresh.
func (s Spec) RefreshCycles() int {
	return s.RowCycle + 2
}

// MaxRefreshGap returns the bound on the number of ticks between two
// consecutive refresh commands.
func (s Spec) MaxRefreshGap() int {
	return s.RefreshInterval + s.WorstCaseAccessCycles()
}

// MaxCompletionLatency returns the bound on the number of ticks from a
// request being presented on the bus to its acknowledge, once the controller
// is ready.
func (s Spec) MaxCompletionLatency() int {
	const latchAndDecide = 2

	ackDelay := s.columnDelay() + 4

	return latchAndDecide + s.WorstCaseAccessCycles() + s.RefreshCycles() +
		ackDelay
}
