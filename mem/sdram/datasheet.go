package sdram

import (
	"fmt"

	"github.com/sarchlab/sdramctrl/mem/sdram/signal"
	"github.com/sarchlab/sdramctrl/sim"
)

// Datasheet holds the timing of an SDRAM part in nanoseconds, as printed in
// its datasheet.
type Datasheet struct {
	Geometry signal.Geometry

	CASLatency  int
	BurstLength int

	PowerUpNs         float64
	RefreshPeriodNs   float64 // tREF, for all rows
	RefreshCommands   int     // refresh commands per tREF, usually the row count
	RASToCASNs        float64
	PrechargeNs       float64
	RowCycleNs        float64
	ModeRegisterTicks int // tMRD is given in clock cycles
}

// MT48LC16M16A2 returns the datasheet of a common 256 Mbit x16 part (-75
// speed grade).
func MT48LC16M16A2() Datasheet {
	return Datasheet{
		Geometry: signal.Geometry{
			BankBits: 2,
			RowBits:  13,
			ColBits:  8,
		},
		CASLatency:        3,
		BurstLength:       2,
		PowerUpNs:         200000,
		RefreshPeriodNs:   64e6,
		RefreshCommands:   8192,
		RASToCASNs:        20,
		PrechargeNs:       20,
		RowCycleNs:        66,
		ModeRegisterTicks: 2,
	}
}

// FromDatasheet converts a datasheet into a Spec for a controller running at
// the given frequency. Minimum delays are rounded up. The refresh interval is
// rounded down.
func FromDatasheet(d Datasheet, freq sim.Freq) (Spec, error) {
	if freq <= 0 {
		return Spec{}, fmt.Errorf("freq must be > 0")
	}

	if d.RefreshCommands <= 0 {
		return Spec{}, fmt.Errorf("%w: refresh commands must be > 0",
			ErrInvalidTiming)
	}

	refreshNs := d.RefreshPeriodNs / float64(d.RefreshCommands)
	refreshTicks := int(refreshNs * 1e-9 * float64(freq))

	s := Spec{
		Freq:            freq,
		Geometry:        d.Geometry,
		CASLatency:      d.CASLatency,
		BurstLength:     d.BurstLength,
		PowerUp:         freq.NanosecondsToCycles(d.PowerUpNs),
		RefreshInterval: refreshTicks,
		RASToCAS:        freq.NanosecondsToCycles(d.RASToCASNs),
		Precharge:       freq.NanosecondsToCycles(d.PrechargeNs),
		RowCycle:        freq.NanosecondsToCycles(d.RowCycleNs),
		ModeRegister:    d.ModeRegisterTicks,
	}

	if err := s.Validate(); err != nil {
		return Spec{}, fmt.Errorf("datasheet does not fit %.0f MHz: %w",
			float64(freq/sim.MHz), err)
	}

	return s, nil
}
