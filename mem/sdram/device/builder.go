package device

import (
	"log"

	"github.com/sarchlab/sdramctrl/mem/sdram/signal"
	"github.com/sarchlab/sdramctrl/sim"
)

// DefaultTiming returns the timing of a -75 part at 100 MHz.
func DefaultTiming() Timing {
	return Timing{
		PowerUp:       20000,
		RASToCAS:      2,
		Precharge:     2,
		RowCycle:      7,
		RefreshCycle:  7,
		ModeRegister:  2,
		WriteRecovery: 2,
		RASMin:        5,
	}
}

// Builder can build devices.
type Builder struct {
	geometry signal.Geometry
	timing   Timing
}

// MakeBuilder creates a builder for a 4 bank, 8192 row, 512 column x16
// device.
func MakeBuilder() Builder {
	return Builder{
		geometry: signal.Geometry{BankBits: 2, RowBits: 13, ColBits: 9},
		timing:   DefaultTiming(),
	}
}

// WithGeometry sets the number of banks, rows and columns.
func (b Builder) WithGeometry(g signal.Geometry) Builder {
	b.geometry = g
	return b
}

// WithTiming sets the timing to check against.
func (b Builder) WithTiming(t Timing) Builder {
	b.timing = t
	return b
}

// WithPowerUpCycles sets the power-up time.
func (b Builder) WithPowerUpCycles(n int) Builder {
	b.timing.PowerUp = n
	return b
}

// WithMaxRefreshGap enables the refresh gap check.
func (b Builder) WithMaxRefreshGap(n int) Builder {
	b.timing.MaxRefreshGap = n
	return b
}

// Build creates a powered-down device.
func (b Builder) Build(name string) *Device {
	if err := b.geometry.Validate(); err != nil {
		log.Panicf("invalid SDRAM device geometry: %v", err)
	}

	d := &Device{
		HookableBase: sim.NewHookableBase(),
		name:         name,
		geometry:     b.geometry,
		timing:       b.timing,
		cells:        newStorage(b.geometry),
		lastMRS:      never,
		lastRefresh:  never,
		burstLen:     1,
		banks:        make([]bank, 1<<uint(b.geometry.BankBits)),
	}

	for i := range d.banks {
		d.banks[i].activatedAt = never
	}

	return d
}
