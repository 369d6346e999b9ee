package sweepagent

import (
	"log"

	"github.com/sarchlab/sdramctrl/mem/sdram"
	"github.com/sarchlab/sdramctrl/sim"
)

// DefaultPatternBase is added to the address to form the written data.
const DefaultPatternBase = 0x5677

// Builder can build sweep agents.
type Builder struct {
	engine   sim.Engine
	freq     sim.Freq
	bus      *sdram.Bus
	first    uint32
	count    uint32
	dataMask uint32
	pattern  func(addr uint32) uint32
	logger   *log.Logger
}

// MakeBuilder creates a builder that sweeps the first 1024 words with 32-bit
// data.
func MakeBuilder() Builder {
	return Builder{
		freq:     100 * sim.MHz,
		count:    1024,
		dataMask: 0xFFFFFFFF,
		pattern: func(addr uint32) uint32 {
			return DefaultPatternBase + addr
		},
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency. It must be the controller frequency.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithBus sets the bus to drive.
func (b Builder) WithBus(bus *sdram.Bus) Builder {
	b.bus = bus
	return b
}

// WithController connects the agent to a controller, taking its bus, its
// frequency and its word width.
func (b Builder) WithController(c *sdram.Comp) Builder {
	b.bus = c.Bus()
	b.freq = c.Spec.Freq

	if c.Spec.BurstLength == 1 {
		b.dataMask = 0xFFFF
	} else {
		b.dataMask = 0xFFFFFFFF
	}

	return b
}

// WithRange sets the addresses to sweep.
func (b Builder) WithRange(first, count uint32) Builder {
	b.first = first
	b.count = count

	return b
}

// WithDataMask sets the bits of a word that are compared.
func (b Builder) WithDataMask(mask uint32) Builder {
	b.dataMask = mask
	return b
}

// WithPattern sets the data written to each address.
func (b Builder) WithPattern(pattern func(addr uint32) uint32) Builder {
	b.pattern = pattern
	return b
}

// WithLogger makes the agent log every request it presents and every
// mismatch it finds.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// Build creates an agent.
func (b Builder) Build(name string) *Agent {
	if b.bus == nil {
		panic("sweep agent needs a bus")
	}

	a := &Agent{
		Bus:      b.bus,
		First:    b.first,
		Count:    b.count,
		DataMask: b.dataMask,
		Pattern:  b.pattern,
		Logger:   b.logger,
	}
	a.TickingComponent = sim.NewSecondaryTickingComponent(
		name, b.engine, b.freq, a)

	return a
}
