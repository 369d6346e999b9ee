package sdram

import (
	"log"

	"github.com/sarchlab/sdramctrl/sim"
)

// Builder constructs a Comp from a Spec.
type Builder struct {
	engine sim.Engine
	spec   Spec
	device Device
	bus    *Bus
	ids    sim.IDGenerator
}

// MakeBuilder returns a new Builder with the default Spec.
func MakeBuilder() Builder {
	return Builder{spec: Defaults()}
}

// WithEngine sets the engine that drives the controller.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithSpec replaces the whole Spec.
func (b Builder) WithSpec(spec Spec) Builder {
	b.spec = spec
	return b
}

// WithFreq sets the controller clock.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.spec.Freq = freq
	return b
}

// WithCASLatency sets the CAS latency.
func (b Builder) WithCASLatency(cl int) Builder {
	b.spec.CASLatency = cl
	return b
}

// WithBurstLength sets the number of beats per word.
func (b Builder) WithBurstLength(bl int) Builder {
	b.spec.BurstLength = bl
	return b
}

// WithPowerUpCycles sets the power-up wait.
func (b Builder) WithPowerUpCycles(n int) Builder {
	b.spec.PowerUp = n
	return b
}

// WithRefreshInterval sets the refresh interval.
func (b Builder) WithRefreshInterval(n int) Builder {
	b.spec.RefreshInterval = n
	return b
}

// WithDevice connects the pins to a device.
func (b Builder) WithDevice(device Device) Builder {
	b.device = device
	return b
}

// WithBus uses an existing client interface instead of creating one.
func (b Builder) WithBus(bus *Bus) Builder {
	b.bus = bus
	return b
}

// WithIDGenerator sets the generator of request task IDs. The process-wide
// generator is used by default.
func (b Builder) WithIDGenerator(ids sim.IDGenerator) Builder {
	b.ids = ids
	return b
}

// Build creates the controller. It panics if the Spec is invalid.
func (b Builder) Build(name string) *Comp {
	if err := b.spec.Validate(); err != nil {
		log.Panicf("invalid SDRAM controller spec: %v", err)
	}

	c := &Comp{
		Spec:   b.spec,
		device: b.device,
		bus:    b.bus,
		ids:    b.ids,
		locked: true,
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.spec.Freq, c)

	if c.bus == nil {
		c.bus = &Bus{}
	}

	if c.ids == nil {
		c.ids = sim.GetIDGenerator()
	}

	c.AddMiddleware(&initMiddleware{Comp: c})
	c.AddMiddleware(&arbiterMiddleware{Comp: c})
	c.AddMiddleware(&latchMiddleware{Comp: c})
	c.AddMiddleware(&timerMiddleware{Comp: c})
	c.AddMiddleware(&outputMiddleware{Comp: c})

	c.state = initialState()
	c.next = c.state

	return c
}
