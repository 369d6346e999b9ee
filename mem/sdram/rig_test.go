package sdram

import (
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sdramctrl/mem/sdram/device"
	"github.com/sarchlab/sdramctrl/mem/sdram/signal"
	"github.com/sarchlab/sdramctrl/sim"
)

func testSpec() Spec {
	s := Defaults()
	s.PowerUp = 10
	s.RefreshInterval = 100

	return s
}

func deviceFor(s Spec) *device.Device {
	g := s.Geometry
	g.ColBits += s.burstBits()

	return device.MakeBuilder().
		WithGeometry(g).
		WithTiming(device.Timing{
			PowerUp:       s.PowerUp,
			RASToCAS:      s.RASToCAS,
			Precharge:     s.Precharge,
			RowCycle:      s.RowCycle,
			RefreshCycle:  s.RowCycle,
			ModeRegister:  s.ModeRegister,
			WriteRecovery: 2,
			RASMin:        5,
			MaxRefreshGap: s.MaxRefreshGap(),
		}).
		Build("Device")
}

// recorder keeps everything the controller publishes.
type recorder struct {
	commands    []CommandRecord
	transitions []Transition
}

func (r *recorder) Func(ctx sim.HookCtx) {
	switch item := ctx.Item.(type) {
	case CommandRecord:
		r.commands = append(r.commands, item)
	case Transition:
		r.transitions = append(r.transitions, item)
	}
}

func (r *recorder) commandsOf(cmd signal.Command) []CommandRecord {
	out := []CommandRecord{}

	for _, c := range r.commands {
		if c.Command == cmd {
			out = append(out, c)
		}
	}

	return out
}

// rig connects a controller to a device model and plays the bus client.
type rig struct {
	spec Spec
	ctrl *Comp
	dev  *device.Device
	rec  *recorder

	acks      int
	everReady bool
	readyLost bool
}

func newRig(s Spec) *rig {
	return newRigWith(s, MakeBuilder())
}

func newRigWith(s Spec, b Builder) *rig {
	r := &rig{
		spec: s,
		dev:  deviceFor(s),
		rec:  &recorder{},
	}

	r.ctrl = b.
		WithSpec(s).
		WithDevice(r.dev).
		Build("Ctrl")
	r.ctrl.AcceptHook(r.rec)

	return r
}

func (r *rig) tick() {
	r.ctrl.Tick()

	resp := r.ctrl.Bus().Response
	if resp.Ack {
		r.acks++
	}

	if resp.Ready {
		r.everReady = true
	} else if r.everReady {
		r.readyLost = true
	}
}

func (r *rig) run(n int) {
	for i := 0; i < n; i++ {
		r.tick()
	}
}

func (r *rig) waitReady() int {
	for i := 1; i <= r.spec.ReadyLatency()+1; i++ {
		r.tick()

		if r.ctrl.Bus().Response.Ready {
			return i
		}
	}

	Expect(r.ctrl.Bus().Response.Ready).To(BeTrue(), "controller never ready")

	return 0
}

// access presents one request and holds it until the acknowledge. It returns
// the read data and the number of ticks from presenting to acknowledge.
func (r *rig) access(addr, data uint32, write bool) (uint32, int) {
	bus := r.ctrl.Bus()
	bus.Request = BusRequest{
		Address:     addr,
		WriteData:   data,
		WriteEnable: write,
		Valid:       true,
		BusActive:   true,
	}

	limit := r.spec.MaxCompletionLatency() + 1
	for i := 1; i <= limit; i++ {
		r.tick()

		if bus.Response.Ack {
			bus.Request = BusRequest{}
			return bus.Response.ReadData, i
		}
	}

	Expect(bus.Response.Ack).To(BeTrue(), "request 0x%06X never acknowledged", addr)

	return 0, 0
}

func (r *rig) write(addr, data uint32) int {
	_, latency := r.access(addr, data, true)
	return latency
}

func (r *rig) read(addr uint32) (uint32, int) {
	return r.access(addr, 0, false)
}
