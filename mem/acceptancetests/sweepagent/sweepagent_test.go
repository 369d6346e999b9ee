package sweepagent

import (
	"bytes"
	"log"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sdramctrl/mem/sdram"
	"github.com/sarchlab/sdramctrl/mem/sdram/device"
	"github.com/sarchlab/sdramctrl/mem/sdram/signal"
	"github.com/sarchlab/sdramctrl/sim"
)

// corruptingDevice flips the lowest bit of every beat it drives.
type corruptingDevice struct {
	*device.Device
}

func (d corruptingDevice) Edge(p signal.Pins) signal.DQ {
	dq := d.Device.Edge(p)
	if dq.Driven {
		dq.Value ^= 1
	}

	return dq
}

func testSpec() sdram.Spec {
	s := sdram.Defaults()
	s.PowerUp = 10
	s.RefreshInterval = 100

	return s
}

func deviceFor(s sdram.Spec) *device.Device {
	g := s.Geometry
	if s.BurstLength == 2 {
		g.ColBits++
	}

	t := device.DefaultTiming()
	t.PowerUp = s.PowerUp
	t.MaxRefreshGap = s.MaxRefreshGap()

	return device.MakeBuilder().WithGeometry(g).WithTiming(t).Build("Device")
}

var _ = Describe("Agent", func() {
	var (
		engine *sim.SerialEngine
		spec   sdram.Spec
		dev    *device.Device
		ctrl   *sdram.Comp
	)

	build := func(d sdram.Device) {
		ctrl = sdram.MakeBuilder().
			WithEngine(engine).
			WithSpec(spec).
			WithDevice(d).
			Build("Ctrl")
	}

	runUntilDone := func(agent *Agent) {
		ctrl.Start()
		agent.TickNow()

		chunk := spec.Freq.Period() * 1000
		for i := 0; i < 1000 && !agent.Done(); i++ {
			Expect(engine.RunUntil(engine.CurrentTime() + chunk)).To(Succeed())
		}

		Expect(agent.Done()).To(BeTrue())
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		spec = testSpec()
		dev = deviceFor(spec)
	})

	It("should pass a full sweep across refreshes", func() {
		build(dev)
		agent := MakeBuilder().
			WithEngine(engine).
			WithController(ctrl).
			WithRange(0, 256).
			Build("Agent")

		runUntilDone(agent)

		Expect(agent.Passed()).To(BeTrue())
		Expect(agent.Completed).To(Equal(512))
		Expect(agent.ReadyAtCycles).To(Equal(spec.ReadyLatency()))
		Expect(agent.MaxLatency).To(
			BeNumerically("<=", spec.MaxCompletionLatency()))
		Expect(agent.AverageLatency()).To(BeNumerically(">=", 4))
		Expect(dev.RefreshCount()).To(BeNumerically(">", 0))
		Expect(dev.Violations()).To(BeEmpty())
	})

	It("should write the pattern the device stores", func() {
		build(dev)
		agent := MakeBuilder().
			WithEngine(engine).
			WithController(ctrl).
			WithRange(1, 2).
			Build("Agent")

		runUntilDone(agent)

		Expect(agent.Passed()).To(BeTrue())
		Expect(dev.Peek(signal.Location{Col: 2})).To(Equal(uint16(0x5678)))
		Expect(dev.Peek(signal.Location{Col: 4})).To(Equal(uint16(0x5679)))
	})

	It("should report every corrupted read", func() {
		build(corruptingDevice{dev})
		agent := MakeBuilder().
			WithEngine(engine).
			WithController(ctrl).
			WithRange(0, 8).
			Build("Agent")

		runUntilDone(agent)

		Expect(agent.Passed()).To(BeFalse())
		Expect(agent.Mismatches).To(HaveLen(8))
		Expect(agent.Mismatches[0]).To(Equal(Mismatch{
			Address:  0,
			Expected: DefaultPatternBase,
			Got:      0x00015676,
		}))
		Expect(agent.Mismatches[0].Error()).To(
			Equal("address 0x000000: expected 0x00005677, got 0x00015676"))
	})

	It("should log requests and mismatches when given a logger", func() {
		buf := new(bytes.Buffer)

		build(corruptingDevice{dev})
		agent := MakeBuilder().
			WithEngine(engine).
			WithController(ctrl).
			WithRange(0, 2).
			WithLogger(log.New(buf, "", 0)).
			Build("Agent")

		runUntilDone(agent)

		out := buf.String()
		Expect(out).To(ContainSubstring("Agent, Write, 0x000000"))
		Expect(out).To(ContainSubstring("Agent, Read, 0x000001"))
		Expect(out).To(ContainSubstring(
			"address 0x000001: expected 0x00005678, got 0x00015679"))
		Expect(strings.Count(out, "\n")).To(Equal(6))
	})

	It("should compare single beat words on 16 bits", func() {
		spec.BurstLength = 1
		dev = deviceFor(spec)
		build(dev)

		agent := MakeBuilder().
			WithEngine(engine).
			WithController(ctrl).
			WithRange(0x100, 64).
			WithPattern(func(addr uint32) uint32 { return addr<<16 | addr }).
			Build("Agent")

		runUntilDone(agent)

		Expect(agent.DataMask).To(Equal(uint32(0xFFFF)))
		Expect(agent.Passed()).To(BeTrue())
		Expect(dev.Violations()).To(BeEmpty())
	})

	It("should finish right away with an empty range", func() {
		build(dev)
		agent := MakeBuilder().
			WithEngine(engine).
			WithController(ctrl).
			WithRange(0, 0).
			Build("Agent")

		runUntilDone(agent)

		Expect(agent.Passed()).To(BeTrue())
		Expect(agent.Completed).To(Equal(0))
		Expect(agent.Phase()).To(Equal(PhaseDone))
	})

	It("should refuse to build without a bus", func() {
		Expect(func() { MakeBuilder().Build("Agent") }).To(Panic())
	})
})
