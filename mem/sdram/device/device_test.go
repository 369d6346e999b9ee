package device

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sdramctrl/mem/sdram/signal"
)

func cmdPins(cmd signal.Command, bankID uint8, addr uint16) signal.Pins {
	p := signal.IdlePins().WithCommand(cmd)
	p.Bank = bankID
	p.Addr = addr

	return p
}

func nop() signal.Pins {
	return signal.IdlePins()
}

func kinds(vs []Violation) []ViolationKind {
	out := []ViolationKind{}
	for _, v := range vs {
		out = append(out, v.Kind)
	}

	return out
}

var _ = Describe("Device", func() {
	var d *Device

	idle := func(n int) {
		for i := 0; i < n; i++ {
			d.Edge(nop())
		}
	}

	initialize := func() {
		d.Edge(cmdPins(signal.CmdPrecharge, 0, signal.PrechargeAll))
		idle(2)
		d.Edge(cmdPins(signal.CmdLoadModeRegister, 0, 0x31))
		idle(2)
	}

	BeforeEach(func() {
		d = MakeBuilder().WithPowerUpCycles(10).Build("Device")
	})

	It("should flag commands before power-up", func() {
		idle(5)
		d.Edge(cmdPins(signal.CmdPrecharge, 0, signal.PrechargeAll))

		Expect(kinds(d.Violations())).To(Equal([]ViolationKind{ViolationPowerUp}))
	})

	It("should flag activate before initialization", func() {
		idle(10)
		d.Edge(cmdPins(signal.CmdActivate, 0, 1))

		Expect(kinds(d.Violations())).
			To(ContainElement(ViolationUninitialized))
	})

	It("should program the mode register", func() {
		idle(10)
		initialize()

		Expect(d.Initialized()).To(BeTrue())
		Expect(d.CASLatency()).To(Equal(3))
		Expect(d.BurstLength()).To(Equal(2))
		Expect(d.Violations()).To(BeEmpty())
	})

	Context("when initialized", func() {
		BeforeEach(func() {
			idle(10)
			initialize()
		})

		It("should write and read back a burst", func() {
			d.Edge(cmdPins(signal.CmdActivate, 1, 5))
			d.Edge(nop())

			w := cmdPins(signal.CmdWrite, 1, 6|signal.AutoPrecharge)
			w.DQOE = true
			w.DQ = 0x5678
			d.Edge(w)

			second := nop()
			second.DQOE = true
			second.DQ = 0x1234
			d.Edge(second)

			idle(10)

			d.Edge(cmdPins(signal.CmdActivate, 1, 5))
			d.Edge(nop())

			outs := []signal.DQ{
				d.Edge(cmdPins(signal.CmdRead, 1, 6|signal.AutoPrecharge)),
			}
			for i := 0; i < 4; i++ {
				outs = append(outs, d.Edge(nop()))
			}

			Expect(outs).To(Equal([]signal.DQ{
				signal.Released,
				signal.Released,
				{Value: 0x5678, Driven: true},
				{Value: 0x1234, Driven: true},
				signal.Released,
			}))
			Expect(d.Violations()).To(BeEmpty())

			v, err := d.Peek(signal.Location{Bank: 1, Row: 5, Col: 7})
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(uint16(0x1234)))
		})

		It("should flag tRCD", func() {
			d.Edge(cmdPins(signal.CmdActivate, 0, 5))
			d.Edge(cmdPins(signal.CmdRead, 0, 0))

			Expect(kinds(d.Violations())).
				To(Equal([]ViolationKind{ViolationRASToCAS}))
		})

		It("should flag access to a closed row", func() {
			d.Edge(cmdPins(signal.CmdRead, 2, 0))

			Expect(kinds(d.Violations())).
				To(Equal([]ViolationKind{ViolationClosedRow}))
		})

		It("should flag activate of an open bank", func() {
			d.Edge(cmdPins(signal.CmdActivate, 0, 5))
			idle(10)
			d.Edge(cmdPins(signal.CmdActivate, 0, 6))

			Expect(kinds(d.Violations())).
				To(Equal([]ViolationKind{ViolationBankNotIdle}))
		})

		It("should flag activate during auto-precharge", func() {
			d.Edge(cmdPins(signal.CmdActivate, 0, 5))
			idle(1)
			d.Edge(cmdPins(signal.CmdRead, 0, signal.AutoPrecharge))
			idle(2)
			d.Edge(cmdPins(signal.CmdActivate, 0, 5))

			Expect(kinds(d.Violations())).
				To(ContainElements(ViolationBankNotIdle, ViolationRowCycle))
		})

		It("should flag refresh with an open bank", func() {
			d.Edge(cmdPins(signal.CmdActivate, 3, 5))
			idle(10)
			d.Edge(cmdPins(signal.CmdRefresh, 0, 0))

			Expect(kinds(d.Violations())).
				To(Equal([]ViolationKind{ViolationRefreshOpenBank}))
		})

		It("should flag tRFC", func() {
			d.Edge(cmdPins(signal.CmdRefresh, 0, 0))
			idle(2)
			d.Edge(cmdPins(signal.CmdActivate, 0, 1))

			Expect(kinds(d.Violations())).
				To(Equal([]ViolationKind{ViolationRefreshCycle}))
		})

		It("should flag bus contention", func() {
			d.Edge(cmdPins(signal.CmdActivate, 0, 5))
			idle(1)
			d.Edge(cmdPins(signal.CmdRead, 0, 0))
			d.Edge(nop())

			p := nop()
			p.DQOE = true
			d.Edge(p)

			Expect(kinds(d.Violations())).
				To(Equal([]ViolationKind{ViolationBusContention}))
		})

		It("should track refresh gaps", func() {
			d = MakeBuilder().
				WithPowerUpCycles(0).
				WithMaxRefreshGap(20).
				Build("Device")
			initialize()

			d.Edge(cmdPins(signal.CmdRefresh, 0, 0))
			idle(14)
			d.Edge(cmdPins(signal.CmdRefresh, 0, 0))
			idle(24)
			d.Edge(cmdPins(signal.CmdRefresh, 0, 0))

			Expect(d.RefreshCount()).To(Equal(uint64(3)))
			Expect(d.MaxRefreshGap()).To(Equal(25))
			Expect(kinds(d.Violations())).
				To(Equal([]ViolationKind{ViolationRefreshGap}))
		})
	})

	It("should log violations", func() {
		buf := new(bytes.Buffer)
		d.AcceptHook(NewViolationLogger(log.New(buf, "", 0)))

		d.Edge(cmdPins(signal.CmdRefresh, 0, 0))

		Expect(buf.String()).To(ContainSubstring("Device: cycle 1"))
		Expect(buf.String()).To(ContainSubstring("command before power-up"))
	})
})
