package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should get period", func() {
		var f = 1 * GHz
		Expect(f.Period()).To(BeNumerically("==", 1e-9))
	})

	It("should get this tick", func() {
		var f = 1 * Hz
		Expect(f.ThisTick(1)).To(BeNumerically("~", 1, 1e-12))
	})

	It("should get the next tick", func() {
		var f = 1 * GHz
		Expect(f.NextTick(102.000000001)).
			To(BeNumerically("~", 102.000000002, 1e-12))
	})

	It("should get the next tick, if currTime is not on a tick", func() {
		var f = 1 * GHz
		Expect(f.NextTick(102.0000000011)).
			To(BeNumerically("~", 102.000000002, 1e-12))
	})

	It("should get the n cycles later", func() {
		var f = 1 * GHz
		Expect(f.NCyclesLater(12, 102.000000001)).
			To(BeNumerically("~", 102.000000013, 1e-12))
	})

	It("should count cycles", func() {
		var f = 100 * MHz
		Expect(f.Cycle(f.NCyclesLater(37, 0))).To(Equal(uint64(37)))
	})

	It("should convert nanoseconds to cycles", func() {
		var f = 100 * MHz
		Expect(f.NanosecondsToCycles(20)).To(Equal(2))
		Expect(f.NanosecondsToCycles(21)).To(Equal(3))
		Expect(f.NanosecondsToCycles(63)).To(Equal(7))
		Expect(f.NanosecondsToCycles(0)).To(Equal(0))
	})

	It("should round partial cycles up", func() {
		var f = 133 * MHz
		Expect(f.NanosecondsToCycles(15)).To(Equal(2))
	})
})
