package sim

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/xid"
)

var _ = Describe("IDGenerator", func() {
	It("should count from one when sequential", func() {
		g := NewSequentialIDGenerator()

		Expect(g.Generate()).To(Equal("1"))
		Expect(g.Generate()).To(Equal("2"))
		Expect(g.Generate()).To(Equal("3"))
	})

	It("should generate unique xids from many goroutines", func() {
		g := NewParallelIDGenerator()

		var lock sync.Mutex
		var wg sync.WaitGroup
		seen := make(map[string]bool)

		for i := 0; i < 8; i++ {
			wg.Add(1)

			go func() {
				defer wg.Done()

				for j := 0; j < 100; j++ {
					id := g.Generate()

					lock.Lock()
					seen[id] = true
					lock.Unlock()
				}
			}()
		}

		wg.Wait()

		Expect(seen).To(HaveLen(800))

		for id := range seen {
			_, err := xid.FromString(id)
			Expect(err).NotTo(HaveOccurred())
		}
	})

	It("should share one process-wide generator", func() {
		Expect(GetIDGenerator()).To(BeIdenticalTo(GetIDGenerator()))
	})
})
