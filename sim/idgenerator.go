package sim

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

var idGeneratorOnce sync.Once
var idGenerator IDGenerator

// IDGenerator can generate IDs
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

// NewSequentialIDGenerator creates a generator of the IDs 1, 2, 3 and so on.
// Runs that use it are deterministic.
func NewSequentialIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// NewParallelIDGenerator creates a generator of globally unique IDs that can
// be shared without coordination. The IDs are not deterministic.
func NewParallelIDGenerator() IDGenerator {
	return parallelIDGenerator{}
}

// GetIDGenerator returns the process-wide generator used for events and for
// components built without a generator of their own. It is sequential.
func GetIDGenerator() IDGenerator {
	idGeneratorOnce.Do(func() {
		idGenerator = NewSequentialIDGenerator()
	})

	return idGenerator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)

	return strconv.FormatUint(idNumber, 10)
}

type parallelIDGenerator struct{}

func (g parallelIDGenerator) Generate() string {
	return xid.New().String()
}
