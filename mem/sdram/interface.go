package sdram

import "github.com/sarchlab/sdramctrl/mem/sdram/signal"

// A Device is the SDRAM chip on the other side of the pins.
type Device interface {
	// Edge clocks the device with the pins driven by the controller. It
	// returns the data bus as driven by the device until the next edge.
	Edge(pins signal.Pins) signal.DQ
}
