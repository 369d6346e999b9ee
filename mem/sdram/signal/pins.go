package signal

// Address bits with a fixed meaning.
const (
	// AutoPrecharge is A10 on READ and WRITE.
	AutoPrecharge uint16 = 1 << 10

	// PrechargeAll is A10 on PRECHARGE.
	PrechargeAll uint16 = 1 << 10
)

// DQ is the value of the data bus as seen by one side of it.
type DQ struct {
	Value  uint16
	Driven bool
}

// Released is a data bus nobody drives.
var Released = DQ{}

// Pins holds the device facing outputs of the controller for one clock edge.
type Pins struct {
	CKE  bool
	CSn  bool
	RASn bool
	CASn bool
	WEn  bool
	Bank uint8
	Addr uint16
	DQM  uint8

	// DQOE enables the controller's data bus drivers. DQ is only meaningful
	// when it is set.
	DQOE bool
	DQ   uint16
}

// IdlePins returns the pins of a selected device receiving a NOP.
func IdlePins() Pins {
	l := Encode(CmdNOP)

	return Pins{
		CKE:  true,
		RASn: l.RASn,
		CASn: l.CASn,
		WEn:  l.WEn,
	}
}

// WithCommand returns a copy of the pins presenting the given command.
func (p Pins) WithCommand(c Command) Pins {
	l := Encode(c)
	p.RASn = l.RASn
	p.CASn = l.CASn
	p.WEn = l.WEn

	return p
}

// Command decodes the command presented on the pins.
func (p Pins) Command() Command {
	return Decode(p)
}

// Drive returns what the controller puts on the data bus.
func (p Pins) Drive() DQ {
	if !p.DQOE {
		return Released
	}

	return DQ{Value: p.DQ, Driven: true}
}
