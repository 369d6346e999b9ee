// Package signal defines the physical interface between an SDRAM controller
// and an SDRAM device.
package signal

// Command is a decoded SDRAM command.
type Command int

// The commands an SDR SDRAM device understands.
const (
	CmdNOP Command = iota
	CmdDeselect
	CmdActivate
	CmdRead
	CmdWrite
	CmdPrecharge
	CmdRefresh
	CmdLoadModeRegister
	CmdBurstTerminate
)

var commandNames = []string{
	"NOP",
	"DESELECT",
	"ACTIVATE",
	"READ",
	"WRITE",
	"PRECHARGE",
	"REFRESH",
	"LOAD_MODE_REGISTER",
	"BURST_TERMINATE",
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return "UNKNOWN"
	}

	return commandNames[c]
}

// Lines are the levels of the RAS#, CAS# and WE# lines. True is high.
type Lines struct {
	RASn bool
	CASn bool
	WEn  bool
}

var truthTable = map[Command]Lines{
	CmdNOP:              {RASn: true, CASn: true, WEn: true},
	CmdActivate:         {RASn: false, CASn: true, WEn: true},
	CmdRead:             {RASn: true, CASn: false, WEn: true},
	CmdWrite:            {RASn: true, CASn: false, WEn: false},
	CmdPrecharge:        {RASn: false, CASn: true, WEn: false},
	CmdRefresh:          {RASn: false, CASn: false, WEn: true},
	CmdLoadModeRegister: {RASn: false, CASn: false, WEn: false},
	CmdBurstTerminate:   {RASn: true, CASn: true, WEn: false},
}

// Encode returns the command line levels of a command. A deselect leaves the
// lines at the NOP levels since chip select masks them.
func Encode(c Command) Lines {
	lines, ok := truthTable[c]
	if !ok {
		return truthTable[CmdNOP]
	}

	return lines
}

// Decode returns the command presented on the pins.
func Decode(p Pins) Command {
	if p.CSn {
		return CmdDeselect
	}

	l := Lines{RASn: p.RASn, CASn: p.CASn, WEn: p.WEn}
	for cmd, lines := range truthTable {
		if lines == l {
			return cmd
		}
	}

	return CmdNOP
}
