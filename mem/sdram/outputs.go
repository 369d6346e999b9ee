package sdram

import "github.com/sarchlab/sdramctrl/mem/sdram/signal"

// outputMiddleware registers the pins, the read data and the acknowledge.
type outputMiddleware struct {
	*Comp
}

func (m *outputMiddleware) Tick() bool {
	out := latchOutputs(m.Spec, m.state, m.next, m.dqIn, m.locked)

	m.next.Pins = out.Pins
	m.next.ReadData = out.ReadData
	m.next.Ack = out.Ack

	return true
}

type outputs struct {
	Pins     signal.Pins
	ReadData uint32
	Ack      bool
}

// latchOutputs derives the registered outputs from the current and the next
// state. Commands are driven on the tick a state machine enters the state
// that issues them.
func latchOutputs(
	spec Spec,
	cur, next State,
	dq signal.DQ,
	locked bool,
) outputs {
	p := signal.IdlePins()
	p.CSn = !locked

	switch {
	case enteringInit(cur, next, InitAssertPrecharge):
		p = p.WithCommand(signal.CmdPrecharge)
		p.Addr = signal.PrechargeAll
	case enteringInit(cur, next, InitProgramModeRegister):
		p = p.WithCommand(signal.CmdLoadModeRegister)
		p.Addr = spec.ModeRegisterValue()
	}

	loc := spec.Geometry.Split(next.Active.Address)
	colAddr := spec.ColumnAddress(loc.Col) | signal.AutoPrecharge

	switch {
	case entering(cur, next, StateRefresh):
		p = p.WithCommand(signal.CmdRefresh)
	case entering(cur, next, StateActivate):
		p = p.WithCommand(signal.CmdActivate)
		p.Bank = loc.Bank
		p.Addr = loc.Row
	case entering(cur, next, StateWrite0):
		p = p.WithCommand(signal.CmdWrite)
		p.Bank = loc.Bank
		p.Addr = colAddr
		p.DQOE = true
		p.DQ = uint16(next.Active.Data)
	case entering(cur, next, StateWrite1) && spec.BurstLength == 2:
		p.DQOE = true
		p.DQ = uint16(next.Active.Data >> 16)
	case entering(cur, next, StateRead0):
		p = p.WithCommand(signal.CmdRead)
		p.Bank = loc.Bank
		p.Addr = colAddr
	}

	return outputs{
		Pins:     p,
		ReadData: sampleReadData(spec, cur, dq),
		Ack: entering(cur, next, StateWrite0) ||
			entering(cur, next, StateRead4),
	}
}

// sampleReadData captures beat b of a read burst in state Read(CL-1+b).
func sampleReadData(spec Spec, cur State, dq signal.DQ) uint32 {
	data := cur.ReadData

	for beat := 0; beat < spec.BurstLength; beat++ {
		if cur.Ctrl != readState(spec.CASLatency-1+beat) {
			continue
		}

		if beat == 0 {
			data = uint32(dq.Value)
		} else {
			data = data&0xFFFF | uint32(dq.Value)<<16
		}
	}

	return data
}
