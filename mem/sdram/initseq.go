package sdram

// initMiddleware is the initialization sequencer. It waits for the device
// to power up, precharges all banks InitPrecharges times, programs the mode
// register and then raises Ready for good.
type initMiddleware struct {
	*Comp
}

func (m *initMiddleware) Tick() bool {
	cur := m.state
	next := &m.next

	switch cur.Init {
	case InitIdle:
		if !cur.Ready {
			next.Init = InitWait200us
		}
	case InitWait200us:
		if cur.Timers.PowerUp.Expired() {
			m.assertPrecharge()
		}
	case InitAssertPrecharge:
		next.Init = InitWaitPrecharge
	case InitWaitPrecharge:
		if !cur.Timers.RASToCAS.Expired() {
			break
		}

		if cur.PrechargeRepeats < InitPrecharges {
			m.assertPrecharge()
		} else {
			next.Init = InitProgramModeRegister
		}
	case InitProgramModeRegister:
		next.Init = InitWaitModeRegister
	case InitWaitModeRegister:
		if cur.Timers.RASToCAS.Expired() {
			next.Init = InitDone
		}
	case InitDone:
		next.Init = InitIdle
		next.Ready = true
	default:
		next.Init = InitIdle
	}

	return next.Init != cur.Init
}

func (m *initMiddleware) assertPrecharge() {
	m.next.Init = InitAssertPrecharge
	m.next.PrechargeRepeats = m.state.PrechargeRepeats + 1
}
