package sdram

// timerMiddleware ticks the timing counters and loads them on entry to the
// states that start a timed operation.
type timerMiddleware struct {
	*Comp
}

func (m *timerMiddleware) Tick() bool {
	cur := m.state
	next := &m.next
	t := cur.Timers
	spec := m.Spec

	nt := Timers{
		RowCycle:      t.RowCycle.Tick(),
		RASToCAS:      t.RASToCAS.Tick(),
		PowerUp:       t.PowerUp.Tick(),
		SinceActivate: t.SinceActivate.Tick(),
	}

	switch {
	case enteringInit(cur, *next, InitWait200us):
		nt.PowerUp = nt.PowerUp.Load(spec.PowerUp)
	case enteringInit(cur, *next, InitAssertPrecharge):
		nt.RASToCAS = nt.RASToCAS.Load(spec.Precharge)
	case enteringInit(cur, *next, InitProgramModeRegister):
		nt.RASToCAS = nt.RASToCAS.Load(spec.ModeRegister)
	}

	switch {
	case entering(cur, *next, StateActivate):
		nt.RASToCAS = nt.RASToCAS.Load(spec.RASToCAS)
		nt.RowCycle = nt.RowCycle.Load(spec.RowCycle)
		nt.SinceActivate = nt.SinceActivate.Reset()
	case entering(cur, *next, StateRefresh):
		nt.RowCycle = nt.RowCycle.Load(spec.RowCycle)
	}

	if !cur.Ready && next.Ready {
		nt.Refresh = t.Refresh.Start(spec.RefreshInterval)
	} else {
		nt.Refresh = t.Refresh.Step(refreshPerformed(cur, *next))
	}

	next.Timers = nt

	return true
}

func entering(cur, next State, s ControllerState) bool {
	return next.Ctrl == s && cur.Ctrl != s
}

func enteringInit(cur, next State, s InitState) bool {
	return next.Init == s && cur.Init != s
}
