package sdram

// The column command issues once the RAS-to-CAS counter is at or below this
// value, because the command reaches the device on the transition tick.
const activateThreshold = 1

// arbiterMiddleware is the access/refresh arbiter. It is gated by Ready and
// always refreshes before serving a request once a refresh is due.
type arbiterMiddleware struct {
	*Comp
}

func (m *arbiterMiddleware) Tick() bool {
	cur := m.state
	next := &m.next

	switch cur.Ctrl {
	case StateIdle:
		m.decide()
	case StateRefresh:
		next.Ctrl = StateRefreshWait
	case StateRefreshWait:
		if cur.Timers.RowCycle.Expired() {
			next.Ctrl = StateIdle
		}
	case StateActivate:
		next.Ctrl = StateWaitActivate
	case StateWaitActivate:
		m.waitActivate()
	case StateWrite0:
		next.Ctrl = StateWrite1
	case StateWrite1:
		next.Ctrl = StateWritePrecharge
	case StateWritePrecharge:
		next.Ctrl = StatePrecharge
	case StateRead0, StateRead1, StateRead2, StateRead3:
		next.Ctrl = cur.Ctrl + 1
	case StateRead4:
		if m.Spec.BurstLength == 1 {
			next.Ctrl = StatePrecharge
		} else {
			next.Ctrl = StateReadPrecharge
		}
	case StateReadPrecharge:
		next.Ctrl = StatePrecharge
	case StatePrecharge:
		next.Ctrl = StateWaitPrecharge
	case StateWaitPrecharge:
		if m.rowCycleElapsed() {
			next.Ctrl = StateIdle
		}
	default:
		next.Ctrl = StateIdle
	}

	return next.Ctrl != cur.Ctrl
}

func (m *arbiterMiddleware) decide() {
	cur := m.state
	next := &m.next

	switch {
	case !cur.Ready:
		return
	case cur.Timers.Refresh.Due():
		next.Ctrl = StateRefresh
	case cur.Pending.Valid:
		next.Ctrl = StateActivate
		next.Active = cur.Pending
		next.Pending = PendingRequest{}
	}
}

func (m *arbiterMiddleware) waitActivate() {
	cur := m.state

	if cur.Timers.RASToCAS.Value() > activateThreshold {
		return
	}

	if cur.Active.Write {
		m.next.Ctrl = StateWrite0
	} else {
		m.next.Ctrl = StateRead0
	}
}

func (m *arbiterMiddleware) rowCycleElapsed() bool {
	t := m.state.Timers

	return t.RowCycle.Expired() && t.SinceActivate.Count() >= m.Spec.RowCycle
}

// refreshPerformed tells if the arbiter completes a refresh in this tick.
func refreshPerformed(cur, next State) bool {
	return cur.Ctrl == StateRefreshWait && next.Ctrl == StateIdle
}
