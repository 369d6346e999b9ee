package counter

// RefreshTimer fires periodically and remembers that it has fired until the
// refresh is acknowledged.
type RefreshTimer struct {
	count   Down
	period  int
	running bool
	due     bool
}

// Start returns a running timer that fires every period ticks.
func (t RefreshTimer) Start(period int) RefreshTimer {
	if period < 1 {
		period = 1
	}

	return RefreshTimer{
		count:   Down{}.Load(period),
		period:  period,
		running: true,
	}
}

// Step returns the timer one tick later. If ack is set, a refresh has been
// performed and the due flag is cleared, unless the timer fires again in the
// same tick.
func (t RefreshTimer) Step(ack bool) RefreshTimer {
	if !t.running {
		return t
	}

	t.count = t.count.Tick()
	fired := t.count.Expired()

	if fired {
		t.count = t.count.Load(t.period)
	}

	t.due = (t.due && !ack) || fired

	return t
}

// Due returns true if a refresh has been requested and not yet performed.
func (t RefreshTimer) Due() bool {
	return t.due
}

// Running returns true if the timer has been started.
func (t RefreshTimer) Running() bool {
	return t.running
}

// Remaining returns the ticks until the timer fires next.
func (t RefreshTimer) Remaining() int {
	return t.count.Value()
}
