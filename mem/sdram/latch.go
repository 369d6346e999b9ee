package sdram

// latchMiddleware captures a request from the bus once the controller is
// ready. Only one request can be outstanding. Anything presented on the bus
// before Ready, or from latching until the tick after the acknowledge, is
// ignored.
type latchMiddleware struct {
	*Comp
}

func (m *latchMiddleware) Tick() bool {
	cur := m.state
	next := &m.next

	if cur.Outstanding {
		if cur.Ack {
			next.Outstanding = false
			next.TaskID = ""

			return true
		}

		return false
	}

	if !cur.Ready {
		return false
	}

	req := m.bus.Request
	if !req.Valid || !req.BusActive {
		return false
	}

	next.Pending = PendingRequest{
		Address: m.Spec.Geometry.Join(m.Spec.Geometry.Split(req.Address)),
		Data:    req.WriteData,
		Write:   req.WriteEnable,
		Valid:   true,
	}
	next.Outstanding = true
	next.TaskID = m.ids.Generate()

	return true
}
