package llcp

// runConnectionUpdate implements the legacy Connection Update procedure:
// the central unilaterally dictates new parameters via
// LL_CONNECTION_UPDATE_IND carrying the instant, no request/response
// negotiation (spec §9 open question: the CONNECTION_PARAM_REQ/RSP
// negotiated path from the original source's ll_conn_update is not
// implemented here, see DESIGN.md).
func runConnectionUpdate(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	if ctx.State == stateAwaitingHostCompletion {
		return completeResult()
	}
	if ctx.Local {
		return runConnectionUpdateLocal(conn, ctx, ev)
	}
	return runConnectionUpdateRemote(conn, ctx, ev)
}

func runConnectionUpdateLocal(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	switch ctx.State {
	case stateIdle:
		if ev.Kind != EventTick {
			return contResult()
		}
		c := &ctx.connUpd
		ctx.Instant = conn.EventCounter + instantLeadEvents(conn.Latency)
		ctx.State = stateAwaitingInstant
		return txResult(&ConnectionUpdateInd{
			WinSize: c.WinSize, WinOffset: c.WinOffset,
			Interval: c.Interval, Latency: c.Latency, Timeout: c.Timeout,
			Instant: ctx.Instant,
		})

	case stateAwaitingInstant:
		return connUpdateApplyOnInstant(conn, ctx, ev)
	}
	return contResult()
}

func runConnectionUpdateRemote(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	switch ctx.State {
	case stateIdle:
		ind, ok := ev.Pdu.(*ConnectionUpdateInd)
		if ev.Kind != EventRx || !ok {
			return contResult()
		}
		ctx.connUpd = connUpdateProcState{
			WinSize: ind.WinSize, WinOffset: ind.WinOffset,
			Interval: ind.Interval, Latency: ind.Latency, Timeout: ind.Timeout,
		}
		ctx.Instant = ind.Instant
		recordInstantMissed(conn, ctx.Instant)
		ctx.State = stateAwaitingInstant
		return contResult()

	case stateAwaitingInstant:
		return connUpdateApplyOnInstant(conn, ctx, ev)
	}
	return contResult()
}

func connUpdateApplyOnInstant(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	if ev.Kind != EventTick && ev.Kind != EventInstantReached {
		return contResult()
	}
	if !isInstantReached(conn.EventCounter, ctx.Instant) {
		return contResult()
	}
	c := ctx.connUpd
	conn.ProcedureReload = connEventsFromMicros(40_000_000, uint32(c.Interval)*1250)
	conn.SupervisionReload = connEventsFromMicros(uint32(c.Timeout)*10_000, uint32(c.Interval)*1250)
	conn.Latency = c.Latency
	ctx.State = stateAwaitingHostCompletion
	return ntfResult(Notification{
		Handle:   conn.Handle,
		Kind:     NotifyConnUpdate,
		Status:   ErrSuccess,
		Interval: c.Interval,
		Latency:  c.Latency,
		Timeout:  c.Timeout,
	})
}
