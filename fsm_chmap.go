package llcp

// runChannelMapUpdate implements the Channel Map Update procedure: the
// central unilaterally sends LL_CHANNEL_MAP_IND carrying the new channel
// map and an instant (spec §4.F, same instant-based shape as Connection
// Update). Only a central ever drives this locally; a peripheral only
// ever receives it.
func runChannelMapUpdate(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	if ctx.State == stateAwaitingHostCompletion {
		return completeResult()
	}
	if ctx.Local {
		return runChannelMapUpdateLocal(conn, ctx, ev)
	}
	return runChannelMapUpdateRemote(conn, ctx, ev)
}

func runChannelMapUpdateLocal(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	switch ctx.State {
	case stateIdle:
		if ev.Kind != EventTick {
			return contResult()
		}
		ctx.Instant = conn.EventCounter + instantLeadEvents(conn.Latency)
		ctx.State = stateAwaitingInstant
		return txResult(&ChannelMapInd{ChM: ctx.chMap.ChM, Instant: ctx.Instant})

	case stateAwaitingInstant:
		return chMapApplyOnInstant(conn, ctx, ev)
	}
	return contResult()
}

func runChannelMapUpdateRemote(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	switch ctx.State {
	case stateIdle:
		ind, ok := ev.Pdu.(*ChannelMapInd)
		if ev.Kind != EventRx || !ok {
			return contResult()
		}
		ctx.chMap.ChM = ind.ChM
		ctx.Instant = ind.Instant
		recordInstantMissed(conn, ctx.Instant)
		ctx.State = stateAwaitingInstant
		return contResult()

	case stateAwaitingInstant:
		return chMapApplyOnInstant(conn, ctx, ev)
	}
	return contResult()
}

func chMapApplyOnInstant(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	if ev.Kind != EventTick && ev.Kind != EventInstantReached {
		return contResult()
	}
	if !isInstantReached(conn.EventCounter, ctx.Instant) {
		return contResult()
	}
	ctx.State = stateAwaitingHostCompletion
	return ntfResult(Notification{
		Handle: conn.Handle,
		Kind:   NotifyChannelMapUpdate,
		Status: ErrSuccess,
		ChM:    ctx.chMap.ChM,
	})
}
