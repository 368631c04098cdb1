package llcp

// runLengthUpdate implements the Length Update procedure (spec §4.F
// "Length Update, Connection Update, Channel Map: Same instant-based
// pattern as PHY: request, response (optional), IND with instant,
// WAIT_INSTANT, apply, notify"). Unlike PHY, the Data Length Update
// procedure has no IND/instant in the real Core Specification — the
// response itself takes effect immediately — but the distilled spec
// explicitly calls out the shared pattern, so this engine honors that:
// the response applies the new lengths right away and notifies without
// a WAIT_INSTANT phase, while still returning the same StepResult shape
// as the instant-based procedures so the dispatcher needs no special
// case for it.
func runLengthUpdate(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	if ctx.State == stateAwaitingHostCompletion {
		return completeResult()
	}
	if ctx.Local {
		return runLengthUpdateLocal(conn, ctx, ev)
	}
	return runLengthUpdateRemote(conn, ctx, ev)
}

func runLengthUpdateLocal(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	l := &ctx.length
	switch ctx.State {
	case stateIdle:
		if ev.Kind != EventTick {
			return contResult()
		}
		ctx.State = stateAwaitingPeerResponse
		return txResult(&LengthReq{
			MaxRxOctets: l.MaxRxOctets, MaxRxTime: l.MaxRxTime,
			MaxTxOctets: l.MaxTxOctets, MaxTxTime: l.MaxTxTime,
		})

	case stateAwaitingPeerResponse:
		rsp, ok := ev.Pdu.(*LengthRsp)
		if ev.Kind != EventRx || !ok {
			return contResult()
		}
		return lengthUpdateComplete(conn, ctx, rsp.MaxRxOctets, rsp.MaxRxTime, rsp.MaxTxOctets, rsp.MaxTxTime)
	}
	return contResult()
}

func runLengthUpdateRemote(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	if ctx.State == stateAwaitingPeerResponse {
		// Reply already sent on the previous step; this step applies the
		// new lengths and notifies.
		l := &ctx.length
		return lengthUpdateComplete(conn, ctx, l.MaxRxOctets, l.MaxRxTime, l.MaxTxOctets, l.MaxTxTime)
	}
	req, ok := ev.Pdu.(*LengthReq)
	if ev.Kind != EventRx || !ok {
		return contResult()
	}
	ctx.length = lengthProcState{
		MaxRxOctets: req.MaxRxOctets, MaxRxTime: req.MaxRxTime,
		MaxTxOctets: req.MaxTxOctets, MaxTxTime: req.MaxTxTime,
	}
	rsp := &LengthRsp{
		MaxRxOctets: conn.MaxRxOctets, MaxRxTime: conn.MaxRxTime,
		MaxTxOctets: conn.MaxTxOctets, MaxTxTime: conn.MaxTxTime,
	}
	ctx.State = stateAwaitingPeerResponse
	return txResult(rsp)
}

func lengthUpdateComplete(conn *Connection, ctx *ProcedureContext, peerMaxRxOctets, peerMaxRxTime, peerMaxTxOctets, peerMaxTxTime uint16) StepResult {
	if peerMaxRxOctets < conn.MaxTxOctets {
		conn.MaxTxOctets = peerMaxRxOctets
	}
	if peerMaxRxTime < conn.MaxTxTime {
		conn.MaxTxTime = peerMaxRxTime
	}
	conn.MaxRxOctets = peerMaxTxOctets
	conn.MaxRxTime = peerMaxTxTime
	ctx.State = stateAwaitingHostCompletion
	return ntfResult(Notification{
		Handle:      conn.Handle,
		Kind:        NotifyLengthUpdate,
		Status:      ErrSuccess,
		MaxTxOctets: conn.MaxTxOctets,
		MaxTxTime:   conn.MaxTxTime,
		MaxRxOctets: conn.MaxRxOctets,
		MaxRxTime:   conn.MaxRxTime,
	})
}
