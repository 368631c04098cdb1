package llcp

// runTerminate implements Terminate (spec §4.F): a local `IDLE →
// TX_TERMINATE_IND{reason} → WAIT_ACK → DONE` for a self-initiated
// disconnect, and a remote read-and-complete for a peer-initiated one.
// This procedure pre-empts every other active procedure (spec §4.G step
// 2); the dispatcher is responsible for giving it priority, this FSM only
// drives its own states.
func runTerminate(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	if ctx.Local {
		return runTerminateLocal(conn, ctx, ev)
	}
	return runTerminateRemote(conn, ctx, ev)
}

// runTerminateLocal drives a self-initiated disconnect. terminate.Reason
// always comes from Connection.TerminateReason, set by RequestTerminate,
// never by a caller-supplied context field.
func runTerminateLocal(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	switch ctx.State {
	case stateIdle:
		if ev.Kind != EventTick {
			return contResult()
		}
		ctx.terminate.Reason = conn.TerminateReason
		ctx.State = stateAwaitingPeerResponse
		return txResult(&TerminateInd{ErrorCode: ctx.terminate.Reason})

	case stateAwaitingPeerResponse:
		// "Ack" here is the link layer's own acknowledgement of PDU
		// receipt (handled below the opcode layer this engine models),
		// not a distinct control PDU; the dispatcher's procedure_reload
		// timeout is what actually ends this wait (spec §4.F: "On
		// successful ack, or on procedure_reload expiry, tear down the
		// connection").
		if ev.Kind == EventTimeout {
			return completeResult()
		}
		return contResult()
	}
	return contResult()
}

// runTerminateRemote handles a peer-initiated LL_TERMINATE_IND. The
// dispatcher's generic deliver() path spins up this context from the very
// PDU that triggers it, so the peer's reason is read straight off that
// PDU rather than waiting on Connection.TerminateReason to be armed by
// some other path. LL_TERMINATE_IND has no response; nothing is ever
// transmitted here.
func runTerminateRemote(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	ind, ok := ev.Pdu.(*TerminateInd)
	if ev.Kind != EventRx || !ok {
		return contResult()
	}
	ctx.terminate.Reason = ind.ErrorCode
	conn.RequestTerminate(ind.ErrorCode)
	return completeResult()
}
