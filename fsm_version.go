package llcp

// runVersionExchange implements `IDLE → TX_VERSION_IND → WAIT_VERSION_IND
// → DONE` (spec §4.F Version Exchange). Each side sends exactly one
// LL_VERSION_IND for the lifetime of the connection; a second local
// request completes immediately from Connection's cached peer version
// (invariant 4's duplicate-IND idempotence), so this FSM checks
// conn.versionHave before ever touching the wire.
func runVersionExchange(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	if ctx.Local {
		return runVersionExchangeLocal(conn, ctx, ev)
	}
	return runVersionExchangeRemote(conn, ctx, ev)
}

func runVersionExchangeLocal(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	switch ctx.State {
	case stateIdle:
		if ev.Kind != EventTick {
			return contResult()
		}
		if conn.versionHave {
			ctx.State = stateAwaitingHostCompletion
			return versionExchangeComplete(conn)
		}
		ctx.State = stateAwaitingPeerResponse
		if !conn.versionSent {
			conn.versionSent = true
			return txResult(localVersionInd())
		}
		return contResult()

	case stateAwaitingPeerResponse:
		if ev.Kind != EventRx {
			return contResult()
		}
		ind, ok := ev.Pdu.(*VersionInd)
		if !ok {
			return contResult()
		}
		if !conn.versionHave {
			conn.versionPeer = *ind
			conn.versionHave = true
		}
		ctx.State = stateAwaitingHostCompletion
		return versionExchangeComplete(conn)

	case stateAwaitingHostCompletion:
		return completeResult()
	}
	return contResult()
}

func runVersionExchangeRemote(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	switch ctx.State {
	case stateIdle:
		ind, ok := ev.Pdu.(*VersionInd)
		if ev.Kind != EventRx || !ok {
			return contResult()
		}
		// A duplicate LL_VERSION_IND from a peer that already sent one is
		// ignored outright: no second notification, no second reply.
		if conn.versionHave {
			ctx.State = stateAwaitingHostCompletion
			return completeResult()
		}
		conn.versionPeer = *ind
		conn.versionHave = true
		if conn.versionSent {
			ctx.State = stateAwaitingHostCompletion
			return versionExchangeComplete(conn)
		}
		conn.versionSent = true
		// Our reply is on the wire; the peer's version is already known,
		// so there is nothing left to wait on but the next tick to notify
		// the host and complete.
		ctx.State = stateAwaitingPeerResponse
		return txResult(localVersionInd())

	case stateAwaitingPeerResponse:
		ctx.State = stateAwaitingHostCompletion
		return versionExchangeComplete(conn)

	case stateAwaitingHostCompletion:
		return completeResult()
	}
	return contResult()
}

func versionExchangeComplete(conn *Connection) StepResult {
	return ntfResult(Notification{
		Handle:      conn.Handle,
		Kind:        NotifyVersionExchange,
		Status:      ErrSuccess,
		PeerVersion: conn.versionPeer,
	})
}

// localVersionInd builds this controller's own LL_VERSION_IND. The
// values are placeholders an embedding host is expected to override via
// ControllerConfig in a future revision; spec §4.F only constrains the
// exchange protocol, not the advertised version identity.
func localVersionInd() *VersionInd {
	return &VersionInd{Version: 0x0D, Company: 0x0F, Subversion: 0x0001}
}
