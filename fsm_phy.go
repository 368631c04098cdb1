package llcp

// runPhyUpdate implements the four PHY Update procedure shapes spec §4.F
// describes (central/peripheral × local/remote) as one function switching
// on ctx.Local and conn.Role, rather than four separate exported
// functions: the four shapes share every transition except who initiates
// and who is authoritative for the instant, so duplicating them would
// just be the same switch written four times over.
func runPhyUpdate(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	if ctx.State == stateAwaitingHostCompletion {
		return completeResult()
	}
	if ctx.Local {
		return runPhyUpdateLocal(conn, ctx, ev)
	}
	return runPhyUpdateRemote(conn, ctx, ev)
}

func runPhyUpdateLocal(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	p := &ctx.phy
	switch p.Sub {
	case phyIdle:
		if ev.Kind != EventTick {
			return contResult()
		}
		req := &PhyReq{TxPhys: p.TxPreference, RxPhys: p.RxPreference}
		if conn.Role == RoleCentral {
			p.Sub = phyWaitRsp
		} else {
			p.Sub = phyWaitInd
		}
		return txResult(req)

	case phyWaitRsp: // central only; peripheral never reaches WAIT_RSP (invariant 3)
		if ev.Kind != EventRx {
			return contResult()
		}
		switch pdu := ev.Pdu.(type) {
		case *PhyRsp:
			tx, rx := selectPhyPair(p.TxPreference, p.RxPreference, pdu.TxPhys, pdu.RxPhys)
			if tx == conn.PhyTx && rx == conn.PhyRx {
				p.Sub = phyDoneNoChange
				return txResult(&PhyUpdateInd{MToSPhy: 0, SToMPhy: 0, Instant: noPhyChangeInstant})
			}
			p.TxResult, p.RxResult = tx, rx
			ctx.Instant = conn.EventCounter + instantLeadEvents(conn.Latency)
			p.Sub = phyWaitInstant
			return txResult(&PhyUpdateInd{MToSPhy: tx, SToMPhy: rx, Instant: ctx.Instant})
		case *UnknownRsp:
			if pdu.UnknownType == OpPhyReq {
				ctx.State = stateAwaitingHostCompletion
				return ntfResult(Notification{Handle: conn.Handle, Kind: NotifyPhyUpdate, Status: ErrUnsupportedRemoteFeat})
			}
			return contResult()
		case *RejectExtInd:
			if pdu.RejectOpcode == OpPhyReq && pdu.ErrorCode == ErrLLProcCollision {
				// A compliant peripheral never rejects a central's PHY_REQ
				// (it yields instead); this only defends against a peer
				// that does. Retry the request from scratch.
				ctx.Collision = true
				p.Sub = phyIdle
			}
			return contResult()
		case *PhyReq:
			// Collision: the peripheral's competing request arrived while
			// we await our own response. Central is authoritative, so it
			// rejects the peer's request and keeps driving its own.
			ctx.Collision = true
			return txResult(&RejectExtInd{RejectOpcode: OpPhyReq, ErrorCode: ErrLLProcCollision})
		default:
			return contResult()
		}

	case phyDoneNoChange:
		return completeResult()

	case phyWaitInd: // peripheral only
		if ev.Kind != EventRx {
			return contResult()
		}
		switch pdu := ev.Pdu.(type) {
		case *PhyUpdateInd:
			if pdu.Instant == noPhyChangeInstant {
				return completeResult()
			}
			ctx.Instant = pdu.Instant
			recordInstantMissed(conn, ctx.Instant)
			p.TxResult = pdu.SToMPhy
			p.RxResult = pdu.MToSPhy
			p.Sub = phyWaitInstant
			return contResult()
		case *PhyReq:
			// Central's competing request crossed ours; yield by answering
			// it and keep waiting for central's eventual IND.
			ctx.Collision = true
			return txResult(&PhyRsp{TxPhys: p.TxPreference, RxPhys: p.RxPreference})
		case *RejectExtInd:
			if pdu.RejectOpcode == OpPhyReq && pdu.ErrorCode == ErrLLProcCollision {
				return ntfResult(Notification{Handle: conn.Handle, Kind: NotifyPhyUpdate, Status: ErrLLProcCollision})
			}
			return contResult()
		default:
			return contResult()
		}

	case phyWaitInstant:
		return phyApplyOnInstant(conn, ctx, ev)
	}
	return contResult()
}

func runPhyUpdateRemote(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	p := &ctx.phy
	switch p.Sub {
	case phyIdle:
		req, ok := ev.Pdu.(*PhyReq)
		if ev.Kind != EventRx || !ok {
			return contResult()
		}
		// A remote-initiated procedure carries no HCI-supplied preference
		// of its own (applyLocalParams never runs for it); the connection's
		// own standing PHY preference stands in for "our" side.
		p.TxPreference, p.RxPreference = conn.PhyPrefTx, conn.PhyPrefRx
		tx, rx := selectPhyPair(p.TxPreference, p.RxPreference, req.TxPhys, req.RxPhys)
		p.TxResult, p.RxResult = tx, rx
		if conn.Role == RolePeripheral {
			p.Sub = phyWaitInd
			return txResult(&PhyRsp{TxPhys: p.TxPreference, RxPhys: p.RxPreference})
		}
		// Central: picks PHYs and drives the IND directly, no RSP phase.
		ctx.Instant = conn.EventCounter + instantLeadEvents(conn.Latency)
		p.Sub = phyWaitInstant
		return txResult(&PhyUpdateInd{MToSPhy: tx, SToMPhy: rx, Instant: ctx.Instant})

	case phyWaitInd: // peripheral-remote only, awaiting central's IND for the request it answered
		pdu, ok := ev.Pdu.(*PhyUpdateInd)
		if ev.Kind != EventRx || !ok {
			return contResult()
		}
		ctx.Instant = pdu.Instant
		recordInstantMissed(conn, ctx.Instant)
		p.TxResult = pdu.SToMPhy
		p.RxResult = pdu.MToSPhy
		p.Sub = phyWaitInstant
		return contResult()

	case phyWaitInstant:
		return phyApplyOnInstant(conn, ctx, ev)
	}
	return contResult()
}

func phyApplyOnInstant(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	if ev.Kind != EventTick && ev.Kind != EventInstantReached {
		return contResult()
	}
	if !isInstantReached(conn.EventCounter, ctx.Instant) {
		return contResult()
	}
	conn.PhyTx, conn.PhyRx = ctx.phy.TxResult, ctx.phy.RxResult
	ctx.State = stateAwaitingHostCompletion
	return ntfResult(Notification{
		Handle: conn.Handle,
		Kind:   NotifyPhyUpdate,
		Status: ErrSuccess,
		TxPhy:  conn.PhyTx,
		RxPhy:  conn.PhyRx,
	})
}

// selectPhyPair picks the PHY this side will transmit on and the PHY it
// will receive on, given its own preference masks and the peer's
// advertised tx/rx capability masks: our tx must be something the peer
// can receive, our rx must be something the peer can transmit.
func selectPhyPair(ourTxPref, ourRxPref, peerTxPhys, peerRxPhys PHY) (tx, rx PHY) {
	tx = selectPHY(ourTxPref & peerRxPhys)
	rx = selectPHY(ourRxPref & peerTxPhys)
	return tx, rx
}
