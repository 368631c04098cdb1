package llcp

// runEncryption implements Encryption Start (spec §4.F): always
// central-initiated, so ctx.Local==true only ever occurs with
// conn.Role==RoleCentral, and the remote (peripheral) side reacts to the
// inbound LL_ENC_REQ. Encryption Pause shares this context kind in name
// only (ProcEncryptionPause) and is not yet driven by any HCI entry
// point; see DESIGN.md.
func runEncryption(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	if ctx.State == stateAwaitingHostCompletion {
		return completeResult()
	}
	if ctx.Local {
		return runEncryptionCentral(conn, ctx, ev)
	}
	return runEncryptionPeripheral(conn, ctx, ev)
}

func runEncryptionCentral(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	e := &ctx.enc
	switch e.Sub {
	case encIdle:
		if ev.Kind != EventTick {
			return contResult()
		}
		e.Sub = encWaitEncRsp
		return txResult(&EncReq{Rand: e.Rand, EDiv: e.EDiv, SKDm: e.SKDm, IVm: e.IVm})

	case encWaitEncRsp:
		if ev.Kind != EventRx {
			return contResult()
		}
		switch pdu := ev.Pdu.(type) {
		case *EncRsp:
			e.SKDs, e.IVs = pdu.SKDs, pdu.IVs
			e.Sub = encWaitStartEncReq
			return contResult()
		case *RejectInd:
			ctx.State = stateAwaitingHostCompletion
			return ntfResult(Notification{Handle: conn.Handle, Kind: NotifyEncChange, Status: pdu.ErrorCode})
		default:
			return contResult()
		}

	case encWaitStartEncReq:
		if ev.Kind != EventRx {
			return contResult()
		}
		if _, ok := ev.Pdu.(*StartEncReq); !ok {
			return contResult()
		}
		e.Sub = encWaitStartEncRspAck
		return txResult(&StartEncRsp{})

	case encWaitStartEncRspAck:
		if ev.Kind != EventRx {
			return contResult()
		}
		if _, ok := ev.Pdu.(*StartEncRsp); !ok {
			return contResult()
		}
		conn.EncTx, conn.EncRx = true, true
		ctx.State = stateAwaitingHostCompletion
		return ntfResult(Notification{Handle: conn.Handle, Kind: NotifyEncChange, Status: ErrSuccess})
	}
	return contResult()
}

func runEncryptionPeripheral(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	e := &ctx.enc
	switch e.Sub {
	case encIdle:
		req, ok := ev.Pdu.(*EncReq)
		if ev.Kind != EventRx || !ok {
			return contResult()
		}
		e.Rand, e.EDiv, e.SKDm, e.IVm = req.Rand, req.EDiv, req.SKDm, req.IVm
		e.Sub = encWaitLTKReply
		return txResult(&EncRsp{SKDs: e.SKDs, IVs: e.IVs})

	case encWaitLTKReply:
		if !e.LTKResolved {
			return contResult()
		}
		if !e.LTKGranted {
			e.Sub = encRejected
			return txResult(&RejectInd{ErrorCode: ErrPinOrKeyMissing})
		}
		e.Sub = encWaitStartEncRspAck
		return txResult(&StartEncReq{})

	case encRejected:
		ctx.State = stateAwaitingHostCompletion
		return ntfResult(Notification{Handle: conn.Handle, Kind: NotifyEncChange, Status: ErrPinOrKeyMissing})

	case encWaitStartEncRspAck:
		if ev.Kind != EventRx {
			return contResult()
		}
		if _, ok := ev.Pdu.(*StartEncRsp); !ok {
			return contResult()
		}
		conn.EncTx, conn.EncRx = true, true
		ctx.State = stateAwaitingHostCompletion
		return ntfResult(Notification{Handle: conn.Handle, Kind: NotifyEncChange, Status: ErrSuccess})
	}
	return contResult()
}
