package llcp

// runFeatureExchange implements `IDLE → TX_REQ → WAIT_RSP → DONE` (spec
// §4.F Feature Exchange). The request opcode differs by role
// (LL_FEATURE_REQ for central, LL_SLAVE_FEATURE_REQ for peripheral) but
// the response handling is identical, so both local and remote share
// this one function, branching only on conn.Role and ctx.Local.
func runFeatureExchange(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	if ctx.Local {
		return runFeatureExchangeLocal(conn, ctx, ev)
	}
	return runFeatureExchangeRemote(conn, ctx, ev)
}

func runFeatureExchangeLocal(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	switch ctx.State {
	case stateIdle:
		if ev.Kind != EventTick {
			return contResult()
		}
		ctx.State = stateAwaitingPeerResponse
		if conn.Role == RoleCentral {
			return txResult(&FeatureReq{Features: conn.FeaturesLocal})
		}
		return txResult(&SlaveFeatureReq{Features: conn.FeaturesLocal})

	case stateAwaitingPeerResponse:
		if ev.Kind != EventRx {
			return contResult()
		}
		switch pdu := ev.Pdu.(type) {
		case *FeatureRsp:
			ctx.State = stateAwaitingHostCompletion
			return featureExchangeComplete(conn, pdu.Features)
		case *UnknownRsp:
			// Peer predates Slave Feature Exchange: treat every optional
			// feature as unsupported rather than abort the connection.
			ctx.State = stateAwaitingHostCompletion
			return featureExchangeComplete(conn, 0)
		case *FeatureReq:
			// Simultaneous initiation: the peer's own request crossed
			// ours. Per spec §4.G, "simultaneous initiations merge: the
			// later arrival is absorbed" — answer the peer's request and
			// treat its advertised set as the exchange result rather than
			// tracking two independent procedures.
			conn.FeaturesPeer = pdu.Features & conn.FeaturesLocal
			conn.FeaturesValid = true
			return txResult(&FeatureRsp{Features: conn.FeaturesLocal})
		default:
			return contResult()
		}

	case stateAwaitingHostCompletion:
		return completeResult()
	}
	return contResult()
}

func runFeatureExchangeRemote(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	if ctx.State == stateAwaitingHostCompletion {
		return completeResult()
	}
	if ev.Kind != EventRx {
		return contResult()
	}
	// A peripheral's request arrives as LL_SLAVE_FEATURE_REQ rather than
	// LL_FEATURE_REQ, but a central answers both identically.
	var peer FeatureSet
	switch req := ev.Pdu.(type) {
	case *FeatureReq:
		peer = req.Features
	case *SlaveFeatureReq:
		peer = req.Features
	default:
		// Remote procedures start mid-PDU (the dispatcher creates the
		// context from the very PDU that triggers it), so any other
		// shape here means a duplicate/late event; ignore it.
		return contResult()
	}
	conn.FeaturesPeer = peer & conn.FeaturesLocal
	conn.FeaturesValid = true
	ctx.State = stateAwaitingHostCompletion
	return txResult(&FeatureRsp{Features: conn.FeaturesLocal})
}

func featureExchangeComplete(conn *Connection, peerAdvertised FeatureSet) StepResult {
	conn.FeaturesPeer = peerAdvertised & conn.FeaturesLocal
	conn.FeaturesValid = true
	return ntfResult(Notification{
		Handle:       conn.Handle,
		Kind:         NotifyFeatureExchange,
		Status:       ErrSuccess,
		PeerFeatures: conn.FeaturesPeer,
	})
}
