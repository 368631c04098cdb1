package llcp

// This file is the host-facing surface the embedding HCI layer calls
// into (spec §6 "EXTERNAL INTERFACES"), one function per
// original-source entry point (ull_llcp_hci.c). Every entry point either
// enqueues a descriptor onto the connection's Local Request Queue and
// returns ErrSuccess, or rejects the call synchronously with an HCI
// error byte before anything is queued — mirroring the original's
// feature-gating-before-enqueue shape (ll_phy_req_send checks
// feature_phy_2m/feature_phy_coded, ll_length_req_send checks
// feature_dle, before ever touching the procedure machinery).

// VersionIndSend enqueues a Version Exchange request.
func (conn *Connection) VersionIndSend() HCIError {
	conn.LocalQueue.Enqueue(ProcVersionExchange, nil)
	return ErrSuccess
}

// FeatureReqSend enqueues a Feature Exchange request.
func (conn *Connection) FeatureReqSend() HCIError {
	conn.LocalQueue.Enqueue(ProcFeatureExchange, nil)
	return ErrSuccess
}

// PhyReqSend enqueues a PHY Update request for the given TX/RX
// preference masks. Gated on feature support the same way
// ll_phy_req_send gates on feature_phy_2m/feature_phy_coded in the
// original source: if the peer's feature set is known and advertises
// neither 2M nor coded PHY, the call fails immediately rather than
// queue a procedure doomed to end in LL_UNKNOWN_RSP.
func (conn *Connection) PhyReqSend(txPhys, rxPhys PHY) HCIError {
	if conn.FeaturesValid && conn.FeaturesPeer&(Feature2MPHY|FeatureCodedPHY) == 0 {
		return ErrUnsupportedRemoteFeat
	}
	conn.LocalQueue.Enqueue(ProcPhyUpdate, phyProcState{TxPreference: txPhys, RxPreference: rxPhys})
	return ErrSuccess
}

// LengthReqSend enqueues a Data Length Update request. Gated on
// FeatureDataLengthExtension the way ll_length_req_send gates on
// feature_dle.
func (conn *Connection) LengthReqSend(txOctets, txTime uint16) HCIError {
	if conn.FeaturesValid && conn.FeaturesPeer&FeatureDataLengthExtension == 0 {
		return ErrUnsupportedRemoteFeat
	}
	if txOctets < MinDataOctets || txOctets > MaxDataOctets {
		return ErrInvalidLLParameters
	}
	conn.LocalQueue.Enqueue(ProcLengthUpdate, lengthProcState{
		MaxRxOctets: conn.MaxRxOctets, MaxRxTime: conn.MaxRxTime,
		MaxTxOctets: txOctets, MaxTxTime: txTime,
	})
	return ErrSuccess
}

// TerminateIndSend arms the connection's TerminateReason so the next
// RunEvent pre-empts any running procedure with TERMINATE (spec §4.G
// step 2). It never fails synchronously: disconnection is always
// accepted, only its completion is asynchronous.
func (conn *Connection) TerminateIndSend(reason HCIError) HCIError {
	conn.RequestTerminate(reason)
	return ErrSuccess
}

// EncReqSend enqueues an Encryption Start request. Only a central may
// initiate encryption (spec §4.F: "Central initiates").
func (conn *Connection) EncReqSend(rand [8]byte, ediv uint16, skdm [8]byte, ivm [4]byte) HCIError {
	if conn.Role != RoleCentral {
		return ErrCmdDisallowed
	}
	conn.LocalQueue.Enqueue(ProcEncryptionStart, encProcState{Rand: rand, EDiv: ediv, SKDm: skdm, IVm: ivm})
	return ErrSuccess
}

// StartEncReqSend resolves the host's LTK lookup for an in-progress
// peripheral-side Encryption Start procedure (the original source's
// ll_start_enc_req_send, called once the host has looked up the LTK for
// ediv/rand out of band). granted=false models LTK-not-found, answered
// with LL_REJECT_IND{PIN_OR_KEY_MISSING} per spec §4.F. Returns
// ErrCmdDisallowed if no Encryption Start procedure is waiting on a host
// reply.
func (conn *Connection) StartEncReqSend(granted bool) HCIError {
	ctx := conn.RemoteCtx
	if ctx == nil || ctx.Kind != ProcEncryptionStart || ctx.enc.Sub != encWaitLTKReply {
		return ErrCmdDisallowed
	}
	ctx.enc.LTKResolved = true
	ctx.enc.LTKGranted = granted
	return ErrSuccess
}

// ConnUpdate enqueues a (legacy, unilateral) Connection Update request.
// Only a central may drive this procedure locally (spec §9: the
// negotiated CONNECTION_PARAM_REQ path is not implemented).
func (conn *Connection) ConnUpdate(winSize uint8, winOffset, interval, latency, timeout uint16) HCIError {
	if conn.Role != RoleCentral {
		return ErrCmdDisallowed
	}
	conn.LocalQueue.Enqueue(ProcConnectionUpdate, connUpdateProcState{
		WinSize: winSize, WinOffset: winOffset,
		Interval: interval, Latency: latency, Timeout: timeout,
	})
	return ErrSuccess
}

// ChmUpdate enqueues a Channel Map Update request. Only a central drives
// this locally; a peripheral only ever receives LL_CHANNEL_MAP_IND.
func (conn *Connection) ChmUpdate(chm [5]byte) HCIError {
	if conn.Role != RoleCentral {
		return ErrCmdDisallowed
	}
	conn.LocalQueue.Enqueue(ProcChannelMapUpdate, chMapProcState{ChM: chm})
	return ErrSuccess
}

// AptoGet/AptoSet mirror ll_apto_get/ll_apto_set in the original source:
// both bodies are commented out there with the authorized-payload-timeout
// feature left unimplemented, so both entry points return
// ErrCmdDisallowed verbatim rather than invent behavior the original
// itself never shipped (spec §12 item 4).
func (conn *Connection) AptoGet() (uint16, HCIError) { return 0, ErrCmdDisallowed }
func (conn *Connection) AptoSet(uint16) HCIError     { return ErrCmdDisallowed }

// ChmGet mirrors ll_chm_get, which the original source leaves returning
// BT_HCI_ERR_UNKNOWN_CMD pending a channel-map readback path.
func (conn *Connection) ChmGet() ([5]byte, HCIError) {
	return [5]byte{}, ErrUnknownCmd
}

// RssiGet mirrors ll_rssi_get, same status as ChmGet in the original.
func (conn *Connection) RssiGet() (int8, HCIError) {
	return 0, ErrUnknownCmd
}
