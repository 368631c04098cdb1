package llcp

// ProcedureKind identifies which LL control procedure a ProcedureContext
// is running, mirroring the teacher's opcode-switch style (l2cap.go's
// handleReq) but at the procedure granularity rather than the PDU
// granularity: one procedure consumes several PDU round-trips.
type ProcedureKind uint8

const (
	ProcNone ProcedureKind = iota
	ProcConnectionUpdate
	ProcChannelMapUpdate
	ProcEncryptionStart
	ProcEncryptionPause
	ProcFeatureExchange
	ProcVersionExchange
	ProcTerminate
	ProcLengthUpdate
	ProcPhyUpdate
)

var procedureKindNames = [...]string{
	ProcNone:             "none",
	ProcConnectionUpdate: "connection-update",
	ProcChannelMapUpdate: "channel-map-update",
	ProcEncryptionStart:  "encryption-start",
	ProcEncryptionPause:  "encryption-pause",
	ProcFeatureExchange:  "feature-exchange",
	ProcVersionExchange:  "version-exchange",
	ProcTerminate:        "terminate",
	ProcLengthUpdate:     "length-update",
	ProcPhyUpdate:        "phy-update",
}

func (k ProcedureKind) String() string {
	if int(k) < len(procedureKindNames) {
		return procedureKindNames[k]
	}
	return "unknown"
}

// procState is a procedure's position within its own FSM. Each FSM file
// (fsm_*.go) interprets these against its own kind-specific sub-states by
// pairing procState with the kind-specific fields below, rather than by
// declaring one giant enum per procedure: the teacher favors small
// structs with a handful of interpreted fields (conn.go's handle range,
// l2cap.go's serving flag) over deeply nested state types.
type procState uint8

const (
	stateIdle procState = iota
	stateAwaitingPeerResponse
	stateAwaitingInstant
	stateAwaitingHostCompletion
)

// ProcedureContext is the shared envelope every active LL control
// procedure runs inside of, drawn from the fixed-capacity pool (ctxpool.go,
// spec §4.C). Only one kind's fields are meaningful at a time, selected by
// Kind; this is a tagged union in the Go idiom of "one struct, a kind tag,
// and fields only some kinds use" rather than an interface-per-kind, since
// every kind shares the bulk of its bookkeeping (timeout, instant,
// collision) and the pool needs a single concrete type to recycle.
type ProcedureContext struct {
	Kind  ProcedureKind
	Local bool // true if this connection initiated the procedure
	State procState

	// Instant is the connection event count at which a pending parameter
	// change takes effect; meaningful once State == stateAwaitingInstant
	// (for PHY Update, once phy.Sub == phyWaitInstant).
	Instant uint16

	// ReloadCounter counts down connection events until the procedure's
	// response timeout fires (spec §4.G step 7), seeded from
	// Connection.ProcedureReload when the procedure starts.
	ReloadCounter uint16

	// Collision is set by the PHY Update FSM when this procedure crossed
	// the peer's own LL_PHY_REQ or was rejected with LL_PROC_COLLISION.
	// The dispatcher does not read it.
	Collision bool

	// RejectOpcode/RejectReason are not set by any FSM or by the
	// dispatcher, which emits LL_REJECT_EXT_IND directly as a PDU.
	RejectOpcode Opcode
	RejectReason HCIError

	conn *Connection

	phy       phyProcState
	feature   featureProcState
	version   versionProcState
	enc       encProcState
	length    lengthProcState
	connUpd   connUpdateProcState
	chMap     chMapProcState
	terminate terminateProcState
}

// reset clears a context for return to the pool. ctxpool.Release calls
// this so a reused context never leaks a stale field from its previous
// occupant into the next procedure.
func (c *ProcedureContext) reset() {
	*c = ProcedureContext{}
}

type phyProcState struct {
	Sub                        phySubState
	TxPreference, RxPreference PHY
	TxResult, RxResult         PHY
}

// phySubState distinguishes the finer-grained states spec §4.F names per
// role/direction (IDLE/TX_REQ/WAIT_RSP/TX_IND/WAIT_IND/WAIT_INSTANT/DONE)
// from the generic procState, since the PHY Update procedure has more
// distinct phases than any other FSM in this engine.
type phySubState uint8

const (
	phyIdle phySubState = iota
	phyWaitRsp
	phyWaitInd
	phyWaitInstant
	phyDoneNoChange
)

type featureProcState struct {
	Peer FeatureSet
}

type versionProcState struct {
	Sent bool
	Peer VersionInd
}

type encProcState struct {
	Sub        encSubState
	Rand, SKDm [8]byte
	EDiv       uint16
	IVm        [4]byte
	SKDs       [8]byte
	IVs        [4]byte

	// LTKResolved/LTKGranted are set by the host, asynchronously to this
	// FSM's own Tick cadence, via the start_enc_req_send HCI entry point
	// (spec §6) acting on the connection's active remote context.
	LTKResolved bool
	LTKGranted  bool
}

// encSubState names the Encryption Start states spec §4.F lists
// separately for central and peripheral.
type encSubState uint8

const (
	encIdle encSubState = iota
	encWaitEncRsp
	encWaitStartEncReq
	encWaitStartEncRspAck
	encWaitLTKReply
	encRejected
)

type lengthProcState struct {
	MaxRxOctets, MaxRxTime uint16
	MaxTxOctets, MaxTxTime uint16
}

type connUpdateProcState struct {
	WinSize             uint8
	WinOffset, Interval uint16
	Latency, Timeout    uint16
}

type chMapProcState struct {
	ChM [5]byte
}

type terminateProcState struct {
	Reason HCIError
}
