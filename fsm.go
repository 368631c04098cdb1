package llcp

// EventKind tags what kind of event is driving one FSM.run call (spec
// §4.F: "run(ctx, event) -> StepResult where event ∈ {Tick, Rx(pdu),
// InstantReached, Timeout}").
type EventKind uint8

const (
	EventTick EventKind = iota
	EventRx
	EventInstantReached
	EventTimeout
)

// Event is the input to one FSM step. Pdu is populated only when Kind ==
// EventRx.
type Event struct {
	Kind EventKind
	Pdu  PDUBody
}

// StepKind tags a StepResult's variant, the Go rendering of spec §4.F's
// `StepResult ∈ {Continue, EmitTx(pdu), EmitNtf(ntf), Complete,
// Abort(reason)}` tagged union.
type StepKind uint8

const (
	StepContinue StepKind = iota
	StepEmitTx
	StepEmitNtf
	StepComplete
	StepAbort
)

// StepResult is what a procedure FSM returns from one run call. Only the
// field matching Kind is meaningful, following the same single-struct
// tagged-union convention as ProcedureContext (context.go) and
// Notification (notification.go).
type StepResult struct {
	Kind   StepKind
	Tx     PDUBody
	Ntf    Notification
	Reason HCIError
}

func contResult() StepResult                { return StepResult{Kind: StepContinue} }
func txResult(pdu PDUBody) StepResult       { return StepResult{Kind: StepEmitTx, Tx: pdu} }
func ntfResult(n Notification) StepResult   { return StepResult{Kind: StepEmitNtf, Ntf: n} }
func completeResult() StepResult            { return StepResult{Kind: StepComplete} }
func abortResult(reason HCIError) StepResult { return StepResult{Kind: StepAbort, Reason: reason} }

// recordInstantMissed counts an instant learned from a peer PDU that has
// already elapsed by the very first check — a self-scheduled instant can
// never trigger this, since it is always placed instantLeadEvents ahead
// of the current event counter.
func recordInstantMissed(conn *Connection, instant uint16) {
	if conn.metrics != nil && isInstantReached(conn.EventCounter, instant) {
		conn.metrics.instantMissed.Inc()
	}
}

// runProcedure dispatches one FSM step by the context's Kind, the Go
// analogue of the teacher's opcode switch in handleReq (l2cap.go) but
// switching on procedure kind instead of PDU opcode: each arm is a
// dedicated run<Kind> function in its own fsm_*.go file.
func runProcedure(conn *Connection, ctx *ProcedureContext, ev Event) StepResult {
	switch ctx.Kind {
	case ProcPhyUpdate:
		return runPhyUpdate(conn, ctx, ev)
	case ProcFeatureExchange:
		return runFeatureExchange(conn, ctx, ev)
	case ProcVersionExchange:
		return runVersionExchange(conn, ctx, ev)
	case ProcEncryptionStart, ProcEncryptionPause:
		return runEncryption(conn, ctx, ev)
	case ProcTerminate:
		return runTerminate(conn, ctx, ev)
	case ProcLengthUpdate:
		return runLengthUpdate(conn, ctx, ev)
	case ProcConnectionUpdate:
		return runConnectionUpdate(conn, ctx, ev)
	case ProcChannelMapUpdate:
		return runChannelMapUpdate(conn, ctx, ev)
	default:
		return abortResult(ErrUnspecifiedError)
	}
}
