package llcp

import "github.com/pkg/errors"

// CodecError reports a malformed LL control PDU: an empty buffer or a
// payload shorter than the opcode's fixed layout requires. An opcode this
// engine does not recognize is not a CodecError; Decode returns it as
// *UnknownPDU.
type CodecError struct {
	Opcode Opcode
	Reason string
}

func (e *CodecError) Error() string {
	return errors.Errorf("llcp: malformed %s PDU: %s", e.Opcode, e.Reason).Error()
}

// newMalformed wraps a decode failure with a stack trace; callers
// errors.Cause() it down to the typed *CodecError.
func newMalformed(op Opcode, reason string) error {
	return errors.WithStack(&CodecError{Opcode: op, Reason: reason})
}

// QueueFull is returned by TxQueue.EnqueueControl when the single control
// slot is already occupied (spec §4.B).
var QueueFull = errors.New("llcp: control PDU slot occupied")

// Exhausted is returned by ContextPool.Acquire when no free context
// remains (spec §4.C).
var Exhausted = errors.New("llcp: procedure context pool exhausted")

// NotifyExhausted is returned by NewConnection when the host RX-node pool
// has no free node to reserve for the connection's TERMINATE
// notification (spec §4.H/§4.I). The emitter itself reports exhaustion
// as a false result from Acquire/TryEmit.
var NotifyExhausted = errors.New("llcp: notification node pool exhausted")
