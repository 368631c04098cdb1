package llcp

import "github.com/sirupsen/logrus"

// Tracer receives one callback per class of dispatcher event. The default
// implementation returned by NewController logs through logrus; an
// embedding host can pass its own Tracer via WithTracer. This package's
// own noopTracer discards every event with empty method calls.
type Tracer interface {
	TxPDU(handle uint16, op Opcode)
	RxPDU(handle uint16, op Opcode)
	ProcedureStarted(handle uint16, kind ProcedureKind, local bool)
	ProcedureCompleted(handle uint16, kind ProcedureKind)
	ProcedureAborted(handle uint16, kind ProcedureKind, reason HCIError)
	Collision(handle uint16, kind ProcedureKind)
}

// logrusTracer is the default Tracer, grounded on the teacher's practice
// of gating verbose per-PDU traces behind a dedicated log call rather than
// interleaving them with protocol logic.
type logrusTracer struct {
	log *logrus.Entry
}

func newLogrusTracer(log *logrus.Entry) Tracer {
	return &logrusTracer{log: log}
}

func (t *logrusTracer) TxPDU(handle uint16, op Opcode) {
	t.log.WithField("handle", handle).Debugf("tx %s", op)
}

func (t *logrusTracer) RxPDU(handle uint16, op Opcode) {
	t.log.WithField("handle", handle).Debugf("rx %s", op)
}

func (t *logrusTracer) ProcedureStarted(handle uint16, kind ProcedureKind, local bool) {
	origin := "remote"
	if local {
		origin = "local"
	}
	t.log.WithField("handle", handle).Debugf("%s procedure %s started", origin, kind)
}

func (t *logrusTracer) ProcedureCompleted(handle uint16, kind ProcedureKind) {
	t.log.WithField("handle", handle).Debugf("procedure %s completed", kind)
}

func (t *logrusTracer) ProcedureAborted(handle uint16, kind ProcedureKind, reason HCIError) {
	t.log.WithField("handle", handle).Warnf("procedure %s aborted: %s", kind, reason)
}

func (t *logrusTracer) Collision(handle uint16, kind ProcedureKind) {
	t.log.WithField("handle", handle).Debugf("procedure %s collision", kind)
}

// noopTracer discards every event; the package's tests use it where a
// connection is built without a Controller.
type noopTracer struct{}

func (noopTracer) TxPDU(uint16, Opcode)                          {}
func (noopTracer) RxPDU(uint16, Opcode)                          {}
func (noopTracer) ProcedureStarted(uint16, ProcedureKind, bool)  {}
func (noopTracer) ProcedureCompleted(uint16, ProcedureKind)      {}
func (noopTracer) ProcedureAborted(uint16, ProcedureKind, HCIError) {}
func (noopTracer) Collision(uint16, ProcedureKind)               {}
