package llcp

import "github.com/google/uuid"

// NotifyKind tags which union member a Notification carries, mirroring
// ProcedureKind's tagged-union style (context.go) for the host-bound side
// of the engine.
type NotifyKind uint8

const (
	NotifyPhyUpdate NotifyKind = iota
	NotifyFeatureExchange
	NotifyVersionExchange
	NotifyEncChange
	NotifyConnUpdate
	NotifyChannelMapUpdate
	NotifyLengthUpdate
	NotifyDisconnect
)

// Notification is one host-bound event produced by a procedure FSM
// (spec §4.H). ID is a debugging correlation handle only — nothing in
// the dispatcher or FSMs branches on it — generated with google/uuid the
// way a host embedding this engine would tag it across a log pipeline.
type Notification struct {
	ID     uuid.UUID
	Handle uint16
	Kind   NotifyKind
	Status HCIError

	TxPhy, RxPhy     PHY
	PeerFeatures     FeatureSet
	PeerVersion      VersionInd
	Interval         uint16
	Latency, Timeout uint16
	ChM              [5]byte
	MaxTxOctets      uint16
	MaxTxTime        uint16
	MaxRxOctets      uint16
	MaxRxTime        uint16
}

// Handler receives completed notifications, adapting the teacher's
// ReadHandler/WriteHandler/NotifyHandler pattern (characteristic.go) from
// GATT attribute I/O to LLCP procedure completions: a plain interface
// plus a func adapter so callers can pass either a closure or a type
// with richer state.
type Handler interface {
	HandleNotification(n Notification)
}

// HandlerFunc adapts a plain function to Handler, the same
// http.HandlerFunc-style idiom the teacher applies to NotifyHandlerFunc.
type HandlerFunc func(n Notification)

// HandleNotification calls f(n).
func (f HandlerFunc) HandleNotification(n Notification) { f(n) }

// notifyNode is one slot in the bounded pool backing NotificationEmitter.
type notifyNode struct {
	n    Notification
	used bool
}

// NotificationEmitter allocates notification values from a fixed-size
// pool and hands them to a Handler (spec §4.H: "allocates a typed RX node
// from a bounded pool ... If the pool is empty, the dispatcher stalls the
// procedure one event and retries; no notification is ever dropped").
// Grounded on the teacher's notifier (notifier.go), which gates delivery
// on a single "done" flag; this widens that to a fixed pool since many
// procedures across many connections may need to notify in the same
// event.
type NotificationEmitter struct {
	nodes   []notifyNode
	handler Handler
}

// NewNotificationEmitter allocates n pool slots and registers handler as
// the delivery target. A nil handler is valid; notifications are then
// allocated and immediately released, a no-op host path useful in tests
// that only assert on TryEmit's result and the pool's occupancy.
func NewNotificationEmitter(n int, handler Handler) *NotificationEmitter {
	return &NotificationEmitter{
		nodes:   make([]notifyNode, n),
		handler: handler,
	}
}

// Acquire reserves a node for n without delivering it, returning its
// index and false if the pool is full. Tests exercising spec §4.H's
// exhaustion/retry behavior hold a node past its delivery via this call;
// normal delivery goes through TryEmit instead.
func (e *NotificationEmitter) Acquire(n Notification) (id int, ok bool) {
	for i := range e.nodes {
		if !e.nodes[i].used {
			n.ID = uuid.New()
			e.nodes[i].used = true
			e.nodes[i].n = n
			return i, true
		}
	}
	return -1, false
}

// Release returns node id to the pool.
func (e *NotificationEmitter) Release(id int) {
	e.nodes[id].used = false
}

// EmitReserved delivers n through a node previously reserved via Acquire,
// then releases it. Unlike TryEmit this never itself fails for want of a
// free slot: it exists for notifications that must go out even under
// pool exhaustion, such as the TERMINATE node Connection reserves at
// construction (spec §4.H's "no notification is ever dropped"). The
// node's correlation ID, stamped when it was first reserved, is carried
// over rather than reissued.
func (e *NotificationEmitter) EmitReserved(id int, n Notification) {
	n.ID = e.nodes[id].n.ID
	if e.handler != nil {
		e.handler.HandleNotification(n)
	}
	e.Release(id)
}

// TryEmit delivers n to the handler if a pool slot is free, and reports
// whether delivery happened. On false (NotifyExhausted), the FSM calling
// this must not advance past the notifying step; the dispatcher retries
// the same step on the next connection event. The node is held only for
// the duration of the handler callback: this engine's host path is
// synchronous, so there is no asynchronous drain to wait on.
func (e *NotificationEmitter) TryEmit(n Notification) (ok bool) {
	id, ok := e.Acquire(n)
	if !ok {
		return false
	}
	defer e.Release(id)
	if e.handler != nil {
		e.handler.HandleNotification(e.nodes[id].n)
	}
	return true
}

// InUse reports how many pool slots are currently held, for tests that
// Acquire without releasing to simulate exhaustion.
func (e *NotificationEmitter) InUse() int {
	n := 0
	for i := range e.nodes {
		if e.nodes[i].used {
			n++
		}
	}
	return n
}

// Cap is the pool's fixed capacity.
func (e *NotificationEmitter) Cap() int { return len(e.nodes) }
