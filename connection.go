package llcp

// Connection is the per-link aggregate shared by every procedure FSM
// (spec §3 "Connection", §4.I). One Connection exists per BLE link; all
// of its fields are mutated only from the single radio-event context
// (spec §5), so it carries no internal locking — the same no-lock
// discipline the teacher's conn.go uses for its link-local state.
type Connection struct {
	Handle uint16
	Role   Role

	EventCounter uint16

	FeaturesLocal FeatureSet
	FeaturesPeer  FeatureSet
	FeaturesValid bool

	PhyTx, PhyRx         PHY
	PhyPrefTx, PhyPrefRx PHY

	EncTx, EncRx bool

	MaxTxOctets, MaxRxOctets uint16
	MaxTxTime, MaxRxTime     uint16

	SupervisionReload uint16
	ProcedureReload   uint16
	AptoReload        uint16

	// Latency is the negotiated peripheral latency, in connection events
	// (0 until a Connection Update sets it). PHY/Channel Map/Connection
	// Update instants are scheduled at least this many events out, so a
	// peripheral skipping events under latency still has a chance to see
	// the instant before it elapses.
	Latency uint16

	// TerminateReason is 0 (ErrSuccess) while the connection is healthy;
	// any other value arms the pre-empt check in the dispatcher (spec
	// §4.G step 2).
	TerminateReason HCIError

	LocalQueue  *LocalRequestQueue
	RemoteQueue *RemoteRequestQueue

	LocalCtx  *ProcedureContext
	RemoteCtx *ProcedureContext

	Tx *TxQueue

	// versionSent/versionPeer cache the one-shot Version Exchange result
	// (spec §4.F "each side sends exactly one LL_VERSION_IND per
	// connection; subsequent local requests complete immediately using
	// the cached remote version").
	versionSent bool
	versionPeer VersionInd
	versionHave bool

	// terminateNtfID is the pre-allocated notification node reserved at
	// connect time (spec §4.I: "Creation requires a pre-allocated
	// 'terminate notification' RX node ... so TERMINATE can always
	// notify even under memory pressure"). -1 once released back to the
	// emitter by Close.
	terminateNtfID int

	ctxPool  *ContextPool
	notifier *NotificationEmitter
	tracer   Tracer
	metrics  *metrics
}

// NewConnection constructs a Connection bound to the given resources. It
// reserves one notification node up front for the eventual TERMINATE
// notification, mirroring the original source's ll_create_connection,
// which pre-links conn->terminate.node_rx before the connection is usable
// at all; NewConnection returns NotifyExhausted if that reservation fails
// so the caller refuses the connection outright rather than create one
// that could later die silently.
func NewConnection(handle uint16, role Role, cfg ControllerConfig, pool *ContextPool, notifier *NotificationEmitter, tracer Tracer, m *metrics) (*Connection, error) {
	id, ok := notifier.Acquire(Notification{Handle: handle, Kind: NotifyDisconnect})
	if !ok {
		return nil, NotifyExhausted
	}
	c := &Connection{
		Handle:            handle,
		Role:              role,
		PhyTx:             cfg.DefaultPhyTx,
		PhyRx:             cfg.DefaultPhyRx,
		PhyPrefTx:         cfg.DefaultPhyTx,
		PhyPrefRx:         cfg.DefaultPhyRx,
		MaxTxOctets:       cfg.DefaultTxOctets,
		MaxRxOctets:       cfg.DefaultTxOctets,
		MaxTxTime:         cfg.DefaultTxTime,
		MaxRxTime:         cfg.DefaultTxTime,
		ProcedureReload:   cfg.ProcedureReloadDefault,
		LocalQueue:        NewLocalRequestQueue(),
		RemoteQueue:       NewRemoteRequestQueue(),
		Tx:                NewTxQueue(m),
		terminateNtfID:    id,
		ctxPool:           pool,
		notifier:          notifier,
		tracer:            tracer,
		metrics:           m,
	}
	return c, nil
}

// Close delivers the TERMINATE notification through the connection's
// reserved node, releases that node, and releases both active procedure
// contexts, if any. Called once the connection is fully torn down
// (TERMINATE acked, remote TERMINATE_IND received, or supervision/
// procedure-reload timeout).
func (c *Connection) Close() {
	if c.terminateNtfID >= 0 {
		c.notifier.EmitReserved(c.terminateNtfID, Notification{
			Handle: c.Handle,
			Kind:   NotifyDisconnect,
			Status: c.TerminateReason,
		})
		c.terminateNtfID = -1
	}
	if c.LocalCtx != nil {
		c.ctxPool.Release(c.LocalCtx)
		c.LocalCtx = nil
	}
	if c.RemoteCtx != nil {
		c.ctxPool.Release(c.RemoteCtx)
		c.RemoteCtx = nil
	}
}

// RequestTerminate arms TerminateReason so the next RunEvent pre-empts
// any in-flight procedure with a TERMINATE context (spec §4.G step 2).
// A second call while a reason is already set is a no-op: the first
// reason wins.
func (c *Connection) RequestTerminate(reason HCIError) {
	if c.TerminateReason == ErrSuccess {
		c.TerminateReason = reason
	}
}
