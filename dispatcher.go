package llcp

// Controller owns the resources shared by every connection it manages:
// the procedure context pool, the notification pool, and the
// tracer/metrics pair every connection's dispatcher reports through. It
// is the Go analogue of the teacher's Device (device_linux.go): one long
// lived value a host constructs once and hands connections out of.
type Controller struct {
	cfg      ControllerConfig
	ctxPool  *ContextPool
	notifier *NotificationEmitter
	tracer   Tracer
	metrics  *metrics
}

// NewController applies opts over DefaultControllerConfig and builds the
// shared pools.
func NewController(handler Handler, opts ...Option) *Controller {
	cfg := DefaultControllerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = newLogrusTracer(cfg.Log)
	}
	m := newMetrics(cfg.Registry)
	return &Controller{
		cfg:      cfg,
		ctxPool:  NewContextPool(cfg.ProcCtxPoolSize, m),
		notifier: NewNotificationEmitter(cfg.NotifyPoolSize, handler),
		tracer:   tracer,
		metrics:  m,
	}
}

// NewConnection creates a Connection bound to this controller's shared
// pools, reserving its terminate-notification node up front (spec §4.I).
func (c *Controller) NewConnection(handle uint16, role Role) (*Connection, error) {
	return NewConnection(handle, role, c.cfg, c.ctxPool, c.notifier, c.tracer, c.metrics)
}

// opcodeKind maps an LL control opcode to the procedure it belongs to,
// used by RunEvent to route an inbound PDU to the right FSM or to start
// a fresh remote context for it (spec §4.G step 5).
var opcodeKind = map[Opcode]ProcedureKind{
	OpConnectionUpdateInd: ProcConnectionUpdate,
	OpChannelMapInd:       ProcChannelMapUpdate,
	OpTerminateInd:        ProcTerminate,
	OpEncReq:              ProcEncryptionStart,
	OpEncRsp:              ProcEncryptionStart,
	OpStartEncReq:         ProcEncryptionStart,
	OpStartEncRsp:         ProcEncryptionStart,
	OpFeatureReq:          ProcFeatureExchange,
	OpFeatureRsp:          ProcFeatureExchange,
	OpPauseEncReq:         ProcEncryptionPause,
	OpPauseEncRsp:         ProcEncryptionPause,
	OpVersionInd:          ProcVersionExchange,
	OpSlaveFeatureReq:     ProcFeatureExchange,
	OpLengthReq:           ProcLengthUpdate,
	OpLengthRsp:           ProcLengthUpdate,
	OpPhyReq:              ProcPhyUpdate,
	OpPhyRsp:              ProcPhyUpdate,
	OpPhyUpdateInd:        ProcPhyUpdate,
}

// RunEvent drives one connection event: increments the event counter,
// pumps the active local/remote procedures, routes inbound PDUs, and
// promotes the next queued local request if none is running (spec
// §4.G). rx holds every control PDU received during this event, in
// arrival order. RunEvent returns the control PDUs to transmit, in
// emission order, and reports whether the connection should now be torn
// down (its TERMINATE procedure reached DONE, or its procedure_reload
// counter expired).
func (conn *Connection) RunEvent(rx []PDUBody) (tx []PDUBody, shouldClose bool) {
	conn.EventCounter++

	conn.preempt()

	if conn.LocalCtx != nil {
		tx = conn.step(conn.LocalCtx, Event{Kind: EventTick}, tx, &shouldClose)
	}
	if conn.RemoteCtx != nil {
		tx = conn.step(conn.RemoteCtx, Event{Kind: EventTick}, tx, &shouldClose)
	}

	for _, pdu := range rx {
		tx = conn.deliver(pdu, tx, &shouldClose)
	}

	conn.promote()

	for _, ctx := range []*ProcedureContext{conn.LocalCtx, conn.RemoteCtx} {
		if ctx == nil {
			continue
		}
		if ctx.ReloadCounter > 0 {
			ctx.ReloadCounter--
		}
		if ctx.ReloadCounter == 0 {
			tx = conn.step(ctx, Event{Kind: EventTimeout}, tx, &shouldClose)
			shouldClose = true
			conn.TerminateReason = ErrLLResponseTimeout
		}
	}

	return tx, shouldClose
}

// preempt implements spec §4.G step 2: if a terminate reason is armed
// and no TERMINATE context already owns the connection, release
// whatever local procedure is running and push a TERMINATE request to
// the front of the local queue so Promote picks it up this same event.
func (conn *Connection) preempt() {
	if conn.TerminateReason == ErrSuccess {
		return
	}
	if conn.LocalCtx != nil && conn.LocalCtx.Kind == ProcTerminate {
		return
	}
	if conn.LocalCtx != nil {
		conn.ctxPool.Release(conn.LocalCtx)
		conn.LocalCtx = nil
	}
	if head, ok := conn.LocalQueue.Peek(); ok && head.kind == ProcTerminate {
		return
	}
	conn.LocalQueue.EnqueueFront(ProcTerminate, nil)
}

// promote implements spec §4.G step 6.
func (conn *Connection) promote() {
	if conn.LocalCtx != nil || conn.LocalQueue.Empty() {
		return
	}
	req, _ := conn.LocalQueue.Peek()
	ctx, err := conn.ctxPool.Acquire()
	if err != nil {
		return // deferred: retried on the next event (spec §7)
	}
	conn.LocalQueue.Pop()
	ctx.Kind = req.kind
	ctx.Local = true
	ctx.ReloadCounter = conn.ProcedureReload
	applyLocalParams(ctx, req.params)
	conn.LocalCtx = ctx
	conn.tracer.ProcedureStarted(conn.Handle, ctx.Kind, true)
	if conn.metrics != nil {
		conn.metrics.proceduresStarted.WithLabelValues(ctx.Kind.String(), "local").Inc()
	}
}

// step runs one FSM tick on ctx and applies its StepResult: queues a TX
// PDU, emits a notification, or releases the context on Complete/Abort.
func (conn *Connection) step(ctx *ProcedureContext, ev Event, tx []PDUBody, shouldClose *bool) []PDUBody {
	res := runProcedure(conn, ctx, ev)
	switch res.Kind {
	case StepEmitTx:
		conn.tracer.TxPDU(conn.Handle, res.Tx.Opcode())
		tx = append(tx, res.Tx)
	case StepEmitNtf:
		if !conn.notifier.TryEmit(res.Ntf) {
			// Pool exhausted: stall this procedure one event, retried
			// automatically since ctx.State/Sub was not advanced.
			return tx
		}
	case StepComplete:
		conn.tracer.ProcedureCompleted(conn.Handle, ctx.Kind)
		if conn.metrics != nil {
			conn.metrics.proceduresCompleted.WithLabelValues(ctx.Kind.String()).Inc()
		}
		if ctx.Kind == ProcTerminate {
			*shouldClose = true
		}
		conn.releaseCtx(ctx)
	case StepAbort:
		conn.tracer.ProcedureAborted(conn.Handle, ctx.Kind, res.Reason)
		if conn.metrics != nil {
			conn.metrics.proceduresAborted.WithLabelValues(ctx.Kind.String(), res.Reason.Error()).Inc()
		}
		conn.RequestTerminate(res.Reason)
		conn.releaseCtx(ctx)
	}
	return tx
}

func (conn *Connection) releaseCtx(ctx *ProcedureContext) {
	if conn.LocalCtx == ctx {
		conn.LocalCtx = nil
	}
	if conn.RemoteCtx == ctx {
		conn.RemoteCtx = nil
		conn.RemoteQueue.Clear()
	}
	conn.ctxPool.Release(ctx)
}

// deliver routes one inbound PDU (spec §4.G step 5).
func (conn *Connection) deliver(pdu PDUBody, tx []PDUBody, shouldClose *bool) []PDUBody {
	conn.tracer.RxPDU(conn.Handle, pdu.Opcode())

	if unk, ok := pdu.(*UnknownPDU); ok {
		return append(tx, &UnknownRsp{UnknownType: unk.Raw})
	}

	// LL_UNKNOWN_RSP/LL_REJECT_IND/LL_REJECT_EXT_IND are generic replies
	// that reference the opcode they concern in their own payload rather
	// than carrying a kind of their own; route them straight to whichever
	// procedure is waiting, local taking priority, instead of by a kind
	// lookup on their own opcode.
	switch pdu.(type) {
	case *UnknownRsp, *RejectInd, *RejectExtInd:
		if conn.LocalCtx != nil {
			return conn.step(conn.LocalCtx, Event{Kind: EventRx, Pdu: pdu}, tx, shouldClose)
		}
		if conn.RemoteCtx != nil {
			return conn.step(conn.RemoteCtx, Event{Kind: EventRx, Pdu: pdu}, tx, shouldClose)
		}
		return tx
	}

	kind, known := opcodeKind[pdu.Opcode()]
	if !known {
		return append(tx, &UnknownRsp{UnknownType: pdu.Opcode()})
	}

	if conn.LocalCtx != nil && conn.LocalCtx.Kind == kind {
		return conn.step(conn.LocalCtx, Event{Kind: EventRx, Pdu: pdu}, tx, shouldClose)
	}
	if conn.RemoteCtx != nil && conn.RemoteCtx.Kind == kind {
		return conn.step(conn.RemoteCtx, Event{Kind: EventRx, Pdu: pdu}, tx, shouldClose)
	}

	ctx, err := conn.ctxPool.Acquire()
	if err != nil {
		// No context available to start a remote procedure; the peer
		// will retry the initiating PDU, there is no other recovery.
		return tx
	}
	ctx.Kind = kind
	ctx.Local = false
	ctx.ReloadCounter = conn.ProcedureReload
	if !conn.RemoteQueue.TryStart(ctx) {
		conn.ctxPool.Release(ctx)
		return append(tx, &RejectExtInd{RejectOpcode: pdu.Opcode(), ErrorCode: ErrDiffTransCollision})
	}
	conn.RemoteCtx = ctx
	conn.tracer.ProcedureStarted(conn.Handle, kind, false)
	if conn.metrics != nil {
		conn.metrics.proceduresStarted.WithLabelValues(kind.String(), "remote").Inc()
	}
	return conn.step(ctx, Event{Kind: EventRx, Pdu: pdu}, tx, shouldClose)
}

// applyLocalParams copies an HCI entry point's request parameters into a
// freshly promoted context, by kind. params is nil for procedures with no
// parameters of their own (version exchange, feature exchange, pause
// encryption).
func applyLocalParams(ctx *ProcedureContext, params interface{}) {
	switch p := params.(type) {
	case phyProcState:
		ctx.phy = p
	case lengthProcState:
		ctx.length = p
	case connUpdateProcState:
		ctx.connUpd = p
	case chMapProcState:
		ctx.chMap = p
	case encProcState:
		ctx.enc = p
	}
}
