package llcp

import "testing"

// collectingHandler records every notification handed to it, in order.
type collectingHandler struct {
	got []Notification
}

func (h *collectingHandler) HandleNotification(n Notification) {
	h.got = append(h.got, n)
}

func newTestConn(t *testing.T, role Role) (*Connection, *collectingHandler) {
	t.Helper()
	h := &collectingHandler{}
	c := NewController(h, WithMetricsRegistry(nil))
	conn, err := c.NewConnection(1, role)
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	return conn, h
}

// runUntil pumps RunEvent, feeding rx only on the call named by feedAt
// (1-indexed), until pred is satisfied or maxEvents is exceeded. It
// returns every TX PDU emitted across all events, in order.
func runUntil(conn *Connection, feedAt map[int][]PDUBody, maxEvents int, pred func() bool) []PDUBody {
	var allTx []PDUBody
	for i := 1; i <= maxEvents; i++ {
		tx, _ := conn.RunEvent(feedAt[i])
		allTx = append(allTx, tx...)
		if pred() {
			break
		}
	}
	return allTx
}

func findOpcode(tx []PDUBody, op Opcode) PDUBody {
	for _, p := range tx {
		if p.Opcode() == op {
			return p
		}
	}
	return nil
}

// S1 — Central-local PHY update, happy path.
func TestS1CentralLocalPhyUpdateHappyPath(t *testing.T) {
	conn, h := newTestConn(t, RoleCentral)
	if err := conn.PhyReqSend(Phy2M, Phy2M); err != ErrSuccess {
		t.Fatalf("PhyReqSend: %v", err)
	}

	// Event 1 only promotes; event 2 sends LL_PHY_REQ.
	tx := runUntil(conn, nil, 2, func() bool { return false })
	if findOpcode(tx, OpPhyReq) == nil {
		t.Fatalf("want LL_PHY_REQ among %v", tx)
	}

	rsp := []PDUBody{&PhyRsp{TxPhys: Phy2M, RxPhys: Phy2M}}
	tx2, _ := conn.RunEvent(rsp)
	ind, ok := findOpcode(tx2, OpPhyUpdateInd).(*PhyUpdateInd)
	if !ok {
		t.Fatalf("want LL_PHY_UPDATE_IND among %v", tx2)
	}
	if ind.Instant != conn.EventCounter+minPhyUpdateLatency {
		t.Fatalf("instant = %d, want %d", ind.Instant, conn.EventCounter+minPhyUpdateLatency)
	}

	for len(h.got) == 0 && conn.EventCounter < 1000 {
		conn.RunEvent(nil)
	}
	if len(h.got) != 1 {
		t.Fatalf("got %d notifications, want 1: %+v", len(h.got), h.got)
	}
	if h.got[0].Status != ErrSuccess || h.got[0].Kind != NotifyPhyUpdate {
		t.Fatalf("notification = %+v, want success PHY_UPDATE", h.got[0])
	}
}

// S2 — Central-local PHY update, peer lacks the feature.
func TestS2CentralLocalPhyUpdatePeerUnsupported(t *testing.T) {
	conn, h := newTestConn(t, RoleCentral)
	conn.PhyReqSend(Phy2M, Phy2M)
	runUntil(conn, nil, 2, func() bool { return false })

	conn.RunEvent([]PDUBody{&UnknownRsp{UnknownType: OpPhyReq}})

	if len(h.got) != 1 {
		t.Fatalf("got %d notifications, want 1: %+v", len(h.got), h.got)
	}
	if h.got[0].Status != ErrUnsupportedRemoteFeat {
		t.Fatalf("status = %v, want ErrUnsupportedRemoteFeat", h.got[0].Status)
	}
}

// S3 — Central-remote PHY update: peer initiates.
func TestS3CentralRemotePhyUpdate(t *testing.T) {
	conn, h := newTestConn(t, RoleCentral)

	tx, _ := conn.RunEvent([]PDUBody{&PhyReq{TxPhys: Phy2M, RxPhys: Phy2M}})
	ind, ok := findOpcode(tx, OpPhyUpdateInd).(*PhyUpdateInd)
	if !ok {
		t.Fatalf("want LL_PHY_UPDATE_IND among %v", tx)
	}
	if ind.Instant != conn.EventCounter+minPhyUpdateLatency {
		t.Fatalf("instant = %d, want %d", ind.Instant, conn.EventCounter+minPhyUpdateLatency)
	}

	for len(h.got) == 0 && conn.EventCounter < 1000 {
		conn.RunEvent(nil)
	}
	if len(h.got) != 1 || h.got[0].Status != ErrSuccess {
		t.Fatalf("notifications = %+v", h.got)
	}
}

// S4 — Peripheral-local PHY update.
func TestS4PeripheralLocalPhyUpdate(t *testing.T) {
	conn, h := newTestConn(t, RolePeripheral)
	conn.PhyReqSend(Phy2M, Phy2M)

	tx := runUntil(conn, nil, 2, func() bool { return false })
	if findOpcode(tx, OpPhyReq) == nil {
		t.Fatalf("want LL_PHY_REQ among %v", tx)
	}

	instant := conn.EventCounter + 10
	conn.RunEvent([]PDUBody{&PhyUpdateInd{MToSPhy: Phy2M, SToMPhy: Phy2M, Instant: instant}})

	for len(h.got) == 0 && conn.EventCounter < 1000 {
		conn.RunEvent(nil)
	}
	if len(h.got) != 1 || h.got[0].Status != ErrSuccess {
		t.Fatalf("notifications = %+v", h.got)
	}
}

// S5 — Central-local PHY update collides with an inbound peer PHY_REQ.
func TestS5CentralLocalPhyUpdateCollision(t *testing.T) {
	conn, _ := newTestConn(t, RoleCentral)
	conn.PhyReqSend(Phy2M, Phy2M)
	tx := runUntil(conn, nil, 2, func() bool { return false })
	if findOpcode(tx, OpPhyReq) == nil {
		t.Fatalf("want LL_PHY_REQ among %v", tx)
	}

	tx3, _ := conn.RunEvent([]PDUBody{&PhyReq{TxPhys: Phy1M, RxPhys: Phy1M}})
	rej, ok := findOpcode(tx3, OpRejectExtInd).(*RejectExtInd)
	if !ok {
		t.Fatalf("want LL_REJECT_EXT_IND among %v", tx3)
	}
	if rej.RejectOpcode != OpPhyReq || rej.ErrorCode != ErrLLProcCollision {
		t.Fatalf("reject = %+v", rej)
	}
	if !conn.LocalCtx.Collision {
		t.Fatal("want local context marked as collided")
	}

	tx4, _ := conn.RunEvent([]PDUBody{&PhyRsp{TxPhys: Phy2M, RxPhys: Phy2M}})
	if findOpcode(tx4, OpPhyUpdateInd) == nil {
		t.Fatalf("want LL_PHY_UPDATE_IND among %v", tx4)
	}
}

// S6 — Peripheral-local PHY update collides.
func TestS6PeripheralLocalPhyUpdateCollision(t *testing.T) {
	conn, h := newTestConn(t, RolePeripheral)
	conn.PhyReqSend(Phy2M, Phy2M)
	tx := runUntil(conn, nil, 2, func() bool { return false })
	if findOpcode(tx, OpPhyReq) == nil {
		t.Fatalf("want LL_PHY_REQ among %v", tx)
	}

	tx3, _ := conn.RunEvent([]PDUBody{&PhyReq{TxPhys: Phy1M, RxPhys: Phy1M}})
	if findOpcode(tx3, OpPhyRsp) == nil {
		t.Fatalf("want LL_PHY_RSP among %v", tx3)
	}

	conn.RunEvent([]PDUBody{&RejectExtInd{RejectOpcode: OpPhyReq, ErrorCode: ErrLLProcCollision}})
	if len(h.got) != 1 || h.got[0].Status != ErrLLProcCollision {
		t.Fatalf("first notification = %+v, want collision status", h.got)
	}

	instant := conn.EventCounter + 10
	conn.RunEvent([]PDUBody{&PhyUpdateInd{MToSPhy: Phy2M, SToMPhy: Phy2M, Instant: instant}})
	for len(h.got) < 2 && conn.EventCounter < 1000 {
		conn.RunEvent(nil)
	}
	if len(h.got) != 2 {
		t.Fatalf("notifications = %+v, want 2", h.got)
	}
	if h.got[1].Status != ErrSuccess {
		t.Fatalf("second notification = %+v, want success", h.got[1])
	}
}

// Invariant 1: acquired contexts never exceed pool capacity while several
// local requests queue behind the running one.
func TestInvariantContextPoolBound(t *testing.T) {
	h := &collectingHandler{}
	c := NewController(h, WithProcCtxPoolSize(2), WithMetricsRegistry(nil))
	conn, err := c.NewConnection(1, RoleCentral)
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}

	conn.VersionIndSend()
	conn.FeatureReqSend()
	conn.PhyReqSend(Phy1M, Phy1M) // only one runs at a time via LocalCtx; the rest queue

	for i := 0; i < 50; i++ {
		if c.ctxPool.InUse() > c.ctxPool.Cap() {
			t.Fatalf("InUse %d exceeds Cap %d", c.ctxPool.InUse(), c.ctxPool.Cap())
		}
		conn.RunEvent(nil)
	}
}

// Invariant 3: peripheral never emits LL_PHY_UPDATE_IND; central never
// emits LL_PHY_RSP.
func TestInvariantRoleAsymmetry(t *testing.T) {
	conn, _ := newTestConn(t, RolePeripheral)
	tx, _ := conn.RunEvent([]PDUBody{&PhyReq{TxPhys: Phy1M, RxPhys: Phy1M}})
	if findOpcode(tx, OpPhyUpdateInd) != nil {
		t.Fatal("peripheral must never emit LL_PHY_UPDATE_IND")
	}

	centralConn, _ := newTestConn(t, RoleCentral)
	tx2, _ := centralConn.RunEvent([]PDUBody{&PhyReq{TxPhys: Phy1M, RxPhys: Phy1M}})
	if findOpcode(tx2, OpPhyRsp) != nil {
		t.Fatal("central must never emit LL_PHY_RSP")
	}
}

// Invariant 4: a duplicate LL_VERSION_IND produces no second notification.
func TestInvariantVersionIdempotence(t *testing.T) {
	conn, h := newTestConn(t, RoleCentral)
	conn.VersionIndSend()
	runUntil(conn, nil, 2, func() bool { return false })

	peerInd := &VersionInd{Version: 5, Company: 1, Subversion: 2}
	conn.RunEvent([]PDUBody{peerInd})
	if len(h.got) != 1 {
		t.Fatalf("got %d notifications after first IND, want 1", len(h.got))
	}

	// A second, duplicate IND from the peer must not notify again.
	conn.RunEvent([]PDUBody{peerInd})
	if len(h.got) != 1 {
		t.Fatalf("got %d notifications after duplicate IND, want still 1", len(h.got))
	}
}
