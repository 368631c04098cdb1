package llcp

// TxQueue is a connection's outbound PDU path: an unbounded data queue
// (payload PDUs the L2CAP/ATT layer above hands down, opaque to this
// package) plus exactly one control-PDU slot (spec §4.B). The single
// control slot exists because the Link Layer only ever has one LL control
// procedure's response in flight per direction; a second EnqueueControl
// before the first drains is a caller bug signaled by QueueFull, not
// queued behind it.
//
// Grounded on the teacher's l2cap struct (l2cap.go), which similarly
// separates a buffered data path (sendmu-guarded writes) from a
// single-shot in-flight request/response correlation, though this engine
// drops the teacher's mutex: spec §5 mandates single-threaded cooperative
// scheduling, so TxQueue is never touched concurrently.
type TxQueue struct {
	data    [][]byte
	control []byte
	hasCtrl bool
	m       *metrics
}

// NewTxQueue returns an empty queue.
func NewTxQueue(m *metrics) *TxQueue { return &TxQueue{m: m} }

// EnqueueData appends a data PDU; always succeeds, the data path has no
// capacity bound of its own (bounded upstream by the connection's
// effective throughput instead).
func (q *TxQueue) EnqueueData(pdu []byte) {
	q.data = append(q.data, pdu)
}

// EnqueueControl places pdu in the single control slot. Returns QueueFull
// if the slot is already occupied.
func (q *TxQueue) EnqueueControl(pdu []byte) error {
	if q.hasCtrl {
		if q.m != nil {
			q.m.txControlContended.Inc()
		}
		return QueueFull
	}
	q.control = pdu
	q.hasCtrl = true
	return nil
}

// PopControl removes and returns the queued control PDU, if any.
func (q *TxQueue) PopControl() ([]byte, bool) {
	if !q.hasCtrl {
		return nil, false
	}
	pdu := q.control
	q.control = nil
	q.hasCtrl = false
	return pdu, true
}

// PopData removes and returns the oldest queued data PDU, if any.
func (q *TxQueue) PopData() ([]byte, bool) {
	if len(q.data) == 0 {
		return nil, false
	}
	pdu := q.data[0]
	q.data = q.data[1:]
	return pdu, true
}

// ControlPending reports whether the control slot currently holds a PDU
// awaiting transmission.
func (q *TxQueue) ControlPending() bool { return q.hasCtrl }
