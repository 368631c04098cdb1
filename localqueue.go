package llcp

// localRequest is one HCI-initiated procedure awaiting a free local
// context, the descriptor spec §4.D calls `{kind, params}`. params is a
// kind-specific payload stashed until Promote (dispatcher.go step 6)
// copies it into a freshly acquired ProcedureContext.
type localRequest struct {
	kind   ProcedureKind
	params interface{}
}

// LocalRequestQueue is the per-connection FIFO of pending locally
// initiated procedures (spec §4.D). Enqueue never fails: the queue has no
// capacity bound, and a request leaves it only once promote acquires a
// context for it. Grounded on the teacher's eventloop's queue-then-drain shape
// (l2cap.go's readbuf accumulation ahead of handleReq), adapted from
// byte-buffer draining to descriptor draining.
type LocalRequestQueue struct {
	items []localRequest
}

// NewLocalRequestQueue returns an empty queue.
func NewLocalRequestQueue() *LocalRequestQueue { return &LocalRequestQueue{} }

// Enqueue appends a request to the back of the queue.
func (q *LocalRequestQueue) Enqueue(kind ProcedureKind, params interface{}) {
	q.items = append(q.items, localRequest{kind: kind, params: params})
}

// EnqueueFront pushes a request to the front, used only for the
// pre-emptive TERMINATE procedure (spec §4.G step 2), which must run
// ahead of whatever else is already queued.
func (q *LocalRequestQueue) EnqueueFront(kind ProcedureKind, params interface{}) {
	q.items = append([]localRequest{{kind: kind, params: params}}, q.items...)
}

// Peek returns the head request without removing it.
func (q *LocalRequestQueue) Peek() (localRequest, bool) {
	if len(q.items) == 0 {
		return localRequest{}, false
	}
	return q.items[0], true
}

// Pop removes and returns the head request.
func (q *LocalRequestQueue) Pop() (localRequest, bool) {
	r, ok := q.Peek()
	if ok {
		q.items = q.items[1:]
	}
	return r, ok
}

// Empty reports whether the queue has no pending requests.
func (q *LocalRequestQueue) Empty() bool { return len(q.items) == 0 }

// Len reports the number of pending requests.
func (q *LocalRequestQueue) Len() int { return len(q.items) }
