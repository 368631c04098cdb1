package llcp

import "testing"

func TestLocalRequestQueueFIFO(t *testing.T) {
	q := NewLocalRequestQueue()
	if !q.Empty() {
		t.Fatal("new queue should be empty")
	}
	q.Enqueue(ProcVersionExchange, nil)
	q.Enqueue(ProcFeatureExchange, nil)
	if q.Len() != 2 {
		t.Fatalf("Len = %d, want 2", q.Len())
	}
	r, ok := q.Pop()
	if !ok || r.kind != ProcVersionExchange {
		t.Fatalf("Pop 1 = %+v, %v", r, ok)
	}
	r, ok = q.Pop()
	if !ok || r.kind != ProcFeatureExchange {
		t.Fatalf("Pop 2 = %+v, %v", r, ok)
	}
	if !q.Empty() {
		t.Fatal("queue should be empty after draining")
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("Pop on empty queue should report false")
	}
}

func TestLocalRequestQueueEnqueueFrontPreempts(t *testing.T) {
	q := NewLocalRequestQueue()
	q.Enqueue(ProcPhyUpdate, nil)
	q.Enqueue(ProcLengthUpdate, nil)
	q.EnqueueFront(ProcTerminate, nil)

	r, ok := q.Peek()
	if !ok || r.kind != ProcTerminate {
		t.Fatalf("Peek after EnqueueFront = %+v, %v, want ProcTerminate", r, ok)
	}
	if q.Len() != 3 {
		t.Fatalf("Len = %d, want 3", q.Len())
	}
	q.Pop()
	r, _ = q.Peek()
	if r.kind != ProcPhyUpdate {
		t.Fatalf("second item = %v, want ProcPhyUpdate (original order preserved)", r.kind)
	}
}
