package llcp

import "testing"

func TestTxQueueControlSlotSingleOccupant(t *testing.T) {
	q := NewTxQueue(nil)
	if err := q.EnqueueControl([]byte{0x01}); err != nil {
		t.Fatalf("first EnqueueControl: %v", err)
	}
	if err := q.EnqueueControl([]byte{0x02}); err != QueueFull {
		t.Fatalf("second EnqueueControl: got %v, want QueueFull", err)
	}
	pdu, ok := q.PopControl()
	if !ok || pdu[0] != 0x01 {
		t.Fatalf("PopControl: got %v, %v", pdu, ok)
	}
	if _, ok := q.PopControl(); ok {
		t.Fatal("PopControl: slot should be empty after pop")
	}
	if err := q.EnqueueControl([]byte{0x03}); err != nil {
		t.Fatalf("EnqueueControl after drain: %v", err)
	}
}

func TestTxQueueDataFIFO(t *testing.T) {
	q := NewTxQueue(nil)
	q.EnqueueData([]byte{1})
	q.EnqueueData([]byte{2})
	q.EnqueueData([]byte{3})
	for _, want := range [][]byte{{1}, {2}, {3}} {
		got, ok := q.PopData()
		if !ok || got[0] != want[0] {
			t.Fatalf("PopData: got %v, want %v", got, want)
		}
	}
	if _, ok := q.PopData(); ok {
		t.Fatal("PopData: expected empty queue")
	}
}
