package llcp

import "testing"

func TestNotificationEmitterExhaustionAndRetry(t *testing.T) {
	var delivered []Notification
	e := NewNotificationEmitter(1, HandlerFunc(func(n Notification) {
		delivered = append(delivered, n)
	}))

	id, ok := e.Acquire(Notification{Kind: NotifyDisconnect})
	if !ok {
		t.Fatal("first Acquire should succeed")
	}
	if e.InUse() != 1 {
		t.Fatalf("InUse = %d, want 1", e.InUse())
	}

	// Pool is now full: TryEmit must fail without calling the handler,
	// the stall-and-retry behavior the dispatcher relies on.
	if e.TryEmit(Notification{Kind: NotifyPhyUpdate}) {
		t.Fatal("TryEmit should fail while the pool is exhausted")
	}
	if len(delivered) != 0 {
		t.Fatalf("handler should not have been called: %v", delivered)
	}

	e.Release(id)
	if e.InUse() != 0 {
		t.Fatalf("InUse after Release = %d, want 0", e.InUse())
	}

	if !e.TryEmit(Notification{Kind: NotifyPhyUpdate}) {
		t.Fatal("TryEmit should succeed once a slot is free")
	}
	if len(delivered) != 1 || delivered[0].Kind != NotifyPhyUpdate {
		t.Fatalf("delivered = %+v", delivered)
	}
	// TryEmit releases the node itself once the handler returns.
	if e.InUse() != 0 {
		t.Fatalf("InUse after TryEmit = %d, want 0", e.InUse())
	}
}

func TestNotificationEmitterNilHandler(t *testing.T) {
	e := NewNotificationEmitter(1, nil)
	if !e.TryEmit(Notification{Kind: NotifyDisconnect}) {
		t.Fatal("TryEmit with a nil handler should still report success")
	}
	if e.InUse() != 0 {
		t.Fatalf("InUse = %d, want 0", e.InUse())
	}
}

func TestNotificationEmitterCap(t *testing.T) {
	e := NewNotificationEmitter(3, nil)
	if e.Cap() != 3 {
		t.Fatalf("Cap() = %d, want 3", e.Cap())
	}
}
