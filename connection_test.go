package llcp

import "testing"

func TestNewConnectionReservesTerminateNode(t *testing.T) {
	pool := NewContextPool(4, nil)
	notifier := NewNotificationEmitter(1, nil)
	cfg := DefaultControllerConfig()

	conn, err := NewConnection(1, RoleCentral, cfg, pool, notifier, noopTracer{}, nil)
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	if notifier.InUse() != 1 {
		t.Fatalf("InUse after NewConnection = %d, want 1 (terminate node reserved)", notifier.InUse())
	}

	conn.Close()
	if notifier.InUse() != 0 {
		t.Fatalf("InUse after Close = %d, want 0", notifier.InUse())
	}
}

func TestNewConnectionRefusedWhenNotifyPoolExhausted(t *testing.T) {
	pool := NewContextPool(4, nil)
	notifier := NewNotificationEmitter(1, nil)
	cfg := DefaultControllerConfig()

	// Exhaust the one available slot before the connection ever reserves
	// its terminate node.
	if _, ok := notifier.Acquire(Notification{}); !ok {
		t.Fatal("setup: Acquire should have succeeded")
	}

	_, err := NewConnection(2, RoleCentral, cfg, pool, notifier, noopTracer{}, nil)
	if err != NotifyExhausted {
		t.Fatalf("NewConnection error = %v, want NotifyExhausted", err)
	}
}

func TestConnectionCloseReleasesActiveContexts(t *testing.T) {
	pool := NewContextPool(4, nil)
	notifier := NewNotificationEmitter(2, nil)
	cfg := DefaultControllerConfig()

	conn, err := NewConnection(1, RoleCentral, cfg, pool, notifier, noopTracer{}, nil)
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}

	local, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	remote, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	conn.LocalCtx, conn.RemoteCtx = local, remote
	if pool.InUse() != 2 {
		t.Fatalf("InUse = %d, want 2", pool.InUse())
	}

	conn.Close()
	if pool.InUse() != 0 {
		t.Fatalf("InUse after Close = %d, want 0", pool.InUse())
	}
	if conn.LocalCtx != nil || conn.RemoteCtx != nil {
		t.Fatal("Close should clear both context pointers")
	}
}

func TestRequestTerminateFirstReasonWins(t *testing.T) {
	pool := NewContextPool(4, nil)
	notifier := NewNotificationEmitter(1, nil)
	cfg := DefaultControllerConfig()

	conn, err := NewConnection(1, RoleCentral, cfg, pool, notifier, noopTracer{}, nil)
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}

	conn.RequestTerminate(ErrRemoteUserTerminated)
	conn.RequestTerminate(ErrConnTimeout)
	if conn.TerminateReason != ErrRemoteUserTerminated {
		t.Fatalf("TerminateReason = %v, want first reason ErrRemoteUserTerminated", conn.TerminateReason)
	}
}
