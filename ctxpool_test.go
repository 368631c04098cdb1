package llcp

import "testing"

func TestContextPoolExhaustionAndRelease(t *testing.T) {
	p := NewContextPool(2, nil)
	c1, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire 1: %v", err)
	}
	c2, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire 2: %v", err)
	}
	if _, err := p.Acquire(); err != Exhausted {
		t.Fatalf("Acquire 3: got %v, want Exhausted", err)
	}
	if got := p.InUse(); got != 2 {
		t.Fatalf("InUse = %d, want 2", got)
	}
	p.Release(c1)
	if got := p.InUse(); got != 1 {
		t.Fatalf("InUse after release = %d, want 1", got)
	}
	c3, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	p.Release(c2)
	p.Release(c3)
	if got := p.InUse(); got != 0 {
		t.Fatalf("InUse at quiescence = %d, want 0", got)
	}
	if p.Cap() != 2 {
		t.Fatalf("Cap() = %d, want 2", p.Cap())
	}
}

func TestContextReleaseResetsState(t *testing.T) {
	p := NewContextPool(1, nil)
	ctx, _ := p.Acquire()
	ctx.Kind = ProcPhyUpdate
	ctx.Local = true
	ctx.Collision = true
	p.Release(ctx)

	ctx2, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if ctx2.Kind != ProcNone || ctx2.Local || ctx2.Collision {
		t.Fatalf("reused context not reset: %+v", ctx2)
	}
}
