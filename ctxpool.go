package llcp

// ContextPool is the fixed-capacity free list of ProcedureContext values
// backing every active local or remote procedure on every connection a
// Controller owns (spec §4.C). Capacity is shared across connections, not
// per-connection: a controller with many links and few concurrent
// procedures needs far fewer contexts than links * max-concurrent-kinds.
//
// Grounded on the teacher's handleRange (handle.go), which manages a
// different fixed resource (ATT attribute handles) the same way: a slice
// sized once at construction and an index-based free/in-use split, rather
// than reaching for sync.Pool (wrong fit: these are finite domain objects
// with identity, not a cache of interchangeable byte buffers).
type ContextPool struct {
	slots []ProcedureContext
	free  []*ProcedureContext
	m     *metrics
}

// NewContextPool allocates n contexts up front; the pool never grows.
func NewContextPool(n int, m *metrics) *ContextPool {
	p := &ContextPool{
		slots: make([]ProcedureContext, n),
		free:  make([]*ProcedureContext, 0, n),
		m:     m,
	}
	for i := range p.slots {
		p.free = append(p.free, &p.slots[i])
	}
	return p
}

// Acquire returns a zeroed context, or Exhausted if every slot is in use.
// It never blocks. On Exhausted the dispatcher's promote leaves the local
// request queued and tries again on the next connection event, while
// deliver drops the inbound PDU that would have started a remote
// procedure.
func (p *ContextPool) Acquire() (*ProcedureContext, error) {
	n := len(p.free)
	if n == 0 {
		return nil, Exhausted
	}
	ctx := p.free[n-1]
	p.free = p.free[:n-1]
	if p.m != nil {
		p.m.contextPoolInUse.Set(float64(len(p.slots) - len(p.free)))
	}
	return ctx, nil
}

// Release clears ctx and returns it to the free list. Releasing a context
// not drawn from this pool, or releasing twice, is a caller bug; like the
// teacher's handle bookkeeping this is not defended against at runtime.
func (p *ContextPool) Release(ctx *ProcedureContext) {
	ctx.reset()
	p.free = append(p.free, ctx)
	if p.m != nil {
		p.m.contextPoolInUse.Set(float64(len(p.slots) - len(p.free)))
	}
}

// InUse reports how many contexts are currently out of the pool, for
// tests asserting the pool-capacity bound (TestInvariantContextPoolBound).
func (p *ContextPool) InUse() int { return len(p.slots) - len(p.free) }

// Cap is the pool's fixed capacity.
func (p *ContextPool) Cap() int { return len(p.slots) }
