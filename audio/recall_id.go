package audio

import (
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// RecallID identifies one run of the recall tree in a recycling context.
type RecallID struct {
	id    xid.ID
	scope SoundScope
	tick  uint64

	mu      sync.RWMutex
	context *RecyclingContext
	state   State
}

// NewRecallID returns recall id bound to context.
func NewRecallID(scope SoundScope, ctx *RecyclingContext) *RecallID {
	id := &RecallID{
		id:    xid.New(),
		scope: scope,
	}
	id.SetRecyclingContext(ctx)
	return id
}

// ID returns short id.
func (id *RecallID) ID() xid.ID {
	return id.id
}

func (id *RecallID) String() string {
	return id.id.String()
}

// SoundScope of the run.
func (id *RecallID) SoundScope() SoundScope {
	return id.scope
}

// RecyclingContext of the run.
func (id *RecallID) RecyclingContext() *RecyclingContext {
	if id == nil {
		return nil
	}
	id.mu.RLock()
	defer id.mu.RUnlock()
	return id.context
}

// SetRecyclingContext binds id to context.
func (id *RecallID) SetRecyclingContext(ctx *RecyclingContext) {
	id.mu.Lock()
	id.context = ctx
	id.mu.Unlock()
	if ctx != nil {
		ctx.setRecallID(id)
	}
}

// Parent returns recall id of the parent context.
func (id *RecallID) Parent() *RecallID {
	ctx := id.RecyclingContext()
	if ctx == nil || ctx.Parent() == nil {
		return nil
	}
	return ctx.Parent().RecallID()
}

// Toplevel returns recall id of the toplevel context. Ids without context
// are their own toplevel.
func (id *RecallID) Toplevel() *RecallID {
	if id == nil {
		return nil
	}
	ctx := id.RecyclingContext()
	if ctx == nil {
		return id
	}
	if top := ctx.Toplevel().RecallID(); top != nil {
		return top
	}
	return id
}

// Tick returns number of completed ticks of the run.
func (id *RecallID) Tick() uint64 {
	return atomic.LoadUint64(&id.tick)
}

// Advance increments tick counter.
func (id *RecallID) Advance() uint64 {
	return atomic.AddUint64(&id.tick, 1)
}

// SetState sets state flags.
func (id *RecallID) SetState(s State) {
	id.mu.Lock()
	id.state |= s
	id.mu.Unlock()
}

// HasState tests state flags.
func (id *RecallID) HasState(s State) bool {
	id.mu.RLock()
	defer id.mu.RUnlock()
	return id.state&s == s
}

// FindRecallIDWithRecyclingContext returns the first id bound to context.
func FindRecallIDWithRecyclingContext(ids []*RecallID, ctx *RecyclingContext) *RecallID {
	for _, id := range ids {
		if id.RecyclingContext() == ctx {
			return id
		}
	}
	return nil
}

// FindParentRecyclingContext returns the first id whose context is the
// parent of ctx.
func FindParentRecyclingContext(ids []*RecallID, ctx *RecyclingContext) *RecallID {
	if ctx == nil {
		return nil
	}
	parent := ctx.Parent()
	if parent == nil {
		return nil
	}
	return FindRecallIDWithRecyclingContext(ids, parent)
}
