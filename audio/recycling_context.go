package audio

import (
	"sync"

	"github.com/rs/xid"
)

// RecyclingContext is a node of the tree mirroring the recycling
// hierarchy of one run. Child contexts are created per channel feed.
type RecyclingContext struct {
	mu        sync.RWMutex
	id        xid.ID
	scope     SoundScope
	recycling []*Recycling
	parent    *RecyclingContext
	children  []*RecyclingContext
	recallID  *RecallID
}

// NewRecyclingContext returns context holding provided recyclings.
func NewRecyclingContext(scope SoundScope, recycling ...*Recycling) *RecyclingContext {
	r := make([]*Recycling, len(recycling))
	copy(r, recycling)
	return &RecyclingContext{
		id:        xid.New(),
		scope:     scope,
		recycling: r,
	}
}

// ID returns short id of context.
func (c *RecyclingContext) ID() xid.ID {
	return c.id
}

// SoundScope of the context.
func (c *RecyclingContext) SoundScope() SoundScope {
	return c.scope
}

// Len returns number of recyclings.
func (c *RecyclingContext) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.recycling)
}

// Recycling returns snapshot of recyclings.
func (c *RecyclingContext) Recycling() []*Recycling {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r := make([]*Recycling, len(c.recycling))
	copy(r, c.recycling)
	return r
}

// Parent returns parent context.
func (c *RecyclingContext) Parent() *RecyclingContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.parent
}

// Children returns snapshot of child contexts.
func (c *RecyclingContext) Children() []*RecyclingContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	children := make([]*RecyclingContext, len(c.children))
	copy(children, c.children)
	return children
}

// RecallID returns recall id bound to context.
func (c *RecyclingContext) RecallID() *RecallID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.recallID
}

func (c *RecyclingContext) setRecallID(id *RecallID) {
	c.mu.Lock()
	c.recallID = id
	c.mu.Unlock()
}

// Depth returns number of contexts from toplevel to c, toplevel is 1.
func (c *RecyclingContext) Depth() int {
	depth := 0
	for cur := c; cur != nil; cur = cur.Parent() {
		depth++
	}
	return depth
}

// Toplevel returns root of the tree.
func (c *RecyclingContext) Toplevel() *RecyclingContext {
	cur := c
	for {
		parent := cur.Parent()
		if parent == nil {
			return cur
		}
		cur = parent
	}
}

// IsAncestorOf returns true if c is a strict ancestor of other.
func (c *RecyclingContext) IsAncestorOf(other *RecyclingContext) bool {
	if other == nil {
		return false
	}
	for cur := other.Parent(); cur != nil; cur = cur.Parent() {
		if cur == c {
			return true
		}
	}
	return false
}

// Replace sets recycling at position. Out of range positions are ignored.
func (c *RecyclingContext) Replace(recycling *Recycling, position int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if position < 0 || position >= len(c.recycling) {
		return
	}
	c.recycling[position] = recycling
}

// Add returns new context with recycling appended.
func (c *RecyclingContext) Add(recycling *Recycling) *RecyclingContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r := make([]*Recycling, len(c.recycling), len(c.recycling)+1)
	copy(r, c.recycling)
	return NewRecyclingContext(c.scope, append(r, recycling)...)
}

// Remove returns new context without recycling.
func (c *RecyclingContext) Remove(recycling *Recycling) *RecyclingContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r := make([]*Recycling, 0, len(c.recycling))
	for _, rec := range c.recycling {
		if rec != recycling {
			r = append(r, rec)
		}
	}
	return NewRecyclingContext(c.scope, r...)
}

// Insert returns new context with recycling inserted at position.
func (c *RecyclingContext) Insert(recycling *Recycling, position int) *RecyclingContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if position < 0 {
		position = 0
	}
	if position > len(c.recycling) {
		position = len(c.recycling)
	}
	r := make([]*Recycling, 0, len(c.recycling)+1)
	r = append(r, c.recycling[:position]...)
	r = append(r, recycling)
	r = append(r, c.recycling[position:]...)
	return NewRecyclingContext(c.scope, r...)
}

// Find returns position of recycling or -1.
func (c *RecyclingContext) Find(recycling *Recycling) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i, rec := range c.recycling {
		if rec == recycling {
			return i
		}
	}
	return -1
}

// FindChild returns index of the first child containing recycling or -1.
func (c *RecyclingContext) FindChild(recycling *Recycling) int {
	for i, child := range c.Children() {
		if child.Find(recycling) != -1 {
			return i
		}
	}
	return -1
}

// FindParent returns position of recycling in parent context or -1.
func (c *RecyclingContext) FindParent(recycling *Recycling) int {
	parent := c.Parent()
	if parent == nil {
		return -1
	}
	return parent.Find(recycling)
}

// AddChild links child context.
func (c *RecyclingContext) AddChild(child *RecyclingContext) {
	if child == nil || child == c {
		return
	}
	if old := child.Parent(); old != nil {
		old.RemoveChild(child)
	}
	c.mu.Lock()
	c.children = append(c.children, child)
	c.mu.Unlock()

	child.mu.Lock()
	child.parent = c
	child.mu.Unlock()
}

// RemoveChild unlinks child context.
func (c *RecyclingContext) RemoveChild(child *RecyclingContext) {
	c.mu.Lock()
	for i := range c.children {
		if c.children[i] == child {
			c.children = append(c.children[:i], c.children[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	child.mu.Lock()
	if child.parent == c {
		child.parent = nil
	}
	child.mu.Unlock()
}

// ChildRecallIDs returns recall ids bound to child contexts.
func (c *RecyclingContext) ChildRecallIDs() []*RecallID {
	var ids []*RecallID
	for _, child := range c.Children() {
		if id := child.RecallID(); id != nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// ResetRecycling returns a new context where the old range is replaced by
// the new one. Old range not present in context means new recyclings are
// appended. Parent and children are moved to the new context.
func (c *RecyclingContext) ResetRecycling(old, replacement []*Recycling) *RecyclingContext {
	if len(replacement) == 0 {
		return nil
	}
	current := c.Recycling()
	first, last := -1, -1
	if len(old) > 0 {
		first = c.Find(old[0])
		last = c.Find(old[len(old)-1])
	}
	r := make([]*Recycling, 0, len(current)+len(replacement))
	if first == -1 || last == -1 || last < first {
		r = append(r, current...)
		r = append(r, replacement...)
	} else {
		r = append(r, current[:first]...)
		r = append(r, replacement...)
		r = append(r, current[last+1:]...)
	}
	n := NewRecyclingContext(c.scope, r...)
	if parent := c.Parent(); parent != nil {
		parent.RemoveChild(c)
		parent.AddChild(n)
	}
	for _, child := range c.Children() {
		n.AddChild(child)
	}
	if id := c.RecallID(); id != nil {
		id.SetRecyclingContext(n)
	}
	return n
}
