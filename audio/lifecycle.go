package audio

import (
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	cancelNone int32 = iota
	cancelRequested
	cancelHandled
)

// SetStagingFlags runs each requested stage that didn't run yet. Stages
// run in canonical order. Once-only stages and the pre, inter and post
// triad preceding the latest requested stage are caught up, so a recall
// never runs inter before its own pre within a tick.
func (r *Recall) SetStagingFlags(s Staging) {
	if r.IsTemplate() {
		logger.Warn("running on template")
		return
	}
	if atomic.CompareAndSwapInt32(&r.cancelRequested, cancelRequested, cancelHandled) {
		r.Cancel()
		return
	}
	highest := highestStage(s)
	for _, st := range stageOrder {
		if st > highest {
			break
		}
		if s&st == 0 && stageCatchUp&st == 0 {
			continue
		}
		r.mu.Lock()
		if r.state&StateDone != 0 {
			r.mu.Unlock()
			return
		}
		skip := r.staging&st != 0 || r.stagingCompleted&st != 0
		if !skip {
			r.staging |= st
			if st&StageInit != 0 {
				r.stagingCompleted |= st
			}
		}
		r.mu.Unlock()
		if !skip {
			r.stage(st)
		}
	}
}

// UnsetStagingFlags clears stages of recall and its children. Called at
// the tick boundary with StageTick.
func (r *Recall) UnsetStagingFlags(s Staging) {
	r.mu.Lock()
	r.staging &^= s
	children := r.snapshotChildren()
	r.mu.Unlock()
	for _, c := range children {
		c.UnsetStagingFlags(s)
	}
}

func highestStage(s Staging) Staging {
	for i := len(stageOrder) - 1; i >= 0; i-- {
		if s&stageOrder[i] != 0 {
			return stageOrder[i]
		}
	}
	return 0
}

// stage runs single stage on children and then on behaviour.
func (r *Recall) stage(st Staging) {
	for _, c := range r.Children() {
		if c.IsTemplate() {
			logger.Warn("running on template")
			continue
		}
		c.SetStagingFlags(st)
	}

	switch st {
	case StageAutomate:
		r.automate()
	case StageRunInitPost:
		r.SetFlags(InitialRun | RunInitialized)
	}

	stageTable[st](r.behaviour, r)

	if st == StageRunPost {
		r.UnsetFlags(InitialRun)
	}
}

func (r *Recall) automate() {
	id := r.RecallID()
	if id == nil {
		return
	}
	x := id.Tick()
	for _, p := range r.AutomationPorts() {
		p.Automate(x)
	}
}

// Done moves recall to terminal state. Templates and persistent recalls
// are never done. A done recall is unlinked from its parent. Parent with
// PropagateDone becomes done when its last child is done.
func (r *Recall) Done() {
	r.mu.Lock()
	if r.flags&Template != 0 || r.flags&persistentMask != 0 || r.state&StateDone != 0 {
		r.mu.Unlock()
		return
	}
	r.state |= StateDone
	r.state &^= StateRunning
	handlers := make([]func(*Recall), len(r.doneHandlers))
	copy(handlers, r.doneHandlers)
	parent := r.parent
	r.mu.Unlock()

	r.behaviour.Done(r)
	for _, h := range handlers {
		h(r)
	}

	if parent != nil {
		parent.RemoveChild(r)
		parent.childDone()
	}
}

func (r *Recall) childDone() {
	r.mu.RLock()
	propagate := r.flags&PropagateDone != 0 && r.flags&Persistent == 0 && len(r.children) == 0
	r.mu.RUnlock()
	if propagate {
		r.Done()
	}
}

// Cancel releases resources and finishes recall and its children.
// Persistent recalls are stopped first.
func (r *Recall) Cancel() {
	if r.IsTemplate() {
		return
	}
	r.mu.Lock()
	r.state |= StateCancelled
	handlers := make([]func(*Recall), len(r.cancelHandlers))
	copy(handlers, r.cancelHandlers)
	persistent := r.flags&persistentMask != 0
	r.mu.Unlock()

	r.behaviour.Cancel(r)
	for _, h := range handlers {
		h(r)
	}
	for _, c := range r.Children() {
		c.Cancel()
	}
	if persistent {
		r.StopPersistent()
		return
	}
	r.Done()
}

// StopPersistent clears persistence and finishes recall.
func (r *Recall) StopPersistent() {
	r.UnsetFlags(persistentMask)
	r.Done()
}

// RequestCancel asks the thread staging this recall to cancel it on the
// next invocation. Safe to call from any goroutine.
func (r *Recall) RequestCancel() {
	atomic.CompareAndSwapInt32(&r.cancelRequested, cancelNone, cancelRequested)
}

// CancelRequested reports if cancel was requested.
func (r *Recall) CancelRequested() bool {
	return atomic.LoadInt32(&r.cancelRequested) != cancelNone
}

// NotifyDependency propagates a reference count change to behaviour.
func (r *Recall) NotifyDependency(kind DependencyKind, delta int) {
	r.behaviour.NotifyDependency(r, kind, delta)
}

// Duplicate creates a recall bound to id from template r. The duplicate
// shares ports and peers with the template and is added to the template's
// container.
func (r *Recall) Duplicate(id *RecallID) *Recall {
	r.mu.RLock()
	dup := &Recall{
		uuid:           uuid.New(),
		typ:            r.typ,
		name:           r.name,
		version:        r.version,
		buildID:        r.buildID,
		xmlType:        r.xmlType,
		filename:       r.filename,
		effect:         r.effect,
		effectIndex:    r.effectIndex,
		flags:          r.flags &^ (Template | RunInitialized),
		ability:        r.ability,
		behaviourFlags: r.behaviourFlags,
		soundScope:     r.soundScope,
		template:       r,
		audio:          r.audio,
		channel:        r.channel,
		recycling:      r.recycling,
		audioSignal:    r.audioSignal,
		recallAudio:    r.recallAudio,
		recallAudioRun: r.recallAudioRun,
		recallChannel:  r.recallChannel,
	}
	dup.ports = append(dup.ports, r.ports...)
	dup.automationPorts = append(dup.automationPorts, r.automationPorts...)
	dup.doneHandlers = append(dup.doneHandlers, r.doneHandlers...)
	dup.cancelHandlers = append(dup.cancelHandlers, r.cancelHandlers...)
	container := r.container
	r.mu.RUnlock()

	if id == nil {
		logger.Warn("duplicate without recall id")
	}
	dup.SetRecallID(id)
	dup.behaviour = r.behaviour.Duplicate(r, dup)
	if dup.behaviour == nil {
		dup.behaviour = NopBehaviour{}
	}
	if container != nil {
		container.Add(dup)
	}
	return dup
}

// AddChild links child under r. The child inherits scope related flags
// and the recall id of r. If r is already initialized the child is
// initialized immediately.
func (r *Recall) AddChild(child *Recall) {
	if child == nil || child == r || child.Parent() == r {
		return
	}
	mask := PropagateDone | InitialRun
	if child.Kind() != KindAudioSignal {
		mask |= persistentMask
	}
	if old := child.Parent(); old != nil {
		old.RemoveChild(child)
		child.UnsetFlags(mask)
	}

	r.mu.Lock()
	flags := r.flags
	ability := r.ability
	id := r.recallID
	r.children = append(r.children, child)
	r.mu.Unlock()

	child.mu.Lock()
	child.parent = r
	child.flags |= flags & mask &^ Template
	child.ability &= ability
	child.mu.Unlock()

	child.SetRecallID(id)

	if flags&RunInitialized != 0 && !child.TestFlags(RunInitialized) && id != nil {
		child.SetStagingFlags(StageRunInitPre | StageRunInitInter | StageRunInitPost)
	}
}

// RemoveChild unlinks child.
func (r *Recall) RemoveChild(child *Recall) {
	r.mu.Lock()
	for i := range r.children {
		if r.children[i] == child {
			r.children = append(r.children[:i], r.children[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	child.mu.Lock()
	if child.parent == r {
		child.parent = nil
	}
	child.mu.Unlock()
}
