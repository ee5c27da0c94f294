package audio

// StartAudio starts runs of audio in scope, all scopes of the audio
// ability for ScopeDefault. A run gets a toplevel recycling context of
// the output recyclings and one child context per input channel. Run
// level templates are duplicated, resolved and initialized. Scopes with a
// live run are not started again. Returns the toplevel recall ids.
func (a *Audio) StartAudio(scope SoundScope) []*RecallID {
	var started []*RecallID
	for _, s := range a.scopes(scope) {
		if id := a.runningID(s); id != nil {
			logger.Debugf("audio %s: %v already running", a.Name(), s)
			started = append(started, id)
			continue
		}
		started = append(started, a.start(s))
	}
	return started
}

func (a *Audio) scopes(scope SoundScope) []SoundScope {
	ability := a.Ability()
	if scope != ScopeDefault {
		if !ability.Has(scope) {
			return nil
		}
		return []SoundScope{scope}
	}
	var scopes []SoundScope
	for _, s := range Scopes() {
		if ability.Has(s) {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

func (a *Audio) runningID(scope SoundScope) *RecallID {
	for _, id := range a.RecallIDs() {
		if id.SoundScope() == scope && !id.HasState(StateDone) {
			return id
		}
	}
	return nil
}

func (a *Audio) start(scope SoundScope) *RecallID {
	outputs := a.Outputs()
	inputs := a.Inputs()

	recyclings := make([]*Recycling, 0, len(outputs))
	for _, out := range outputs {
		recyclings = append(recyclings, out.Recycling())
	}
	ctx := NewRecyclingContext(scope, recyclings...)
	id := NewRecallID(scope, ctx)
	id.SetState(StateRunning)
	a.AddRecallID(id)
	for _, out := range outputs {
		out.AddRecallID(id)
	}

	childIDs := make([]*RecallID, len(inputs))
	for i, in := range inputs {
		child := NewRecyclingContext(scope, in.Recycling())
		ctx.AddChild(child)
		childIDs[i] = NewRecallID(scope, child)
		childIDs[i].SetState(StateRunning)
		in.AddRecallID(childIDs[i])
	}

	a.DuplicateRecall(id)
	for _, out := range outputs {
		out.DuplicateRecall(id)
	}
	for i, in := range inputs {
		in.DuplicateRecall(childIDs[i])
	}

	a.each(id, func(l *recallLists, id *RecallID) { l.ResolveRecall(id) })
	a.each(id, func(l *recallLists, id *RecallID) { l.InitRecall(id, StageCheckRtData) })
	for _, st := range []Staging{StageRunInitPre, StageRunInitInter, StageRunInitPost} {
		st := st
		a.each(id, func(l *recallLists, id *RecallID) { l.InitRecall(id, st) })
	}
	logger.Debugf("audio %s: started %v run %v", a.Name(), scope, id)
	return id
}

// each calls fn for audio with id, for inputs with their child ids of id
// and for outputs with id.
func (a *Audio) each(id *RecallID, fn func(l *recallLists, id *RecallID)) {
	fn(&a.recallLists, id)
	ctx := id.RecyclingContext()
	for _, in := range a.Inputs() {
		if child := in.FindRecallID(ctx); child != nil {
			fn(&in.recallLists, child)
		}
	}
	for _, out := range a.Outputs() {
		fn(&out.recallLists, id)
	}
}

// Play runs stage for run id: audio level recalls first, then input and
// output channel recalls.
func (a *Audio) Play(id *RecallID, s Staging) {
	if id == nil || id.HasState(StateDone) {
		return
	}
	a.each(id, func(l *recallLists, id *RecallID) { l.PlayRecall(id, s) })
}

// Tick runs every per-tick stage of run id in order and finishes the
// tick. Returns true if the run is done.
func (a *Audio) Tick(id *RecallID) bool {
	for _, st := range TickStages() {
		a.Play(id, st)
	}
	return a.FinishTick(id)
}

// FinishTick resets per-tick staging of run id, advances its tick
// counter and prunes done recalls. The run is done once all of its run
// recalls are done.
func (a *Audio) FinishTick(id *RecallID) bool {
	if id == nil {
		return true
	}
	if id.HasState(StateDone) {
		return true
	}
	done, count := true, 0
	a.each(id, func(l *recallLists, id *RecallID) {
		l.UnsetStagingFlags(id, StageTick)
		d, n := l.recallDone(id)
		done = done && d
		count += n
	})
	id.Advance()
	a.removeDone()
	if count > 0 && done {
		a.finish(id)
		return true
	}
	return false
}

// StopAudio cancels runs of scope, all runs for ScopeDefault.
func (a *Audio) StopAudio(scope SoundScope) {
	for _, id := range a.RecallIDs() {
		if scope != ScopeDefault && id.SoundScope() != scope {
			continue
		}
		a.each(id, func(l *recallLists, id *RecallID) { l.CancelRecall(id) })
		a.finish(id)
	}
	a.removeDone()
}

// CancelAudio requests cancel of every recall of runs in scope. The
// thread playing the run cancels them on its next stage.
func (a *Audio) CancelAudio(scope SoundScope) {
	for _, id := range a.RecallIDs() {
		if scope != ScopeDefault && id.SoundScope() != scope {
			continue
		}
		a.each(id, func(l *recallLists, id *RecallID) {
			for _, r := range l.recallsOf(id) {
				r.RequestCancel()
			}
		})
	}
}

// finish marks run done and drops its ids from audio and channels.
func (a *Audio) finish(id *RecallID) {
	a.each(id, func(l *recallLists, id *RecallID) {
		id.SetState(StateDone)
		id.mu.Lock()
		id.state &^= StateRunning
		id.mu.Unlock()
		l.RemoveRecallID(id)
	})
	logger.Debugf("audio %s: run %v done", a.Name(), id)
}

// Mix mixes the run outputs of every channel recycling into its template
// signal. It must not be called while a run of a is playing.
func (a *Audio) Mix() {
	for _, c := range a.Inputs() {
		c.Recycling().Mix()
	}
	for _, c := range a.Outputs() {
		c.Recycling().Mix()
	}
}

func (a *Audio) removeDone() {
	a.RemoveDone()
	for _, c := range a.Inputs() {
		c.RemoveDone()
	}
	for _, c := range a.Outputs() {
		c.RemoveDone()
	}
}
