package audio

import "sync"

// recallLists holds the play and recall lists shared by audio and channel.
// The play list is used by runs of a toplevel recycling context, the
// recall list by runs of child contexts.
type recallLists struct {
	listMu     sync.RWMutex
	play       []*Recall
	recall     []*Recall
	containers []*Container
	ids        []*RecallID
}

// Recalls returns snapshot of the play or recall list.
func (l *recallLists) Recalls(play bool) []*Recall {
	l.listMu.RLock()
	defer l.listMu.RUnlock()
	if play {
		return snapshot(l.play)
	}
	return snapshot(l.recall)
}

// AddRecall appends recall to the play or recall list.
func (l *recallLists) AddRecall(r *Recall, play bool) {
	l.InsertRecall(r, play, -1)
}

// InsertRecall inserts recall at position of the play or recall list.
// Negative or out of range position appends.
func (l *recallLists) InsertRecall(r *Recall, play bool, position int) {
	l.listMu.Lock()
	defer l.listMu.Unlock()
	list := &l.recall
	if play {
		list = &l.play
	}
	if _, found := indexRecall(*list, r); found {
		return
	}
	if position < 0 || position >= len(*list) {
		*list = append(*list, r)
		return
	}
	*list = append(*list, nil)
	copy((*list)[position+1:], (*list)[position:])
	(*list)[position] = r
}

// RemoveRecall drops recall from the play or recall list.
func (l *recallLists) RemoveRecall(r *Recall, play bool) {
	l.listMu.Lock()
	defer l.listMu.Unlock()
	if play {
		l.play, _ = removeRecall(l.play, r)
		return
	}
	l.recall, _ = removeRecall(l.recall, r)
}

// RecallContainers returns snapshot of containers.
func (l *recallLists) RecallContainers() []*Container {
	l.listMu.RLock()
	defer l.listMu.RUnlock()
	c := make([]*Container, len(l.containers))
	copy(c, l.containers)
	return c
}

// AddRecallContainer appends container.
func (l *recallLists) AddRecallContainer(c *Container) {
	l.listMu.Lock()
	defer l.listMu.Unlock()
	for _, existing := range l.containers {
		if existing == c {
			return
		}
	}
	l.containers = append(l.containers, c)
}

// RemoveRecallContainer drops container.
func (l *recallLists) RemoveRecallContainer(c *Container) {
	l.listMu.Lock()
	defer l.listMu.Unlock()
	for i := range l.containers {
		if l.containers[i] == c {
			l.containers = append(l.containers[:i], l.containers[i+1:]...)
			return
		}
	}
}

// RecallIDs returns snapshot of runs.
func (l *recallLists) RecallIDs() []*RecallID {
	l.listMu.RLock()
	defer l.listMu.RUnlock()
	ids := make([]*RecallID, len(l.ids))
	copy(ids, l.ids)
	return ids
}

// AddRecallID appends run.
func (l *recallLists) AddRecallID(id *RecallID) {
	l.listMu.Lock()
	defer l.listMu.Unlock()
	for _, existing := range l.ids {
		if existing == id {
			return
		}
	}
	l.ids = append(l.ids, id)
}

// RemoveRecallID drops run.
func (l *recallLists) RemoveRecallID(id *RecallID) {
	l.listMu.Lock()
	defer l.listMu.Unlock()
	for i := range l.ids {
		if l.ids[i] == id {
			l.ids = append(l.ids[:i], l.ids[i+1:]...)
			return
		}
	}
}

// recallsOf returns recalls of run from both lists.
func (l *recallLists) recallsOf(id *RecallID) []*Recall {
	l.listMu.RLock()
	defer l.listMu.RUnlock()
	var result []*Recall
	for _, list := range [][]*Recall{l.play, l.recall} {
		for _, r := range list {
			if r.RecallID() == id {
				result = append(result, r)
			}
		}
	}
	return result
}

// DuplicateRecall duplicates every run level template able to run in the
// scope of id. Templates already duplicated for id are skipped. Returns
// the new recalls.
func (l *recallLists) DuplicateRecall(id *RecallID) []*Recall {
	if id == nil {
		logger.Warn("duplicate recall without recall id")
		return nil
	}
	play := isToplevel(id)
	templates := l.Recalls(play)
	existing := l.recallsOf(id)
	var created []*Recall
	for _, t := range templates {
		if !t.IsTemplate() || !t.Kind().IsRun() || !t.CheckAbility(id.SoundScope()) {
			continue
		}
		if duplicated(existing, t) {
			continue
		}
		dup := t.Duplicate(id)
		l.AddRecall(dup, play)
		created = append(created, dup)
	}
	return created
}

// ResolveRecall resolves dependencies of recalls of id.
func (l *recallLists) ResolveRecall(id *RecallID) {
	for _, r := range l.recallsOf(id) {
		r.SetStagingFlags(StageResolveDependency)
	}
}

// InitRecall runs init stages of recalls of id.
func (l *recallLists) InitRecall(id *RecallID, s Staging) {
	for _, r := range l.recallsOf(id) {
		r.SetStagingFlags(s & StageInit)
	}
}

// PlayRecall runs stages of recalls of id.
func (l *recallLists) PlayRecall(id *RecallID, s Staging) {
	for _, r := range l.recallsOf(id) {
		if r.IsDone() {
			continue
		}
		r.SetStagingFlags(s)
	}
}

// UnsetStagingFlags clears stages of recalls of id.
func (l *recallLists) UnsetStagingFlags(id *RecallID, s Staging) {
	for _, r := range l.recallsOf(id) {
		r.UnsetStagingFlags(s)
	}
}

// DoneRecall finishes recalls of id.
func (l *recallLists) DoneRecall(id *RecallID) {
	for _, r := range l.recallsOf(id) {
		r.Done()
	}
}

// CancelRecall cancels recalls of id.
func (l *recallLists) CancelRecall(id *RecallID) {
	for _, r := range l.recallsOf(id) {
		r.Cancel()
	}
}

// RemoveDone prunes done recalls from both lists and their containers.
func (l *recallLists) RemoveDone() []*Recall {
	l.listMu.Lock()
	var removed []*Recall
	l.play, removed = pruneDone(l.play, removed)
	l.recall, removed = pruneDone(l.recall, removed)
	l.listMu.Unlock()
	for _, r := range removed {
		if c := r.Container(); c != nil {
			c.Remove(r)
		}
	}
	return removed
}

// recallDone reports if id has run recalls and all of them are done.
func (l *recallLists) recallDone(id *RecallID) (done bool, count int) {
	done = true
	for _, r := range l.recallsOf(id) {
		if !r.Kind().IsRun() {
			continue
		}
		count++
		if !r.IsDone() {
			done = false
		}
	}
	return done, count
}

func pruneDone(list, removed []*Recall) ([]*Recall, []*Recall) {
	kept := list[:0]
	for _, r := range list {
		if !r.IsTemplate() && r.IsDone() {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(list); i++ {
		list[i] = nil
	}
	return kept, removed
}

func duplicated(existing []*Recall, template *Recall) bool {
	for _, r := range existing {
		if r.Template() == template {
			return true
		}
	}
	return false
}

func isToplevel(id *RecallID) bool {
	ctx := id.RecyclingContext()
	return ctx == nil || ctx.Parent() == nil
}
