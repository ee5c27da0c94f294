// Package mock provides recall behaviours for tests.
package mock

import (
	"sync"
	"sync/atomic"

	"github.com/gsequencer/ags/audio"
)

// Log records stage calls in order of arrival.
type Log struct {
	mu      sync.Mutex
	entries []string
}

func (l *Log) add(entry string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Entries returns snapshot of recorded entries.
func (l *Log) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := make([]string, len(l.entries))
	copy(e, l.entries)
	return e
}

// Count returns number of entries equal to entry.
func (l *Log) Count(entry string) int {
	n := 0
	for _, e := range l.Entries() {
		if e == entry {
			n++
		}
	}
	return n
}

// Reset drops recorded entries.
func (l *Log) Reset() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// Behaviour records every call as "name:stage" in Log. If Limit is set,
// the recall is done after Limit run-post calls.
type Behaviour struct {
	Name  string
	Log   *Log
	Limit int64
	// OnResolve is called on dependency resolution.
	OnResolve func(r *audio.Recall)

	posts int64
	refs  int64
}

// Posts returns number of run-post calls.
func (b *Behaviour) Posts() int64 {
	return atomic.LoadInt64(&b.posts)
}

// Refs returns sum of dependency notifications.
func (b *Behaviour) Refs() int64 {
	return atomic.LoadInt64(&b.refs)
}

func (b *Behaviour) record(st string) {
	b.Log.add(b.Name + ":" + st)
}

// ResolveDependency records call and calls OnResolve.
func (b *Behaviour) ResolveDependency(r *audio.Recall) {
	b.record(audio.StageResolveDependency.String())
	if b.OnResolve != nil {
		b.OnResolve(r)
	}
}

// CheckRtData records call.
func (b *Behaviour) CheckRtData(*audio.Recall) { b.record(audio.StageCheckRtData.String()) }

// RunInitPre records call.
func (b *Behaviour) RunInitPre(*audio.Recall) { b.record(audio.StageRunInitPre.String()) }

// RunInitInter records call.
func (b *Behaviour) RunInitInter(*audio.Recall) { b.record(audio.StageRunInitInter.String()) }

// RunInitPost records call.
func (b *Behaviour) RunInitPost(*audio.Recall) { b.record(audio.StageRunInitPost.String()) }

// FeedInputQueue records call.
func (b *Behaviour) FeedInputQueue(*audio.Recall) { b.record(audio.StageFeedInputQueue.String()) }

// Automate records call.
func (b *Behaviour) Automate(*audio.Recall) { b.record(audio.StageAutomate.String()) }

// RunPre records call.
func (b *Behaviour) RunPre(*audio.Recall) { b.record(audio.StageRunPre.String()) }

// RunInter records call.
func (b *Behaviour) RunInter(*audio.Recall) { b.record(audio.StageRunInter.String()) }

// RunPost records call and finishes recall once limit is reached.
func (b *Behaviour) RunPost(r *audio.Recall) {
	b.record(audio.StageRunPost.String())
	if n := atomic.AddInt64(&b.posts, 1); b.Limit > 0 && n >= b.Limit {
		r.Done()
	}
}

// DoFeedback records call.
func (b *Behaviour) DoFeedback(*audio.Recall) { b.record(audio.StageDoFeedback.String()) }

// FeedOutputQueue records call.
func (b *Behaviour) FeedOutputQueue(*audio.Recall) { b.record(audio.StageFeedOutputQueue.String()) }

// Done records call.
func (b *Behaviour) Done(*audio.Recall) { b.record("done") }

// Cancel records call.
func (b *Behaviour) Cancel(*audio.Recall) { b.record("cancel") }

// NotifyDependency records call and sums delta.
func (b *Behaviour) NotifyDependency(_ *audio.Recall, _ audio.DependencyKind, delta int) {
	b.record("notify")
	atomic.AddInt64(&b.refs, int64(delta))
}

// Duplicate returns behaviour sharing name, log and limit.
func (b *Behaviour) Duplicate(_, _ *audio.Recall) audio.Behaviour {
	return &Behaviour{
		Name:      b.Name,
		Log:       b.Log,
		Limit:     b.Limit,
		OnResolve: b.OnResolve,
	}
}

// Recall returns template of typ with a recording behaviour.
func Recall(typ *audio.Type, name string, log *Log, options ...audio.Option) (*audio.Recall, *Behaviour) {
	b := &Behaviour{Name: name, Log: log}
	return audio.NewRecall(typ, b, options...), b
}
