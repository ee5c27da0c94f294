package audio

import (
	"sync"

	"github.com/google/uuid"
)

// Recycling is the buffer chain of a channel. Every toplevel run renders
// into its own output signal so runs of different sound scopes never
// share a buffer. The template signal holds the mix of the run outputs
// and streamed signals.
type Recycling struct {
	mu       sync.RWMutex
	uuid     uuid.UUID
	channel  *Channel
	template *AudioSignal
	signals  []*AudioSignal
	outputs  map[*RecallID]*AudioSignal
}

// NewRecycling returns recycling with a template signal.
func NewRecycling(samplerate, bufferSize int) *Recycling {
	r := &Recycling{
		uuid:     uuid.New(),
		template: NewAudioSignal(samplerate, bufferSize),
		outputs:  make(map[*RecallID]*AudioSignal),
	}
	r.template.recycling = r
	return r
}

// UUID of recycling.
func (r *Recycling) UUID() uuid.UUID {
	return r.uuid
}

// Channel returns owning channel.
func (r *Recycling) Channel() *Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channel
}

func (r *Recycling) setChannel(c *Channel) {
	r.mu.Lock()
	r.channel = c
	r.mu.Unlock()
}

// Template returns template signal.
func (r *Recycling) Template() *AudioSignal {
	return r.template
}

// Signals returns snapshot of streamed signals.
func (r *Recycling) Signals() []*AudioSignal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := make([]*AudioSignal, len(r.signals))
	copy(s, r.signals)
	return s
}

// AddSignal appends streamed signal.
func (r *Recycling) AddSignal(s *AudioSignal) {
	s.mu.Lock()
	s.recycling = r
	s.mu.Unlock()
	r.mu.Lock()
	r.signals = append(r.signals, s)
	r.mu.Unlock()
}

// RemoveSignal drops streamed signal.
func (r *Recycling) RemoveSignal(s *AudioSignal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.signals {
		if r.signals[i] == s {
			r.signals = append(r.signals[:i], r.signals[i+1:]...)
			return
		}
	}
}

// FindSignal returns the first streamed signal of run.
func (r *Recycling) FindSignal(id *RecallID) *AudioSignal {
	for _, s := range r.Signals() {
		if s.RecallID() == id {
			return s
		}
	}
	return nil
}

// Output returns the signal run id renders into. Channel runs share the
// signal of their toplevel run. It's created on first use. A nil id
// returns the template signal.
func (r *Recycling) Output(id *RecallID) *AudioSignal {
	top := id.Toplevel()
	if top == nil {
		return r.template
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.outputs[top]
	if !ok {
		s = NewAudioSignal(r.template.Format().SampleRate, r.template.BufferSize())
		s.recycling = r
		s.recallID = top
		r.outputs[top] = s
	}
	return s
}

// Outputs returns snapshot of run output signals.
func (r *Recycling) Outputs() []*AudioSignal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := make([]*AudioSignal, 0, len(r.outputs))
	for _, o := range r.outputs {
		s = append(s, o)
	}
	return s
}

// Mix clears the template buffer and adds the current buffer of every run
// output and streamed signal to it. Outputs of done runs are dropped
// after they're mixed.
func (r *Recycling) Mix() {
	r.template.Clear()
	for _, s := range r.Outputs() {
		s.MixInto(r.template)
	}
	for _, s := range r.Signals() {
		s.MixInto(r.template)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.outputs {
		if id.HasState(StateDone) {
			delete(r.outputs, id)
		}
	}
}
