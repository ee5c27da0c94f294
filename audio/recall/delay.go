package recall

import (
	"math"
	"sync"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/port"
)

// Delay port specifiers.
const (
	BPMPort            = "bpm"
	SequencerDelayPort = "sequencer-delay"
	NotationDelayPort  = "notation-delay"
	WaveDelayPort      = "wave-delay"
	MidiDelayPort      = "midi-delay"
)

// DelayAudio holds the tempo and the number of buffers per tick of every
// timed scope.
type DelayAudio struct {
	audio.NopBehaviour
	BPM            *port.Port
	SequencerDelay *port.Port
	NotationDelay  *port.Port
	WaveDelay      *port.Port
	MidiDelay      *port.Port
}

// NewDelayAudio returns delay audio template of a. Delays are computed
// from the samplerate, buffer size, bpm and delay factor of a.
func NewDelayAudio(a *audio.Audio, options ...audio.Option) *audio.Recall {
	delay := a.Delay()
	d := &DelayAudio{
		BPM:            port.New(BPMPort, port.WithRange(1, 1000), port.WithDefault(a.BPM())),
		SequencerDelay: port.New(SequencerDelayPort, port.WithRange(0, 65535), port.WithDefault(delay)),
		NotationDelay:  port.New(NotationDelayPort, port.WithRange(0, 65535), port.WithDefault(delay)),
		WaveDelay:      port.New(WaveDelayPort, port.WithRange(0, 65535), port.WithDefault(delay)),
		MidiDelay:      port.New(MidiDelayPort, port.WithRange(0, 65535), port.WithDefault(delay)),
	}
	options = append([]audio.Option{
		audio.WithAudio(a),
		audio.WithPorts(d.BPM, d.SequencerDelay, d.NotationDelay, d.WaveDelay, d.MidiDelay),
	}, options...)
	return audio.NewRecall(DelayAudioType, d, options...)
}

// Delay returns delay port of scope.
func (d *DelayAudio) Delay(scope audio.SoundScope) *port.Port {
	switch scope {
	case audio.ScopeSequencer:
		return d.SequencerDelay
	case audio.ScopeNotation:
		return d.NotationDelay
	case audio.ScopeWave:
		return d.WaveDelay
	case audio.ScopeMidi:
		return d.MidiDelay
	}
	return nil
}

// Duplicate returns d, audio level recalls share their ports.
func (d *DelayAudio) Duplicate(_, _ *audio.Recall) audio.Behaviour {
	return d
}

// DelayEvent is emitted by delay run every buffer. Delay is zero at the
// tick boundary and the sub-tick counter otherwise.
type DelayEvent struct {
	Run    *audio.Recall
	Scope  audio.SoundScope
	NthRun uint
	Delay  float64
	Attack uint
}

// Boundary reports if event is at a tick boundary.
func (e DelayEvent) Boundary() bool {
	return math.Floor(e.Delay) == 0
}

// DelayHandler receives delay events.
type DelayHandler func(DelayEvent)

// DelayAudioRun counts buffers per scope and notifies alloc-output,
// alloc-input and count observers in that order every buffer. A run
// without channel run dependents is done unless it's persistent.
type DelayAudioRun struct {
	audio.NopBehaviour

	mu            sync.Mutex
	counter       [audio.ScopeLast]uint64
	started       bool
	dependencyRef int
	hideRef       int

	allocOutput []DelayHandler
	allocInput  []DelayHandler
	count       []DelayHandler
}

// NewDelayAudioRun returns delay audio run template of a.
func NewDelayAudioRun(a *audio.Audio, options ...audio.Option) *audio.Recall {
	options = append([]audio.Option{audio.WithAudio(a)}, options...)
	return audio.NewRecall(DelayAudioRunType, &DelayAudioRun{}, options...)
}

// Counter returns buffer counter of scope.
func (d *DelayAudioRun) Counter(scope audio.SoundScope) uint64 {
	if scope < 0 || scope >= audio.ScopeLast {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counter[scope]
}

// DependencyRef returns number of channel run dependents.
func (d *DelayAudioRun) DependencyRef() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dependencyRef
}

// HideRef returns number of run dependents.
func (d *DelayAudioRun) HideRef() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hideRef
}

// OnAllocOutput registers alloc-output observer.
func (d *DelayAudioRun) OnAllocOutput(fn DelayHandler) {
	d.mu.Lock()
	d.allocOutput = append(d.allocOutput, fn)
	d.mu.Unlock()
}

// OnAllocInput registers alloc-input observer.
func (d *DelayAudioRun) OnAllocInput(fn DelayHandler) {
	d.mu.Lock()
	d.allocInput = append(d.allocInput, fn)
	d.mu.Unlock()
}

// OnCount registers count observer.
func (d *DelayAudioRun) OnCount(fn DelayHandler) {
	d.mu.Lock()
	d.count = append(d.count, fn)
	d.mu.Unlock()
}

// NotifyDependency counts run dependents in hide ref and channel run
// dependents in dependency ref.
func (d *DelayAudioRun) NotifyDependency(_ *audio.Recall, kind audio.DependencyKind, delta int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch kind {
	case audio.NotifyRun:
		d.hideRef += delta
	case audio.NotifyChannelRun:
		d.dependencyRef += delta
	}
}

// RunPre advances the counter of the run scope. The first buffer of the
// run is a tick boundary.
func (d *DelayAudioRun) RunPre(r *audio.Recall) {
	d.mu.Lock()
	if !r.TestFlags(audio.Persistent) && d.dependencyRef == 0 {
		d.counter = [audio.ScopeLast]uint64{}
		d.mu.Unlock()
		r.Done()
		return
	}
	d.mu.Unlock()

	scope := r.SoundScope()
	delayAudio := delayAudioOf(r.RecallAudio())
	if delayAudio == nil {
		logger.Warn("delay audio run: missing delay audio")
		return
	}
	delayPort := delayAudio.Delay(scope)
	if delayPort == nil {
		return
	}
	current := delayPort.SafeRead()

	d.mu.Lock()
	switch {
	case !d.started:
		d.started = true
		d.counter[scope] = 0
	case d.counter[scope]+1 >= uint64(current):
		d.counter[scope] = 0
	default:
		d.counter[scope]++
	}
	e := DelayEvent{
		Run:   r,
		Scope: scope,
		Delay: float64(d.counter[scope]),
	}
	allocOutput := append([]DelayHandler(nil), d.allocOutput...)
	allocInput := append([]DelayHandler(nil), d.allocInput...)
	count := append([]DelayHandler(nil), d.count...)
	d.mu.Unlock()

	for _, fn := range allocOutput {
		fn(e)
	}
	for _, fn := range allocInput {
		fn(e)
	}
	for _, fn := range count {
		fn(e)
	}
}

// Duplicate returns fresh counters without observers.
func (d *DelayAudioRun) Duplicate(_, _ *audio.Recall) audio.Behaviour {
	return &DelayAudioRun{}
}
