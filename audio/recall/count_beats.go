package recall

import (
	"sync"

	"github.com/gsequencer/ags/audio"
	"github.com/gsequencer/ags/port"
)

// Count beats port specifiers.
const (
	NotationLoopPort       = "notation-loop"
	NotationLoopStartPort  = "notation-loop-start"
	NotationLoopEndPort    = "notation-loop-end"
	SequencerLoopPort      = "sequencer-loop"
	SequencerLoopStartPort = "sequencer-loop-start"
	SequencerLoopEndPort   = "sequencer-loop-end"
)

// DefaultLoopEnd is the loop end of a new count beats audio.
const DefaultLoopEnd = 64

// CountBeatsAudio holds loop ports of notation and sequencer.
type CountBeatsAudio struct {
	audio.NopBehaviour
	NotationLoop       *port.Port
	NotationLoopStart  *port.Port
	NotationLoopEnd    *port.Port
	SequencerLoop      *port.Port
	SequencerLoopStart *port.Port
	SequencerLoopEnd   *port.Port
}

// NewCountBeatsAudio returns count beats audio template of a.
func NewCountBeatsAudio(a *audio.Audio, options ...audio.Option) *audio.Recall {
	c := &CountBeatsAudio{
		NotationLoop:       port.New(NotationLoopPort),
		NotationLoopStart:  port.New(NotationLoopStartPort, port.WithRange(0, 65535)),
		NotationLoopEnd:    port.New(NotationLoopEndPort, port.WithRange(0, 65535), port.WithDefault(DefaultLoopEnd)),
		SequencerLoop:      port.New(SequencerLoopPort),
		SequencerLoopStart: port.New(SequencerLoopStartPort, port.WithRange(0, 65535)),
		SequencerLoopEnd:   port.New(SequencerLoopEndPort, port.WithRange(0, 65535), port.WithDefault(DefaultLoopEnd)),
	}
	options = append([]audio.Option{
		audio.WithAudio(a),
		audio.WithPorts(c.NotationLoop, c.NotationLoopStart, c.NotationLoopEnd,
			c.SequencerLoop, c.SequencerLoopStart, c.SequencerLoopEnd),
	}, options...)
	return audio.NewRecall(CountBeatsAudioType, c, options...)
}

// SetLoop configures notation and sequencer loop.
func (c *CountBeatsAudio) SetLoop(loop bool, start, end uint64) {
	c.NotationLoop.WriteBool(loop)
	c.NotationLoopStart.WriteUint(start)
	c.NotationLoopEnd.WriteUint(end)
	c.SequencerLoop.WriteBool(loop)
	c.SequencerLoopStart.WriteUint(start)
	c.SequencerLoopEnd.WriteUint(end)
}

// Duplicate returns c.
func (c *CountBeatsAudio) Duplicate(_, _ *audio.Recall) audio.Behaviour {
	return c
}

// Whence of SeekCounter.
type Whence int

// Seek origins.
const (
	SeekSet Whence = iota
	SeekCur
)

// CountBeatsAudioRun counts notation and sequencer ticks on the count
// notification of its delay run.
type CountBeatsAudioRun struct {
	audio.NopBehaviour

	mu               sync.Mutex
	delayRun         *audio.Recall
	notationCounter  uint64
	sequencerCounter uint64
}

// NewCountBeatsAudioRun returns count beats run template of a depending on
// delay run template.
func NewCountBeatsAudioRun(a *audio.Audio, delayRun *audio.Recall, options ...audio.Option) *audio.Recall {
	options = append([]audio.Option{audio.WithAudio(a)}, options...)
	r := audio.NewRecall(CountBeatsAudioRunType, &CountBeatsAudioRun{}, options...)
	r.AddDependency(audio.NewDependency(delayRun))
	return r
}

// DelayRun returns resolved delay run.
func (c *CountBeatsAudioRun) DelayRun() *audio.Recall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delayRun
}

// NotationCounter returns current notation tick.
func (c *CountBeatsAudioRun) NotationCounter() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notationCounter
}

// SequencerCounter returns current sequencer tick.
func (c *CountBeatsAudioRun) SequencerCounter() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sequencerCounter
}

// SeekCounter moves both counters. SeekCur with negative steps stops at zero.
func (c *CountBeatsAudioRun) SeekCounter(steps int64, whence Whence) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notationCounter = seek(c.notationCounter, steps, whence)
	c.sequencerCounter = seek(c.sequencerCounter, steps, whence)
}

func seek(counter uint64, steps int64, whence Whence) uint64 {
	if whence == SeekSet {
		if steps < 0 {
			return 0
		}
		return uint64(steps)
	}
	if steps < 0 && uint64(-steps) > counter {
		return 0
	}
	return uint64(int64(counter) + steps)
}

// ResolveDependency resolves delay run and observes its count.
func (c *CountBeatsAudioRun) ResolveDependency(r *audio.Recall) {
	delay, _ := resolveTiming(r, audio.NotifyRun)
	c.mu.Lock()
	c.delayRun = delay
	c.mu.Unlock()
	if d := delayRunOf(delay); d != nil {
		d.OnCount(func(e DelayEvent) { c.count(r, e) })
	}
}

// RunInitPre starts counting at the loop start.
func (c *CountBeatsAudioRun) RunInitPre(r *audio.Recall) {
	cb := countBeatsAudioOf(r.RecallAudio())
	if cb == nil {
		return
	}
	c.mu.Lock()
	if cb.NotationLoop.ReadBool() {
		c.notationCounter = cb.NotationLoopStart.ReadUint()
	}
	if cb.SequencerLoop.ReadBool() {
		c.sequencerCounter = cb.SequencerLoopStart.ReadUint()
	}
	c.mu.Unlock()
}

// count advances the counter of the delay scope at a tick boundary.
// Looping counters wrap to the loop start before the loop end.
func (c *CountBeatsAudioRun) count(r *audio.Recall, e DelayEvent) {
	if !e.Boundary() || r.IsDone() {
		return
	}
	cb := countBeatsAudioOf(r.RecallAudio())
	if cb == nil {
		logger.Warn("count beats audio run: missing count beats audio")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch e.Scope {
	case audio.ScopeNotation:
		c.notationCounter = advance(c.notationCounter, cb.NotationLoop, cb.NotationLoopStart, cb.NotationLoopEnd)
	case audio.ScopeSequencer:
		c.sequencerCounter = advance(c.sequencerCounter, cb.SequencerLoop, cb.SequencerLoopStart, cb.SequencerLoopEnd)
	}
}

func advance(counter uint64, loop, start, end *port.Port) uint64 {
	if loop.ReadBool() && end.ReadUint() > 0 && counter+1 >= end.ReadUint() {
		return start.ReadUint()
	}
	return counter + 1
}

// Done releases the delay run.
func (c *CountBeatsAudioRun) Done(*audio.Recall) {
	releaseTiming(audio.NotifyRun, c.DelayRun())
}

// Duplicate returns counters starting at zero.
func (c *CountBeatsAudioRun) Duplicate(_, _ *audio.Recall) audio.Behaviour {
	return &CountBeatsAudioRun{}
}
