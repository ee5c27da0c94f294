package audio

import (
	"sync"

	"github.com/google/uuid"

	"github.com/gsequencer/ags/config"
	"github.com/gsequencer/ags/notation"
)

// AudioFlags of audio.
type AudioFlags uint32

// Audio flags.
const (
	// AudioReverseMapping maps note y to input pads from the last pad.
	AudioReverseMapping AudioFlags = 1 << iota
	// AudioHasNotation marks audio driven by notation.
	AudioHasNotation
)

// Audio is a machine: a set of input and output channels arranged in pads
// of audio channels, and the audio level recalls.
type Audio struct {
	recallLists

	mu   sync.RWMutex
	uuid uuid.UUID
	name string

	flags   AudioFlags
	ability Ability

	samplerate  int
	bufferSize  int
	bpm         float64
	delayFactor float64

	audioChannels int
	outputPads    int
	inputPads     int
	outputs       []*Channel
	inputs        []*Channel

	audioStartMapping int
	audioEndMapping   int
	midiStartMapping  int
	midiEndMapping    int

	notation notation.List

	resizeChannelsHandlers []func(a *Audio, n, old int)
	resizePadsHandlers     []func(a *Audio, output bool, n, old int)
}

// AudioOption configures audio.
type AudioOption func(*Audio)

// Named sets name of audio.
func Named(name string) AudioOption {
	return func(a *Audio) {
		a.name = name
	}
}

// WithConfig takes samplerate, buffer size, bpm and delay factor from
// config.
func WithConfig(c *config.Config) AudioOption {
	return func(a *Audio) {
		a.samplerate = c.Samplerate()
		a.bufferSize = c.BufferSize()
		a.bpm = c.BPM()
		a.delayFactor = c.DelayFactor()
	}
}

// WithAudioFlags sets audio flags.
func WithAudioFlags(f AudioFlags) AudioOption {
	return func(a *Audio) {
		a.flags = f
	}
}

// WithAudioAbility restricts sound scopes audio is started in.
func WithAudioAbility(ab Ability) AudioOption {
	return func(a *Audio) {
		a.ability = ab
	}
}

// WithMapping sets mapping window of input pads to midi keys.
func WithMapping(audioStart, audioEnd, midiStart, midiEnd int) AudioOption {
	return func(a *Audio) {
		a.audioStartMapping = audioStart
		a.audioEndMapping = audioEnd
		a.midiStartMapping = midiStart
		a.midiEndMapping = midiEnd
	}
}

// NewAudio returns audio without channels. Defaults are taken from
// default config.
func NewAudio(options ...AudioOption) *Audio {
	a := &Audio{
		uuid:    uuid.New(),
		ability: AbilityAll,
	}
	WithConfig(config.Default())(a)
	for _, option := range options {
		option(a)
	}
	return a
}

// UUID of audio.
func (a *Audio) UUID() uuid.UUID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.uuid
}

// SetUUID overrides uuid.
func (a *Audio) SetUUID(id uuid.UUID) {
	a.mu.Lock()
	a.uuid = id
	a.mu.Unlock()
}

// Name of audio.
func (a *Audio) Name() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.name
}

// TestFlags reports if all of f are set.
func (a *Audio) TestFlags(f AudioFlags) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.flags&f == f
}

// SetFlags sets flags.
func (a *Audio) SetFlags(f AudioFlags) {
	a.mu.Lock()
	a.flags |= f
	a.mu.Unlock()
}

// UnsetFlags clears flags.
func (a *Audio) UnsetFlags(f AudioFlags) {
	a.mu.Lock()
	a.flags &^= f
	a.mu.Unlock()
}

// Ability returns scopes audio can be started in.
func (a *Audio) Ability() Ability {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ability
}

// Samplerate of audio.
func (a *Audio) Samplerate() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.samplerate
}

// BufferSize of audio.
func (a *Audio) BufferSize() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.bufferSize
}

// BPM of audio.
func (a *Audio) BPM() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.bpm
}

// SetBPM sets tempo.
func (a *Audio) SetBPM(bpm float64) {
	a.mu.Lock()
	a.bpm = bpm
	a.mu.Unlock()
}

// DelayFactor of audio.
func (a *Audio) DelayFactor() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.delayFactor
}

// Delay returns number of buffers per notation tick.
func (a *Audio) Delay() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return config.Delay(a.samplerate, a.bufferSize, a.bpm, a.delayFactor)
}

// Mapping returns mapping window of input pads to midi keys.
func (a *Audio) Mapping() (audioStart, audioEnd, midiStart, midiEnd int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.audioStartMapping, a.audioEndMapping, a.midiStartMapping, a.midiEndMapping
}

// SetMapping sets mapping window.
func (a *Audio) SetMapping(audioStart, audioEnd, midiStart, midiEnd int) {
	a.mu.Lock()
	WithMapping(audioStart, audioEnd, midiStart, midiEnd)(a)
	a.mu.Unlock()
}

// AudioChannels returns number of audio channels.
func (a *Audio) AudioChannels() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.audioChannels
}

// Pads returns number of output or input pads.
func (a *Audio) Pads(output bool) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if output {
		return a.outputPads
	}
	return a.inputPads
}

// Outputs returns output channels ordered by line.
func (a *Audio) Outputs() []*Channel {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return snapshotChannels(a.outputs)
}

// Inputs returns input channels ordered by line.
func (a *Audio) Inputs() []*Channel {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return snapshotChannels(a.inputs)
}

// Channel returns channel at pad and audio channel, nil if out of range.
func (a *Audio) Channel(output bool, pad, audioChannel int) *Channel {
	a.mu.RLock()
	defer a.mu.RUnlock()
	channels, pads := a.inputs, a.inputPads
	if output {
		channels, pads = a.outputs, a.outputPads
	}
	if pad < 0 || pad >= pads || audioChannel < 0 || audioChannel >= a.audioChannels {
		return nil
	}
	return channels[pad*a.audioChannels+audioChannel]
}

// Pad returns channels of pad.
func (a *Audio) Pad(output bool, pad int) []*Channel {
	var channels []*Channel
	for i := 0; i < a.AudioChannels(); i++ {
		if c := a.Channel(output, pad, i); c != nil {
			channels = append(channels, c)
		}
	}
	return channels
}

// OnResizeAudioChannels registers handler called after audio channels
// were resized.
func (a *Audio) OnResizeAudioChannels(fn func(a *Audio, n, old int)) {
	a.mu.Lock()
	a.resizeChannelsHandlers = append(a.resizeChannelsHandlers, fn)
	a.mu.Unlock()
}

// OnResizePads registers handler called after pads were resized.
func (a *Audio) OnResizePads(fn func(a *Audio, output bool, n, old int)) {
	a.mu.Lock()
	a.resizePadsHandlers = append(a.resizePadsHandlers, fn)
	a.mu.Unlock()
}

// SetAudioChannels resizes audio channels. Existing channels keep their
// pad and audio channel.
func (a *Audio) SetAudioChannels(n int) {
	if n < 0 {
		n = 0
	}
	a.mu.Lock()
	old := a.audioChannels
	if old == n {
		a.mu.Unlock()
		return
	}
	a.outputs = a.rearrange(a.outputs, true, a.outputPads, old, a.outputPads, n)
	a.inputs = a.rearrange(a.inputs, false, a.inputPads, old, a.inputPads, n)
	a.audioChannels = n
	handlers := make([]func(*Audio, int, int), len(a.resizeChannelsHandlers))
	copy(handlers, a.resizeChannelsHandlers)
	a.mu.Unlock()

	for _, h := range handlers {
		h(a, n, old)
	}
}

// SetPads resizes output or input pads.
func (a *Audio) SetPads(output bool, n int) {
	if n < 0 {
		n = 0
	}
	a.mu.Lock()
	var old int
	if output {
		old = a.outputPads
		a.outputs = a.rearrange(a.outputs, true, old, a.audioChannels, n, a.audioChannels)
		a.outputPads = n
	} else {
		old = a.inputPads
		a.inputs = a.rearrange(a.inputs, false, old, a.audioChannels, n, a.audioChannels)
		a.inputPads = n
	}
	if old == n {
		a.mu.Unlock()
		return
	}
	handlers := make([]func(*Audio, bool, int, int), len(a.resizePadsHandlers))
	copy(handlers, a.resizePadsHandlers)
	a.mu.Unlock()

	for _, h := range handlers {
		h(a, output, n, old)
	}
}

// rearrange returns channels for pads x audioChannels reusing existing
// ones. Caller holds the lock.
func (a *Audio) rearrange(channels []*Channel, output bool, oldPads, oldChannels, pads, audioChannels int) []*Channel {
	result := make([]*Channel, 0, pads*audioChannels)
	for pad := 0; pad < pads; pad++ {
		for ch := 0; ch < audioChannels; ch++ {
			line := pad*audioChannels + ch
			if pad < oldPads && ch < oldChannels {
				c := channels[pad*oldChannels+ch]
				c.setPosition(pad, ch, line)
				result = append(result, c)
				continue
			}
			c := newChannel(a, output, pad, ch, line)
			result = append(result, c)
		}
	}
	return result
}

// Notation returns snapshot of notation segments.
func (a *Audio) Notation() notation.List {
	a.mu.RLock()
	defer a.mu.RUnlock()
	l := make(notation.List, len(a.notation))
	copy(l, a.notation)
	return l
}

// AddNote adds note to the notation segment of its x0, creating the
// segment if needed.
func (a *Audio) AddNote(audioChannel int, n *notation.Note) {
	a.mu.Lock()
	var segment *notation.Notation
	a.notation, segment = a.notation.Find(audioChannel, n.X0)
	a.mu.Unlock()
	segment.AddNote(n)
}

// AddNotation adds notation segment.
func (a *Audio) AddNotation(n *notation.Notation) {
	a.mu.Lock()
	a.notation = a.notation.Add(n)
	a.mu.Unlock()
}

// FindNotation returns notation segment of audio channel at offset.
func (a *Audio) FindNotation(audioChannel int, offset uint64) *notation.Notation {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.notation.FindNearTimestamp(audioChannel, offset)
}

func snapshotChannels(channels []*Channel) []*Channel {
	c := make([]*Channel, len(channels))
	copy(c, channels)
	return c
}
