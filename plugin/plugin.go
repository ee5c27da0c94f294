// Package plugin provides the wire formats recalls use to pass notes to
// plugin instances and a minimal instance contract.
package plugin

import (
	"errors"
	"math"
	"sort"
	"sync"

	"gitlab.com/gomidi/midi/v2"
)

var (
	// ErrUnknownPlugin is returned when plugin can't be instantiated.
	ErrUnknownPlugin = errors.New("unknown plugin")
)

// DefaultEventCount is capacity of event buffers.
const DefaultEventCount = 512

// Event is a timestamped midi message.
type Event struct {
	Frames  uint32
	Message midi.Message
}

// MIDIWriter is implemented by plugin ports receiving midi.
type MIDIWriter interface {
	AppendMIDI(frames uint32, msgs ...midi.Message) bool
	Events() []Event
	Clear()
}

// EventBuffer is an event port with fixed capacity.
type EventBuffer struct {
	capacity int
	events   []Event
}

// NewEventBuffer returns event buffer of provided capacity.
func NewEventBuffer(capacity int) *EventBuffer {
	return &EventBuffer{
		capacity: capacity,
		events:   make([]Event, 0, capacity),
	}
}

// AppendMIDI appends messages. Returns false if buffer is full.
func (b *EventBuffer) AppendMIDI(frames uint32, msgs ...midi.Message) bool {
	if len(b.events)+len(msgs) > b.capacity {
		return false
	}
	for _, m := range msgs {
		b.events = append(b.events, Event{Frames: frames, Message: m})
	}
	return true
}

// Events returns buffered events.
func (b *EventBuffer) Events() []Event {
	return b.events
}

// Clear drops all events.
func (b *EventBuffer) Clear() {
	b.events = b.events[:0]
}

// AtomSequence is a sequence port. Its size is accounted in bytes with
// 8-byte aligned event headers.
type AtomSequence struct {
	size   int
	used   int
	events []Event
}

const atomEventHeader = 16

// NewAtomSequence returns sequence with provided byte size.
func NewAtomSequence(size int) *AtomSequence {
	return &AtomSequence{size: size}
}

// AppendMIDI appends messages. Returns false if sequence has no room.
func (s *AtomSequence) AppendMIDI(frames uint32, msgs ...midi.Message) bool {
	need := 0
	for _, m := range msgs {
		need += atomEventHeader + pad8(len(m))
	}
	if s.used+need > s.size {
		return false
	}
	s.used += need
	for _, m := range msgs {
		s.events = append(s.events, Event{Frames: frames, Message: m})
	}
	return true
}

// Events returns appended events.
func (s *AtomSequence) Events() []Event {
	return s.events
}

// Clear drops all events.
func (s *AtomSequence) Clear() {
	s.used = 0
	s.events = s.events[:0]
}

func pad8(n int) int {
	return (n + 7) &^ 7
}

// Instance is a plugin instance driven by the bridge layer.
type Instance interface {
	// Run renders frames into out consuming events.
	Run(events []Event, out []float64)
}

// Factory creates plugin instances.
type Factory func(samplerate int) Instance

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		SineEffect: func(samplerate int) Instance { return NewSine(samplerate) },
	}
)

// SineEffect is the name of built-in sine instrument.
const SineEffect = "ags-sine"

// Register adds instance factory for effect.
func Register(effect string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[effect] = f
}

// Effects returns sorted names of registered effects.
func Effects() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	effects := make([]string, 0, len(registry))
	for effect := range registry {
		effects = append(effects, effect)
	}
	sort.Strings(effects)
	return effects
}

// Instantiate creates instance of effect.
func Instantiate(effect string, samplerate int) (Instance, error) {
	registryMu.RLock()
	f, ok := registry[effect]
	registryMu.RUnlock()
	if !ok {
		return nil, ErrUnknownPlugin
	}
	return f(samplerate), nil
}

// Sine is a polyphonic sine instrument.
type Sine struct {
	samplerate float64
	voices     map[uint8]*voice
}

type voice struct {
	freq  float64
	phase float64
	gain  float64
}

// NewSine returns sine instrument.
func NewSine(samplerate int) *Sine {
	return &Sine{
		samplerate: float64(samplerate),
		voices:     make(map[uint8]*voice),
	}
}

// Active returns number of sounding voices.
func (s *Sine) Active() int {
	return len(s.voices)
}

// Run applies events and renders voices additively into out.
func (s *Sine) Run(events []Event, out []float64) {
	var ch, key, vel uint8
	for _, e := range events {
		switch {
		case e.Message.GetNoteOn(&ch, &key, &vel) && vel > 0:
			s.voices[key] = &voice{
				freq: 440 * math.Exp2((float64(key)-69)/12),
				gain: float64(vel) / 127 * 0.2,
			}
		case e.Message.GetNoteOff(&ch, &key, &vel), e.Message.GetNoteOn(&ch, &key, &vel):
			delete(s.voices, key)
		}
	}
	for _, v := range s.voices {
		step := 2 * math.Pi * v.freq / s.samplerate
		for i := range out {
			out[i] += v.gain * math.Sin(v.phase)
			v.phase += step
		}
		v.phase = math.Mod(v.phase, 2*math.Pi)
	}
}
